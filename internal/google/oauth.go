package google

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/auth"
)

// appDirName is the per-user configuration directory for this server.
const appDirName = "google-calendar-tasks-mcp"

// OAuthConfig returns the OAuth2 configuration for all Google services.
// Client credentials come from GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.
func OAuthConfig() *oauth2.Config {
	const oob = "urn:ietf:wg:oauth:2.0:oob"
	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		Endpoint:     googleoauth.Endpoint,
		RedirectURL:  oob,
		Scopes:       DefaultOAuthScopes,
	}
}

// AuthURL returns the OAuth URL for user authorization. Offline access is
// requested so the exchange yields a refresh token.
func AuthURL() string {
	conf := OAuthConfig()
	return conf.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// AuthRequiredMessage returns the guidance shown to users when a tool is
// invoked for an account that has no stored credentials.
func AuthRequiredMessage(account string) string {
	return fmt.Sprintf(`Google OAuth token not found for account "%s". To authorize access:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account
3. Grant access to Google services (Calendar, Tasks, Gmail)
4. Copy the authorization code

5. Provide the authorization code to your AI agent
   The agent will use the google_save_auth_code tool with account="%s" to complete authentication.

Note: You only need to authorize once. The tokens will be automatically refreshed.`, account, AuthURL(), account)
}

// Exchange trades an authorization code for a credential.
func Exchange(ctx context.Context, authCode string) (*auth.Credential, error) {
	conf := OAuthConfig()
	tok, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("exchanging auth code: %w", err)
	}
	return CredentialFromToken(tok), nil
}

// TokenPath returns the token file location for the given account, under the
// platform-appropriate per-user config directory.
func TokenPath(account string) (string, error) {
	if account == "" {
		account = "default"
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(base, appDirName, "tokens", account+".json"), nil
}

// CredentialFromToken converts an oauth2 token to the credential shape the
// manager persists.
func CredentialFromToken(tok *oauth2.Token) *auth.Credential {
	if tok == nil {
		return nil
	}
	return &auth.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
}

// TokenFromCredential converts a persisted credential back to an oauth2
// token for use with Google API clients.
func TokenFromCredential(cred *auth.Credential) *oauth2.Token {
	if cred == nil {
		return nil
	}
	tokenType := cred.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	var expiry time.Time
	if !cred.Expiry.IsZero() {
		expiry = cred.Expiry
	}
	return &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    tokenType,
		Expiry:       expiry,
	}
}
