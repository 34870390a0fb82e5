package google

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/auth"
)

// Refresher performs the refresh exchange against Google's token endpoint.
// It implements auth.Refresher.
type Refresher struct {
	conf *oauth2.Config
}

// NewRefresher creates a refresher using the given OAuth config, defaulting
// to OAuthConfig() when conf is nil.
func NewRefresher(conf *oauth2.Config) *Refresher {
	if conf == nil {
		conf = OAuthConfig()
	}
	return &Refresher{conf: conf}
}

// Refresh exchanges the credential's refresh token for fresh token material.
// An invalid_grant response maps to auth.ErrReauthRequired so the caller can
// distinguish "log in again" from a transient failure.
func (r *Refresher) Refresh(ctx context.Context, cred *auth.Credential) (*auth.Credential, error) {
	if cred == nil || cred.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token: %w", auth.ErrReauthRequired)
	}

	ts := r.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})
	tok, err := ts.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "invalid_grant" {
			return nil, fmt.Errorf("provider rejected refresh token: %w", auth.ErrReauthRequired)
		}
		return nil, fmt.Errorf("refresh exchange failed: %w", err)
	}

	return CredentialFromToken(tok), nil
}
