package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/auth"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs.
// This abstraction allows different token sources to be plugged in.
type TokenProvider interface {
	// Token returns a valid OAuth token, refreshing if necessary.
	Token(ctx context.Context) (*oauth2.Token, error)

	// HasToken reports whether stored credentials exist.
	HasToken() bool
}

// ManagerTokenProvider provides tokens from a credential lifecycle manager.
// The manager handles persistence, refresh and shutdown; the provider is a
// read-side adapter for the API clients.
type ManagerTokenProvider struct {
	manager  *auth.Manager
	conf     *oauth2.Config
	notifier *TokenNotifier
}

// NewManagerTokenProvider creates a provider backed by the given manager.
// The notifier must be the one the manager is subscribed to, so that silent
// refreshes performed by the oauth2 transport are persisted.
func NewManagerTokenProvider(manager *auth.Manager, conf *oauth2.Config, notifier *TokenNotifier) *ManagerTokenProvider {
	if conf == nil {
		conf = OAuthConfig()
	}
	return &ManagerTokenProvider{
		manager:  manager,
		conf:     conf,
		notifier: notifier,
	}
}

// Token returns the manager's current credential as an oauth2 token,
// validating (and refreshing) it first.
func (p *ManagerTokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	ok, err := p.manager.Validate(ctx)
	if err != nil {
		return nil, fmt.Errorf("validating credential: %w", err)
	}
	if !ok {
		return nil, auth.ErrReauthRequired
	}
	return TokenFromCredential(p.manager.Current()), nil
}

// HasToken reports whether the manager holds a credential in memory or a
// token file exists on disk.
func (p *ManagerTokenProvider) HasToken() bool {
	if p.manager.Current().HasAccessToken() {
		return true
	}
	ok, err := p.manager.Load(context.Background())
	return err == nil && ok
}

// HTTPClient returns an HTTP client that attaches bearer credentials to
// outbound calls. Tokens silently refreshed by the transport are routed back
// to the manager through the notifier. The client is pinned to HTTP/1.1 to
// avoid HTTP/2 protocol errors with some Google endpoints.
func (p *ManagerTokenProvider) HTTPClient(ctx context.Context) (*http.Client, error) {
	tok, err := p.Token(ctx)
	if err != nil {
		return nil, err
	}

	src := oauth2.ReuseTokenSource(tok, p.conf.TokenSource(ctx, tok))
	notifying := NewNotifyingTokenSource(src, p.notifier)

	client := oauth2.NewClient(ctx, notifying)
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			ForceAttemptHTTP2: false,
		}
	}
	return client, nil
}
