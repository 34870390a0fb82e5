package google

import (
	"sync"

	"golang.org/x/oauth2"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/auth"
)

// TokenNotifier is the single-slot token-change notification hook. The
// credential manager subscribes to it at construction and unsubscribes when
// shutdown begins; the notifying token source fires it whenever the oauth2
// transport silently refreshes a token mid-request.
//
// Only one listener ever exists, so this is deliberately not a general
// multi-subscriber bus.
type TokenNotifier struct {
	mu sync.Mutex
	fn func(*auth.Credential)
}

// Subscribe installs the listener, replacing any previous one.
func (n *TokenNotifier) Subscribe(fn func(*auth.Credential)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fn = fn
}

// Unsubscribe removes the listener. Notifications after this are dropped.
func (n *TokenNotifier) Unsubscribe() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fn = nil
}

// Notify forwards new token material to the listener, if one is installed.
func (n *TokenNotifier) Notify(cred *auth.Credential) {
	n.mu.Lock()
	fn := n.fn
	n.mu.Unlock()
	if fn != nil {
		fn(cred)
	}
}

// notifyingTokenSource wraps an oauth2.TokenSource and fires the notifier
// whenever the source returns a token whose access token differs from the
// last one observed, which is how silent refreshes become durable saves.
type notifyingTokenSource struct {
	src      oauth2.TokenSource
	notifier *TokenNotifier

	mu   sync.Mutex
	last string
}

// NewNotifyingTokenSource wraps src so token changes are reported to
// notifier.
func NewNotifyingTokenSource(src oauth2.TokenSource, notifier *TokenNotifier) oauth2.TokenSource {
	return &notifyingTokenSource{src: src, notifier: notifier}
}

func (s *notifyingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	changed := tok.AccessToken != s.last
	s.last = tok.AccessToken
	s.mu.Unlock()

	if changed && s.notifier != nil {
		s.notifier.Notify(CredentialFromToken(tok))
	}
	return tok, nil
}
