package server

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/auth"
)

// newTestServerContext creates a server context whose token files land in a
// per-test temp directory instead of the real user config dir.
func newTestServerContext(t *testing.T) *ServerContext {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return NewServerContext(context.Background(), nil, nil)
}

func TestNewServerContext_Defaults(t *testing.T) {
	sc := newTestServerContext(t)

	if sc.Logger() == nil {
		t.Error("Logger() = nil, want default logger")
	}
	if sc.Metrics() == nil {
		t.Error("Metrics() = nil, want no-op recorder")
	}
	if sc.Context() == nil {
		t.Error("Context() = nil")
	}
	if sc.IsShutdown() {
		t.Error("IsShutdown() = true for a fresh context")
	}
}

func TestServerContext_AccountFor(t *testing.T) {
	sc := newTestServerContext(t)

	acct, err := sc.AccountFor("work")
	if err != nil {
		t.Fatalf("AccountFor() error = %v", err)
	}
	if acct.Manager == nil || acct.Notifier == nil || acct.Provider == nil {
		t.Fatal("AccountFor() returned an account with nil components")
	}

	again, err := sc.AccountFor("work")
	if err != nil {
		t.Fatalf("AccountFor() second call error = %v", err)
	}
	if again != acct {
		t.Error("AccountFor() did not return the cached account")
	}
}

func TestServerContext_AccountForEmptyIsDefault(t *testing.T) {
	sc := newTestServerContext(t)

	byEmpty, err := sc.AccountFor("")
	if err != nil {
		t.Fatalf("AccountFor(\"\") error = %v", err)
	}
	byName, err := sc.AccountFor("default")
	if err != nil {
		t.Fatalf("AccountFor(\"default\") error = %v", err)
	}
	if byEmpty != byName {
		t.Error("empty account name should resolve to the default account")
	}
}

func TestServerContext_HasCredentials(t *testing.T) {
	sc := newTestServerContext(t)

	if sc.HasCredentials("default") {
		t.Error("HasCredentials() = true before any token was saved")
	}

	acct, err := sc.AccountFor("default")
	if err != nil {
		t.Fatalf("AccountFor() error = %v", err)
	}
	cred := &auth.Credential{
		AccessToken:  "ya29.test",
		RefreshToken: "1//refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
	if err := acct.Manager.Save(context.Background(), cred); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if !sc.HasCredentials("default") {
		t.Error("HasCredentials() = false after saving a token")
	}
}

func TestServerContext_DropClients(t *testing.T) {
	sc := newTestServerContext(t)

	// No cached clients exist yet; dropping must be a safe no-op.
	sc.DropClients("default")
	sc.DropClients("")
	sc.DropClients("never-seen")
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t)

	acct, err := sc.AccountFor("default")
	if err != nil {
		t.Fatalf("AccountFor() error = %v", err)
	}
	cred := &auth.Credential{
		AccessToken:  "ya29.test",
		RefreshToken: "1//refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
	if err := acct.Manager.Save(context.Background(), cred); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	path := acct.Manager.Path()

	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("IsShutdown() = false after Shutdown()")
	}

	// The token file written before shutdown must survive it.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("token file missing after shutdown: %v", err)
	}

	// New accounts are refused once shutdown has begun.
	if _, err := sc.AccountFor("another"); !errors.Is(err, auth.ErrShuttingDown) {
		t.Errorf("AccountFor() after shutdown error = %v, want ErrShuttingDown", err)
	}

	select {
	case <-sc.Context().Done():
	default:
		t.Error("server context not cancelled after Shutdown()")
	}

	// Second shutdown is a no-op.
	if err := sc.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}
