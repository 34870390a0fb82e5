package google_tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/auth"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/server"
)

// newTestServerContext puts token files in a per-test temp directory.
func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	sc := server.NewServerContext(context.Background(), nil, nil)
	t.Cleanup(func() {
		_ = sc.Shutdown()
	})
	return sc
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected a result with content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func saveCredential(t *testing.T, sc *server.ServerContext, cred *auth.Credential) {
	t.Helper()
	acct, err := sc.AccountFor("default")
	if err != nil {
		t.Fatalf("AccountFor() error = %v", err)
	}
	if err := acct.Manager.Save(context.Background(), cred); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
}

func TestHandleAuthStatus_NotAuthorized(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleAuthStatus(context.Background(), mcp.CallToolRequest{}, sc)
	if err != nil {
		t.Fatalf("handleAuthStatus() error = %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "not authorized") {
		t.Errorf("expected not-authorized message, got %q", text)
	}
}

func TestHandleAuthStatus_Valid(t *testing.T) {
	sc := newTestServerContext(t)
	saveCredential(t, sc, &auth.Credential{
		AccessToken:  "ya29.test",
		RefreshToken: "1//refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	})

	result, err := handleAuthStatus(context.Background(), mcp.CallToolRequest{}, sc)
	if err != nil {
		t.Fatalf("handleAuthStatus() error = %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "token is valid") {
		t.Errorf("expected valid-token message, got %q", text)
	}
}

func TestHandleAuthStatus_ReauthRequired(t *testing.T) {
	sc := newTestServerContext(t)
	// Expired with no refresh token: validation reports unusable without
	// attempting a remote refresh.
	saveCredential(t, sc, &auth.Credential{
		AccessToken: "ya29.test",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(-time.Hour),
	})

	result, err := handleAuthStatus(context.Background(), mcp.CallToolRequest{}, sc)
	if err != nil {
		t.Fatalf("handleAuthStatus() error = %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "no longer usable") {
		t.Errorf("expected re-authorization message, got %q", text)
	}
}

func TestHandleClearCredentials(t *testing.T) {
	sc := newTestServerContext(t)
	saveCredential(t, sc, &auth.Credential{
		AccessToken: "ya29.test",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	})

	result, err := handleClearCredentials(context.Background(), mcp.CallToolRequest{}, sc)
	if err != nil {
		t.Fatalf("handleClearCredentials() error = %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "cleared") {
		t.Errorf("expected cleared message, got %q", text)
	}
	if sc.HasCredentials("default") {
		t.Error("credentials still present after clear")
	}
}
