package google

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/auth"
)

func TestTokenPath(t *testing.T) {
	path, err := TokenPath("work")
	if err != nil {
		t.Fatalf("TokenPath failed: %v", err)
	}
	if filepath.Base(path) != "work.json" {
		t.Errorf("Expected file name 'work.json', got %s", filepath.Base(path))
	}
	if !strings.Contains(path, appDirName) {
		t.Errorf("Expected path under %s, got %s", appDirName, path)
	}
}

func TestTokenPathEmptyAccountDefaults(t *testing.T) {
	path, err := TokenPath("")
	if err != nil {
		t.Fatalf("TokenPath failed: %v", err)
	}
	if filepath.Base(path) != "default.json" {
		t.Errorf("Expected 'default.json', got %s", filepath.Base(path))
	}
}

func TestCredentialFromToken(t *testing.T) {
	if CredentialFromToken(nil) != nil {
		t.Error("Expected nil credential for nil token")
	}

	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cred := CredentialFromToken(&oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       expiry,
	})
	if cred.AccessToken != "access" || cred.RefreshToken != "refresh" {
		t.Errorf("Unexpected conversion: %+v", cred)
	}
	if !cred.Expiry.Equal(expiry) {
		t.Errorf("Expected expiry %v, got %v", expiry, cred.Expiry)
	}
}

func TestTokenFromCredential(t *testing.T) {
	if TokenFromCredential(nil) != nil {
		t.Error("Expected nil token for nil credential")
	}

	tok := TokenFromCredential(&auth.Credential{AccessToken: "access"})
	if tok.TokenType != "Bearer" {
		t.Errorf("Expected default token type 'Bearer', got %s", tok.TokenType)
	}
	if !tok.Expiry.IsZero() {
		t.Errorf("Expected zero expiry, got %v", tok.Expiry)
	}

	tok = TokenFromCredential(&auth.Credential{AccessToken: "access", TokenType: "MAC"})
	if tok.TokenType != "MAC" {
		t.Errorf("Expected token type 'MAC', got %s", tok.TokenType)
	}
}

func TestAuthURLRequestsOfflineAccess(t *testing.T) {
	url := AuthURL()
	if !strings.Contains(url, "access_type=offline") {
		t.Errorf("Expected offline access in auth URL, got %s", url)
	}
	if !strings.Contains(url, "approval_prompt=force") {
		t.Errorf("Expected forced approval prompt in auth URL, got %s", url)
	}
}

func TestAuthRequiredMessageNamesAccount(t *testing.T) {
	msg := AuthRequiredMessage("work")
	if !strings.Contains(msg, `"work"`) {
		t.Errorf("Expected account name in message, got %s", msg)
	}
	if !strings.Contains(msg, "google_save_auth_code") {
		t.Error("Expected follow-up tool name in message")
	}
}
