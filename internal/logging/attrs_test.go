package logging

import (
	"log/slog"
	"testing"
)

func TestErrWithNilIsSafe(t *testing.T) {
	attr := Err(nil)
	if attr.Key != "" {
		t.Errorf("Expected empty group for nil error, got key %q", attr.Key)
	}
}

func TestErrWithError(t *testing.T) {
	attr := Err(errTest)
	if attr.Key != KeyError {
		t.Errorf("Expected key %q, got %q", KeyError, attr.Key)
	}
	if attr.Value.Kind() != slog.KindString {
		t.Errorf("Expected string value, got %v", attr.Value.Kind())
	}
}

var errTest = &testError{}

type testError struct{}

func (e *testError) Error() string { return "test error" }

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"empty", "", "<empty>"},
		{"short", "abc", "[token:3 chars]"},
		{"long", "ya29.a0AfH6SMC7naXl", "[token:19 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeToken(tt.token)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAttributeHelpers(t *testing.T) {
	if Operation("save").Key != KeyOperation {
		t.Error("Operation attr has wrong key")
	}
	if Service("calendar").Key != KeyService {
		t.Error("Service attr has wrong key")
	}
	if Account("default").Key != KeyAccount {
		t.Error("Account attr has wrong key")
	}
	if Tool("calendar_list_events").Key != KeyTool {
		t.Error("Tool attr has wrong key")
	}
	if Status(StatusSuccess).Key != KeyStatus {
		t.Error("Status attr has wrong key")
	}
}
