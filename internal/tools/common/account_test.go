package common

import "testing"

func TestGetAccountFromArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		expected string
	}{
		{
			name:     "no account specified returns default",
			args:     map[string]interface{}{},
			expected: "default",
		},
		{
			name: "account specified returns account",
			args: map[string]interface{}{
				"account": "work",
			},
			expected: "work",
		},
		{
			name: "empty account returns default",
			args: map[string]interface{}{
				"account": "",
			},
			expected: "default",
		},
		{
			name: "account with other params",
			args: map[string]interface{}{
				"account": "personal",
				"other":   "value",
			},
			expected: "personal",
		},
		{
			name:     "nil args returns default",
			args:     nil,
			expected: "default",
		},
		{
			name: "non-string account type returns default",
			args: map[string]interface{}{
				"account": 123,
			},
			expected: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetAccountFromArgs(tt.args); got != tt.expected {
				t.Errorf("GetAccountFromArgs() = %q, want %q", got, tt.expected)
			}
		})
	}
}
