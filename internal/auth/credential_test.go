package auth

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialJSONRoundTrip(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	cred := &Credential{
		AccessToken:  "ya29.access",
		RefreshToken: "1//refresh",
		TokenType:    "Bearer",
		Expiry:       expiry,
		Extra: map[string]json.RawMessage{
			"scope":    json.RawMessage(`"openid email"`),
			"id_token": json.RawMessage(`"eyJhbGciOi"`),
		},
	}

	data, err := json.Marshal(cred)
	require.NoError(t, err)

	var decoded Credential
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, cred.AccessToken, decoded.AccessToken)
	assert.Equal(t, cred.RefreshToken, decoded.RefreshToken)
	assert.Equal(t, cred.TokenType, decoded.TokenType)
	assert.True(t, cred.Expiry.Equal(decoded.Expiry))
	assert.Equal(t, json.RawMessage(`"openid email"`), decoded.Extra["scope"])
	assert.Equal(t, json.RawMessage(`"eyJhbGciOi"`), decoded.Extra["id_token"])
}

func TestCredentialMarshalOmitsEmptyFields(t *testing.T) {
	cred := &Credential{AccessToken: "tok"}
	data, err := json.Marshal(cred)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Contains(t, fields, "access_token")
	assert.NotContains(t, fields, "refresh_token")
	assert.NotContains(t, fields, "token_type")
	assert.NotContains(t, fields, "expiry")
}

func TestCredentialUnmarshalBadExpiry(t *testing.T) {
	var cred Credential
	err := json.Unmarshal([]byte(`{"access_token":"tok","expiry":"not-a-time"}`), &cred)
	require.Error(t, err)
}

func TestExpiredAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		cred    *Credential
		expired bool
	}{
		{
			name:    "nil credential",
			cred:    nil,
			expired: true,
		},
		{
			name:    "no access token",
			cred:    &Credential{RefreshToken: "r"},
			expired: true,
		},
		{
			name:    "no expiry reported",
			cred:    &Credential{AccessToken: "tok"},
			expired: false,
		},
		{
			name:    "expires in 6 minutes",
			cred:    &Credential{AccessToken: "tok", Expiry: now.Add(6 * time.Minute)},
			expired: false,
		},
		{
			name:    "expires in 4 minutes",
			cred:    &Credential{AccessToken: "tok", Expiry: now.Add(4 * time.Minute)},
			expired: true,
		},
		{
			name:    "exactly at the skew boundary",
			cred:    &Credential{AccessToken: "tok", Expiry: now.Add(refreshSkew)},
			expired: true,
		},
		{
			name:    "already expired",
			cred:    &Credential{AccessToken: "tok", Expiry: now.Add(-time.Hour)},
			expired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, tt.cred.ExpiredAt(now))
		})
	}
}

func TestMerge(t *testing.T) {
	existing := &Credential{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Extra: map[string]json.RawMessage{
			"scope":    json.RawMessage(`"calendar"`),
			"id_token": json.RawMessage(`"old"`),
		},
	}

	t.Run("incoming fields win", func(t *testing.T) {
		incoming := &Credential{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			TokenType:    "MAC",
		}
		merged := Merge(existing, incoming)
		assert.Equal(t, "new-access", merged.AccessToken)
		assert.Equal(t, "new-refresh", merged.RefreshToken)
		assert.Equal(t, "MAC", merged.TokenType)
	})

	t.Run("refresh token sticks when omitted", func(t *testing.T) {
		incoming := &Credential{AccessToken: "new-access"}
		merged := Merge(existing, incoming)
		assert.Equal(t, "new-access", merged.AccessToken)
		assert.Equal(t, "old-refresh", merged.RefreshToken)
		assert.Equal(t, "Bearer", merged.TokenType)
	})

	t.Run("extra merges per key", func(t *testing.T) {
		incoming := &Credential{
			AccessToken: "new-access",
			Extra: map[string]json.RawMessage{
				"id_token": json.RawMessage(`"new"`),
			},
		}
		merged := Merge(existing, incoming)
		assert.Equal(t, json.RawMessage(`"calendar"`), merged.Extra["scope"])
		assert.Equal(t, json.RawMessage(`"new"`), merged.Extra["id_token"])
	})

	t.Run("nil existing returns incoming", func(t *testing.T) {
		incoming := &Credential{AccessToken: "a"}
		assert.Same(t, incoming, Merge(nil, incoming))
	})

	t.Run("nil incoming returns existing", func(t *testing.T) {
		assert.Same(t, existing, Merge(existing, nil))
	})

	t.Run("merge does not mutate inputs", func(t *testing.T) {
		incoming := &Credential{AccessToken: "new-access"}
		_ = Merge(existing, incoming)
		assert.Equal(t, "", incoming.RefreshToken)
		assert.Equal(t, "old-access", existing.AccessToken)
	})
}

func TestHasAccessToken(t *testing.T) {
	var nilCred *Credential
	assert.False(t, nilCred.HasAccessToken())
	assert.False(t, (&Credential{}).HasAccessToken())
	assert.True(t, (&Credential{AccessToken: "tok"}).HasAccessToken())
}
