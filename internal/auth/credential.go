package auth

import (
	"encoding/json"
	"fmt"
	"time"
)

// refreshSkew is subtracted from the expiry when deciding whether a
// credential needs a refresh, so tokens are renewed before they actually
// lapse mid-request.
const refreshSkew = 5 * time.Minute

// Credential is an OAuth access/refresh token pair plus provider metadata.
//
// Provider-specific fields that this package does not model (scope, id_token
// and friends) are preserved verbatim in Extra so that a load/save cycle
// never drops them. Readers outside the Manager must treat a Credential as
// immutable; the Manager replaces the whole object on change.
type Credential struct {
	AccessToken  string
	RefreshToken string
	TokenType    string

	// Expiry is the absolute expiry time of the access token. A zero
	// Expiry means the provider did not report one; such tokens are
	// treated as valid until proven otherwise.
	Expiry time.Time

	// Extra holds provider fields outside the known set, keyed by their
	// JSON name.
	Extra map[string]json.RawMessage
}

// knownCredentialFields are the JSON keys handled explicitly; everything else
// round-trips through Extra.
var knownCredentialFields = map[string]bool{
	"access_token":  true,
	"refresh_token": true,
	"token_type":    true,
	"expiry":        true,
}

// MarshalJSON serializes the credential including any preserved extra fields.
func (c *Credential) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.Extra)+4)
	for k, v := range c.Extra {
		if knownCredentialFields[k] {
			continue
		}
		out[k] = v
	}

	put := func(key string, v interface{}) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", key, err)
		}
		out[key] = raw
		return nil
	}

	if err := put("access_token", c.AccessToken); err != nil {
		return nil, err
	}
	if c.RefreshToken != "" {
		if err := put("refresh_token", c.RefreshToken); err != nil {
			return nil, err
		}
	}
	if c.TokenType != "" {
		if err := put("token_type", c.TokenType); err != nil {
			return nil, err
		}
	}
	if !c.Expiry.IsZero() {
		if err := put("expiry", c.Expiry.Format(time.RFC3339Nano)); err != nil {
			return nil, err
		}
	}

	return json.Marshal(out)
}

// UnmarshalJSON parses a credential, stashing unknown fields in Extra.
func (c *Credential) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*c = Credential{}
	for key, raw := range fields {
		switch key {
		case "access_token":
			if err := json.Unmarshal(raw, &c.AccessToken); err != nil {
				return fmt.Errorf("parsing access_token: %w", err)
			}
		case "refresh_token":
			if err := json.Unmarshal(raw, &c.RefreshToken); err != nil {
				return fmt.Errorf("parsing refresh_token: %w", err)
			}
		case "token_type":
			if err := json.Unmarshal(raw, &c.TokenType); err != nil {
				return fmt.Errorf("parsing token_type: %w", err)
			}
		case "expiry":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("parsing expiry: %w", err)
			}
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return fmt.Errorf("parsing expiry timestamp: %w", err)
			}
			c.Expiry = t
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]json.RawMessage)
			}
			c.Extra[key] = raw
		}
	}

	return nil
}

// HasAccessToken reports whether the credential carries an access token.
func (c *Credential) HasAccessToken() bool {
	return c != nil && c.AccessToken != ""
}

// ExpiredAt reports whether the credential needs a refresh as of now.
// A credential expires refreshSkew before its reported expiry. A credential
// without a reported expiry counts as expired only when it also has no
// access token; offline-access tokens with no expiry stay valid.
func (c *Credential) ExpiredAt(now time.Time) bool {
	if c == nil || c.AccessToken == "" {
		return true
	}
	if c.Expiry.IsZero() {
		return false
	}
	return !now.Before(c.Expiry.Add(-refreshSkew))
}

// Merge combines a freshly obtained partial credential with the previously
// persisted one. Fields from incoming win, except the refresh token: once a
// refresh token has been observed it is retained even when a later refresh
// response omits one, since many refresh exchanges only return a new access
// token. Extra fields merge per key, incoming winning.
func Merge(existing, incoming *Credential) *Credential {
	if existing == nil {
		return incoming
	}
	if incoming == nil {
		return existing
	}

	merged := *incoming
	if merged.RefreshToken == "" {
		merged.RefreshToken = existing.RefreshToken
	}
	if merged.TokenType == "" {
		merged.TokenType = existing.TokenType
	}

	if len(existing.Extra) > 0 {
		extra := make(map[string]json.RawMessage, len(existing.Extra)+len(incoming.Extra))
		for k, v := range existing.Extra {
			extra[k] = v
		}
		for k, v := range incoming.Extra {
			extra[k] = v
		}
		merged.Extra = extra
	}

	return &merged
}
