// Package google provides OAuth2 authentication for the Google APIs used by
// this server (Calendar, Tasks, Gmail).
//
// Token persistence is delegated to the credential manager in internal/auth;
// this package supplies the OAuth configuration, the refresh exchange, the
// token-change notification plumbing, and an HTTP client factory that the
// service clients build on.
package google
