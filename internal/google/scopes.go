package google

// DefaultOAuthScopes are the Google OAuth scopes required for full MCP
// functionality. They are used consistently for every OAuth configuration in
// the application.
//
// The scopes provide access to:
//   - Google Calendar: full access
//   - Google Tasks: full access
//   - Gmail: read, modify, send
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Calendar scope
	"https://www.googleapis.com/auth/calendar",

	// Google Tasks scope
	"https://www.googleapis.com/auth/tasks",

	// Gmail scopes
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.send",
}
