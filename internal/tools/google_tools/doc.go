// Package google_tools provides MCP tools for the Google OAuth authorization
// flow: obtaining the consent URL, exchanging an authorization code for
// tokens, inspecting authorization status, and clearing stored credentials.
package google_tools
