// Package gmail_tools provides MCP tools for Gmail: listing and reading
// messages, sending email, and managing labels and archiving.
package gmail_tools
