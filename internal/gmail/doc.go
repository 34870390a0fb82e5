// Package gmail wraps the Gmail API for MCP tool usage.
package gmail
