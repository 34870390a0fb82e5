// Package server holds the shared runtime state of the MCP server: the
// per-account credential managers, lazily created Google API clients, and the
// dedicated metrics listener used by the HTTP transport.
package server
