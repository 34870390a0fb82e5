// Package tasks wraps the Google Tasks API for MCP tool usage.
package tasks
