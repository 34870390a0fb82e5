// Package calendar wraps the Google Calendar API for MCP tool usage.
package calendar
