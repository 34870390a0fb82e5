// Package calendar_tools provides MCP tools for Google Calendar: listing
// calendars, and listing, creating, updating and deleting events.
package calendar_tools
