// Package tasks_tools provides MCP tools for Google Tasks: managing task
// lists and the tasks within them, including completion and cleanup.
package tasks_tools
