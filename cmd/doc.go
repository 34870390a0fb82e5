// Package cmd implements the command-line interface for the Google Calendar,
// Tasks and Gmail MCP server.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide tools for AI assistants
//   - auth: Authorize a Google account from the terminal
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
