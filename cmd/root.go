package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the application
var rootCmd = &cobra.Command{
	Use:   "google-calendar-tasks-mcp",
	Short: "MCP server for Google Calendar, Tasks and Gmail",
	Long: `google-calendar-tasks-mcp exposes Google Calendar, Tasks and Gmail to AI
assistants over the Model Context Protocol (MCP).

OAuth tokens are kept in per-account files that survive restarts and are
written atomically, so an interrupted shutdown never leaves a corrupt or
half-written credential behind.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "google-calendar-tasks-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
