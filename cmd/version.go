package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("google-calendar-tasks-mcp version %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
		},
	}
}
