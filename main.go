package main

import (
	"github.com/andhikapraa/google-calendar-tasks-mcp/cmd"
)

// version will be set by goreleaser during build
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
