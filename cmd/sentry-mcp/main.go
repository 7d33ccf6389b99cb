package main

import (
	"context"
	"fmt"
	"os"

	"github.com/utapyngo/sentry-mcp/internal/cli"
	cliframework "github.com/urfave/cli/v3"
)

const version = "0.2.0"

func main() {
	app := &cliframework.Command{
		Name:    "sentry-mcp",
		Usage:   "MCP server for inspecting Sentry issues and traces",
		Version: version,
		Commands: []*cliframework.Command{
			cli.ServeCommand(),
			cli.DoctorCommand(version),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "❌ error: %v\n", err)
		os.Exit(1)
	}
}
