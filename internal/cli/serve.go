package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/utapyngo/sentry-mcp/internal/mcpserver"
	"github.com/utapyngo/sentry-mcp/internal/sentryapi"
)

// ServeCommand returns the CLI command definition for the 'serve'
// subcommand, which runs the MCP server on stdio.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the MCP server on stdio",
		Description: `Starts the MCP server on stdio, backed by the Sentry API.
Requires SENTRY_AUTH_TOKEN in the environment. The backend host comes
from --host, SENTRY_HOST, or the config file (in that order).`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Sentry API hostname",
			},
			&cli.StringFlag{
				Name:  "timeout",
				Usage: "Per-request timeout (e.g. 30s)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a config file (default: discovered " + ConfigFileName + ")",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable verbose logging",
			},
		},
		Action: runServe,
	}
}

// resolveConfig merges defaults, the config file, the environment, and
// CLI flags, in increasing order of precedence.
func resolveConfig(cmd *cli.Command) (*Config, error) {
	cfg := DefaultConfig()

	path := cmd.String("config")
	if path == "" {
		discovered, err := FindProjectConfig()
		if err != nil {
			return nil, err
		}
		path = discovered
	}
	if path != "" {
		fileCfg, err := LoadConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		if fileCfg.Host != "" {
			cfg.Host = fileCfg.Host
		}
		if fileCfg.RequestTimeout != "" {
			cfg.RequestTimeout = fileCfg.RequestTimeout
		}
		cfg.Verbose = cfg.Verbose || fileCfg.Verbose
	}

	if host := os.Getenv("SENTRY_HOST"); host != "" && cmd.String("host") == "" {
		cfg.Host = host
	}
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if timeout := cmd.String("timeout"); timeout != "" {
		cfg.RequestTimeout = timeout
	}
	cfg.Verbose = cfg.Verbose || cmd.Bool("verbose")

	return cfg, nil
}

// runServe wires together the logger, API client, and MCP server, then
// blocks on stdio until shutdown.
func runServe(cliCtx context.Context, cmd *cli.Command) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := NewLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failure is unactionable

	client, err := sentryapi.New(sentryapi.Config{
		Host:      cfg.Host,
		AuthToken: os.Getenv("SENTRY_AUTH_TOKEN"),
		Timeout:   cfg.Timeout(),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	server, err := mcpserver.NewServer(client, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cliCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting sentry-mcp server",
		zap.String("host", cfg.Host),
		zap.Duration("timeout", cfg.Timeout()))

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
