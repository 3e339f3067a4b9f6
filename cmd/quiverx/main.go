// Command quiverx serves and inspects the cross-market arbitrage research
// dashboard.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/alanyoungcy/quiverx/internal/app"
	"github.com/alanyoungcy/quiverx/internal/config"
	"github.com/alanyoungcy/quiverx/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "quiverx",
		Short:         "Cross-market arbitrage research dashboard",
		Long:          "QuiverX ranks arbitrage opportunities across prediction markets, options and perpetuals, and serves the research dashboard API.",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to TOML configuration file (defaults + QUIVERX_* env when empty)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log_level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored table output")

	root.AddCommand(
		newServeCmd(opts),
		newRankCmd(opts),
		newStatsCmd(opts),
		newExportCmd(opts),
		newSeedCmd(opts),
	)
	return root
}

// bootstrap loads and validates configuration and builds the logger.
func bootstrap(opts *rootOptions) (*config.Config, *slog.Logger, func() error, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	logger, closeLog := logging.New(cfg.Log, cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, closeLog, nil
}

// withApp bootstraps, wires an App and runs fn with a signal-aware context.
func withApp(cmd *cobra.Command, opts *rootOptions, req app.Requirements, fn func(context.Context, *config.Config, *app.App) error) error {
	cfg, logger, closeLog, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, req, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, cfg, a)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
