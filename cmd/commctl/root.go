package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/construcosta/commission-engine/app"
	"github.com/construcosta/commission-engine/config"
	"github.com/construcosta/commission-engine/core"
)

type rootOptions struct {
	configPath string
	dbPath     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "commctl",
		Short: "Delivery commission engine CLI",
		Long: `commctl computes delivery commissions, posts them, and exports
monthly reports using the engine's sqlite database.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(computeCmd(opts))
	cmd.AddCommand(postCmd(opts))
	cmd.AddCommand(statsCmd(opts))
	cmd.AddCommand(reportCmd(opts))
	cmd.AddCommand(scenarioCmd(opts))
	cmd.AddCommand(remindCmd(opts))

	return cmd
}

// open loads config and builds the app. Callers close it.
func (o *rootOptions) open(cmd *cobra.Command) (*app.App, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.StoragePath = o.dbPath
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if o.verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return app.New(cmd.Context(), cfg, logger, nil)
}

// periodFlag parses --period, defaulting to the current month.
func periodFlag(cmd *cobra.Command, a *app.App) (core.Period, error) {
	s, _ := cmd.Flags().GetString("period")
	if s == "" {
		return core.PeriodOf(a.Clock(), a.Commissions.Settings().Location), nil
	}
	return core.ParsePeriod(s)
}

