package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/clientdesk/clientdesk/internal/infrastructure/config"
	"github.com/clientdesk/clientdesk/pkg/logger"
)

// NewRootCmd creates the root command for the clientdesk CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&Deps{})
}

func newRootCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clientdesk",
		Short: "clientdesk - back-office accounts and client records",
		Long: `clientdesk serves the back-office HTTP API: sign-in, user
administration and client records, backed by PostgreSQL, MongoDB or memory.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd(deps))
	cmd.AddCommand(NewSeedCmd(deps))
	cmd.AddCommand(NewMigrateCmd(deps))

	return cmd
}

// loadConfig reads and validates the environment, then initialises the
// process logger from it.
func loadConfig(ctx context.Context, cmd *cobra.Command, deps *Deps) (*config.Config, zerolog.Logger, error) {
	cfg, err := deps.loadConfig(ctx)
	if err != nil {
		return nil, zerolog.Logger{}, oops.Code("CONFIG_INVALID").With("operation", "load configuration").Wrap(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "clientdesk",
		Output:  cmd.ErrOrStderr(),
	})
	return cfg, log, nil
}
