package main

import (
	"github.com/spf13/cobra"

	"github.com/clientdesk/clientdesk/pkg/logger"
)

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Ensure the default roles and administrator exist",
		Long: `Create the ADMIN and USER roles and the administrator account
(ADMIN_USERNAME / ADMIN_PASSWORD) when missing. Existing data is never
modified, so seeding is safe to repeat.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, _, err := loadConfig(ctx, cmd, deps)
			if err != nil {
				return err
			}

			st, err := openStores(ctx, cfg, logger.Component("store"))
			if err != nil {
				return err
			}
			defer st.Close()

			if err := bootstrap(ctx, cfg, st, newHasher(cfg), logger.Component("bootstrap")); err != nil {
				return err
			}

			cmd.Printf("Administrator %q ready\n", cfg.Admin.Username)
			return nil
		},
	}
}
