package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/clientdesk/clientdesk/internal/infrastructure/config"
)

// NewMigrateCmd creates the migrate subcommand and its up/down/version children.
func NewMigrateCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage PostgreSQL schema migrations",
		Long:  `Apply, roll back or inspect the schema migrations embedded in the binary.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := postgresConfig(cmd, deps)
			if err != nil {
				return err
			}
			cmd.Println("Running migrations...")
			if err := migrateUp(deps, cfg.Postgres.URL); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (drops all tables)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := postgresConfig(cmd, deps)
			if err != nil {
				return err
			}
			return withMigrator(deps, cfg.Postgres.URL, func(m Migrator) error {
				if err := m.Down(); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "roll back migrations").Wrap(err)
				}
				cmd.Println("All migrations rolled back")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := postgresConfig(cmd, deps)
			if err != nil {
				return err
			}
			return withMigrator(deps, cfg.Postgres.URL, func(m Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "read schema version").Wrap(err)
				}
				if dirty {
					cmd.Printf("Schema version: %d (dirty)\n", version)
					return nil
				}
				cmd.Printf("Schema version: %d\n", version)
				return nil
			})
		},
	})

	return cmd
}

func postgresConfig(cmd *cobra.Command, deps *Deps) (*config.Config, error) {
	cfg, _, err := loadConfig(cmd.Context(), cmd, deps)
	if err != nil {
		return nil, err
	}
	if cfg.StoreDriver != config.DriverPostgres {
		return nil, oops.Code("MIGRATE_UNSUPPORTED").
			With("driver", cfg.StoreDriver).
			Errorf("migrations only apply to the %s driver", config.DriverPostgres)
	}
	return cfg, nil
}

func migrateUp(deps *Deps, databaseURL string) error {
	return withMigrator(deps, databaseURL, func(m Migrator) error {
		if err := m.Up(); err != nil {
			return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
		}
		return nil
	})
}

func withMigrator(deps *Deps, databaseURL string, fn func(Migrator) error) (err error) {
	m, err := deps.newMigrator(databaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "open migrator").Wrap(err)
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(m)
}
