package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/clientdesk/clientdesk/internal/api"
	"github.com/clientdesk/clientdesk/internal/api/handler"
	"github.com/clientdesk/clientdesk/internal/core/service"
	"github.com/clientdesk/clientdesk/internal/infrastructure/config"
	"github.com/clientdesk/clientdesk/pkg/logger"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd(deps *Deps) *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API. The ADMIN and USER roles and the administrator
account are ensured before the server accepts requests.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, deps, autoMigrate)
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", true, "apply pending PostgreSQL migrations before serving")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, deps *Deps, autoMigrate bool) error {
	cfg, log, err := loadConfig(ctx, cmd, deps)
	if err != nil {
		return err
	}

	if autoMigrate && cfg.StoreDriver == config.DriverPostgres {
		if err := migrateUp(deps, cfg.Postgres.URL); err != nil {
			return err
		}
	}

	st, err := openStores(ctx, cfg, logger.Component("store"))
	if err != nil {
		return err
	}
	defer st.Close()

	hasher := newHasher(cfg)
	if err := bootstrap(ctx, cfg, st, hasher, logger.Component("bootstrap")); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpLog := logger.Component("http")
	e, err := api.NewRouter(api.Dependencies{
		Authenticator: service.NewAuthenticationService(st.users, hasher, httpLog),
		Registrar:     service.NewRegistrationService(st.users, st.roles, hasher, httpLog),
		Sessions:      service.NewSessionService(cfg.Session.Secret, cfg.Session.TTL, st.denylist),
		Clients:       service.NewClientService(st.clients, httpLog),
		Policy:        service.NewAuthorizationPolicy(service.DefaultAccessRules()...),
		Health:        st.health,
		Cookie:        handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure},
		Registry:      reg,
		Logger:        httpLog,
	})
	if err != nil {
		return oops.Code("SERVER_INIT_FAILED").With("operation", "build router").Wrap(err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("driver", cfg.StoreDriver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("SERVER_FAILED").With("port", cfg.Port).Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}

func newHasher(cfg *config.Config) *service.PasswordHasher {
	return service.NewPasswordHasher(service.Argon2Params{
		Time:    cfg.Argon2.Time,
		Memory:  cfg.Argon2.Memory,
		Threads: cfg.Argon2.Threads,
	})
}

func bootstrap(ctx context.Context, cfg *config.Config, st *stores, hasher *service.PasswordHasher, log zerolog.Logger) error {
	err := service.Bootstrap(ctx, st.roles, st.users, hasher, service.BootstrapOptions{
		AdminUsername: cfg.Admin.Username,
		AdminPassword: cfg.Admin.Password,
	}, log)
	if err != nil {
		return oops.Code("BOOTSTRAP_FAILED").With("operation", "seed roles and administrator").Wrap(err)
	}
	return nil
}
