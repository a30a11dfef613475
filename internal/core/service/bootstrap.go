package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clientdesk/clientdesk/internal/core/domain"
	"github.com/clientdesk/clientdesk/internal/core/ports"
)

// Bootstrap defaults.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"
)

// BootstrapOptions names the administrator account ensured at start-up.
type BootstrapOptions struct {
	AdminUsername string
	AdminPassword string
}

// Bootstrap ensures the ADMIN and USER roles and the administrator account
// exist. Running it again, or from several processes at once, never creates
// duplicates and never touches an existing administrator.
func Bootstrap(
	ctx context.Context,
	roles ports.RoleRepository,
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	opts BootstrapOptions,
	log zerolog.Logger,
) error {
	if opts.AdminUsername == "" {
		opts.AdminUsername = DefaultAdminUsername
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = DefaultAdminPassword
	}

	admin, err := roles.GetOrCreate(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("bootstrap: role %s: %w", domain.RoleAdmin, err)
	}
	if _, err := roles.GetOrCreate(ctx, domain.RoleUser); err != nil {
		return fmt.Errorf("bootstrap: role %s: %w", domain.RoleUser, err)
	}

	_, err = users.FindByUsername(ctx, opts.AdminUsername)
	switch {
	case err == nil:
		log.Debug().Str("username", opts.AdminUsername).Msg("administrator already present")
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("bootstrap: lookup administrator: %w", err)
	}

	hash, err := hasher.Hash(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap: hash password: %w", err)
	}

	now := time.Now().UTC()
	acct := &domain.Account{
		Username:     opts.AdminUsername,
		PasswordHash: hash,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	acct.AddRole(*admin)

	if _, err := users.Save(ctx, acct); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			log.Debug().Str("username", opts.AdminUsername).Msg("administrator created concurrently")
			return nil
		}
		return fmt.Errorf("bootstrap: save administrator: %w", err)
	}

	log.Info().Str("username", opts.AdminUsername).Msg("administrator account created")
	return nil
}
