package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clientdesk/clientdesk/internal/core/domain"
	"github.com/clientdesk/clientdesk/internal/core/ports"
)

// RegistrationService creates accounts with the default USER role.
type RegistrationService struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewRegistrationService(users ports.UserRepository, roles ports.RoleRepository, hasher ports.PasswordHasher, log zerolog.Logger) *RegistrationService {
	return &RegistrationService{users: users, roles: roles, hasher: hasher, log: log}
}

// Register creates an enabled account holding the USER role.
//
// It returns domain.ErrUsernameExists when the username is taken, including
// when a concurrent registration wins the store's uniqueness constraint, and
// domain.ErrPasswordMismatch when the confirmation differs from password.
// A blank or whitespace-padded username is a *domain.ValidationError.
func (s *RegistrationService) Register(ctx context.Context, username, password, confirmPassword string) (*domain.Account, error) {
	// Authenticate trims usernames, so a padded one could never log in.
	switch {
	case strings.TrimSpace(username) == "":
		return nil, domain.NewValidationError("username", "username is required")
	case strings.TrimSpace(username) != username:
		return nil, domain.NewValidationError("username", "username must not start or end with whitespace")
	}

	_, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, domain.ErrUsernameExists
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("register: lookup username: %w", err)
	}

	if password != confirmPassword {
		return nil, domain.ErrPasswordMismatch
	}

	role, err := s.roles.GetOrCreate(ctx, domain.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("register: default role: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	acct := &domain.Account{
		Username:     username,
		PasswordHash: hash,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	acct.AddRole(*role)

	saved, err := s.users.Save(ctx, acct)
	if errors.Is(err, domain.ErrConflict) {
		return nil, domain.ErrUsernameExists
	}
	if err != nil {
		return nil, fmt.Errorf("register: save account: %w", err)
	}

	s.log.Info().Str("account_id", saved.ID).Str("username", saved.Username).Msg("account registered")
	return saved, nil
}

// Accounts lists every account.
func (s *RegistrationService) Accounts(ctx context.Context) ([]*domain.Account, error) {
	accounts, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}
