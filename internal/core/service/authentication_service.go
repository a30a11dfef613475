package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clientdesk/clientdesk/internal/core/domain"
	"github.com/clientdesk/clientdesk/internal/core/ports"
)

// fallbackDummyHash is verified when no account matches, so unknown
// usernames cost the same as known ones. It never matches a password.
//
//nolint:gosec // G101: not a credential.
const fallbackDummyHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// AuthenticationService validates username/password pairs.
type AuthenticationService struct {
	users     ports.UserRepository
	hasher    ports.PasswordHasher
	log       zerolog.Logger
	dummyHash string
}

// NewAuthenticationService returns an AuthenticationService. The dummy hash
// used for unknown usernames is derived with hasher so both paths run the
// same key derivation parameters.
func NewAuthenticationService(users ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *AuthenticationService {
	dummy, err := hasher.Hash("clientdesk-dummy-password")
	if err != nil {
		dummy = fallbackDummyHash
	}
	return &AuthenticationService{users: users, hasher: hasher, log: log, dummyHash: dummy}
}

// Authenticate reports whether the credentials belong to an enabled account.
func (s *AuthenticationService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	acct, err := s.Principal(ctx, username, password)
	if err != nil {
		return false, err
	}
	return acct != nil, nil
}

// Principal returns the enabled account matching the credentials, or nil.
// Surrounding whitespace is stripped from both inputs before the check.
// Only storage failures are returned as errors.
func (s *AuthenticationService) Principal(ctx context.Context, username, password string) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	trimmed := strings.TrimSpace(password)

	acct, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		// Mirror the verify count of a known account below.
		_, _ = s.hasher.Verify(trimmed, s.dummyHash)
		if trimmed != password {
			_, _ = s.hasher.Verify(password, s.dummyHash)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	ok := s.verify(acct, trimmed)
	if !ok && trimmed != password {
		// Accounts registered with padded passwords.
		ok = s.verify(acct, password)
	}

	if !ok {
		s.log.Debug().Str("username", username).Msg("credential mismatch")
		return nil, nil
	}
	if !acct.Enabled {
		s.log.Info().Str("username", username).Msg("login refused for disabled account")
		return nil, nil
	}
	return acct, nil
}

func (s *AuthenticationService) verify(acct *domain.Account, password string) bool {
	ok, err := s.hasher.Verify(password, acct.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("account_id", acct.ID).Msg("stored password hash is unreadable")
		return false
	}
	return ok
}
