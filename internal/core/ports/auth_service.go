package ports

import (
	"context"
	"time"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns (false, nil) on mismatch and an error only when the
	// stored hash cannot be parsed.
	Verify(password, hash string) (bool, error)
}

// Authenticator checks credentials against the account store.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
	// Principal returns the matching enabled account, or nil when the
	// credentials are rejected.
	Principal(ctx context.Context, username, password string) (*domain.Account, error)
}

// Registrar creates and lists accounts.
type Registrar interface {
	Register(ctx context.Context, username, password, confirmPassword string) (*domain.Account, error)
	Accounts(ctx context.Context) ([]*domain.Account, error)
}

// SessionManager issues and validates session tokens.
type SessionManager interface {
	Issue(account *domain.Account) (token string, expiresAt time.Time, err error)
	Parse(ctx context.Context, token string) (*domain.Principal, error)
	Revoke(ctx context.Context, p *domain.Principal) error
}

// TokenDenylist remembers revoked session token IDs until they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
