package ports

import (
	"context"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

// UserRepository persists accounts keyed by username.
type UserRepository interface {
	// FindByUsername returns domain.ErrNotFound when no account has the exact username.
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	// Save inserts the account when its ID is empty and updates it by ID otherwise.
	// A username already taken by another account yields domain.ErrConflict.
	Save(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindAll(ctx context.Context) ([]*domain.Account, error)
}

// RoleRepository persists named roles.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	Save(ctx context.Context, role *domain.Role) (*domain.Role, error)
	// GetOrCreate returns the named role, creating it if needed. Concurrent
	// callers with the same name observe a single role.
	GetOrCreate(ctx context.Context, name string) (*domain.Role, error)
}
