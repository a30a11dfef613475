package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

type RoleRepository struct {
	pool    poolIface
	timeout time.Duration
}

func NewRoleRepository(pool poolIface, timeout time.Duration) *RoleRepository {
	return &RoleRepository{pool: pool, timeout: timeout}
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var role domain.Role
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM roles WHERE name = $1`, name).Scan(&role.ID, &role.Name)
	if err != nil {
		return nil, storageError("find role", err)
	}
	return &role, nil
}

// Save inserts role, or renames it when ID is already set.
func (r *RoleRepository) Save(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	id := role.ID
	if id == "" {
		id = uuid.NewString()
	}

	var saved domain.Role
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (id, name) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name`,
		id, role.Name).Scan(&saved.ID, &saved.Name)
	if err != nil {
		return nil, storageError("save role", err)
	}
	return &saved, nil
}

// GetOrCreate relies on the unique name constraint: the no-op update makes
// RETURNING yield the existing row when another writer got there first.
func (r *RoleRepository) GetOrCreate(ctx context.Context, name string) (*domain.Role, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var role domain.Role
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (id, name) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name`,
		uuid.NewString(), name).Scan(&role.ID, &role.Name)
	if err != nil {
		return nil, storageError("get or create role", err)
	}
	return &role, nil
}
