package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

const accountColumns = `id, username, password_hash, enabled, created_at, updated_at`

type AccountRepository struct {
	pool    poolIface
	timeout time.Duration
}

func NewAccountRepository(pool poolIface, timeout time.Duration) *AccountRepository {
	return &AccountRepository{pool: pool, timeout: timeout}
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var a domain.Account
	err := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Enabled, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, storageError("find account", err)
	}

	roles, err := r.rolesOf(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Roles = roles
	return &a, nil
}

func (r *AccountRepository) rolesOf(ctx context.Context, accountID string) ([]domain.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.name FROM roles r
		 JOIN account_roles ar ON ar.role_id = r.id
		 WHERE ar.account_id = $1 ORDER BY r.name`, accountID)
	if err != nil {
		return nil, storageError("load account roles", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, storageError("scan account role", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate account roles", err)
	}
	return roles, nil
}

// Save inserts the account when it has no ID and updates it otherwise. The
// account's role links are replaced in the same transaction.
func (r *AccountRepository) Save(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	saved := *a
	saved.Roles = append([]domain.Role(nil), a.Roles...)
	now := time.Now().UTC()
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if saved.ID == "" {
			saved.ID = uuid.NewString()
			if _, err := tx.Exec(ctx,
				`INSERT INTO accounts (`+accountColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
				saved.ID, saved.Username, saved.PasswordHash, saved.Enabled, saved.CreatedAt, saved.UpdatedAt); err != nil {
				return err
			}
		} else {
			tag, err := tx.Exec(ctx,
				`UPDATE accounts SET username = $2, password_hash = $3, enabled = $4, updated_at = $5 WHERE id = $1`,
				saved.ID, saved.Username, saved.PasswordHash, saved.Enabled, saved.UpdatedAt)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return pgx.ErrNoRows
			}
			if _, err := tx.Exec(ctx, `DELETE FROM account_roles WHERE account_id = $1`, saved.ID); err != nil {
				return err
			}
		}

		for _, role := range saved.Roles {
			if _, err := tx.Exec(ctx,
				`INSERT INTO account_roles (account_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				saved.ID, role.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageError("save account", err)
	}
	return &saved, nil
}

func (r *AccountRepository) FindAll(ctx context.Context) ([]*domain.Account, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY username`)
	if err != nil {
		return nil, storageError("list accounts", err)
	}

	var accounts []*domain.Account
	byID := make(map[string]*domain.Account)
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Enabled, &a.CreatedAt, &a.UpdatedAt); err != nil {
			rows.Close()
			return nil, storageError("scan account", err)
		}
		accounts = append(accounts, &a)
		byID[a.ID] = &a
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate accounts", err)
	}

	links, err := r.pool.Query(ctx,
		`SELECT ar.account_id, r.id, r.name FROM account_roles ar
		 JOIN roles r ON r.id = ar.role_id ORDER BY r.name`)
	if err != nil {
		return nil, storageError("list account roles", err)
	}
	defer links.Close()

	for links.Next() {
		var accountID string
		var role domain.Role
		if err := links.Scan(&accountID, &role.ID, &role.Name); err != nil {
			return nil, storageError("scan account role", err)
		}
		if a, ok := byID[accountID]; ok {
			a.Roles = append(a.Roles, role)
		}
	}
	if err := links.Err(); err != nil {
		return nil, storageError("iterate account roles", err)
	}
	return accounts, nil
}
