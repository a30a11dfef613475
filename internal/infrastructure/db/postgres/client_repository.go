package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

type ClientRepository struct {
	pool    poolIface
	timeout time.Duration
}

func NewClientRepository(pool poolIface, timeout time.Duration) *ClientRepository {
	return &ClientRepository{pool: pool, timeout: timeout}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	created := *c
	err := r.pool.QueryRow(ctx,
		`INSERT INTO clients (name, email, phone, address) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Name, c.Email, c.Phone, c.Address).Scan(&created.ID)
	if err != nil {
		return nil, storageError("create client", err)
	}
	return &created, nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id int64) (*domain.Client, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var c domain.Client
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, address FROM clients WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address)
	if err != nil {
		return nil, storageError("find client", err)
	}
	return &c, nil
}

func (r *ClientRepository) FindAll(ctx context.Context) ([]*domain.Client, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT id, name, email, phone, address FROM clients ORDER BY id`)
	if err != nil {
		return nil, storageError("list clients", err)
	}
	defer rows.Close()

	clients := []*domain.Client{}
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address); err != nil {
			return nil, storageError("scan client", err)
		}
		clients = append(clients, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate clients", err)
	}
	return clients, nil
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`UPDATE clients SET name = $2, email = $3, phone = $4, address = $5 WHERE id = $1`,
		c.ID, c.Name, c.Email, c.Phone, c.Address)
	if err != nil {
		return nil, storageError("update client", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, storageError("update client", pgx.ErrNoRows)
	}
	updated := *c
	return &updated, nil
}

func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return storageError("delete client", err)
	}
	if tag.RowsAffected() == 0 {
		return storageError("delete client", pgx.ErrNoRows)
	}
	return nil
}
