package ports

import (
	"context"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

// ClientRepository defines persistence operations for client records.
type ClientRepository interface {
	// Create assigns the next ID to c.
	Create(ctx context.Context, c *domain.Client) (*domain.Client, error)
	FindByID(ctx context.Context, id int64) (*domain.Client, error)
	FindAll(ctx context.Context) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) (*domain.Client, error)
	Delete(ctx context.Context, id int64) error
}
