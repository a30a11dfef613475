package ports

import (
	"context"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

// ClientInput carries the editable fields of a client record.
type ClientInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// ClientService defines use-case operations on client records.
type ClientService interface {
	List(ctx context.Context) ([]*domain.Client, error)
	Get(ctx context.Context, id int64) (*domain.Client, error)
	Create(ctx context.Context, in ClientInput) (*domain.Client, error)
	Update(ctx context.Context, id int64, in ClientInput) (*domain.Client, error)
	Delete(ctx context.Context, id int64) error
}
