package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clientdesk/clientdesk/internal/core/domain"
	"github.com/clientdesk/clientdesk/internal/core/ports"
)

type ClientService struct {
	repo   ports.ClientRepository
	logger zerolog.Logger
}

func NewClientService(repo ports.ClientRepository, logger zerolog.Logger) *ClientService {
	return &ClientService{repo: repo, logger: logger}
}

func (s *ClientService) List(ctx context.Context) ([]*domain.Client, error) {
	clients, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (s *ClientService) Get(ctx context.Context, id int64) (*domain.Client, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get client %d: %w", id, err)
	}
	return c, nil
}

// Create stores a new client; the store assigns its ID.
func (s *ClientService) Create(ctx context.Context, in ports.ClientInput) (*domain.Client, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}

	c, err := s.repo.Create(ctx, &domain.Client{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.logger.Info().Int64("client_id", c.ID).Msg("client created")
	return c, nil
}

// Update overwrites every editable field of an existing client.
func (s *ClientService) Update(ctx context.Context, id int64, in ports.ClientInput) (*domain.Client, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update client %d: %w", id, err)
	}

	existing.Name = in.Name
	existing.Email = in.Email
	existing.Phone = in.Phone
	existing.Address = in.Address

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("update client %d: %w", id, err)
	}

	s.logger.Info().Int64("client_id", id).Msg("client updated")
	return updated, nil
}

func (s *ClientService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete client %d: %w", id, err)
	}
	s.logger.Info().Int64("client_id", id).Msg("client deleted")
	return nil
}
