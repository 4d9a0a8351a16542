package ports

import (
	"context"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

// ProfileFilter narrows profile listings. A nil UserID lists every profile.
type ProfileFilter struct {
	UserID *uint
}

// ClientRepository defines persistence operations for clients.
type ClientRepository interface {
	// Create returns domain.ErrProfileExists when the identity already owns a client.
	Create(ctx context.Context, c *domain.Client) error
	FindByID(ctx context.Context, id uint) (*domain.Client, error)
	// FindByUserID returns domain.ErrClientNotFound when the identity has no client.
	FindByUserID(ctx context.Context, userID uint) (*domain.Client, error)
	List(ctx context.Context, filter ProfileFilter) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id uint) error
}

// TransporterRepository defines persistence operations for transporters.
type TransporterRepository interface {
	Create(ctx context.Context, t *domain.Transporter) error
	FindByID(ctx context.Context, id uint) (*domain.Transporter, error)
	FindByUserID(ctx context.Context, userID uint) (*domain.Transporter, error)
	List(ctx context.Context, filter ProfileFilter) ([]*domain.Transporter, error)
	// ListIDs returns the IDs of every transporter, used for random assignment.
	ListIDs(ctx context.Context) ([]uint, error)
	Update(ctx context.Context, t *domain.Transporter) error
	Delete(ctx context.Context, id uint) error
}
