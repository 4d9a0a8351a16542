package ports

import (
	"context"
	"time"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

// AddressInput holds the client's postal address.
type AddressInput struct {
	CEP      string
	Street   string
	Number   int
	District string
	City     string
	UF       string
}

// CreateClientInput carries the data for a new client profile. UserID is only
// honoured for staff actors; everyone else is bound to their own identity.
type CreateClientInput struct {
	Actor    domain.Principal
	UserID   *uint
	Name     string
	Birthday time.Time
	Address  AddressInput
}

// AddressPatch holds optional address changes. Nil means "keep".
type AddressPatch struct {
	CEP      *string
	Street   *string
	Number   *int
	District *string
	City     *string
	UF       *string
}

// UpdateClientInput is a partial update. Password updates the linked identity.
type UpdateClientInput struct {
	Actor    domain.Principal
	ID       uint
	Name     *string
	Birthday *time.Time
	Address  *AddressPatch
	Password *string
}

// CreateTransporterInput carries the data for a new transporter profile.
type CreateTransporterInput struct {
	Actor       domain.Principal
	UserID      *uint
	Name        string
	Birthday    time.Time
	CNH         string
	CategoryCNH string
}

// UpdateTransporterInput is a partial update. Password updates the linked identity.
type UpdateTransporterInput struct {
	Actor       domain.Principal
	ID          uint
	Name        *string
	Birthday    *time.Time
	CNH         *string
	CategoryCNH *string
	Password    *string
}

// ProfileService defines client and transporter use cases.
type ProfileService interface {
	CreateClient(ctx context.Context, in CreateClientInput) (*domain.Client, error)
	GetClient(ctx context.Context, actor domain.Principal, id uint) (*domain.Client, error)
	ListClients(ctx context.Context, actor domain.Principal) ([]*domain.Client, error)
	UpdateClient(ctx context.Context, in UpdateClientInput) (*domain.Client, error)
	DeleteClient(ctx context.Context, actor domain.Principal, id uint) error

	CreateTransporter(ctx context.Context, in CreateTransporterInput) (*domain.Transporter, error)
	GetTransporter(ctx context.Context, actor domain.Principal, id uint) (*domain.Transporter, error)
	ListTransporters(ctx context.Context, actor domain.Principal) ([]*domain.Transporter, error)
	UpdateTransporter(ctx context.Context, in UpdateTransporterInput) (*domain.Transporter, error)
	DeleteTransporter(ctx context.Context, actor domain.Principal, id uint) error
}
