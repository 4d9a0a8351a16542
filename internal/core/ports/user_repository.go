package ports

import (
	"context"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

// UserRepository defines persistence operations for identities.
type UserRepository interface {
	// Create inserts the user and fills its ID. Returns domain.ErrUserExists
	// when the CPF is already registered.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByCPF(ctx context.Context, cpf string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	Delete(ctx context.Context, id uint) error
	// Lock takes a write lock on the identity row for the rest of the current
	// transaction, serialising profile creation for the same identity.
	Lock(ctx context.Context, id uint) error
}

// Transactor runs fn inside a single store transaction. Repositories called
// with the ctx passed to fn participate in that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
