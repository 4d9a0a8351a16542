package ports

import (
	"context"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

// AuthService covers identity registration, token issuance and per-request
// identity resolution.
type AuthService interface {
	Register(ctx context.Context, cpf, password string) (*domain.User, error)
	CreateSuperuser(ctx context.Context, cpf, password string) (*domain.User, error)
	Login(ctx context.Context, cpf, password string) (string, *domain.User, error)
	Logout(ctx context.Context, userID uint) error
	CurrentUser(ctx context.Context, userID uint) (*domain.User, error)
	Authenticator
	IdentityResolver
}

// Authenticator verifies a bearer token and returns its principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
}

// IdentityResolver resolves a principal into its marketplace role.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, p domain.Principal) (domain.Identity, error)
}
