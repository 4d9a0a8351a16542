package ports

import (
	"context"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

// CreateOrderInput carries everything needed to place an order. The client is
// always the actor's own profile.
type CreateOrderInput struct {
	Actor          domain.Principal
	TransporterID  *uint // nil = draw one at random
	ProductIDs     []uint
	Quantity       *int // nil = 1
	IdempotencyKey string
}

// OrderResult is returned after creating an order.
type OrderResult struct {
	Order *domain.Order
	// Replayed is true when the Idempotency-Key matched an earlier order.
	Replayed bool
	// RandomlyAssigned is true when no transporter was requested.
	RandomlyAssigned bool
}

// ListOrdersInput carries the parameters for the list endpoint.
type ListOrdersInput struct {
	Actor domain.Principal
	Page  int
	Limit int
}

// ListOrdersResult is a page of orders visible to the caller.
type ListOrdersResult struct {
	Items      []*domain.Order
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// OrderService defines the order assignment and visibility use cases.
type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderResult, error)
	ListOrders(ctx context.Context, in ListOrdersInput) (*ListOrdersResult, error)
	GetOrder(ctx context.Context, actor domain.Principal, id uint) (*domain.Order, error)
	DeliverOrder(ctx context.Context, actor domain.Principal, id uint) (*domain.Order, error)
	OrderEvents(ctx context.Context, actor domain.Principal, id uint) ([]*domain.OrderEvent, error)
}
