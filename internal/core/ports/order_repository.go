package ports

import (
	"context"
	"time"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

// ListOrdersFilter carries the query parameters for listing orders.
// The service layer always sets exactly one of ClientID or TransporterID
// when serving a caller; both nil lists every order.
type ListOrdersFilter struct {
	ClientID      *uint
	TransporterID *uint
	Delivered     *bool // optional: only delivered (true) or pending (false) orders
	Page          int   // 1-based; ignored when Limit is 0
	Limit         int   // 0 = no pagination
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// Create persists the order and its product links.
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	// List returns a page of orders (newest first) and the total count.
	List(ctx context.Context, filter ListOrdersFilter) ([]*domain.Order, int64, error)
	SetTransporter(ctx context.Context, orderID uint, transporterID *uint) error
	MarkDelivered(ctx context.Context, orderID uint, status string, at time.Time) error
	// DeleteByClient removes every order of the client and its product links.
	DeleteByClient(ctx context.Context, clientID uint) (int64, error)
}
