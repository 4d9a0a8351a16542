package ports

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

// CreateProductInput carries the data for a new catalog item.
type CreateProductInput struct {
	Name     string
	Value    decimal.Decimal
	WeightKg string
	Photo    string
}

// UpdateProductInput is a partial update of a catalog item.
type UpdateProductInput struct {
	ID       uint
	Name     *string
	Value    *decimal.Decimal
	WeightKg *string
	Photo    *string
}

// PhotoUpload is a product photo received from the transport layer.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CatalogService defines product use cases.
type CatalogService interface {
	CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id uint) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	UpdateProduct(ctx context.Context, in UpdateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	AttachPhoto(ctx context.Context, id uint, photo PhotoUpload) (*domain.Product, error)
}
