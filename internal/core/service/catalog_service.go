package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

const maxProductNameLength = 100

// CatalogService implements product management. Authorization (staff-only
// writes) is enforced at the route level.
type CatalogService struct {
	products ports.ProductRepository
	photos   ports.PhotoStore
	log      zerolog.Logger
}

// NewCatalogService creates a catalog service. photos may be nil when object
// storage is not configured; AttachPhoto then fails with ErrPhotoStorageDisabled.
func NewCatalogService(products ports.ProductRepository, photos ports.PhotoStore, log zerolog.Logger) *CatalogService {
	return &CatalogService{products: products, photos: photos, log: log}
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateProductValue(in.Value); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.WeightKg) == "" {
		return nil, domain.NewValidationError("weight_kg", "weight_kg is required")
	}
	if err := s.ensureNameFree(ctx, name, 0); err != nil {
		return nil, err
	}

	p := &domain.Product{
		Name:     name,
		Value:    in.Value.Round(2),
		WeightKg: in.WeightKg,
		Photo:    in.Photo,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, duplicateAsValidation(err)
	}

	s.log.Info().Uint("product_id", p.ID).Str("name", p.Name).Msg("product created")
	return p, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, in ports.UpdateProductInput) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validateProductName(name); err != nil {
			return nil, err
		}
		if name != p.Name {
			if err := s.ensureNameFree(ctx, name, p.ID); err != nil {
				return nil, err
			}
		}
		p.Name = name
	}
	if in.Value != nil {
		if err := validateProductValue(*in.Value); err != nil {
			return nil, err
		}
		p.Value = in.Value.Round(2)
	}
	if in.WeightKg != nil {
		p.WeightKg = *in.WeightKg
	}
	if in.Photo != nil {
		p.Photo = *in.Photo
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, duplicateAsValidation(err)
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Uint("product_id", id).Msg("product deleted")
	return nil
}

// AttachPhoto uploads the image to object storage and stores its URL on the
// product.
func (s *CatalogService) AttachPhoto(ctx context.Context, id uint, photo ports.PhotoUpload) (*domain.Product, error) {
	if s.photos == nil {
		return nil, domain.ErrPhotoStorageDisabled
	}
	if !strings.HasPrefix(photo.ContentType, "image/") {
		return nil, domain.NewValidationError("photo", "photo must be an image")
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("products/%d/%s%s", p.ID, uuid.NewString(), strings.ToLower(path.Ext(photo.Filename)))
	url, err := s.photos.Put(ctx, key, photo.ContentType, photo.Body, photo.Size)
	if err != nil {
		return nil, fmt.Errorf("attach photo: %w", err)
	}

	p.Photo = url
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info().Uint("product_id", p.ID).Str("key", key).Msg("product photo stored")
	return p, nil
}

// ensureNameFree rejects a name already used by a product other than self.
func (s *CatalogService) ensureNameFree(ctx context.Context, name string, self uint) error {
	existing, err := s.products.FindByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return duplicateNameError()
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return domain.NewValidationError("name", "name is required")
	}
	if len(name) > maxProductNameLength {
		return domain.NewValidationError("name", fmt.Sprintf("name must be at most %d characters", maxProductNameLength))
	}
	return nil
}

func validateProductValue(v decimal.Decimal) error {
	switch {
	case v.IsNegative():
		return domain.NewValidationError("value", "value must not be negative")
	case !v.Equal(v.Round(2)):
		return domain.NewValidationError("value", "value must have at most 2 decimal places")
	case v.GreaterThan(domain.MaxAmount):
		return domain.NewValidationError("value", "value must be at most "+domain.MaxAmount.String())
	}
	return nil
}

func duplicateNameError() error {
	return domain.NewValidationError("name", "product with this name already exists").
		WithCause(domain.ErrDuplicateProductName)
}

// duplicateAsValidation converts a unique-constraint race lost at write time
// into the same error the pre-check produces.
func duplicateAsValidation(err error) error {
	if errors.Is(err, domain.ErrDuplicateProductName) {
		return duplicateNameError()
	}
	return err
}
