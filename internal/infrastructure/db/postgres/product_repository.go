package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if err := conn(ctx, r.db).Create(p).Error; err != nil {
		return productWriteError("insert product", err)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	if err := conn(ctx, r.db).First(&p, id).Error; err != nil {
		return nil, notFound(err, domain.ErrProductNotFound, "find product")
	}
	return &p, nil
}

func (r *ProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	var p domain.Product
	if err := conn(ctx, r.db).Where("name = ?", name).First(&p).Error; err != nil {
		return nil, notFound(err, domain.ErrProductNotFound, "find product")
	}
	return &p, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Product, error) {
	products := []domain.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	if err := conn(ctx, r.db).Where("id IN ?", ids).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	products := []*domain.Product{}
	if err := conn(ctx, r.db).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	res := conn(ctx, r.db).Model(p).
		Select("name", "value", "weight_kg", "photo", "updated_at").
		Updates(p)
	if res.Error != nil {
		return productWriteError("update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Delete removes the product and its order links; the orders themselves stay.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&orderProduct{}).Error; err != nil {
			return fmt.Errorf("delete product links: %w", err)
		}
		res := tx.Delete(&domain.Product{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrProductNotFound
		}
		return nil
	})
}

func productWriteError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateProductName
	}
	return fmt.Errorf("%s: %w", op, err)
}
