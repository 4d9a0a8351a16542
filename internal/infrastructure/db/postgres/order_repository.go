package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

// orderProduct maps the many-to-many join table GORM creates for
// Order.Products, so link rows can be deleted explicitly.
type orderProduct struct {
	OrderID   uint `gorm:"primaryKey"`
	ProductID uint `gorm:"primaryKey"`
}

func (orderProduct) TableName() string { return "order_products" }

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order and its product links. Products themselves are
// never written.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	if err := conn(ctx, r.db).Omit("Client", "Transporter", "Products.*").Create(o).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	var o domain.Order
	err := conn(ctx, r.db).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("products.id") }).
		First(&o, id).Error
	if err != nil {
		return nil, notFound(err, domain.ErrOrderNotFound, "find order")
	}
	return &o, nil
}

// List returns orders newest first. Limit 0 returns every match.
func (r *OrderRepository) List(ctx context.Context, f ports.ListOrdersFilter) ([]*domain.Order, int64, error) {
	q := conn(ctx, r.db).Model(&domain.Order{})
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.TransporterID != nil {
		q = q.Where("transporter_id = ?", *f.TransporterID)
	}
	if f.Delivered != nil {
		if *f.Delivered {
			q = q.Where("delivery_date IS NOT NULL")
		} else {
			q = q.Where("delivery_date IS NULL")
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	q = q.Order("created_at DESC").Order("id DESC")
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		q = q.Offset((page - 1) * f.Limit).Limit(f.Limit)
	}

	orders := []*domain.Order{}
	err := q.Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("products.id") }).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// SetTransporter points the order at another transporter, or clears it when
// transporterID is nil.
func (r *OrderRepository) SetTransporter(ctx context.Context, orderID uint, transporterID *uint) error {
	var value any = gorm.Expr("NULL")
	if transporterID != nil {
		value = *transporterID
	}
	res := conn(ctx, r.db).Model(&domain.Order{}).Where("id = ?", orderID).Update("transporter_id", value)
	if res.Error != nil {
		return fmt.Errorf("set transporter: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) MarkDelivered(ctx context.Context, orderID uint, status string, at time.Time) error {
	res := conn(ctx, r.db).Model(&domain.Order{}).
		Where("id = ? AND delivery_date IS NULL", orderID).
		Updates(map[string]any{"status": status, "delivery_date": at})
	if res.Error != nil {
		return fmt.Errorf("mark delivered: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderAlreadyDelivered
	}
	return nil
}

// DeleteByClient removes the client's orders together with their product
// links and reports how many orders were deleted.
func (r *OrderRepository) DeleteByClient(ctx context.Context, clientID uint) (int64, error) {
	db := conn(ctx, r.db)

	var ids []uint
	if err := db.Model(&domain.Order{}).Where("client_id = ?", clientID).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("find client orders: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := db.Where("order_id IN ?", ids).Delete(&orderProduct{}).Error; err != nil {
		return 0, fmt.Errorf("delete order links: %w", err)
	}
	res := db.Where("id IN ?", ids).Delete(&domain.Order{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete orders: %w", res.Error)
	}
	return res.RowsAffected, nil
}
