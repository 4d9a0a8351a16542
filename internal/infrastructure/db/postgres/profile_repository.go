package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Clients
// ---------------------------------------------------------------------------

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(c).Error; err != nil {
		return profileWriteError("insert client", err)
	}
	return nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id uint) (*domain.Client, error) {
	var c domain.Client
	if err := conn(ctx, r.db).First(&c, id).Error; err != nil {
		return nil, notFound(err, domain.ErrClientNotFound, "find client")
	}
	return &c, nil
}

func (r *ClientRepository) FindByUserID(ctx context.Context, userID uint) (*domain.Client, error) {
	var c domain.Client
	if err := conn(ctx, r.db).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, notFound(err, domain.ErrClientNotFound, "find client")
	}
	return &c, nil
}

func (r *ClientRepository) List(ctx context.Context, filter ports.ProfileFilter) ([]*domain.Client, error) {
	q := conn(ctx, r.db).Order("id")
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}

	clients := []*domain.Client{}
	if err := q.Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// Update writes every mutable column, including zero values.
func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	res := conn(ctx, r.db).Model(c).
		Select("*").
		Omit("id", "user_id", "created_at", clause.Associations).
		Updates(c)
	if res.Error != nil {
		return fmt.Errorf("update client: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(&domain.Client{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete client: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Transporters
// ---------------------------------------------------------------------------

type TransporterRepository struct {
	db *gorm.DB
}

func NewTransporterRepository(db *gorm.DB) *TransporterRepository {
	return &TransporterRepository{db: db}
}

func (r *TransporterRepository) Create(ctx context.Context, t *domain.Transporter) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(t).Error; err != nil {
		return profileWriteError("insert transporter", err)
	}
	return nil
}

func (r *TransporterRepository) FindByID(ctx context.Context, id uint) (*domain.Transporter, error) {
	var t domain.Transporter
	if err := conn(ctx, r.db).First(&t, id).Error; err != nil {
		return nil, notFound(err, domain.ErrTransporterNotFound, "find transporter")
	}
	return &t, nil
}

func (r *TransporterRepository) FindByUserID(ctx context.Context, userID uint) (*domain.Transporter, error) {
	var t domain.Transporter
	if err := conn(ctx, r.db).Where("user_id = ?", userID).First(&t).Error; err != nil {
		return nil, notFound(err, domain.ErrTransporterNotFound, "find transporter")
	}
	return &t, nil
}

func (r *TransporterRepository) List(ctx context.Context, filter ports.ProfileFilter) ([]*domain.Transporter, error) {
	q := conn(ctx, r.db).Order("id")
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}

	transporters := []*domain.Transporter{}
	if err := q.Find(&transporters).Error; err != nil {
		return nil, fmt.Errorf("list transporters: %w", err)
	}
	return transporters, nil
}

func (r *TransporterRepository) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := conn(ctx, r.db).Model(&domain.Transporter{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list transporter ids: %w", err)
	}
	return ids, nil
}

func (r *TransporterRepository) Update(ctx context.Context, t *domain.Transporter) error {
	res := conn(ctx, r.db).Model(t).
		Select("*").
		Omit("id", "user_id", "created_at", clause.Associations).
		Updates(t)
	if res.Error != nil {
		return fmt.Errorf("update transporter: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTransporterNotFound
	}
	return nil
}

func (r *TransporterRepository) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(&domain.Transporter{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete transporter: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTransporterNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func notFound(err, sentinel error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}

// profileWriteError maps constraint violations on profile inserts. The
// unique index on user_id backs the one-profile-per-identity rule; a foreign
// key violation means the identity does not exist.
func profileWriteError(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrProfileExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
