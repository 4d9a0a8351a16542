package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item. Value is a fixed-point price with two decimals.
type Product struct {
	ID        uint            `json:"id"        gorm:"primaryKey"`
	Name      string          `json:"name"      gorm:"size:100;uniqueIndex;not null"`
	Value     decimal.Decimal `json:"value"     gorm:"type:numeric(10,2);not null"`
	WeightKg  string          `json:"weight_kg" gorm:"size:100;not null"`
	Photo     string          `json:"photo,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
