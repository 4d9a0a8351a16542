package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

// MonthlyDeliveries counts deliveries completed in a calendar month (YYYY-MM).
type MonthlyDeliveries struct {
	Month      string
	Deliveries int
}

// TransporterReport aggregates a transporter's delivered orders.
type TransporterReport struct {
	TransporterID  uint
	Name           string
	Months         []MonthlyDeliveries // ascending by month
	DeliveredCount int
	DeliveredTotal decimal.Decimal
}

// StatisticsService builds read-only delivery reports.
type StatisticsService interface {
	TransporterStatistics(ctx context.Context, actor domain.Principal) ([]TransporterReport, error)
}
