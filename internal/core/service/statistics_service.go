package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

// StatisticsService aggregates delivered orders per transporter. The
// aggregation runs in Go so it behaves the same on every SQL dialect.
type StatisticsService struct {
	orders       ports.OrderRepository
	transporters ports.TransporterRepository
	identities   ports.IdentityResolver
	log          zerolog.Logger
}

func NewStatisticsService(
	orders ports.OrderRepository,
	transporters ports.TransporterRepository,
	identities ports.IdentityResolver,
	log zerolog.Logger,
) *StatisticsService {
	return &StatisticsService{orders: orders, transporters: transporters, identities: identities, log: log}
}

// TransporterStatistics returns the caller's own report when it is a
// transporter and every transporter's report for staff.
func (s *StatisticsService) TransporterStatistics(ctx context.Context, actor domain.Principal) ([]ports.TransporterReport, error) {
	identity, err := s.identities.ResolveIdentity(ctx, actor)
	if err != nil && !errors.Is(err, domain.ErrAmbiguousIdentity) {
		return nil, err
	}

	var transporters []*domain.Transporter
	switch {
	case err == nil && identity.IsTransporter():
		t, err := s.transporters.FindByID(ctx, identity.TransporterID)
		if err != nil {
			return nil, err
		}
		transporters = []*domain.Transporter{t}
	case actor.IsStaff:
		if transporters, err = s.transporters.List(ctx, ports.ProfileFilter{}); err != nil {
			return nil, fmt.Errorf("transporter statistics: %w", err)
		}
	case err != nil:
		return nil, err
	default:
		return nil, domain.ErrForbidden
	}

	reports := make([]ports.TransporterReport, 0, len(transporters))
	for _, t := range transporters {
		report, err := s.report(ctx, t)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (s *StatisticsService) report(ctx context.Context, t *domain.Transporter) (ports.TransporterReport, error) {
	delivered := true
	orders, _, err := s.orders.List(ctx, ports.ListOrdersFilter{TransporterID: &t.ID, Delivered: &delivered})
	if err != nil {
		return ports.TransporterReport{}, fmt.Errorf("transporter statistics: %w", err)
	}
	return BuildTransporterReport(t, orders), nil
}

// BuildTransporterReport groups delivered orders by the YYYY-MM of their
// delivery date. Orders without a delivery date are ignored.
func BuildTransporterReport(t *domain.Transporter, orders []*domain.Order) ports.TransporterReport {
	perMonth := make(map[string]int)
	total := decimal.Zero
	count := 0
	for _, o := range orders {
		if !o.Delivered() {
			continue
		}
		perMonth[o.DeliveryDate.UTC().Format("2006-01")]++
		total = total.Add(o.TotalAmount)
		count++
	}

	months := make([]ports.MonthlyDeliveries, 0, len(perMonth))
	for m, n := range perMonth {
		months = append(months, ports.MonthlyDeliveries{Month: m, Deliveries: n})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })

	return ports.TransporterReport{
		TransporterID:  t.ID,
		Name:           t.Name,
		Months:         months,
		DeliveredCount: count,
		DeliveredTotal: total.Round(2),
	}
}
