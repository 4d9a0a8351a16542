package handler

import (
	"fmt"

	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

// --- Domain → Response ---

func toOrderResponse(o *domain.Order) orderResponse {
	products := o.Products
	if products == nil {
		products = []domain.Product{}
	}
	return orderResponse{
		ID:            o.ID,
		ClientID:      o.ClientID,
		TransporterID: o.TransporterID,
		Products:      products,
		Quantity:      o.Quantity,
		TotalAmount:   o.TotalAmount.StringFixed(2),
		Status:        o.Status,
		DeliveryDate:  o.DeliveryDate,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Links: orderLinks{
			Self:   fmt.Sprintf("/orders/%d", o.ID),
			Events: fmt.Sprintf("/orders/%d/events", o.ID),
		},
	}
}

func toListOrdersResponse(res *ports.ListOrdersResult) listOrdersResponse {
	items := make([]orderResponse, 0, len(res.Items))
	for _, o := range res.Items {
		items = append(items, toOrderResponse(o))
	}
	return listOrdersResponse{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	}
}

func toTransporterReportResponses(reports []ports.TransporterReport) []transporterReportResponse {
	out := make([]transporterReportResponse, 0, len(reports))
	for _, r := range reports {
		months := make([]monthlyDeliveriesResponse, 0, len(r.Months))
		for _, m := range r.Months {
			months = append(months, monthlyDeliveriesResponse{Month: m.Month, Deliveries: m.Deliveries})
		}
		out = append(out, transporterReportResponse{
			TransporterID:  r.TransporterID,
			Name:           r.Name,
			Months:         months,
			DeliveredCount: r.DeliveredCount,
			DeliveredTotal: r.DeliveredTotal.StringFixed(2),
		})
	}
	return out
}
