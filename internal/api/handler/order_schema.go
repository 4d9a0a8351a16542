package handler

import (
	"time"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

// --- Request / Response types ---

type createOrderRequest struct {
	TransporterID *uint  `json:"transporter_id" validate:"omitempty,gt=0"`
	ProductIDs    []uint `json:"product_ids"    validate:"required,min=1,dive,gt=0"`
	Quantity      *int   `json:"quantity"       validate:"omitempty,gte=1,lte=10000" example:"1"`
}

type listOrdersQuery struct {
	Page  int `query:"page"  validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=0"`
}

type orderLinks struct {
	Self   string `json:"self"`
	Events string `json:"events"`
}

type orderResponse struct {
	ID               uint             `json:"id"`
	ClientID         uint             `json:"client_id"`
	TransporterID    *uint            `json:"transporter_id"`
	Products         []domain.Product `json:"products"`
	Quantity         int              `json:"quantity"`
	TotalAmount      string           `json:"total_amount" example:"31.50"`
	Status           string           `json:"status"`
	DeliveryDate     *time.Time       `json:"delivery_date"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	RandomlyAssigned *bool            `json:"randomly_assigned,omitempty"`
	Links            orderLinks       `json:"_links"`
}

type listOrdersResponse struct {
	Items      []orderResponse `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

type monthlyDeliveriesResponse struct {
	Month      string `json:"month" example:"2024-03"`
	Deliveries int    `json:"deliveries"`
}

type transporterReportResponse struct {
	TransporterID  uint                        `json:"transporter_id"`
	Name           string                      `json:"name"`
	Months         []monthlyDeliveriesResponse `json:"deliveries_per_month"`
	DeliveredCount int                         `json:"delivered_count"`
	DeliveredTotal string                      `json:"delivered_total" example:"120.00"`
}
