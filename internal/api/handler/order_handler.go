package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/chaeso/delivery-api/internal/api/metrics"
	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry order creation safely.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLength = 128

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Create handles POST /orders.
//
// @Summary      Place an order
// @Description  The caller must be a client. Without transporter_id a transporter is drawn at random.
// @Description  Repeating a request with the same Idempotency-Key returns the original order with 200.
// @Description  A request reusing a key whose order is still being created gets 409.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string              false  "Client-chosen retry key"
// @Param        body             body      createOrderRequest  true   "Order"
// @Success      201              {object}  orderResponse
// @Success      200              {object}  orderResponse
// @Failure      400              {object}  ValidationErrorResponse
// @Failure      403              {object}  ErrorResponse
// @Failure      404              {object}  ErrorResponse
// @Failure      409              {object}  ErrorResponse
// @Router       /orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	var req createOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if len(key) > maxIdempotencyKeyLength {
		return domain.NewValidationError(HeaderIdempotencyKey, "must be at most 128 characters")
	}

	res, err := h.service.CreateOrder(c.Request().Context(), ports.CreateOrderInput{
		Actor:          p,
		TransporterID:  req.TransporterID,
		ProductIDs:     req.ProductIDs,
		Quantity:       req.Quantity,
		IdempotencyKey: key,
	})
	if err != nil {
		countAssignmentFailure(err)
		return err
	}

	resp := toOrderResponse(res.Order)
	if res.Replayed {
		return c.JSON(http.StatusOK, resp)
	}

	assignment := "explicit"
	if res.RandomlyAssigned {
		assignment = "random"
	}
	metrics.OrdersCreatedTotal.WithLabelValues(assignment).Inc()
	resp.RandomlyAssigned = &res.RandomlyAssigned
	return c.JSON(http.StatusCreated, resp)
}

func countAssignmentFailure(err error) {
	switch {
	case errors.Is(err, domain.ErrNoTransporterAvailable):
		metrics.OrderAssignmentFailuresTotal.WithLabelValues("no_transporter").Inc()
	case errors.Is(err, domain.ErrTransporterNotFound):
		metrics.OrderAssignmentFailuresTotal.WithLabelValues("transporter_not_found").Inc()
	}
}

// List handles GET /orders.
//
// @Summary      List the caller's orders
// @Description  Clients see their own orders, transporters the orders assigned to them, anyone else an empty list.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size (default 20, max 100)"
// @Success      200    {object}  listOrdersResponse
// @Failure      400    {object}  ValidationErrorResponse
// @Failure      401    {object}  ErrorResponse
// @Router       /orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	var q listOrdersQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	res, err := h.service.ListOrders(c.Request().Context(), ports.ListOrdersInput{
		Actor: p,
		Page:  q.Page,
		Limit: q.Limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListOrdersResponse(res))
}

// Get handles GET /orders/:id. Orders outside the caller's scope are reported
// as not found.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Order ID"
// @Success      200  {object}  orderResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.service.GetOrder(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

// Deliver handles POST /orders/:id/deliver.
//
// @Summary      Mark an order as delivered
// @Description  Only the assigned transporter may deliver an order.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Order ID"
// @Success      200  {object}  orderResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /orders/{id}/deliver [post]
func (h *OrderHandler) Deliver(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.service.DeliverOrder(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	metrics.OrdersDeliveredTotal.Inc()
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

// Events handles GET /orders/:id/events.
//
// @Summary      Order audit trail
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Order ID"
// @Success      200  {array}   domain.OrderEvent
// @Failure      404  {object}  ErrorResponse
// @Router       /orders/{id}/events [get]
func (h *OrderHandler) Events(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	events, err := h.service.OrderEvents(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	if events == nil {
		events = []*domain.OrderEvent{}
	}
	return c.JSON(http.StatusOK, events)
}
