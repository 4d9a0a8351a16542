package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chaeso/delivery-api/internal/api/metrics"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

// ProfileHandler handles HTTP requests for clients and transporters.
type ProfileHandler struct {
	service ports.ProfileService
}

func NewProfileHandler(service ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// CreateClient handles POST /clients.
//
// @Summary      Create a client profile
// @Description  Non-staff callers always get a profile bound to their own identity.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClientRequest  true  "Client profile"
// @Success      201   {object}  domain.Client
// @Failure      400   {object}  ValidationErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /clients [post]
func (h *ProfileHandler) CreateClient(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	var req createClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toCreateClientInput(p, req)
	if err != nil {
		return err
	}

	client, err := h.service.CreateClient(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, client)
}

// ListClients handles GET /clients.
//
// @Summary      List client profiles
// @Description  Staff see every client; anyone else only their own.
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Client
// @Failure      401  {object}  ErrorResponse
// @Router       /clients [get]
func (h *ProfileHandler) ListClients(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	clients, err := h.service.ListClients(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clients)
}

// GetClient handles GET /clients/:id.
//
// @Summary      Get a client profile
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  domain.Client
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /clients/{id} [get]
func (h *ProfileHandler) GetClient(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	client, err := h.service.GetClient(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// UpdateClient handles PATCH /clients/:id. Only provided fields change; a
// nested user.password also revokes the identity's session.
//
// @Summary      Partially update a client profile
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Client ID"
// @Param        body  body      updateClientRequest  true  "Fields to change"
// @Success      200   {object}  domain.Client
// @Failure      400   {object}  ValidationErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /clients/{id} [patch]
func (h *ProfileHandler) UpdateClient(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toUpdateClientInput(p, id, req)
	if err != nil {
		return err
	}

	client, err := h.service.UpdateClient(c.Request().Context(), in)
	if err != nil {
		return err
	}
	if in.Password != nil {
		metrics.SessionsRevokedTotal.WithLabelValues("password_change").Inc()
	}
	return c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /clients/:id.
//
// @Summary      Delete a client profile
// @Description  Also deletes the client's orders and its linked identity.
// @Tags         clients
// @Security     BearerAuth
// @Param        id   path  int  true  "Client ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /clients/{id} [delete]
func (h *ProfileHandler) DeleteClient(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteClient(c.Request().Context(), p, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateTransporter handles POST /transporters.
//
// @Summary      Create a transporter profile
// @Tags         transporters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTransporterRequest  true  "Transporter profile"
// @Success      201   {object}  domain.Transporter
// @Failure      400   {object}  ValidationErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /transporters [post]
func (h *ProfileHandler) CreateTransporter(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	var req createTransporterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toCreateTransporterInput(p, req)
	if err != nil {
		return err
	}

	t, err := h.service.CreateTransporter(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

// ListTransporters handles GET /transporters.
//
// @Summary      List transporter profiles
// @Tags         transporters
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Transporter
// @Router       /transporters [get]
func (h *ProfileHandler) ListTransporters(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	ts, err := h.service.ListTransporters(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ts)
}

// GetTransporter handles GET /transporters/:id.
//
// @Summary      Get a transporter profile
// @Tags         transporters
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Transporter ID"
// @Success      200  {object}  domain.Transporter
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /transporters/{id} [get]
func (h *ProfileHandler) GetTransporter(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.service.GetTransporter(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// UpdateTransporter handles PATCH /transporters/:id.
//
// @Summary      Partially update a transporter profile
// @Tags         transporters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                       true  "Transporter ID"
// @Param        body  body      updateTransporterRequest  true  "Fields to change"
// @Success      200   {object}  domain.Transporter
// @Failure      400   {object}  ValidationErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /transporters/{id} [patch]
func (h *ProfileHandler) UpdateTransporter(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateTransporterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toUpdateTransporterInput(p, id, req)
	if err != nil {
		return err
	}

	t, err := h.service.UpdateTransporter(c.Request().Context(), in)
	if err != nil {
		return err
	}
	if in.Password != nil {
		metrics.SessionsRevokedTotal.WithLabelValues("password_change").Inc()
	}
	return c.JSON(http.StatusOK, t)
}

// DeleteTransporter handles DELETE /transporters/:id.
//
// @Summary      Delete a transporter profile
// @Description  Pending orders are reassigned at random to the remaining transporters, or unassigned when none remain.
// @Tags         transporters
// @Security     BearerAuth
// @Param        id   path  int  true  "Transporter ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /transporters/{id} [delete]
func (h *ProfileHandler) DeleteTransporter(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteTransporter(c.Request().Context(), p, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
