package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chaeso/delivery-api/internal/api/metrics"
	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type credentialsRequest struct {
	CPF      string `json:"cpf"      validate:"required,max=15"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type meResponse struct {
	User          *domain.User `json:"user"`
	Role          string       `json:"role"`
	ClientID      *uint        `json:"client_id,omitempty"`
	TransporterID *uint        `json:"transporter_id,omitempty"`
}

// Register creates a new identity.
//
// @Summary      Register a new identity
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "CPF and password"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  ValidationErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /users [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.CPF, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Login exchanges credentials for a bearer token. Any earlier token of the
// same identity stops working.
//
// @Summary      Obtain a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  ValidationErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /auth/token [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.CPF, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: token, User: user})
}

// Logout revokes the caller's session.
//
// @Summary      Revoke the current token
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), p.UserID); err != nil {
		return err
	}
	metrics.SessionsRevokedTotal.WithLabelValues("logout").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's identity and the marketplace role it resolves to.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /users/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.authService.CurrentUser(ctx, p.UserID)
	if err != nil {
		return err
	}
	identity, err := h.authService.ResolveIdentity(ctx, p)
	if err != nil {
		return err
	}

	resp := meResponse{User: user, Role: string(identity.Kind)}
	switch identity.Kind {
	case domain.IdentityClient:
		resp.ClientID = &identity.ClientID
	case domain.IdentityTransporter:
		resp.TransporterID = &identity.TransporterID
	}
	return c.JSON(http.StatusOK, resp)
}
