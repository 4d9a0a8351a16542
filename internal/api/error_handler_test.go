package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

func renderError(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"revoked session", fmt.Errorf("authenticate: %w", domain.ErrSessionRevoked), http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"client not found", domain.ErrClientNotFound, http.StatusNotFound},
		{"order not found", fmt.Errorf("get order: %w", domain.ErrOrderNotFound), http.StatusNotFound},
		{"product not found", domain.ErrProductNotFound, http.StatusNotFound},
		{"user exists", domain.ErrUserExists, http.StatusConflict},
		{"profile conflict", &domain.ProfileConflictError{UserID: 1, Existing: domain.IdentityTransporter}, http.StatusConflict},
		{"ambiguous identity", domain.ErrAmbiguousIdentity, http.StatusConflict},
		{"no transporter", domain.ErrNoTransporterAvailable, http.StatusConflict},
		{"already delivered", domain.ErrOrderAlreadyDelivered, http.StatusConflict},
		{"idempotency key in flight", domain.ErrIdempotencyKeyInUse, http.StatusConflict},
		{"photos disabled", domain.ErrPhotoStorageDisabled, http.StatusServiceUnavailable},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := renderError(t, tt.err)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHTTPErrorHandler_HidesWrappingPrefix(t *testing.T) {
	_, body := renderError(t, fmt.Errorf("get order: %w", domain.ErrOrderNotFound))
	assert.Equal(t, "order not found", body["error"])
}

func TestHTTPErrorHandler_ProfileConflictNamesExistingKind(t *testing.T) {
	_, body := renderError(t, &domain.ProfileConflictError{UserID: 1, Existing: domain.IdentityClient})
	assert.Contains(t, body["error"], "client")
}

func TestHTTPErrorHandler_ValidationEnvelope(t *testing.T) {
	err := domain.NewValidationError("name", "product with this name already exists").
		WithCause(domain.ErrDuplicateProductName)

	code, body := renderError(t, err)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation failed", body["error"])
	assert.Equal(t, map[string]any{"name": "product with this name already exists"}, body["fields"])
}

func TestHTTPErrorHandler_UnexpectedErrorIsNotLeaked(t *testing.T) {
	code, body := renderError(t, errors.New("pq: connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", body["error"])
}
