package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	require.NoError(t, NewHealthHandler().Liveness(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		redisCheck Check
		wantCode   int
		wantStatus string
	}{
		{"all healthy", ok, http.StatusOK, "ok"},
		{"redis down", func(context.Context) error { return errors.New("dial tcp: refused") },
			http.StatusServiceUnavailable, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthDependenciesHandler(
				Dependency{Name: "postgres", Check: ok},
				Dependency{Name: "mongodb", Check: ok},
				Dependency{Name: "redis", Check: tt.redisCheck},
			)
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

			require.NoError(t, h.Readiness(c))
			assert.Equal(t, tt.wantCode, rec.Code)

			var body readinessResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Len(t, body.Dependencies, 3)
			assert.Equal(t, "ok", body.Dependencies["postgres"].Status)
		})
	}
}
