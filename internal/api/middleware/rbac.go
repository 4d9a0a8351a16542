package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

// RequireStaff only lets staff identities through. It must run after Auth.
func RequireStaff() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if !p.IsStaff {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
