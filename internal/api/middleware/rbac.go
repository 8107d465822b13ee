package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/closedigit/bookstore-api/internal/api/metrics"
	"github.com/closedigit/bookstore-api/internal/core/authz"
	"github.com/closedigit/bookstore-api/internal/core/domain"
)

// RequireOperation consults the authorization table for op before the
// handler runs, so a denied request never has its body decoded.
func RequireOperation(op authz.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authz.Authorize(Principal(c), op); err != nil {
				reason := "forbidden"
				if errors.Is(err, domain.ErrUnauthenticated) {
					reason = "unauthenticated"
				}
				metrics.AuthzDenialsTotal.WithLabelValues(string(op), reason).Inc()
				return err
			}
			return next(c)
		}
	}
}
