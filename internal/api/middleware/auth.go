package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/closedigit/bookstore-api/internal/core/domain"
	"github.com/closedigit/bookstore-api/internal/core/ports"
)

// PrincipalKey is the echo context key holding the caller's domain.Principal.
const PrincipalKey = "principal"

// Auth verifies the bearer token, when one is presented, and stores the
// resulting principal in the context. A request without an Authorization
// header continues as the anonymous principal so that the operation gate can
// answer UNAUTHENTICATED; a header that is present but unusable is rejected
// here.
func Auth(tokens ports.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				c.Set(PrincipalKey, domain.Anonymous)
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return domain.ErrTokenMalformed
			}

			principal, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}

			c.Set(PrincipalKey, principal)
			return next(c)
		}
	}
}

// Principal returns the caller stored by Auth, or the anonymous principal.
func Principal(c echo.Context) domain.Principal {
	p, _ := c.Get(PrincipalKey).(domain.Principal)
	return p
}
