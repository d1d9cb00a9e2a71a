package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roombook/identity-system/internal/api/metrics"
	"github.com/roombook/identity-system/internal/core/domain"
	"github.com/roombook/identity-system/internal/core/ports"
)

// CallerKey is the echo context key under which Auth stores the resolved
// caller identity.
const CallerKey = "caller"

// Auth validates the bearer token through the auth service and injects the
// caller's PublicIdentity into the request context. Validation re-fetches
// the identity, so a deactivated account is rejected even with an unexpired
// token.
func Auth(authService ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			caller, err := authService.ValidateToken(c.Request().Context(), parts[1])
			if err != nil {
				metrics.TokenValidationsTotal.WithLabelValues("rejected").Inc()
				return err
			}
			metrics.TokenValidationsTotal.WithLabelValues("ok").Inc()

			c.Set(CallerKey, caller)
			return next(c)
		}
	}
}

// RequireAdmin rejects callers without the administrator role. It must run
// after Auth. The services enforce the same gate; this keeps obviously
// unauthorized requests from reaching them.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := c.Get(CallerKey).(*domain.PublicIdentity)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if !caller.Role.IsAdmin() {
				return domain.ErrNotAuthorized
			}
			return next(c)
		}
	}
}
