package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roombook/identity-system/internal/api/middleware"
	"github.com/roombook/identity-system/internal/core/domain"
)

// ctxCaller extracts the caller identity injected by the Auth middleware.
// Its presence proves the middleware ran; a missing caller means the route
// was wired without authentication and must not proceed.
func ctxCaller(c echo.Context) (*domain.PublicIdentity, error) {
	caller, ok := c.Get(middleware.CallerKey).(*domain.PublicIdentity)
	if !ok || caller == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return caller, nil
}
