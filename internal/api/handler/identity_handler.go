package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roombook/identity-system/internal/core/domain"
	"github.com/roombook/identity-system/internal/core/ports"
)

// IdentityHandler exposes read and management operations on identities.
// Role gates live in the identity service; the handler only resolves the
// caller and maps payloads.
type IdentityHandler struct {
	identityService ports.IdentityService
}

func NewIdentityHandler(identityService ports.IdentityService) *IdentityHandler {
	return &IdentityHandler{identityService: identityService}
}

type renameRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=2,max=100"`
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

// List returns every identity's public projection.
//
// @Summary      List identities
// @Tags         identities
// @Produce      json
// @Success      200  {array}  domain.PublicIdentity
// @Router       /identities [get]
func (h *IdentityHandler) List(c echo.Context) error {
	identities, err := h.identityService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identities)
}

// Get returns a single identity's public projection.
//
// @Summary      Get identity
// @Tags         identities
// @Produce      json
// @Param        id   path      string  true  "Identity id"
// @Success      200  {object}  domain.PublicIdentity
// @Failure      404  {object}  map[string]string
// @Router       /identities/{id} [get]
func (h *IdentityHandler) Get(c echo.Context) error {
	identity, err := h.identityService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}

// Rename changes an identity's display name. Non-administrators may only
// rename themselves.
//
// @Summary      Rename identity
// @Tags         identities
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Identity id"
// @Param        body  body      renameRequest  true  "New display name"
// @Success      200   {object}  domain.PublicIdentity
// @Failure      403   {object}  map[string]string
// @Router       /identities/{id}/name [put]
func (h *IdentityHandler) Rename(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req renameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity, err := h.identityService.Rename(c.Request().Context(), caller.ID, c.Param("id"), req.DisplayName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}

// SetRole changes an identity's role. Administrator-only.
//
// @Summary      Set identity role
// @Tags         identities
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Identity id"
// @Param        body  body      setRoleRequest  true  "New role"
// @Success      200   {object}  domain.PublicIdentity
// @Failure      403   {object}  map[string]string
// @Router       /identities/{id}/role [put]
func (h *IdentityHandler) SetRole(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}

	identity, err := h.identityService.SetRole(c.Request().Context(), caller.ID, c.Param("id"), role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}

// Deactivate disables an identity. Administrator-only; administrators
// cannot deactivate themselves.
//
// @Summary      Deactivate identity
// @Tags         identities
// @Param        id  path  string  true  "Identity id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /identities/{id}/deactivate [post]
func (h *IdentityHandler) Deactivate(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	if err := h.identityService.Deactivate(c.Request().Context(), caller.ID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Activate re-enables an identity. Administrator-only.
//
// @Summary      Activate identity
// @Tags         identities
// @Param        id  path  string  true  "Identity id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /identities/{id}/activate [post]
func (h *IdentityHandler) Activate(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	if err := h.identityService.Activate(c.Request().Context(), caller.ID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
