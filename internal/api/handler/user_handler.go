package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/closedigit/bookstore-api/internal/core/domain"
	"github.com/closedigit/bookstore-api/internal/core/ports"
)

type UserHandler struct {
	identity ports.IdentityService
}

func NewUserHandler(identity ports.IdentityService) *UserHandler {
	return &UserHandler{identity: identity}
}

// Profile returns the calling user's own account.
//
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]any
// @Router       /api/users/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	user, err := h.identity.Profile(c.Request().Context(), caller(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// List returns every user. ADMIN only.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      403  {object}  map[string]any
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.identity.List(c.Request().Context(), caller(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// Get returns one user by id. ADMIN only.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.identity.GetByID(c.Request().Context(), caller(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// ListByRole returns the users holding a role. ADMIN only.
//
// @Summary      List users by role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string  true  "USER or ADMIN"
// @Success      200   {array}   userResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /api/users/role/{role} [get]
func (h *UserHandler) ListByRole(c echo.Context) error {
	role, err := domain.ParseRole(c.Param("role"))
	if err != nil {
		return err
	}
	users, err := h.identity.ListByRole(c.Request().Context(), caller(c), role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// ChangeRole sets a user's role. ADMIN only.
//
// @Summary      Change a user's role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int     true  "User ID"
// @Param        role  query     string  true  "USER or ADMIN"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /api/users/{id}/role [put]
func (h *UserHandler) ChangeRole(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	role, err := domain.ParseRole(c.QueryParam("role"))
	if err != nil {
		return err
	}
	user, err := h.identity.ChangeRole(c.Request().Context(), caller(c), id, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete removes a user account. ADMIN only.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  int  true  "User ID"
// @Success      204
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Failure      409  {object}  map[string]any
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.identity.Delete(c.Request().Context(), caller(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Count returns the number of registered users. ADMIN only.
//
// @Summary      Count users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  countResponse
// @Failure      403  {object}  map[string]any
// @Router       /api/users/count [get]
func (h *UserHandler) Count(c echo.Context) error {
	n, err := h.identity.Count(c.Request().Context(), caller(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, countResponse{Count: n})
}

// CountByRole returns the number of users holding a role. ADMIN only.
//
// @Summary      Count users by role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string  true  "USER or ADMIN"
// @Success      200   {object}  countResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /api/users/count/role/{role} [get]
func (h *UserHandler) CountByRole(c echo.Context) error {
	role, err := domain.ParseRole(c.Param("role"))
	if err != nil {
		return err
	}
	n, err := h.identity.CountByRole(c.Request().Context(), caller(c), role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, countResponse{Count: n})
}
