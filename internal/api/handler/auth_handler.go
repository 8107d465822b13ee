package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/closedigit/bookstore-api/internal/api/metrics"
	"github.com/closedigit/bookstore-api/internal/core/domain"
	"github.com/closedigit/bookstore-api/internal/core/ports"
)

const tokenType = "Bearer"

type AuthHandler struct {
	identity ports.IdentityService
}

func NewAuthHandler(identity ports.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// Register creates a USER account and returns a session token for it.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Failure      500   {object}  map[string]any
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		recordAuthAttempt("register", err)
		return err
	}

	session, err := h.identity.SignUp(c.Request().Context(), req.Username, req.Email, req.Password)
	recordAuthAttempt("register", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAuthResponse(session))
}

// Login exchanges a username and password for a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		recordAuthAttempt("login", err)
		return err
	}

	session, err := h.identity.Login(c.Request().Context(), req.Username, req.Password)
	recordAuthAttempt("login", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAuthResponse(session))
}

func toAuthResponse(s *ports.Session) authResponse {
	return authResponse{
		Token:     s.Token,
		Type:      tokenType,
		ExpiresAt: s.ExpiresAt.UTC(),
		User:      toUserResponse(s.User),
	}
}

func recordAuthAttempt(operation string, err error) {
	result := "success"
	if err != nil {
		result = domain.Code(err)
		if result == "" {
			result = "error"
		}
	}
	metrics.AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
}
