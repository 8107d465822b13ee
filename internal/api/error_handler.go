package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps core error kinds to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error", "code", "fields"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message), Code: statusCode(he.Code)}
	}

	code := domain.Code(err)
	switch {
	case errors.Is(err, domain.ErrValidation):
		body := errorResponse{Error: err.Error(), Code: code}
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			body.Error = "validation failed"
			body.Fields = verrs.Fields()
		}
		return http.StatusBadRequest, body
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, errorResponse{Error: err.Error(), Code: code}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Code: code}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid username or password", Code: code}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: err.Error(), Code: code}
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden, errorResponse{Error: "access denied", Code: code}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "INTERNAL"}
}

// statusCode turns an HTTP status into an upper-snake code, e.g. 404 → NOT_FOUND.
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
