package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/closedigit/bookstore-api/internal/api/middleware"
	"github.com/closedigit/bookstore-api/internal/core/domain"
)

// caller returns the principal the Auth middleware attached to the request.
// Services re-check it against the authorization table.
func caller(c echo.Context) domain.Principal {
	return middleware.Principal(c)
}

// pathID parses the :id path parameter as a positive integer.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationErrors{{Field: "id", Message: "must be a positive integer"}}
	}
	return id, nil
}

// bindAndValidate decodes the request and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}
