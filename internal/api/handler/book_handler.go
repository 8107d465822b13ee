package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/closedigit/bookstore-api/internal/api/metrics"
	"github.com/closedigit/bookstore-api/internal/core/domain"
	"github.com/closedigit/bookstore-api/internal/core/ports"
)

// Listing defaults applied when the query string omits a parameter.
const (
	defaultSortBy  = "title"
	defaultSortDir = "desc"
)

type BookHandler struct {
	catalog ports.CatalogService
}

func NewBookHandler(catalog ports.CatalogService) *BookHandler {
	return &BookHandler{catalog: catalog}
}

// List returns one sorted page of the catalog.
//
// @Summary      List books
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        page     query     int     false  "Zero-based page index"  default(0)
// @Param        size     query     int     false  "Page size (1-100)"      default(10)
// @Param        sortBy   query     string  false  "Sort field"             default(title)
// @Param        sortDir  query     string  false  "asc or desc"            default(desc)
// @Success      200      {object}  bookPageResponse
// @Failure      401      {object}  map[string]any
// @Router       /api/books [get]
func (h *BookHandler) List(c echo.Context) error {
	q := listBooksQuery{Size: domain.DefaultPageSize, SortBy: defaultSortBy, SortDir: defaultSortDir}
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return domain.ValidationErrors{{Field: "query", Message: "page and size must be integers"}}
	}

	page, err := h.catalog.List(c.Request().Context(), caller(c), domain.PageRequest{
		Page:      q.Page,
		Size:      q.Size,
		SortField: domain.SortField(q.SortBy),
		Direction: domain.SortDirection(q.SortDir),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookPageResponse(page))
}

// Get returns a single book.
//
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  bookResponse
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/books/{id} [get]
func (h *BookHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	book, err := h.catalog.Get(c.Request().Context(), caller(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponse(book))
}

// Create adds a book to the catalog. ADMIN only.
//
// @Summary      Create a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bookRequest  true  "Book"
// @Success      201   {object}  bookResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /api/books [post]
func (h *BookHandler) Create(c echo.Context) error {
	book, err := h.bindBook(c)
	if err != nil {
		return err
	}
	created, err := h.catalog.Create(c.Request().Context(), caller(c), book)
	if err != nil {
		return err
	}
	metrics.CatalogMutationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, toBookResponse(created))
}

// Update replaces every editable field of a book. ADMIN only.
//
// @Summary      Update a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "Book ID"
// @Param        body  body      bookRequest  true  "Book"
// @Success      200   {object}  bookResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /api/books/{id} [put]
func (h *BookHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	book, err := h.bindBook(c)
	if err != nil {
		return err
	}
	updated, err := h.catalog.Update(c.Request().Context(), caller(c), id, book)
	if err != nil {
		return err
	}
	metrics.CatalogMutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, toBookResponse(updated))
}

// Delete removes a book. ADMIN only.
//
// @Summary      Delete a book
// @Tags         books
// @Security     BearerAuth
// @Param        id   path  int  true  "Book ID"
// @Success      204
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/books/{id} [delete]
func (h *BookHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.Delete(c.Request().Context(), caller(c), id); err != nil {
		return err
	}
	metrics.CatalogMutationsTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *BookHandler) bindBook(c echo.Context) (*domain.Book, error) {
	var req bookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	return toBook(req)
}
