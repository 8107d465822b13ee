package ports

import (
	"context"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

// CatalogService defines use-case operations for books. The caller's
// principal is checked against the authorization table before anything else.
type CatalogService interface {
	List(ctx context.Context, caller domain.Principal, req domain.PageRequest) (*domain.BookPage, error)
	Get(ctx context.Context, caller domain.Principal, id int64) (*domain.Book, error)
	Create(ctx context.Context, caller domain.Principal, book *domain.Book) (*domain.Book, error)
	Update(ctx context.Context, caller domain.Principal, id int64, book *domain.Book) (*domain.Book, error)
	Delete(ctx context.Context, caller domain.Principal, id int64) error
}
