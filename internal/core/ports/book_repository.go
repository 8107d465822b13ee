package ports

import (
	"context"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

// BookRepository is the catalog store. Implementations must enforce ISBN
// uniqueness themselves and report violations as domain.ErrISBNTaken.
type BookRepository interface {
	// FindByID returns domain.ErrBookNotFound when absent.
	FindByID(ctx context.Context, id int64) (*domain.Book, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)

	// FindPage returns one page ordered by req.SortField/req.Direction, with
	// ties broken by ID, and the total number of books.
	FindPage(ctx context.Context, req domain.PageRequest) ([]*domain.Book, int64, error)

	// Create assigns a fresh ID and returns the stored book.
	Create(ctx context.Context, book *domain.Book) (*domain.Book, error)
	// Update replaces every mutable field of the book with the same ID.
	Update(ctx context.Context, book *domain.Book) error
	DeleteByID(ctx context.Context, id int64) error

	Count(ctx context.Context) (int64, error)
}
