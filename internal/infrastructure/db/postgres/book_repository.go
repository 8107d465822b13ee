package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

const bookColumns = `id, title, author, published_date, genre, price::text, isbn, created_at, updated_at`

// sortColumns maps catalog sort fields to columns. Only these names are
// ever interpolated into ORDER BY.
var sortColumns = map[domain.SortField]string{
	domain.SortByID:              "id",
	domain.SortByTitle:           "title",
	domain.SortByAuthor:          "author",
	domain.SortByPublicationDate: "published_date",
	domain.SortByGenre:           "genre",
	domain.SortByPrice:           "price",
	domain.SortByISBN:            "isbn",
}

// BookRepository implements ports.BookRepository using PostgreSQL.
type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

func scanBook(row pgx.Row) (*domain.Book, error) {
	b := &domain.Book{}
	var price string
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.PublishedDate, &b.Genre, &price, &b.ISBN, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	p, ok := domain.ParsePrice(price)
	if !ok {
		return nil, fmt.Errorf("decode price of book %d: %q", b.ID, price)
	}
	b.Price = p
	b.PublishedDate = b.PublishedDate.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

func mapBookWriteErr(op string, err error) error {
	if uniqueViolation(err) == constraintISBN {
		return domain.ErrISBNTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Create inserts a book and returns it with its generated id.
func (r *BookRepository) Create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	query := `
		INSERT INTO books (title, author, published_date, genre, price, isbn, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8)
		RETURNING ` + bookColumns

	created, err := scanBook(r.pool.QueryRow(ctx, query,
		book.Title,
		book.Author,
		book.PublishedDate,
		book.Genre,
		domain.FormatPrice(book.Price),
		book.ISBN,
		book.CreatedAt,
		book.UpdatedAt,
	))
	if err != nil {
		return nil, mapBookWriteErr("insert book", err)
	}
	return created, nil
}

// Update replaces the mutable fields of the book with book.ID.
func (r *BookRepository) Update(ctx context.Context, book *domain.Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, published_date = $4, genre = $5, price = $6::numeric, isbn = $7, updated_at = $8
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.PublishedDate,
		book.Genre,
		domain.FormatPrice(book.Price),
		book.ISBN,
		book.UpdatedAt,
	)
	if err != nil {
		return mapBookWriteErr("update book", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	b, err := scanBook(r.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	return b, nil
}

func (r *BookRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, id)
}

func (r *BookRepository) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE isbn = $1)`, isbn)
}

func (r *BookRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("book exists: %w", err)
	}
	return exists, nil
}

// FindPage returns one sorted page and the total number of books.
func (r *BookRepository) FindPage(ctx context.Context, req domain.PageRequest) ([]*domain.Book, int64, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + bookColumns + ` FROM books ORDER BY ` + orderBy(req) + ` LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, req.Size, req.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.Book, 0, req.Size)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan book: %w", err)
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	return items, total, nil
}

func orderBy(req domain.PageRequest) string {
	col, ok := sortColumns[req.SortField]
	if !ok {
		col = sortColumns[domain.SortByTitle]
	}
	dir := "ASC"
	if req.Direction == domain.SortDesc {
		dir = "DESC"
	}
	if col == "id" {
		return "id " + dir
	}
	return col + " " + dir + ", id ASC"
}

func (r *BookRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}
