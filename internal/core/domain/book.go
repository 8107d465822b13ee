package domain

import (
	"math"
	"strings"
	"time"

	"github.com/ericlagergren/decimal"
)

// Book is a catalog entry. ISBN is the unique catalog key.
type Book struct {
	ID            int64
	Title         string
	Author        string
	PublishedDate time.Time
	Genre         string
	Price         *decimal.Big
	ISBN          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Normalize trims surrounding whitespace from every text field.
func (b *Book) Normalize() {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Genre = strings.TrimSpace(b.Genre)
	b.ISBN = strings.TrimSpace(b.ISBN)
	if !b.PublishedDate.IsZero() {
		y, m, d := b.PublishedDate.Date()
		b.PublishedDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}

// Clone returns a deep copy, including the price.
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	clone := *b
	if b.Price != nil {
		clone.Price = new(decimal.Big).Copy(b.Price)
	}
	return &clone
}

// FormatPrice renders p with exactly two fractional digits.
func FormatPrice(p *decimal.Big) string {
	if p == nil {
		return ""
	}
	return new(decimal.Big).Copy(p).Quantize(2).String()
}

// ParsePrice parses a decimal string such as "32.99".
func ParsePrice(s string) (*decimal.Big, bool) {
	return new(decimal.Big).SetString(strings.TrimSpace(s))
}

// SortField is a catalog column that listings may be ordered by.
type SortField string

const (
	SortByID              SortField = "id"
	SortByTitle           SortField = "title"
	SortByAuthor          SortField = "author"
	SortByPublicationDate SortField = "publicationDate"
	SortByGenre           SortField = "genre"
	SortByPrice           SortField = "price"
	SortByISBN            SortField = "key"
)

var sortFields = map[string]SortField{
	"id":              SortByID,
	"title":           SortByTitle,
	"author":          SortByAuthor,
	"publicationdate": SortByPublicationDate,
	"publisheddate":   SortByPublicationDate,
	"genre":           SortByGenre,
	"price":           SortByPrice,
	"key":             SortByISBN,
	"isbn":            SortByISBN,
}

// ParseSortField matches s case-insensitively against the allow-list.
// Unknown values fall back to title.
func ParseSortField(s string) SortField {
	if f, ok := sortFields[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f
	}
	return SortByTitle
}

// SortDirection orders a listing.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection returns SortDesc only for "desc" in any case.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage bounds the page index so Offset stays far from int64 overflow.
	MaxPage = math.MaxInt32
)

// PageRequest selects one zero-based page of the catalog.
type PageRequest struct {
	Page      int
	Size      int
	SortField SortField
	Direction SortDirection
}

// Offset is the number of rows skipped before this page.
func (p PageRequest) Offset() int64 {
	return int64(p.Page) * int64(p.Size)
}

// BookPage is one page of a sorted catalog listing.
type BookPage struct {
	Items      []*Book
	Page       int
	Size       int
	TotalItems int64
	TotalPages int
	SortField  SortField
	Direction  SortDirection
}
