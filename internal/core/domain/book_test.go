package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortField(t *testing.T) {
	tests := map[string]SortField{
		"title":           SortByTitle,
		"TITLE":           SortByTitle,
		"price":           SortByPrice,
		"publicationDate": SortByPublicationDate,
		"publisheddate":   SortByPublicationDate,
		"key":             SortByISBN,
		"isbn":            SortByISBN,
		"id":              SortByID,
		"password":        SortByTitle,
		"":                SortByTitle,
		"title; drop":     SortByTitle,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseSortField(in), in)
	}
}

func TestParseSortDirection(t *testing.T) {
	assert.Equal(t, SortDesc, ParseSortDirection("desc"))
	assert.Equal(t, SortDesc, ParseSortDirection("DESC"))
	assert.Equal(t, SortAsc, ParseSortDirection("asc"))
	assert.Equal(t, SortAsc, ParseSortDirection("sideways"))
	assert.Equal(t, SortAsc, ParseSortDirection(""))
}

func TestBookNormalize(t *testing.T) {
	b := &Book{
		Title:         "  Dune ",
		Author:        " Frank Herbert ",
		Genre:         " Sci-Fi ",
		ISBN:          " 9780441172719 ",
		PublishedDate: time.Date(1965, 8, 1, 15, 30, 0, 0, time.FixedZone("X", 3600)),
	}
	b.Normalize()

	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "Frank Herbert", b.Author)
	assert.Equal(t, "Sci-Fi", b.Genre)
	assert.Equal(t, "9780441172719", b.ISBN)
	assert.Equal(t, time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC), b.PublishedDate)
}

func TestBookCloneCopiesPrice(t *testing.T) {
	price, ok := ParsePrice("9.99")
	require.True(t, ok)
	b := &Book{Title: "A", Price: price}

	clone := b.Clone()
	clone.Price.SetFloat64(1)

	assert.Equal(t, "9.99", FormatPrice(b.Price))
	assert.Nil(t, (*Book)(nil).Clone())
}

func TestFormatPrice(t *testing.T) {
	p, ok := ParsePrice("12.5")
	require.True(t, ok)
	assert.Equal(t, "12.50", FormatPrice(p))
	assert.Equal(t, "", FormatPrice(nil))

	_, ok = ParsePrice("abc")
	assert.False(t, ok)
}

func TestPageRequestOffset(t *testing.T) {
	assert.Equal(t, int64(20), PageRequest{Page: 2, Size: 10}.Offset())
	assert.Equal(t, int64(0), PageRequest{Page: 0, Size: 10}.Offset())
	assert.Equal(t, int64(math.MaxInt32)*100, PageRequest{Page: MaxPage, Size: MaxPageSize}.Offset())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("root")
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserPublicClearsHash(t *testing.T) {
	u := &User{ID: 1, Username: "a", PasswordHash: "secret"}
	pub := u.Public()

	assert.Empty(t, pub.PasswordHash)
	assert.Equal(t, "secret", u.PasswordHash)
}

func TestPrincipal(t *testing.T) {
	assert.False(t, Anonymous.Authenticated())
	assert.True(t, PrincipalOf(&User{ID: 3, Username: "u", Role: RoleUser}).Authenticated())
}
