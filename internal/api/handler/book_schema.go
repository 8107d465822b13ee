package handler

import (
	"encoding/json"
	"time"
)

const dateLayout = "2006-01-02"

// bookRequest is the create/update payload. Price accepts a JSON number or a
// numeric string such as "32.99".
type bookRequest struct {
	Title         string      `json:"title"          validate:"required,max=100"`
	Author        string      `json:"author"         validate:"required,max=50"`
	PublishedDate string      `json:"published_date" validate:"required,datetime=2006-01-02"`
	Genre         string      `json:"genre"          validate:"max=50"`
	Price         json.Number `json:"price"          validate:"required"`
	ISBN          string      `json:"isbn"`
}

type bookResponse struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Author        string      `json:"author"`
	PublishedDate string      `json:"published_date"`
	Genre         string      `json:"genre,omitempty"`
	Price         json.Number `json:"price" swaggertype:"number"`
	ISBN          string      `json:"isbn"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type listBooksQuery struct {
	Page    int    `query:"page"`
	Size    int    `query:"size"`
	SortBy  string `query:"sortBy"`
	SortDir string `query:"sortDir"`
}

type bookPageResponse struct {
	Content       []bookResponse `json:"content"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int64          `json:"total_elements"`
	TotalPages    int            `json:"total_pages"`
	SortBy        string         `json:"sort_by"`
	SortDir       string         `json:"sort_dir"`
}
