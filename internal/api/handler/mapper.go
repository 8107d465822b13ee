package handler

import (
	"encoding/json"
	"time"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

// --- Request → domain ---

func toBook(req bookRequest) (*domain.Book, error) {
	published, err := time.Parse(dateLayout, req.PublishedDate)
	if err != nil {
		return nil, domain.ValidationErrors{{Field: "published_date", Message: "must be a date in the format " + dateLayout}}
	}
	price, ok := domain.ParsePrice(req.Price.String())
	if !ok {
		return nil, domain.ValidationErrors{{Field: "price", Message: "must be a decimal number"}}
	}
	return &domain.Book{
		Title:         req.Title,
		Author:        req.Author,
		PublishedDate: published,
		Genre:         req.Genre,
		Price:         price,
		ISBN:          req.ISBN,
	}, nil
}

// --- domain → HTTP response ---

func toBookResponse(b *domain.Book) bookResponse {
	return bookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		PublishedDate: b.PublishedDate.Format(dateLayout),
		Genre:         b.Genre,
		Price:         json.Number(domain.FormatPrice(b.Price)),
		ISBN:          b.ISBN,
		CreatedAt:     b.CreatedAt.UTC(),
		UpdatedAt:     b.UpdatedAt.UTC(),
	}
}

func toBookPageResponse(p *domain.BookPage) bookPageResponse {
	content := make([]bookResponse, 0, len(p.Items))
	for _, b := range p.Items {
		content = append(content, toBookResponse(b))
	}
	return bookPageResponse{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalItems,
		TotalPages:    p.TotalPages,
		SortBy:        string(p.SortField),
		SortDir:       string(p.Direction),
	}
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
