package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/closedigit/bookstore-api/internal/core/authz"
	"github.com/closedigit/bookstore-api/internal/core/domain"
	"github.com/closedigit/bookstore-api/internal/core/ports"
)

// BookCache abstracts the read-through book cache (Redis).
//
// A read that misses fills the cache with Fill, which never replaces an
// existing entry. Mutations go through Put and Delete, which always win
// over a concurrent Fill, so a book read before an update or delete cannot
// land in the cache afterwards.
type BookCache interface {
	Get(ctx context.Context, id int64) (*domain.Book, bool, error)
	// Fill stores book only if nothing is cached for its id.
	Fill(ctx context.Context, book *domain.Book) error
	// Put stores book unless the cached entry carries a newer UpdatedAt.
	Put(ctx context.Context, book *domain.Book) error
	// Delete replaces the entry with a tombstone that reads as a miss.
	Delete(ctx context.Context, id int64) error
}

type catalogService struct {
	books ports.BookRepository
	cache BookCache
	audit ports.AuditRecorder
	log   zerolog.Logger
	now   func() time.Time
}

// NewCatalogService returns a CatalogService implementation. cache and audit
// may be nil.
func NewCatalogService(
	books ports.BookRepository,
	cache BookCache,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) ports.CatalogService {
	return &catalogService{
		books: books,
		cache: cache,
		audit: audit,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *catalogService) List(ctx context.Context, caller domain.Principal, req domain.PageRequest) (*domain.BookPage, error) {
	if err := authz.Authorize(caller, authz.CatalogList); err != nil {
		return nil, err
	}

	req = normalizePageRequest(req)
	items, total, err := s.books.FindPage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	return &domain.BookPage{
		Items:      items,
		Page:       req.Page,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: int((total + int64(req.Size) - 1) / int64(req.Size)),
		SortField:  req.SortField,
		Direction:  req.Direction,
	}, nil
}

// normalizePageRequest clamps paging and resolves sort options against the
// allow-list. An unknown sort field becomes title. A page past MaxPage is
// clamped so the offset never overflows; such a page is simply empty.
func normalizePageRequest(req domain.PageRequest) domain.PageRequest {
	if req.Page < 0 {
		req.Page = 0
	}
	switch {
	case req.Size <= 0:
		req.Size = domain.DefaultPageSize
	case req.Size > domain.MaxPageSize:
		req.Size = domain.MaxPageSize
	}
	if req.Page > domain.MaxPage {
		req.Page = domain.MaxPage
	}
	req.SortField = domain.ParseSortField(string(req.SortField))
	req.Direction = domain.ParseSortDirection(string(req.Direction))
	return req
}

func (s *catalogService) Get(ctx context.Context, caller domain.Principal, id int64) (*domain.Book, error) {
	if err := authz.Authorize(caller, authz.CatalogRead); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Int64("book_id", id).Msg("cache read failed, falling back to store")
		} else if ok {
			return cached, nil
		}
	}

	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeErr("get book", err)
	}

	if s.cache != nil {
		if err := s.cache.Fill(ctx, book); err != nil {
			s.log.Warn().Err(err).Int64("book_id", id).Msg("cache fill failed")
		}
	}
	return book, nil
}

// Create validates fields before the ISBN so a USER or a malformed payload
// never reaches the store.
func (s *catalogService) Create(ctx context.Context, caller domain.Principal, book *domain.Book) (*domain.Book, error) {
	if err := authz.Authorize(caller, authz.CatalogCreate); err != nil {
		return nil, err
	}

	in := book.Clone()
	in.Normalize()
	if err := domain.ValidateBook(in); err != nil {
		return nil, err
	}
	if err := s.checkISBN(ctx, in.ISBN); err != nil {
		return nil, err
	}

	now := s.now()
	in.ID = 0
	in.CreatedAt = now
	in.UpdatedAt = now

	created, err := s.books.Create(ctx, in)
	if err != nil {
		return nil, s.storeErr("create book", err)
	}

	s.log.Info().Int64("book_id", created.ID).Str("isbn", created.ISBN).Msg("book created")
	s.record(caller, domain.AuditBookCreated, created.ID, map[string]string{"isbn": created.ISBN})
	return created, nil
}

// Update replaces every mutable field. The ISBN checks only run when the
// ISBN actually changes, so resubmitting a book's own ISBN never conflicts.
func (s *catalogService) Update(ctx context.Context, caller domain.Principal, id int64, book *domain.Book) (*domain.Book, error) {
	if err := authz.Authorize(caller, authz.CatalogUpdate); err != nil {
		return nil, err
	}

	existing, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeErr("update book", err)
	}

	in := book.Clone()
	in.Normalize()
	if err := domain.ValidateBook(in); err != nil {
		return nil, err
	}
	if in.ISBN != existing.ISBN {
		if err := s.checkISBN(ctx, in.ISBN); err != nil {
			return nil, err
		}
	}

	in.ID = existing.ID
	in.CreatedAt = existing.CreatedAt
	in.UpdatedAt = s.now()
	if err := s.books.Update(ctx, in); err != nil {
		return nil, s.storeErr("update book", err)
	}
	s.writeThrough(ctx, in)

	s.log.Info().Int64("book_id", id).Msg("book updated")
	details := map[string]string{"isbn": in.ISBN}
	if in.ISBN != existing.ISBN {
		details["previous_isbn"] = existing.ISBN
	}
	s.record(caller, domain.AuditBookUpdated, id, details)
	return in, nil
}

func (s *catalogService) Delete(ctx context.Context, caller domain.Principal, id int64) error {
	if err := authz.Authorize(caller, authz.CatalogDelete); err != nil {
		return err
	}

	exists, err := s.books.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if !exists {
		return domain.ErrBookNotFound
	}
	if err := s.books.DeleteByID(ctx, id); err != nil {
		return s.storeErr("delete book", err)
	}
	s.invalidate(ctx, id)

	s.log.Info().Int64("book_id", id).Msg("book deleted")
	s.record(caller, domain.AuditBookDeleted, id, nil)
	return nil
}

func (s *catalogService) checkISBN(ctx context.Context, isbn string) error {
	if !domain.IsValidISBN(isbn) {
		return domain.ErrInvalidISBN
	}
	taken, err := s.books.ExistsByISBN(ctx, isbn)
	if err != nil {
		return fmt.Errorf("check isbn: %w", err)
	}
	if taken {
		return domain.ErrISBNTaken
	}
	return nil
}

func (s *catalogService) writeThrough(ctx context.Context, book *domain.Book) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, book); err != nil {
		s.log.Warn().Err(err).Int64("book_id", book.ID).Msg("cache write-through failed, evicting")
		s.invalidate(ctx, book.ID)
	}
}

func (s *catalogService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn().Err(err).Int64("book_id", id).Msg("cache invalidation failed")
	}
}

func (s *catalogService) record(caller domain.Principal, action domain.AuditAction, id int64, details map[string]string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuditEvent{
		Action:     action,
		Entity:     "book",
		EntityID:   id,
		ActorID:    caller.UserID,
		Actor:      caller.Username,
		OccurredAt: s.now(),
		Details:    details,
	})
}

// storeErr passes domain errors through and wraps everything else.
func (s *catalogService) storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
		return err
	}
	s.log.Error().Err(err).Str("op", op).Msg("catalog store failure")
	return fmt.Errorf("%s: %w", op, err)
}
