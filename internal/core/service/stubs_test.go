package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

var errStoreDown = errors.New("store unavailable")

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
	err    error // if set, every call returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ExistsByID(_ context.Context, id int64) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.users[id]
	return ok, nil
}

func (r *stubUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *stubUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Create enforces uniqueness like the unique indexes of the real stores.
func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return nil, domain.ErrUsernameTaken
		}
		if existing.Email == u.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.nextID++
	stored := cloneUser(u)
	stored.ID = r.nextID
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *stubUserRepo) DeleteByID(_ context.Context, id int64) error {
	if r.err != nil {
		return r.err
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	return r.filter(func(*domain.User) bool { return true })
}

func (r *stubUserRepo) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	return r.filter(func(u *domain.User) bool { return u.Role == role })
}

func (r *stubUserRepo) Count(ctx context.Context) (int64, error) {
	users, err := r.List(ctx)
	return int64(len(users)), err
}

func (r *stubUserRepo) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	users, err := r.ListByRole(ctx, role)
	return int64(len(users)), err
}

func (r *stubUserRepo) filter(keep func(*domain.User) bool) ([]*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*domain.User
	for _, u := range r.users {
		if keep(u) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---------------------------------------------------------------------------
// Books
// ---------------------------------------------------------------------------

type stubBookRepo struct {
	books   map[int64]*domain.Book
	nextID  int64
	calls   int // number of calls of any kind
	lastReq domain.PageRequest
	// afterFind runs once, after FindByID has read the book and before it
	// returns, to interleave a concurrent mutation.
	afterFind func()
}

func newStubBookRepo() *stubBookRepo {
	return &stubBookRepo{books: make(map[int64]*domain.Book)}
}

func (r *stubBookRepo) FindByID(_ context.Context, id int64) (*domain.Book, error) {
	r.calls++
	b, ok := r.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	found := b.Clone()
	if hook := r.afterFind; hook != nil {
		r.afterFind = nil
		hook()
	}
	return found, nil
}

func (r *stubBookRepo) ExistsByID(_ context.Context, id int64) (bool, error) {
	r.calls++
	_, ok := r.books[id]
	return ok, nil
}

func (r *stubBookRepo) ExistsByISBN(_ context.Context, isbn string) (bool, error) {
	r.calls++
	for _, b := range r.books {
		if b.ISBN == isbn {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubBookRepo) FindPage(_ context.Context, req domain.PageRequest) ([]*domain.Book, int64, error) {
	r.calls++
	r.lastReq = req
	if req.Offset() < 0 {
		return nil, 0, fmt.Errorf("negative offset %d", req.Offset())
	}
	all := make([]*domain.Book, 0, len(r.books))
	for _, b := range r.books {
		all = append(all, b.Clone())
	}
	sort.Slice(all, func(i, j int) bool {
		c := compareBooks(all[i], all[j], req.SortField)
		if c == 0 {
			return all[i].ID < all[j].ID
		}
		if req.Direction == domain.SortDesc {
			return c > 0
		}
		return c < 0
	})

	if req.Offset() > int64(len(all)) {
		return []*domain.Book{}, int64(len(all)), nil
	}
	start := int(req.Offset())
	end := start + req.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func compareBooks(a, b *domain.Book, field domain.SortField) int {
	switch field {
	case domain.SortByID:
		return int(a.ID - b.ID)
	case domain.SortByAuthor:
		return strings.Compare(a.Author, b.Author)
	case domain.SortByPublicationDate:
		return a.PublishedDate.Compare(b.PublishedDate)
	case domain.SortByGenre:
		return strings.Compare(a.Genre, b.Genre)
	case domain.SortByPrice:
		return a.Price.Cmp(b.Price)
	case domain.SortByISBN:
		return strings.Compare(a.ISBN, b.ISBN)
	}
	return strings.Compare(a.Title, b.Title)
}

func (r *stubBookRepo) Create(_ context.Context, b *domain.Book) (*domain.Book, error) {
	r.calls++
	for _, existing := range r.books {
		if existing.ISBN == b.ISBN {
			return nil, domain.ErrISBNTaken
		}
	}
	r.nextID++
	stored := b.Clone()
	stored.ID = r.nextID
	r.books[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *stubBookRepo) Update(_ context.Context, b *domain.Book) error {
	r.calls++
	for _, existing := range r.books {
		if existing.ID != b.ID && existing.ISBN == b.ISBN {
			return domain.ErrISBNTaken
		}
	}
	r.books[b.ID] = b.Clone()
	return nil
}

func (r *stubBookRepo) DeleteByID(_ context.Context, id int64) error {
	r.calls++
	delete(r.books, id)
	return nil
}

func (r *stubBookRepo) Count(_ context.Context) (int64, error) {
	r.calls++
	return int64(len(r.books)), nil
}

// ---------------------------------------------------------------------------
// Side channels
// ---------------------------------------------------------------------------

// stubCache mirrors the Redis cache: Fill never replaces an entry, Put
// keeps the newer UpdatedAt, Delete leaves a tombstone.
type stubCache struct {
	books      map[int64]*domain.Book
	tombstones map[int64]bool
	getErr     error
	deletes    []int64
}

func newStubCache() *stubCache {
	return &stubCache{books: make(map[int64]*domain.Book), tombstones: make(map[int64]bool)}
}

func (c *stubCache) Get(_ context.Context, id int64) (*domain.Book, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	b, ok := c.books[id]
	return b.Clone(), ok, nil
}

func (c *stubCache) Fill(_ context.Context, b *domain.Book) error {
	if _, ok := c.books[b.ID]; ok || c.tombstones[b.ID] {
		return nil
	}
	c.books[b.ID] = b.Clone()
	return nil
}

func (c *stubCache) Put(_ context.Context, b *domain.Book) error {
	if cur, ok := c.books[b.ID]; ok && cur.UpdatedAt.After(b.UpdatedAt) {
		return nil
	}
	delete(c.tombstones, b.ID)
	c.books[b.ID] = b.Clone()
	return nil
}

func (c *stubCache) Delete(_ context.Context, id int64) error {
	c.deletes = append(c.deletes, id)
	delete(c.books, id)
	c.tombstones[id] = true
	return nil
}

type stubRecorder struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *stubRecorder) Record(e domain.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *stubRecorder) actions() []domain.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

// plainHasher keeps tests fast; the bcrypt hasher has its own tests.
type plainHasher struct {
	verifies int
}

func (h *plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func (h *plainHasher) Verify(p, digest string) bool {
	h.verifies++
	return digest == "hashed:"+p
}

type stubTokens struct{}

func (stubTokens) Issue(u *domain.User) (string, time.Time, error) {
	return "token-for-" + u.Username, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func (stubTokens) Verify(string) (domain.Principal, error) {
	return domain.Anonymous, domain.ErrTokenMalformed
}

var (
	adminCaller = domain.Principal{UserID: 900, Username: "admin", Role: domain.RoleAdmin}
	userCaller  = domain.Principal{UserID: 2, Username: "user", Role: domain.RoleUser}
)
