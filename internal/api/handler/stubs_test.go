package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/closedigit/bookstore-api/internal/api/middleware"
	"github.com/closedigit/bookstore-api/internal/core/domain"
	"github.com/closedigit/bookstore-api/internal/core/ports"
)

type stubIdentityService struct {
	signUpFn      func(ctx context.Context, username, email, password string) (*ports.Session, error)
	loginFn       func(ctx context.Context, username, password string) (*ports.Session, error)
	profileFn     func(ctx context.Context, caller domain.Principal) (*domain.User, error)
	getByIDFn     func(ctx context.Context, caller domain.Principal, id int64) (*domain.User, error)
	listFn        func(ctx context.Context, caller domain.Principal) ([]*domain.User, error)
	listByRoleFn  func(ctx context.Context, caller domain.Principal, role domain.Role) ([]*domain.User, error)
	changeRoleFn  func(ctx context.Context, caller domain.Principal, id int64, role domain.Role) (*domain.User, error)
	deleteFn      func(ctx context.Context, caller domain.Principal, id int64) error
	countFn       func(ctx context.Context, caller domain.Principal) (int64, error)
	countByRoleFn func(ctx context.Context, caller domain.Principal, role domain.Role) (int64, error)
}

func (s *stubIdentityService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	session, err := s.SignUp(ctx, username, email, password)
	if err != nil {
		return nil, err
	}
	return session.User, nil
}

func (s *stubIdentityService) SignUp(ctx context.Context, username, email, password string) (*ports.Session, error) {
	return s.signUpFn(ctx, username, email, password)
}

func (s *stubIdentityService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	session, err := s.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return session.User, nil
}

func (s *stubIdentityService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubIdentityService) Profile(ctx context.Context, caller domain.Principal) (*domain.User, error) {
	return s.profileFn(ctx, caller)
}

func (s *stubIdentityService) GetByID(ctx context.Context, caller domain.Principal, id int64) (*domain.User, error) {
	return s.getByIDFn(ctx, caller, id)
}

func (s *stubIdentityService) List(ctx context.Context, caller domain.Principal) ([]*domain.User, error) {
	return s.listFn(ctx, caller)
}

func (s *stubIdentityService) ListByRole(ctx context.Context, caller domain.Principal, role domain.Role) ([]*domain.User, error) {
	return s.listByRoleFn(ctx, caller, role)
}

func (s *stubIdentityService) ChangeRole(ctx context.Context, caller domain.Principal, id int64, role domain.Role) (*domain.User, error) {
	return s.changeRoleFn(ctx, caller, id, role)
}

func (s *stubIdentityService) Delete(ctx context.Context, caller domain.Principal, id int64) error {
	return s.deleteFn(ctx, caller, id)
}

func (s *stubIdentityService) Count(ctx context.Context, caller domain.Principal) (int64, error) {
	return s.countFn(ctx, caller)
}

func (s *stubIdentityService) CountByRole(ctx context.Context, caller domain.Principal, role domain.Role) (int64, error) {
	return s.countByRoleFn(ctx, caller, role)
}

type stubCatalogService struct {
	listFn   func(ctx context.Context, caller domain.Principal, req domain.PageRequest) (*domain.BookPage, error)
	getFn    func(ctx context.Context, caller domain.Principal, id int64) (*domain.Book, error)
	createFn func(ctx context.Context, caller domain.Principal, book *domain.Book) (*domain.Book, error)
	updateFn func(ctx context.Context, caller domain.Principal, id int64, book *domain.Book) (*domain.Book, error)
	deleteFn func(ctx context.Context, caller domain.Principal, id int64) error
}

func (s *stubCatalogService) List(ctx context.Context, caller domain.Principal, req domain.PageRequest) (*domain.BookPage, error) {
	return s.listFn(ctx, caller, req)
}

func (s *stubCatalogService) Get(ctx context.Context, caller domain.Principal, id int64) (*domain.Book, error) {
	return s.getFn(ctx, caller, id)
}

func (s *stubCatalogService) Create(ctx context.Context, caller domain.Principal, book *domain.Book) (*domain.Book, error) {
	return s.createFn(ctx, caller, book)
}

func (s *stubCatalogService) Update(ctx context.Context, caller domain.Principal, id int64, book *domain.Book) (*domain.Book, error) {
	return s.updateFn(ctx, caller, id, book)
}

func (s *stubCatalogService) Delete(ctx context.Context, caller domain.Principal, id int64) error {
	return s.deleteFn(ctx, caller, id)
}

var (
	adminPrincipal = domain.Principal{UserID: 1, Username: "admin", Role: domain.RoleAdmin}
	userPrincipal  = domain.Principal{UserID: 2, Username: "user", Role: domain.RoleUser}
	fixedTime      = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

// newContext builds an echo context carrying the given principal.
func newContext(method, target string, body io.Reader, principal domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.PrincipalKey, principal)
	return c, rec
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:        7,
		Username:  "alice",
		Email:     "alice@example.com",
		Role:      domain.RoleUser,
		CreatedAt: fixedTime,
		UpdatedAt: fixedTime,
	}
}

func sampleBook() *domain.Book {
	price, _ := domain.ParsePrice("32.99")
	return &domain.Book{
		ID:            3,
		Title:         "Clean Code",
		Author:        "Robert C. Martin",
		PublishedDate: time.Date(2008, 8, 1, 0, 0, 0, 0, time.UTC),
		Genre:         "Programming",
		Price:         price,
		ISBN:          "9780132350884",
		CreatedAt:     fixedTime,
		UpdatedAt:     fixedTime,
	}
}
