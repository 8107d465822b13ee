package ports

import (
	"context"
	"time"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

// Session is the result of a successful login or registration.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// IdentityService covers registration, login and user administration.
// Every method taking a Principal is gated by the authorization table.
type IdentityService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	SignUp(ctx context.Context, username, email, password string) (*Session, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*Session, error)

	Profile(ctx context.Context, caller domain.Principal) (*domain.User, error)
	GetByID(ctx context.Context, caller domain.Principal, id int64) (*domain.User, error)
	List(ctx context.Context, caller domain.Principal) ([]*domain.User, error)
	ListByRole(ctx context.Context, caller domain.Principal, role domain.Role) ([]*domain.User, error)
	ChangeRole(ctx context.Context, caller domain.Principal, id int64, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, caller domain.Principal, id int64) error
	Count(ctx context.Context, caller domain.Principal) (int64, error)
	CountByRole(ctx context.Context, caller domain.Principal, role domain.Role) (int64, error)
}
