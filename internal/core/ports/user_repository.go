package ports

import (
	"context"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

// UserRepository is the credential store. Implementations must enforce
// username and email uniqueness themselves and report violations as
// domain.ErrUsernameTaken / domain.ErrEmailTaken.
type UserRepository interface {
	// FindByID, FindByUsername and FindByEmail return domain.ErrUserNotFound when absent.
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create assigns a fresh ID and returns the stored user.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update replaces the stored user with the same ID.
	Update(ctx context.Context, user *domain.User) error
	DeleteByID(ctx context.Context, id int64) error

	List(ctx context.Context) ([]*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}
