package ports

import (
	"time"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

// PasswordHasher produces and checks salted one-way password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify returns false for a wrong password and for a malformed digest.
	Verify(plaintext, digest string) bool
}

// TokenIssuer issues and verifies signed session tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
	Verify(token string) (domain.Principal, error)
}
