package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error the core returns on a normal failure path wraps
// exactly one of these, so callers only need errors.Is against the kind.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

var (
	ErrInvalidISBN = fmt.Errorf("%w: invalid ISBN format", ErrValidation)
	ErrInvalidRole = fmt.Errorf("%w: unknown role", ErrValidation)

	ErrUsernameTaken = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("%w: email already exists", ErrConflict)
	ErrISBNTaken     = fmt.Errorf("%w: book with this ISBN already exists", ErrConflict)
	ErrSelfTarget    = fmt.Errorf("%w: admins cannot change the role of or delete their own account", ErrConflict)

	ErrUserNotFound = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrBookNotFound = fmt.Errorf("%w: book not found", ErrNotFound)

	ErrTokenMalformed        = fmt.Errorf("%w: malformed token", ErrUnauthenticated)
	ErrTokenSignatureInvalid = fmt.Errorf("%w: token signature is invalid", ErrUnauthenticated)
	ErrTokenExpired          = fmt.Errorf("%w: token has expired", ErrUnauthenticated)
)

// Code returns the stable machine-readable code for a core error, or an
// empty string when err is not one of ours.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidISBN):
		return "INVALID_KEY"
	case errors.Is(err, ErrUsernameTaken):
		return "USERNAME_TAKEN"
	case errors.Is(err, ErrEmailTaken):
		return "EMAIL_TAKEN"
	case errors.Is(err, ErrISBNTaken):
		return "KEY_TAKEN"
	case errors.Is(err, ErrSelfTarget):
		return "SELF_TARGET"
	case errors.Is(err, ErrTokenMalformed):
		return "TOKEN_MALFORMED"
	case errors.Is(err, ErrTokenSignatureInvalid):
		return "TOKEN_SIGNATURE_INVALID"
	case errors.Is(err, ErrTokenExpired):
		return "TOKEN_EXPIRED"
	case errors.Is(err, ErrValidation):
		return "VALIDATION"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, ErrAccessDenied):
		return "ACCESS_DENIED"
	}
	return ""
}
