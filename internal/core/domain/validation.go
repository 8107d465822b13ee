package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	isbn10 = regexp.MustCompile(`^[0-9]{10}$`)
	isbn13 = regexp.MustCompile(`^[0-9]{13}$`)

	fieldValidator = validator.New()
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 50
	PasswordMinLen = 6
	PasswordMaxLen = 72
	TitleMaxLen    = 100
	AuthorMaxLen   = 50
	GenreMaxLen    = 50

	priceMaxScale         = 2
	priceMaxIntegerDigits = 10
)

// IsValidISBN reports whether raw, after trimming, is exactly 10 or exactly
// 13 ASCII digits. It is a format check only; no check digit is computed.
func IsValidISBN(raw string) bool {
	s := strings.TrimSpace(raw)
	switch len(s) {
	case 10:
		return isbn10.MatchString(s)
	case 13:
		return isbn13.MatchString(s)
	}
	return false
}

// IsValidEmail reports whether s has the shape of an email address.
func IsValidEmail(s string) bool {
	return fieldValidator.Var(strings.TrimSpace(s), "required,email") == nil
}

// IsValidUsernameLength reports whether the trimmed username has 3 to 50 characters.
func IsValidUsernameLength(s string) bool {
	return lengthBetween(strings.TrimSpace(s), UsernameMinLen, UsernameMaxLen)
}

// IsValidPasswordLength reports whether the password has at least 6
// characters and fits in 72 bytes, the most bcrypt will hash.
func IsValidPasswordLength(s string) bool {
	return utf8.RuneCountInString(s) >= PasswordMinLen && len(s) <= PasswordMaxLen
}

func lengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors collects every invalid field of one input.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() error { return ErrValidation }

// Fields maps field name to message.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		out[fe.Field] = fe.Message
	}
	return out
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// ValidateRegistration checks the registration fields and returns
// ValidationErrors when any of them is malformed.
func ValidateRegistration(username, email, password string) error {
	var errs ValidationErrors
	if !IsValidUsernameLength(username) {
		errs = append(errs, FieldError{"username", fmt.Sprintf("must be between %d and %d characters", UsernameMinLen, UsernameMaxLen)})
	}
	if !IsValidEmail(email) {
		errs = append(errs, FieldError{"email", "must be a valid email"})
	}
	if !IsValidPasswordLength(password) {
		errs = append(errs, FieldError{"password", fmt.Sprintf("must be between %d and %d characters", PasswordMinLen, PasswordMaxLen)})
	}
	return errs.orNil()
}

// ValidateBook checks every field of b except the ISBN, which callers
// validate separately so that it can report ErrInvalidISBN. b is expected to
// be normalized.
func ValidateBook(b *Book) error {
	var errs ValidationErrors
	if !lengthBetween(b.Title, 1, TitleMaxLen) {
		errs = append(errs, FieldError{"title", fmt.Sprintf("must be between 1 and %d characters", TitleMaxLen)})
	}
	if !lengthBetween(b.Author, 1, AuthorMaxLen) {
		errs = append(errs, FieldError{"author", fmt.Sprintf("must be between 1 and %d characters", AuthorMaxLen)})
	}
	if b.PublishedDate.IsZero() {
		errs = append(errs, FieldError{"published_date", "is required"})
	}
	if utf8.RuneCountInString(b.Genre) > GenreMaxLen {
		errs = append(errs, FieldError{"genre", fmt.Sprintf("must not exceed %d characters", GenreMaxLen)})
	}
	if msg := checkPrice(b); msg != "" {
		errs = append(errs, FieldError{"price", msg})
	}
	return errs.orNil()
}

func checkPrice(b *Book) string {
	p := b.Price
	switch {
	case p == nil:
		return "is required"
	case !p.IsFinite() || p.Sign() <= 0:
		return "must be greater than 0"
	case p.Scale() > priceMaxScale:
		return "must have at most 2 decimal places"
	case p.Precision()-p.Scale() > priceMaxIntegerDigits:
		return "must have at most 10 integer digits"
	}
	return ""
}
