package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

// Claims is the JWT payload of a session token. The subject carries the
// user ID in decimal.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration, issuer string) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

func (s *TokenService) Issue(user *domain.User) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *TokenService) Verify(token string) (domain.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil && parsed.Valid:
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.Anonymous, domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.Anonymous, domain.ErrTokenSignatureInvalid
	default:
		return domain.Anonymous, domain.ErrTokenMalformed
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.Anonymous, domain.ErrTokenMalformed
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Anonymous, domain.ErrTokenMalformed
	}
	return domain.Principal{UserID: id, Username: claims.Username, Role: role}, nil
}
