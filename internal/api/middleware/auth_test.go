package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/closedigit/bookstore-api/internal/core/domain"
	"github.com/closedigit/bookstore-api/internal/core/security"
)

func newTokens() *security.TokenService {
	return security.NewTokenService("secret", time.Hour, "bookstore-api")
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := newTokens()
	signed, _, err := tokens.Issue(&domain.User{ID: 5, Username: "alice", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(tokens)(func(c echo.Context) error {
		called = true
		p := Principal(c)
		if p.UserID != 5 || p.Username != "alice" || p.Role != domain.RoleAdmin {
			t.Fatalf("unexpected principal: %+v", p)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeaderIsAnonymous(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(newTokens())(func(c echo.Context) error {
		called = true
		if Principal(c).Authenticated() {
			t.Fatalf("expected anonymous principal")
		}
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer", "Bearer   "} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		c := e.NewContext(req, httptest.NewRecorder())

		handler := Auth(newTokens())(func(c echo.Context) error {
			t.Fatalf("should not reach next")
			return nil
		})

		if err := handler(c); !errors.Is(err, domain.ErrTokenMalformed) {
			t.Fatalf("header %q: expected ErrTokenMalformed, got %v", header, err)
		}
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(newTokens())(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	old := security.NewTokenService("secret", time.Hour, "bookstore-api").WithClock(func() time.Time { return past })
	signed, _, _ := old.Issue(&domain.User{ID: 5, Username: "alice", Role: domain.RoleUser})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	c := e.NewContext(req, httptest.NewRecorder())

	err := Auth(newTokens())(func(echo.Context) error { return nil })(c)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
