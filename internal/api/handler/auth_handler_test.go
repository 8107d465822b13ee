package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/closedigit/bookstore-api/internal/core/domain"
	"github.com/closedigit/bookstore-api/internal/core/ports"
)

func TestAuthHandler_Register_Success(t *testing.T) {
	expires := fixedTime.Add(24 * time.Hour)
	stub := &stubIdentityService{
		signUpFn: func(ctx context.Context, username, email, password string) (*ports.Session, error) {
			if username != "alice" || email != "alice@example.com" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s %s", username, email, password)
			}
			return &ports.Session{Token: "tok", ExpiresAt: expires, User: sampleUser()}, nil
		},
	}
	handler := NewAuthHandler(stub)

	body := strings.NewReader(`{"username":"alice","email":"alice@example.com","password":"secret1"}`)
	c, rec := newContext(http.MethodPost, "/api/auth/register", body, domain.Anonymous)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "tok" || resp["type"] != "Bearer" {
		t.Fatalf("unexpected token payload: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["username"] != "alice" || user["role"] != "USER" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatal("password hash must not be rendered")
	}
}

func TestAuthHandler_Register_UsernameTaken(t *testing.T) {
	stub := &stubIdentityService{
		signUpFn: func(ctx context.Context, username, email, password string) (*ports.Session, error) {
			return nil, domain.ErrUsernameTaken
		},
	}
	handler := NewAuthHandler(stub)

	body := strings.NewReader(`{"username":"bob","email":"bob@example.com","password":"secret1"}`)
	c, _ := newContext(http.MethodPost, "/api/auth/register", body, domain.Anonymous)

	if err := handler.Register(c); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubIdentityService{
		signUpFn: func(ctx context.Context, username, email, password string) (*ports.Session, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	body := strings.NewReader(`{"username":"ab","email":"nope","password":"123"}`)
	c, _ := newContext(http.MethodPost, "/api/auth/register", body, domain.Anonymous)

	err := handler.Register(c)
	var ve domain.ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	fields := ve.Fields()
	for _, f := range []string{"username", "email", "password"} {
		if _, ok := fields[f]; !ok {
			t.Fatalf("expected %q to be reported, got %+v", f, fields)
		}
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubIdentityService{
		loginFn: func(ctx context.Context, username, password string) (*ports.Session, error) {
			return &ports.Session{Token: "tok", ExpiresAt: fixedTime, User: sampleUser()}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newContext(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"alice","password":"secret1"}`), domain.Anonymous)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"expires_at":"2024-03-01T12:00:00Z"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubIdentityService{
		loginFn: func(ctx context.Context, username, password string) (*ports.Session, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newContext(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"alice","password":"wrong"}`), domain.Anonymous)

	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
