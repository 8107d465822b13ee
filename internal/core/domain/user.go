package domain

import (
	"strings"
	"time"
)

// Role is the coarse permission level of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole accepts a role name in any letter case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// User models a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns a copy of u with the password hash cleared.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
