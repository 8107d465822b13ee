// Package authz holds the static role policy for every gated operation.
//
// The HTTP layer consults it before a handler decodes the request body and
// each service consults it again as its first step, so both enforcement
// points read the same table.
package authz

import (
	"fmt"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

// Operation identifies a gated use case.
type Operation string

const (
	CatalogList   Operation = "catalog:list"
	CatalogRead   Operation = "catalog:read"
	CatalogCreate Operation = "catalog:create"
	CatalogUpdate Operation = "catalog:update"
	CatalogDelete Operation = "catalog:delete"

	IdentityProfile    Operation = "identity:profile"
	IdentityList       Operation = "identity:list"
	IdentityRead       Operation = "identity:read"
	IdentityChangeRole Operation = "identity:change-role"
	IdentityDelete     Operation = "identity:delete"
	IdentityCount      Operation = "identity:count"
)

var (
	anyRole   = []domain.Role{domain.RoleUser, domain.RoleAdmin}
	adminOnly = []domain.Role{domain.RoleAdmin}
)

var policy = map[Operation][]domain.Role{
	CatalogList:   anyRole,
	CatalogRead:   anyRole,
	CatalogCreate: adminOnly,
	CatalogUpdate: adminOnly,
	CatalogDelete: adminOnly,

	IdentityProfile:    anyRole,
	IdentityList:       adminOnly,
	IdentityRead:       adminOnly,
	IdentityChangeRole: adminOnly,
	IdentityDelete:     adminOnly,
	IdentityCount:      adminOnly,
}

// Allowed reports whether role may perform op. Unknown operations are denied.
func Allowed(role domain.Role, op Operation) bool {
	for _, r := range policy[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize returns domain.ErrUnauthenticated for an anonymous caller and
// domain.ErrAccessDenied when the caller's role is not allowed to run op.
func Authorize(caller domain.Principal, op Operation) error {
	if !caller.Authenticated() {
		return domain.ErrUnauthenticated
	}
	if !Allowed(caller.Role, op) {
		return fmt.Errorf("%w: %s requires %v", domain.ErrAccessDenied, op, policy[op])
	}
	return nil
}

// Operations lists every operation in the table.
func Operations() []Operation {
	ops := make([]Operation, 0, len(policy))
	for op := range policy {
		ops = append(ops, op)
	}
	return ops
}
