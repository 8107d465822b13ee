package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

func TestUserHandler_Profile(t *testing.T) {
	var got domain.Principal
	stub := &stubIdentityService{
		profileFn: func(ctx context.Context, caller domain.Principal) (*domain.User, error) {
			got = caller
			return sampleUser(), nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/users/profile", nil, userPrincipal)

	require.NoError(t, NewUserHandler(stub).Profile(c))
	assert.Equal(t, userPrincipal, got)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestUserHandler_List(t *testing.T) {
	stub := &stubIdentityService{
		listFn: func(ctx context.Context, caller domain.Principal) ([]*domain.User, error) {
			return []*domain.User{sampleUser()}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/users", nil, adminPrincipal)

	require.NoError(t, NewUserHandler(stub).List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `[{"id":7`)
}

func TestUserHandler_ListByRole_CaseInsensitive(t *testing.T) {
	var got domain.Role
	stub := &stubIdentityService{
		listByRoleFn: func(ctx context.Context, caller domain.Principal, role domain.Role) ([]*domain.User, error) {
			got = role
			return nil, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/users/role/admin", nil, adminPrincipal)
	c.SetParamNames("role")
	c.SetParamValues("admin")

	require.NoError(t, NewUserHandler(stub).ListByRole(c))
	assert.Equal(t, domain.RoleAdmin, got)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUserHandler_ChangeRole(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		role    string
		wantErr error
	}{
		{name: "promote", id: "7", role: "ADMIN"},
		{name: "unknown role", id: "7", role: "ROOT", wantErr: domain.ErrInvalidRole},
		{name: "bad id", id: "-1", role: "USER", wantErr: domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubIdentityService{
				changeRoleFn: func(ctx context.Context, caller domain.Principal, id int64, role domain.Role) (*domain.User, error) {
					u := sampleUser()
					u.ID, u.Role = id, role
					return u, nil
				},
			}
			c, rec := newContext(http.MethodPut, "/api/users/"+tt.id+"/role?role="+tt.role, nil, adminPrincipal)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)

			err := NewUserHandler(stub).ChangeRole(c)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, rec.Body.String(), `"role":"ADMIN"`)
		})
	}
}

func TestUserHandler_Delete(t *testing.T) {
	stub := &stubIdentityService{
		deleteFn: func(ctx context.Context, caller domain.Principal, id int64) error {
			if id == 99 {
				return domain.ErrUserNotFound
			}
			return nil
		},
	}

	c, rec := newContext(http.MethodDelete, "/api/users/7", nil, adminPrincipal)
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, NewUserHandler(stub).Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, _ = newContext(http.MethodDelete, "/api/users/99", nil, adminPrincipal)
	c.SetParamNames("id")
	c.SetParamValues("99")
	assert.ErrorIs(t, NewUserHandler(stub).Delete(c), domain.ErrNotFound)
}

func TestUserHandler_Counts(t *testing.T) {
	stub := &stubIdentityService{
		countFn: func(ctx context.Context, caller domain.Principal) (int64, error) {
			return 5, nil
		},
		countByRoleFn: func(ctx context.Context, caller domain.Principal, role domain.Role) (int64, error) {
			if role == domain.RoleAdmin {
				return 1, nil
			}
			return 4, nil
		},
	}

	c, rec := newContext(http.MethodGet, "/api/users/count", nil, adminPrincipal)
	require.NoError(t, NewUserHandler(stub).Count(c))
	assert.JSONEq(t, `{"count":5}`, rec.Body.String())

	c, rec = newContext(http.MethodGet, "/api/users/count/role/ADMIN", nil, adminPrincipal)
	c.SetParamNames("role")
	c.SetParamValues("ADMIN")
	require.NoError(t, NewUserHandler(stub).CountByRole(c))
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())
}
