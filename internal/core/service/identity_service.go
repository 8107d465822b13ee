package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/closedigit/bookstore-api/internal/core/authz"
	"github.com/closedigit/bookstore-api/internal/core/domain"
	"github.com/closedigit/bookstore-api/internal/core/ports"
)

// timingPassword is hashed once at construction; unknown usernames are
// compared against its digest so a failed login costs the same either way.
const timingPassword = "bookstore-timing-equaliser"

type identityService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	audit  ports.AuditRecorder
	log    zerolog.Logger

	dummyDigest string
	now         func() time.Time
}

// NewIdentityService returns an IdentityService implementation. audit may be nil.
func NewIdentityService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) (ports.IdentityService, error) {
	digest, err := hasher.Hash(timingPassword)
	if err != nil {
		return nil, fmt.Errorf("identity service: %w", err)
	}
	return &identityService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		audit:       audit,
		log:         log,
		dummyDigest: digest,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register creates a USER account. Uniqueness is checked up front for a
// precise error and enforced again by the store on persist.
func (s *identityService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := domain.ValidateRegistration(username, email, password); err != nil {
		return nil, err
	}

	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if taken {
		return nil, domain.ErrUsernameTaken
	}
	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	created, err := s.createUser(ctx, username, email, password, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	s.record(domain.AuditEvent{
		Action:   domain.AuditUserRegistered,
		Entity:   "user",
		EntityID: created.ID,
		Actor:    created.Username,
	})
	return created.Public(), nil
}

func (s *identityService) createUser(ctx context.Context, username, email, password string, role domain.Role) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *identityService) SignUp(ctx context.Context, username, email, password string) (*ports.Session, error) {
	user, err := s.Register(ctx, username, email, password)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// Authenticate returns ErrInvalidCredentials for an unknown username and for
// a wrong password alike.
func (s *identityService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrUserNotFound) {
		s.hasher.Verify(password, s.dummyDigest)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user.Public(), nil
}

func (s *identityService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int64("user_id", user.ID).Msg("login succeeded")
	return s.session(user)
}

func (s *identityService) session(user *domain.User) (*ports.Session, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *identityService) Profile(ctx context.Context, caller domain.Principal) (*domain.User, error) {
	if err := authz.Authorize(caller, authz.IdentityProfile); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *identityService) GetByID(ctx context.Context, caller domain.Principal, id int64) (*domain.User, error) {
	if err := authz.Authorize(caller, authz.IdentityRead); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *identityService) List(ctx context.Context, caller domain.Principal) ([]*domain.User, error) {
	if err := authz.Authorize(caller, authz.IdentityList); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return publicUsers(users), nil
}

func (s *identityService) ListByRole(ctx context.Context, caller domain.Principal, role domain.Role) ([]*domain.User, error) {
	if err := authz.Authorize(caller, authz.IdentityList); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return publicUsers(users), nil
}

func (s *identityService) ChangeRole(ctx context.Context, caller domain.Principal, id int64, role domain.Role) (*domain.User, error) {
	if err := authz.Authorize(caller, authz.IdentityChangeRole); err != nil {
		return nil, err
	}
	if caller.UserID == id {
		return nil, domain.ErrSelfTarget
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := user.Role
	user.Role = role
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}

	s.log.Info().Int64("user_id", id).Str("from", string(previous)).Str("to", string(role)).Msg("user role changed")
	s.record(domain.AuditEvent{
		Action:   domain.AuditUserRoleChanged,
		Entity:   "user",
		EntityID: id,
		ActorID:  caller.UserID,
		Actor:    caller.Username,
		Details:  map[string]string{"from": string(previous), "to": string(role)},
	})
	return user.Public(), nil
}

func (s *identityService) Delete(ctx context.Context, caller domain.Principal, id int64) error {
	if err := authz.Authorize(caller, authz.IdentityDelete); err != nil {
		return err
	}
	if caller.UserID == id {
		return domain.ErrSelfTarget
	}
	exists, err := s.users.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	if err := s.users.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info().Int64("user_id", id).Msg("user deleted")
	s.record(domain.AuditEvent{
		Action:   domain.AuditUserDeleted,
		Entity:   "user",
		EntityID: id,
		ActorID:  caller.UserID,
		Actor:    caller.Username,
	})
	return nil
}

func (s *identityService) Count(ctx context.Context, caller domain.Principal) (int64, error) {
	if err := authz.Authorize(caller, authz.IdentityCount); err != nil {
		return 0, err
	}
	n, err := s.users.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *identityService) CountByRole(ctx context.Context, caller domain.Principal, role domain.Role) (int64, error) {
	if err := authz.Authorize(caller, authz.IdentityCount); err != nil {
		return 0, err
	}
	if !role.Valid() {
		return 0, domain.ErrInvalidRole
	}
	n, err := s.users.CountByRole(ctx, role)
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return n, nil
}

func (s *identityService) record(event domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	event.OccurredAt = s.now()
	s.audit.Record(event)
}

func publicUsers(users []*domain.User) []*domain.User {
	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}
