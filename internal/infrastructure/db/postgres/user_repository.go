package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

const userColumns = `id, username, email, password_hash, role, created_at, updated_at`

// UserRepository implements ports.UserRepository using PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func mapUserWriteErr(op string, err error) error {
	switch uniqueViolation(err) {
	case constraintUsername:
		return domain.ErrUsernameTaken
	case constraintEmail:
		return domain.ErrEmailTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Create inserts a user and returns it with its generated id.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	created, err := scanUser(r.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.CreatedAt,
		user.UpdatedAt,
	))
	if err != nil {
		return nil, mapUserWriteErr("insert user", err)
	}
	return created, nil
}

// Update replaces every stored field of the user with user.ID.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4, role = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.UpdatedAt,
	)
	if err != nil {
		return mapUserWriteErr("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id)
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *UserRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

func (r *UserRepository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY id`, string(role))
}

func (r *UserRepository) query(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (r *UserRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, string(role))
}

func (r *UserRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
