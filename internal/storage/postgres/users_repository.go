package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/auth"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/users"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/metrics"
	"github.com/jackc/pgx/v5"
)

var _ users.Repository = (*UserRepository)(nil)

type UserRepository struct {
	conn
}

const userColumns = `id, email, name, role, created_at`

func (r *UserRepository) CreateUser(ctx context.Context, params users.CreateUserParams) (_ *users.User, err error) {
	defer func(start time.Time) { metrics.RecordQuery("create_user", start, err) }(time.Now())

	row := r.queryer().QueryRow(ctx, `
INSERT INTO users (email, password_hash, name, role)
VALUES ($1, $2, $3, $4)
RETURNING `+userColumns,
		params.Email, params.PasswordHash, params.Name, string(params.Role),
	)
	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err, usersEmailKey) {
			return nil, users.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetCredentialsByEmail(ctx context.Context, email string) (_ *users.Credentials, err error) {
	defer func(start time.Time) { metrics.RecordQuery("get_credentials", start, err) }(time.Now())

	var (
		creds users.Credentials
		role  string
	)
	err = r.queryer().QueryRow(ctx, `
SELECT id, email, name, role, created_at, password_hash
  FROM users
 WHERE email = $1`, email,
	).Scan(&creds.User.ID, &creds.User.Email, &creds.User.Name, &role, &creds.User.CreatedAt, &creds.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	creds.User.Role = auth.Role(role)
	return &creds, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (_ *users.User, err error) {
	defer func(start time.Time) { metrics.RecordQuery("get_user", start, err) }(time.Now())

	user, err := scanUser(r.queryer().QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var (
		user users.User
		role string
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &role, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Role = auth.Role(role)
	return &user, nil
}
