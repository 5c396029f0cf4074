package users

import (
	"context"
	"time"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/apperr"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/auth"
)

var (
	ErrUserNotFound = apperr.New(apperr.KindNotFound, "user not found")

	// ErrEmailTaken is returned by repositories when the email unique
	// constraint rejects an insert.
	ErrEmailTaken = apperr.New(apperr.KindConflict, "email already used")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so callers cannot tell which one failed.
	ErrInvalidCredentials = apperr.New(apperr.KindAuth, "invalid credentials")
)

// User is the public view of an account. The password hash never leaves
// the repository except through Credentials.
type User struct {
	ID        int64
	Email     string
	Name      *string
	Role      auth.Role
	CreatedAt time.Time
}

type Credentials struct {
	User         User
	PasswordHash string
}

type CreateUserParams struct {
	Email        string
	PasswordHash string
	Name         *string
	Role         auth.Role
}

type Repository interface {
	CreateUser(ctx context.Context, params CreateUserParams) (*User, error)
	GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
}

const maxPasswordBytes = 72

type RegisterInput struct {
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,max=72"`
	Name     *string `json:"name" validate:"omitempty,max=120"`
	Role     string  `json:"role" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is what register and login hand back to the caller.
type Session struct {
	User  User
	Token string
}
