package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/apperr"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/auth"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/metrics"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/validation"
	"github.com/rs/zerolog"
)

type TokenIssuer interface {
	Generate(actor auth.Actor) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Service handles registration and credential checks and issues identity
// tokens for the resulting accounts.
type Service struct {
	repo      Repository
	tokens    TokenIssuer
	hasher    PasswordHasher
	logger    zerolog.Logger
	dummyHash string
}

func NewService(repo Repository, tokens TokenIssuer, hasher PasswordHasher, logger zerolog.Logger) *Service {
	s := &Service{
		repo:   repo,
		tokens: tokens,
		hasher: hasher,
		logger: logger.With().Str("component", "users").Logger(),
	}
	// Unknown emails still pay for one hash comparison.
	if hash, err := hasher.Hash("fomo-unknown-account"); err == nil {
		s.dummyHash = hash
	}
	return s
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	input.Email = normalizeEmail(input.Email)
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		input.Name = &trimmed
		if trimmed == "" {
			input.Name = nil
		}
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	// bcrypt rejects inputs longer than 72 bytes, not 72 characters.
	if len(input.Password) > maxPasswordBytes {
		return nil, apperr.Validation("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	role, ok := auth.ParseRole(input.Role)
	if !ok {
		return nil, apperr.Validation("role", "must be one of DANCER, STUDIO, AGENCY")
	}

	if _, err := s.repo.GetCredentialsByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// A concurrent registration can still slip past the lookup above; the
	// repository reports the unique constraint as ErrEmailTaken.
	user, err := s.repo.CreateUser(ctx, CreateUserParams{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Generate(actorFor(*user))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.UsersRegistered.WithLabelValues(string(user.Role)).Inc()
	s.logger.Info().
		Int64("user_id", user.ID).
		Str("role", string(user.Role)).
		Msg("user registered")

	return &Session{User: *user, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	creds, err := s.repo.GetCredentialsByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			if s.dummyHash != "" {
				_ = s.hasher.Compare(s.dummyHash, input.Password)
			}
			metrics.LoginFailures.Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup credentials: %w", err)
	}

	if err := s.hasher.Compare(creds.PasswordHash, input.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			metrics.LoginFailures.Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	token, err := s.tokens.Generate(actorFor(creds.User))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Debug().Int64("user_id", creds.User.ID).Msg("user logged in")
	return &Session{User: creds.User, Token: token}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func actorFor(user User) auth.Actor {
	return auth.Actor{UserID: user.ID, Role: user.Role, Email: user.Email}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
