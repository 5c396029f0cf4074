package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/api/problem"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/apperr"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/auth"
	"github.com/rs/zerolog"
)

type contextKey string

const actorKey contextKey = "actor"

var (
	ErrAuthRequired  = apperr.New(apperr.KindAuth, "authentication required")
	ErrInvalidToken  = apperr.New(apperr.KindAuth, "invalid or expired token")
	ErrRoleForbidden = apperr.New(apperr.KindForbidden, "insufficient role for this operation")
)

// TokenValidator is satisfied by *auth.JWTManager.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// RequireAuth validates the bearer token and attaches the caller's
// auth.Actor to the request context. The token is trusted as issued; the
// user store is not consulted.
func RequireAuth(tokens TokenValidator, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				unauthorized(w, r, ErrAuthRequired, env)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				if errors.Is(err, auth.ErrMissingToken) {
					unauthorized(w, r, ErrAuthRequired, env)
					return
				}
				unauthorized(w, r, ErrInvalidToken, env)
				return
			}

			actor := claims.Actor()
			ctx := WithActor(r.Context(), actor)
			logger := zerolog.Ctx(ctx).With().
				Int64("user_id", actor.UserID).
				Str("role", string(actor.Role)).
				Logger()
			ctx = logger.WithContext(ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role is not in roles. It must run after
// RequireAuth; without an actor it answers 401.
func RequireRole(env string, roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				unauthorized(w, r, ErrAuthRequired, env)
				return
			}
			if !auth.HasRole(actor.Role, roles...) {
				problem.WriteError(w, r, ErrRoleForbidden, env)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (auth.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(auth.Actor)
	return actor, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error, env string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="fomo"`)
	problem.WriteError(w, r, err, env)
}
