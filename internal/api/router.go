package api

import (
	"context"
	"net/http"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/api/handlers"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/api/middleware"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/audit"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/auth"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/config"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/events"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/tickets"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/users"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/metrics"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/storage"
	"github.com/rs/zerolog"
)

// NewRouter builds the services on top of repo and mounts every route.
// ctx bounds background work started by middleware such as the rate
// limiter's sweeper.
func NewRouter(ctx context.Context, cfg config.Config, logger zerolog.Logger, repo storage.Repository, build BuildInfo) http.Handler {
	env := cfg.Environment
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	usersService := users.NewService(repo.Users(), tokens, hasher, logger)
	eventsService := events.NewService(repo.Events(), logger)
	ticketsService := tickets.NewService(repo.Tickets(), logger)

	auditLog := audit.NewLogger(logger)

	authHandler := handlers.NewAuthHandler(usersService, env)
	eventsHandler := handlers.NewEventsHandler(eventsService, auditLog, env)
	ticketsHandler := handlers.NewTicketsHandler(ticketsService, auditLog, env)

	limit := middleware.RateLimit(ctx, cfg.RateLimit, env)
	authTier := middleware.WithRateLimitTier(middleware.TierAuth)
	requireAuth := middleware.RequireAuth(tokens, env)
	hosts := middleware.RequireRole(env, auth.RoleStudio, auth.RoleAgency)
	dancers := middleware.RequireRole(env, auth.RoleDancer)

	public := func(h http.HandlerFunc) http.Handler { return limit(h) }
	credentials := func(h http.HandlerFunc) http.Handler { return authTier(limit(h)) }
	signedIn := func(h http.HandlerFunc) http.Handler { return limit(requireAuth(h)) }
	hostOnly := func(h http.HandlerFunc) http.Handler { return limit(requireAuth(hosts(h))) }
	dancerOnly := func(h http.HandlerFunc) http.Handler { return limit(requireAuth(dancers(h))) }

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", handlers.Readyz(repo))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /version", VersionHandler(build))
	mux.Handle("GET /api/openapi.json", OpenAPIHandler())
	mux.Handle("GET /api/dance", handlers.Dance())

	mux.Handle("POST /api/auth/register", credentials(authHandler.Register))
	mux.Handle("POST /api/auth/login", credentials(authHandler.Login))
	mux.Handle("GET /api/auth/me", signedIn(authHandler.Me))

	mux.Handle("GET /api/events", public(eventsHandler.List))
	mux.Handle("POST /api/events", hostOnly(eventsHandler.Create))
	mux.Handle("GET /api/events/{id}", public(eventsHandler.Get))
	mux.Handle("PUT /api/events/{id}", hostOnly(eventsHandler.Update))
	mux.Handle("DELETE /api/events/{id}", hostOnly(eventsHandler.Delete))

	mux.Handle("GET /api/events/me/tickets", dancerOnly(ticketsHandler.ListMine))
	// The ledger resolves the event before the role check so an unknown
	// event is a 404 for every caller.
	mux.Handle("POST /api/events/{id}/tickets", signedIn(ticketsHandler.Purchase))

	var handler http.Handler = mux
	handler = middleware.RequestSize(middleware.DefaultMaxBodySize)(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = middleware.SecurityHeaders(env == "production")(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}
