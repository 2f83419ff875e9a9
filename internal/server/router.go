package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// HealthChecker reports storage health.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// AuthHandler serves login and identity endpoints.
type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

// ContentHandler serves the library content endpoints.
type ContentHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Search(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	IncrementLike(w http.ResponseWriter, r *http.Request)
	IncrementView(w http.ResponseWriter, r *http.Request)
}

// LikeHandler serves the per-user like endpoints.
type LikeHandler interface {
	Like(w http.ResponseWriter, r *http.Request)
	Unlike(w http.ResponseWriter, r *http.Request)
	Mine(w http.ResponseWriter, r *http.Request)
}

// ActivityHandler serves the caller's activity history.
type ActivityHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

// Dependencies holds all injectable dependencies used by route handlers.
// Nil middlewares are skipped.
type Dependencies struct {
	DB          HealthChecker
	DevMode     bool
	CORSOrigins []string

	Auth     AuthHandler
	Content  ContentHandler
	Likes    LikeHandler
	Activity ActivityHandler

	// AuthMiddleware rejects requests without a valid access token.
	AuthMiddleware func(http.Handler) http.Handler
	// OptionalAuthMiddleware attaches the caller identity when a token is sent.
	OptionalAuthMiddleware func(http.Handler) http.Handler
	// CounterLimiter throttles the public counter endpoints.
	CounterLimiter func(http.Handler) http.Handler
}

// NewRouter builds the chi router with the full route tree and middleware
// stack.
func NewRouter(deps Dependencies) chi.Router {
	r := chi.NewRouter()

	// --- Global middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(deps.DevMode, deps.CORSOrigins))

	r.Get("/health", healthHandler(deps.DB))

	r.Group(func(r chi.Router) {
		r.Use(requireJSON)

		r.Post("/auth/login", deps.Auth.Login)

		// Protected routes - require valid JWT.
		r.Group(func(r chi.Router) {
			r.Use(present(deps.AuthMiddleware)...)

			r.Get("/auth/me", deps.Auth.Me)
			r.Get("/activity", deps.Activity.List)

			r.Route("/user-likes", func(r chi.Router) {
				r.Get("/me", deps.Likes.Mine)
				r.Post("/contents/{contentId}/like", deps.Likes.Like)
				r.Delete("/contents/{contentId}/unlike", deps.Likes.Unlike)

				r.Route("/organizations/{orgId}/contents/{contentId}", func(r chi.Router) {
					r.Use(RequireOrganization)
					r.Post("/like", deps.Likes.Like)
					r.Delete("/unlike", deps.Likes.Unlike)
				})
			})
		})

		// Public routes; a token, when sent, personalises likedByMe.
		r.Group(func(r chi.Router) {
			r.Use(present(deps.OptionalAuthMiddleware)...)

			r.Route("/library-contents", func(r chi.Router) {
				r.Get("/", deps.Content.List)
				r.Get("/search", deps.Content.Search)
				r.Get("/{id}", deps.Content.Get)

				r.With(present(deps.CounterLimiter)...).Post("/{id}/increment-like", deps.Content.IncrementLike)
				r.With(present(deps.CounterLimiter)...).Post("/{id}/increment-view", deps.Content.IncrementView)
			})

			r.Route("/organizations/{orgId}/library-contents", func(r chi.Router) {
				r.Use(RequireOrganization)
				r.Get("/", deps.Content.List)
				r.Get("/search", deps.Content.Search)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		Error(w, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	return r
}

// present drops nil middlewares.
func present(mws ...func(http.Handler) http.Handler) []func(http.Handler) http.Handler {
	out := make([]func(http.Handler) http.Handler, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}

// corsMiddleware returns a CORS middleware allowing the configured origins.
// Dev mode additionally allows the local frontend dev servers.
func corsMiddleware(devMode bool, origins []string) func(http.Handler) http.Handler {
	allowedOrigins := append([]string{}, origins...)
	if devMode {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://localhost:5173")
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// healthHandler reports the health status of the application, including a
// database connectivity check.
func healthHandler(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context()); err != nil {
			Error(w, http.StatusServiceUnavailable, "DB_UNHEALTHY", "database health check failed", nil)
			return
		}
		JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
