package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/peerprog/peerride/internal/api/handlers"
	"github.com/peerprog/peerride/internal/api/middleware"
	"github.com/peerprog/peerride/internal/auth"
	"github.com/peerprog/peerride/internal/trips"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	TripService    *trips.Service
	AllowedOrigins []string
	RateLimitReqs  int
	RateLimitSecs  int
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS must allow credentials: the refresh token travels in a
	// SameSite=None cookie.
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	tripHandler := handlers.NewTripHandler(cfg.TripService)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Post("/verify-email", authHandler.VerifyEmail)

			// Cookie-authenticated: these read the refresh_token cookie
			// and do their own checks.
			r.Get("/is-authenticated", authHandler.IsAuthenticated)
			r.Get("/refresh-token", authHandler.RefreshToken)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWTService))
				r.Get("/authorize", authHandler.Authorize)
			})
		})

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", tripHandler.AddAvailability)
			r.Delete("/{id}", tripHandler.RemoveAvailability)
			r.Get("/{id}", tripHandler.GetTripDetails)
			r.Put("/", tripHandler.EditTripDetails)
			r.Post("/details", tripHandler.GetSpecificTripDetails)
		})
	})

	return &Router{r}
}
