package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"

	"skytycoon/internal/auth"
	"skytycoon/internal/game"
)

type Server struct {
	engine   *game.Engine
	tokens   *auth.Tokens
	validate *validator.Validate
	now      func() time.Time
}

// Options configures the middleware stack around the handlers.
type Options struct {
	// Tokens enables bearer authentication when set.
	Tokens         *auth.Tokens
	Limiter        *RateLimiter
	AllowedOrigins []string
	CORSDebug      bool
	RequestTimeout time.Duration
}

// New constructs the HTTP router wired to the game engine.
func New(engine *game.Engine, opts Options) http.Handler {
	s := &Server{
		engine:   engine,
		tokens:   opts.Tokens,
		validate: newValidator(),
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	r.Use(newCORS(opts.AllowedOrigins, opts.CORSDebug).Handler)
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware)
	}

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/players", s.handleCreatePlayer)
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/airports", s.handleAirports)
		r.Get("/airports/{code}", s.handleAirport)
		r.Get("/aircraft/models", s.handleAircraftModels)
		r.Post("/routes/analysis", s.handleRouteAnalysis)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/players/{id}", s.handleGetPlayer)
			r.Patch("/players/{id}", s.handleUpdatePlayer)

			r.Post("/aircraft", s.handlePurchaseAircraft)
			r.Get("/aircraft/player/{playerId}", s.handlePlayerAircraft)
			r.Patch("/aircraft/{id}", s.handleUpdateAircraft)

			r.Post("/routes", s.handleCreateRoute)
			r.Get("/routes/player/{playerId}", s.handlePlayerRoutes)

			r.Post("/flights", s.handleScheduleFlight)
			r.Get("/flights/player/{playerId}", s.handlePlayerFlights)
			r.Get("/flights/player/{playerId}/upcoming", s.handleUpcomingFlights)
			r.Patch("/flights/{id}", s.handleUpdateFlight)

			r.Post("/transactions", s.handlePostTransaction)
			r.Get("/transactions/player/{playerId}", s.handlePlayerTransactions)
			r.Get("/transactions/player/{playerId}/statement", s.handleStatement)

			r.Post("/game/{playerId}/advance-day", s.handleAdvanceDay)
			r.Post("/game/{playerId}/save", s.handleSaveGame)
			r.Get("/game/{playerId}/events", s.handleEvents)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func newCORS(origins []string, debug bool) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: false,
		Debug:            debug,
	})
}
