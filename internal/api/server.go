// Package api provides the HTTP API server and handlers for figureshelf.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/figureshelf/figureshelf-server/internal/http/response"
	"github.com/figureshelf/figureshelf-server/internal/media/images"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	services    *Services
	localImages *images.Storage
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger

	authLimiter    *RateLimiter
	suggestLimiter *RateLimiter
}

// NewServer creates the HTTP server with middleware and every route
// registered.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		services:       services,
		localImages:    opts.LocalImages,
		router:         chi.NewRouter(),
		logger:         logger,
		authLimiter:    opts.AuthLimiter,
		suggestLimiter: opts.SuggestLimiter,
	}
	if s.authLimiter == nil {
		s.authLimiter = NewRateLimiter(authRequestsPerMinute, time.Minute, authBurst)
	}
	if s.suggestLimiter == nil {
		s.suggestLimiter = NewRateLimiter(suggestRequestsPerMinute, time.Minute, suggestBurst)
	}

	s.setupMiddleware(opts.AllowedOrigins)

	humaConfig := huma.DefaultConfig("FigureShelf API", apiVersion)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI export and tests.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops the rate limiters' background sweeps.
func (s *Server) Close() {
	s.authLimiter.Stop()
	s.suggestLimiter.Stop()
}

func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	s.router.Use(authMiddleware(s.services.Auth))

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerItemRoutes()
	s.registerSearchRoutes()
	s.registerReviewRoutes()
	s.registerCollectionRoutes()
	s.registerAdminRoutes()

	// Multipart uploads and raw image bytes stay outside huma.
	s.router.Post("/api/v1/images", s.handleUploadImage)
	if s.localImages != nil {
		s.router.Get(images.LocalURLPrefix+"{name}", s.handleServeImage)
	}
}
