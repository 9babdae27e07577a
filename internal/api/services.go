package api

import (
	"github.com/figureshelf/figureshelf-server/internal/media/images"
	"github.com/figureshelf/figureshelf-server/internal/service"
	"github.com/figureshelf/figureshelf-server/internal/store"
)

// Services groups the business services used by the API server.
type Services struct {
	Store      store.Store // health checks only
	Auth       *service.AuthService
	Catalog    *service.CatalogService
	Item       *service.ItemService
	Annotation *service.AnnotationService
	Search     *service.SearchService
	Image      *service.ImageService
}

// Options configures the HTTP surface.
type Options struct {
	// AllowedOrigins lists CORS origins for the web client.
	AllowedOrigins []string

	// LocalImages serves uploaded images from disk. Nil when uploads go to
	// the external image host.
	LocalImages *images.Storage

	// Rate limiters for the login/register and suggestion routes. Nil uses
	// the package defaults.
	AuthLimiter    *RateLimiter
	SuggestLimiter *RateLimiter
}
