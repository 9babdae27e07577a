package api

// API limits and constants.
const (
	// MaxUploadSize bounds multipart image uploads (20 MB, the transcoder's
	// own input limit).
	MaxUploadSize = 20 << 20

	// apiVersion is reported in the OpenAPI document.
	apiVersion = "1.0.0"
)

// Cache-Control header values.
const (
	// Locally stored image names are random UUIDs and never rewritten.
	CacheImmutable = "public, max-age=31536000, immutable"
	CacheNoStore   = "no-store"
)

// Default rate limits.
const (
	authRequestsPerMinute = 10
	authBurst             = 5

	suggestRequestsPerMinute = 600
	suggestBurst             = 20
)
