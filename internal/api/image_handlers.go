package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/figureshelf/figureshelf-server/internal/errors"
	"github.com/figureshelf/figureshelf-server/internal/http/response"
)

// handleUploadImage accepts a multipart "image" field, transcodes it and
// returns the stored reference. Multipart bodies don't fit huma's typed
// inputs, so this route is plain chi.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, domainerrors.CodeValidation,
				"image exceeds "+strconv.Itoa(MaxUploadSize>>20)+" MB", s.logger)
			return
		}
		response.BadRequest(w, "multipart field \"image\" is required", s.logger)
		return
	}
	defer file.Close()

	ref, err := s.services.Image.Upload(r.Context(), user, file)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, ref, s.logger)
}

// handleServeImage serves a locally stored image.
func (s *Server) handleServeImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	hash, err := s.localImages.Hash(name)
	if err != nil {
		response.NotFound(w, "image not found", s.logger)
		return
	}
	etag := `"` + hash + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	data, err := s.localImages.Get(name)
	if err != nil {
		response.NotFound(w, "image not found", s.logger)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", CacheImmutable)
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
