package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	domainerrors "github.com/figureshelf/figureshelf-server/internal/errors"
	"github.com/figureshelf/figureshelf-server/internal/media/images"
)

// ImageUploader stores a transcoded image and returns where it lives.
// images.ProxyClient and images.Storage both implement it.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, data []byte) (domain.ImageRef, error)
}

// ImageService transcodes uploaded photos and hands them to the image host.
type ImageService struct {
	transcoder *images.Transcoder
	uploader   ImageUploader
	logger     *slog.Logger
}

// NewImageService creates a new image service.
func NewImageService(transcoder *images.Transcoder, uploader ImageUploader, logger *slog.Logger) *ImageService {
	return &ImageService{transcoder: transcoder, uploader: uploader, logger: logger}
}

// Upload transcodes r to a bounded JPEG, uploads it and returns the
// reference with its BlurHash filled in.
func (s *ImageService) Upload(ctx context.Context, user *domain.User, r io.Reader) (domain.ImageRef, error) {
	if user == nil {
		return domain.ImageRef{}, domainerrors.Unauthorized("sign in to upload images")
	}

	res, err := s.transcoder.Transcode(r)
	switch {
	case errors.Is(err, images.ErrUnsupportedFormat):
		return domain.ImageRef{}, domainerrors.Validation("image must be JPEG, PNG, GIF or WebP")
	case errors.Is(err, images.ErrTooLarge):
		return domain.ImageRef{}, domainerrors.Validation("image is too large")
	case err != nil:
		return domain.ImageRef{}, domainerrors.Validation("image could not be decoded").WithCause(err)
	}

	filename := images.NewFileName()
	ref, err := s.uploader.Upload(ctx, filename, res.Data)
	if err != nil {
		s.logger.Warn("image upload failed", "filename", filename, "error", err)
		return domain.ImageRef{}, domainerrors.Wrap(err, domainerrors.CodeUpstream, "image upload failed")
	}
	ref.BlurHash = res.BlurHash

	s.logger.Info("image uploaded",
		"user_id", user.ID,
		"source_format", res.SourceFormat,
		"width", res.Width,
		"height", res.Height,
		"bytes", len(res.Data),
	)
	return ref, nil
}
