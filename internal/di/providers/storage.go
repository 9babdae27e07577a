package providers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/figureshelf/figureshelf-server/internal/config"
	"github.com/figureshelf/figureshelf-server/internal/logger"
	"github.com/figureshelf/figureshelf-server/internal/media/images"
	"github.com/figureshelf/figureshelf-server/internal/service"
)

// uploadTimeout bounds a single request to the image upload proxy.
const uploadTimeout = 30 * time.Second

// ImageStorages holds where uploaded images go. Local is nil when an
// upload proxy is configured.
type ImageStorages struct {
	Uploader service.ImageUploader
	Local    *images.Storage
}

// ProvideImageStorages picks the upload proxy when configured and falls back
// to disk storage under the data directory.
func ProvideImageStorages(i do.Injector) (*ImageStorages, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Images.UploadURL != "" {
		client := images.NewProxyClient(cfg.Images.UploadURL, &http.Client{Timeout: uploadTimeout}, log.Logger)
		log.Info("Image uploads go to proxy", "endpoint", cfg.Images.UploadURL)
		return &ImageStorages{Uploader: client}, nil
	}

	local, err := images.NewStorage(cfg.Data.BasePath)
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}
	log.Info("Image uploads stored locally", "path", local.Path(""))

	return &ImageStorages{Uploader: local, Local: local}, nil
}

// ProvideImageTranscoder provides the upload transcoder.
func ProvideImageTranscoder(i do.Injector) (*images.Transcoder, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return images.NewTranscoder(cfg.Images.MaxDimension, cfg.Images.JPEGQuality), nil
}
