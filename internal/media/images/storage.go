package images

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/figureshelf/figureshelf-server/internal/domain"
)

// ErrNotFound is returned when a stored image does not exist.
var ErrNotFound = errors.New("image not found")

// LocalURLPrefix is the path under which the API serves locally stored images.
const LocalURLPrefix = "/images/"

// Storage keeps images on the local filesystem. It stands in for the upload
// proxy when none is configured, so development servers can accept photos.
type Storage struct {
	basePath string
	mu       sync.RWMutex
}

// NewStorage stores images in {basePath}/images.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, errors.New("base path cannot be empty")
	}

	dir := filepath.Join(basePath, "images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create images directory: %w", err)
	}

	return &Storage{basePath: dir}, nil
}

// Upload saves data under filename and returns a reference served by the API.
func (s *Storage) Upload(_ context.Context, filename string, data []byte) (domain.ImageRef, error) {
	if err := s.Save(filename, data); err != nil {
		return domain.ImageRef{}, err
	}
	return domain.ImageRef{URL: LocalURLPrefix + filename}, nil
}

// Save writes data under name, replacing any existing file.
func (s *Storage) Save(name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil { //#nosec G306 -- served publicly
		return fmt.Errorf("write image file: %w", err)
	}
	return nil
}

// Get reads a stored image.
func (s *Storage) Get(name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read image file: %w", err)
	}
	return data, nil
}

// Delete removes a stored image. Missing files are not an error.
func (s *Storage) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete image file: %w", err)
	}
	return nil
}

// Hash returns the hex SHA-256 of a stored image, used as its ETag.
func (s *Storage) Hash(name string) (string, error) {
	data, err := s.Get(name)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Path returns the filesystem path for name.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.basePath, name)
}

// validName rejects names that could escape the storage directory.
func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid image name %q", name)
	}
	return nil
}
