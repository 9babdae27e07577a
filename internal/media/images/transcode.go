// Package images prepares uploaded item photos: it re-encodes them as
// bounded-size JPEGs with a BlurHash placeholder and hands them to an image
// host (the upload proxy, or local storage when no proxy is configured).
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Default transcoding limits.
const (
	DefaultMaxDimension = 1600
	DefaultQuality      = 85
	DefaultMaxBytes     = 20 << 20
	DefaultMaxPixels    = 50_000_000
)

var (
	// ErrUnsupportedFormat is returned for input that is not JPEG, PNG, GIF or WebP.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrTooLarge is returned when the input exceeds Transcoder.MaxBytes or
	// its header declares more than Transcoder.MaxPixels pixels.
	ErrTooLarge = errors.New("image too large")
)

// Result is a transcoded image.
type Result struct {
	Data         []byte
	Width        int
	Height       int
	SourceFormat string // jpeg, png, gif or webp
	BlurHash     string
}

// ContentType is always JPEG.
func (r *Result) ContentType() string { return "image/jpeg" }

// Transcoder converts arbitrary uploads into JPEGs no larger than
// MaxDimension on the longest edge.
type Transcoder struct {
	MaxDimension int
	Quality      int
	MaxBytes     int64
	MaxPixels    int64
}

// NewTranscoder creates a Transcoder, substituting defaults for
// non-positive settings.
func NewTranscoder(maxDimension, quality int) *Transcoder {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Transcoder{MaxDimension: maxDimension, Quality: quality, MaxBytes: DefaultMaxBytes, MaxPixels: DefaultMaxPixels}
}

// Transcode decodes r, downscales it with Catmull-Rom resampling when needed,
// flattens transparency onto white and encodes the result as JPEG.
func (t *Transcoder) Transcode(r io.Reader) (*Result, error) {
	limit := t.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(raw)) > limit {
		return nil, ErrTooLarge
	}

	// Headers are checked before decoding; a few bytes can declare an
	// image that would need gigabytes of pixel buffer.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	maxPixels := t.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, ErrTooLarge
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	sb := src.Bounds()
	w, h := fitWithin(sb.Dx(), sb.Dy(), t.MaxDimension)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: t.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	hash, err := ComputeBlurHash(dst)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:         buf.Bytes(),
		Width:        w,
		Height:       h,
		SourceFormat: format,
		BlurHash:     hash,
	}, nil
}

// NewFileName returns a random name for an uploaded JPEG.
func NewFileName() string {
	return uuid.NewString() + ".jpg"
}
