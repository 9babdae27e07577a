package images

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/figureshelf/figureshelf-server/internal/domain"
)

// ProxyClient uploads images to the external image proxy, which answers
// with the public URL and a deletion URL.
type ProxyClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewProxyClient creates a client for the given upload endpoint.
// A nil httpClient gets a 30 second timeout.
func NewProxyClient(endpoint string, httpClient *http.Client, logger *slog.Logger) *ProxyClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ProxyClient{endpoint: endpoint, httpClient: httpClient, logger: logger}
}

type proxyResponse struct {
	URL       string `json:"url"`
	DeleteURL string `json:"delete_url"`
}

// Upload posts data as the multipart "image" field.
func (c *ProxyClient) Upload(ctx context.Context, filename string, data []byte) (domain.ImageRef, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return domain.ImageRef{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return domain.ImageRef{}, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return domain.ImageRef{}, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return domain.ImageRef{}, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ImageRef{}, fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.ImageRef{}, fmt.Errorf("image proxy returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out proxyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return domain.ImageRef{}, fmt.Errorf("decode proxy response: %w", err)
	}
	if out.URL == "" {
		return domain.ImageRef{}, errors.New("image proxy response has no url")
	}

	c.logger.Debug("uploaded image",
		"filename", filename,
		"size", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return domain.ImageRef{URL: out.URL, DeleteURL: out.DeleteURL}, nil
}
