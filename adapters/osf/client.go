// Package osf downloads project files from the Open Science Framework.
// Remotes are plain GET endpoints; there is no auth and no retry — a
// failed download is fatal to the caller.
package osf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Client fetches OSF files to local paths.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	project    string
}

// Option configures the Client during construction.
type Option func(*clientConfig)

type clientConfig struct {
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
	project    string
}

// New creates a download client. The zero configuration uses a default
// http.Client and discards logs.
func New(opts ...Option) *Client {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		httpClient: httpClient,
		logger:     logger,
		project:    cfg.project,
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) { cfg.httpClient = c }
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) { cfg.logger = l }
}

// WithTimeout sets a timeout on the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) { cfg.timeout = d }
}

// WithProject records the project landing page for log context.
func WithProject(url string) Option {
	return func(cfg *clientConfig) { cfg.project = url }
}

// Download GETs remote and writes the body to path. The body lands in a
// temp file first and is renamed into place, so an interrupted download
// is never mistaken for a complete file. name is the human-readable
// file name used in errors and logs.
func (c *Client) Download(ctx context.Context, remote, path, name string) error {
	loc := c.project
	if loc == "" {
		loc = remote
	}
	c.logger.InfoContext(ctx, "downloading", "name", name, "from", loc)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remote, nil)
	if err != nil {
		return fmt.Errorf("download %s: create request: %w", name, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: do request: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newDownloadError(name, remote, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("download %s: create temp file: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("download %s: write body: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("download %s: close temp file: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("download %s: rename into place: %w", name, err)
	}

	c.logger.DebugContext(ctx, "downloaded", "name", name, "path", path)
	return nil
}

// DownloadIfAbsent downloads remote to path unless path already exists.
// It reports whether a download actually happened.
func (c *Client) DownloadIfAbsent(ctx context.Context, remote, path, name string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		c.logger.DebugContext(ctx, "already present, skipping", "name", name, "path", path)
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("download %s: stat %s: %w", name, path, err)
	}
	if err := c.Download(ctx, remote, path, name); err != nil {
		return false, err
	}
	return true, nil
}
