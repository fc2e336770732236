// Package httpsource retrieves datasets over plain HTTP. It implements
// fetch.Retriever for the CLI; library callers are free to bring their
// own retriever.
package httpsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vertextoedge/datafetch/internal/pathutil"
	"github.com/vertextoedge/datafetch/pkg/fetch"
)

const defaultTimeout = 5 * time.Minute

// Client downloads datasets from an HTTP endpoint into per-fetch cache
// directories.
type Client struct {
	baseURL    string
	cacheDir   string
	httpClient *http.Client
}

// Ensure Client implements fetch.Retriever
var _ fetch.Retriever = (*Client)(nil)

// New creates a new HTTP dataset client. Downloads for source "s" are
// issued against <baseURL>/s and stored under a fresh directory inside
// cacheDir.
func New(baseURL, cacheDir string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Retrieve downloads the dataset identified by source and returns the
// cache directory containing it.
func (c *Client) Retrieve(ctx context.Context, source string) (string, error) {
	reqURL, err := c.datasetURL(source)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %s downloading %s", resp.Status, source)
	}

	// Each fetch gets its own cache directory so concurrent downloads
	// of the same source never collide.
	cacheDir := filepath.Join(c.cacheDir, uuid.NewString())
	if _, err := pathutil.EnsureDir(cacheDir); err != nil {
		return "", err
	}

	name := source[strings.LastIndex(source, "/")+1:]
	if name == "" {
		name = "dataset"
	}
	target := filepath.Join(cacheDir, name)

	if err := writeFile(target, resp.Body); err != nil {
		os.RemoveAll(cacheDir)
		return "", err
	}

	return cacheDir, nil
}

func (c *Client) datasetURL(source string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("no base URL configured")
	}
	parts := strings.Split(source, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return c.baseURL + "/" + strings.Join(parts, "/"), nil
}

// writeFile streams reader into path via a temp file renamed into place.
func writeFile(path string, reader io.Reader) error {
	tempPath := path + ".downloading"

	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
