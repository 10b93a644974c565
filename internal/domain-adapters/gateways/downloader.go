package gateways

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Downloader fetches menu files, VHDL snippets and test vectors. Sources
// are either HTTP(S) URLs or plain filesystem paths, matching how menu
// locations are written in build configs.
type Downloader struct {
	httpClient *http.Client
}

// NewDownloader creates a new downloader
func NewDownloader() *Downloader {
	return &Downloader{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // Long timeout for large test vectors
		},
	}
}

// IsURL reports whether location is an HTTP(S) URL rather than a local path
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Fetch retrieves location into dest. URLs are downloaded, local
// paths are copied.
func (d *Downloader) Fetch(ctx context.Context, location, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	if IsURL(location) {
		return d.downloadFile(ctx, location, dest)
	}
	return d.copyFile(location, dest)
}

// downloadFile downloads a file from URL to destination
func (d *Downloader) downloadFile(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ugt-fwtools/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	//nolint:gosec // G304: File path dest is function parameter for download destination
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	//nolint:errcheck // Defer close on file being written
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// copyFile copies a local file to destination
func (d *Downloader) copyFile(src, dest string) error {
	//nolint:gosec // G304: src is a user supplied local menu path
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer in.Close()

	//nolint:gosec // G304: File path dest is function parameter for copy destination
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	//nolint:errcheck // Defer close on file being written
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	return nil
}
