// Package image provides utilities for reading and inspecting uploaded images.
package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"os"
	"strings"

	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/pixelpad/internal/compression"
	"github.com/jmylchreest/pixelpad/internal/security"
	httputil "github.com/jmylchreest/pixelpad/internal/util/http"
)

// Info describes an image without decoding its pixels.
type Info struct {
	Format string
	Width  int
	Height int
}

// Inspect decodes only the header of an image payload.
// Supported formats: JPEG, PNG, GIF, WebP.
func Inspect(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, fmt.Errorf("image payload is empty")
	}

	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("unsupported or invalid image format: %w", err)
	}

	return Info{Format: format, Width: config.Width, Height: config.Height}, nil
}

// IsURL reports whether source is an HTTP(S) URL.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// LoadSource reads up to maxBytes of raw image data from a local file path or
// an HTTP(S) URL. A non-positive maxBytes uses the fetcher's default limit.
// Gzip, xz and bzip2 compressed sources are unwrapped under the same limit.
func LoadSource(ctx context.Context, source string, maxBytes int64) ([]byte, error) {
	if source == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}
	if maxBytes <= 0 {
		maxBytes = httputil.DefaultMaxBytes
	}

	data, err := readSource(ctx, source, maxBytes)
	if err != nil {
		return nil, err
	}
	data, _, err = compression.Decompress(data, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", source, err)
	}
	return data, nil
}

func readSource(ctx context.Context, source string, maxBytes int64) ([]byte, error) {
	if IsURL(source) {
		data, err := httputil.Fetch(ctx, source, httputil.FetchOptions{MaxBytes: maxBytes})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
		}
		return data, nil
	}

	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", source)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", source)
	}

	file, err := os.Open(source) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(security.NewLimitedReader(file, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return data, nil
}
