// Package compression unwraps compressed image sources.
package compression

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/pixelpad/internal/security"
)

// Format identifies a compression container.
type Format string

const (
	FormatNone  Format = ""
	FormatGzip  Format = "gzip"
	FormatXz    Format = "xz"
	FormatBzip2 Format = "bzip2"
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	bzip2Magic = []byte("BZh")
)

// Detect identifies the container from the leading magic bytes.
func Detect(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, xzMagic):
		return FormatXz
	case bytes.HasPrefix(data, gzipMagic):
		return FormatGzip
	case bytes.HasPrefix(data, bzip2Magic):
		return FormatBzip2
	default:
		return FormatNone
	}
}

// Decompress unwraps data when it is gzip, xz or bzip2 compressed, reading at
// most maxBytes of output. Uncompressed data is returned unchanged.
func Decompress(data []byte, maxBytes int64) ([]byte, Format, error) {
	format := Detect(data)

	var r io.Reader
	switch format {
	case FormatNone:
		return data, format, nil
	case FormatGzip:
		gzr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, format, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzr.Close()
		r = gzr
	case FormatXz:
		xzr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, format, fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xzr
	case FormatBzip2:
		r = bzip2.NewReader(bytes.NewReader(data))
	}

	out, err := io.ReadAll(security.NewLimitedReader(r, maxBytes))
	if err != nil {
		return nil, format, fmt.Errorf("failed to decompress %s data: %w", format, err)
	}
	return out, format, nil
}
