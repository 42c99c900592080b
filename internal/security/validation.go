// Package security provides input validation utilities for PixelPad.
package security

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrSizeLimit is returned by LimitedReader once its budget is spent.
var ErrSizeLimit = errors.New("size limit exceeded")

// ValidateFileName checks that name is a bare file name: no directory
// components, no traversal, not absolute.
func ValidateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("empty file name")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("file name must not contain path separators: %q", name)
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return fmt.Errorf("file name contains directory traversal (..) - not allowed")
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("file name contains a NUL byte")
	}
	return nil
}

// LimitedReader wraps an io.Reader and fails once more than Remaining bytes
// would be read, rather than silently truncating like io.LimitReader.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader with size limits.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining < 0 {
		return 0, ErrSizeLimit
	}
	// Read one byte past the budget so an exact-size source still reaches EOF.
	if int64(len(p)) > l.Remaining+1 {
		p = p[:l.Remaining+1]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	if l.Remaining < 0 {
		return n, ErrSizeLimit
	}
	return n, err
}

// NewLimitedReader creates a new LimitedReader with the specified size limit.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{
		R:         r,
		Remaining: maxBytes,
	}
}
