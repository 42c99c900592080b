// Package settings lists the palette settings files a client may choose from.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jmylchreest/pixelpad/internal/security"
)

// Extension is the file extension of settings files, matched case-insensitively.
const Extension = ".json"

// List returns the sorted names of entries in dir with a settings extension.
// A missing path, or one that is not a directory, yields an empty list.
func List(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to stat settings directory: %w", err)
	}
	if !info.IsDir() {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings directory: %w", err)
	}

	files := []string{}
	for _, entry := range entries {
		if strings.EqualFold(filepath.Ext(entry.Name()), Extension) {
			files = append(files, entry.Name())
		}
	}
	slices.Sort(files)
	return files, nil
}

// ValidateName checks that a client-supplied settings file name is a bare
// file name. The file does not have to exist.
func ValidateName(name string) error {
	if err := security.ValidateFileName(name); err != nil {
		return fmt.Errorf("invalid settings file: %w", err)
	}
	return nil
}
