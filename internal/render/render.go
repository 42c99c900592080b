// Package render turns render requests against colour sessions into PNG previews.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmylchreest/pixelpad/internal/colour"
	"github.com/jmylchreest/pixelpad/internal/pattern"
	"github.com/jmylchreest/pixelpad/internal/pngenc"
	"github.com/jmylchreest/pixelpad/internal/session"
)

var (
	// ErrInvalidSession is returned when the session id is missing or unknown.
	ErrInvalidSession = errors.New("invalid session_id")

	// ErrInvalidColorID is returned when a requested colour is not in the session palette.
	ErrInvalidColorID = errors.New("invalid color_id")
)

// ColorIDError names the colour id that could not be resolved.
type ColorIDError struct {
	ID string
}

func (e *ColorIDError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidColorID, e.ID)
}

// Is reports whether target is ErrInvalidColorID.
func (e *ColorIDError) Is(target error) bool {
	return target == ErrInvalidColorID
}

// SessionSource resolves session ids. *session.Registry satisfies it.
type SessionSource interface {
	Lookup(id string) (*session.ColorSession, bool)
}

// Dispatcher validates render requests and produces PNG bytes.
type Dispatcher struct {
	sessions SessionSource
}

// NewDispatcher creates a Dispatcher reading sessions from src.
func NewDispatcher(src SessionSource) *Dispatcher {
	return &Dispatcher{sessions: src}
}

// Result is a rendered preview.
type Result struct {
	Session *session.ColorSession
	Pattern pattern.Pattern
	PNG     []byte
}

// Render resolves sessionID, selects the colours named in colorIDs (a
// comma-separated list, possibly empty) and returns the encoded preview.
// On error no image bytes are returned.
func (d *Dispatcher) Render(sessionID, colorIDs string) (*Result, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	s, ok := d.sessions.Lookup(sessionID)
	if !ok {
		return nil, ErrInvalidSession
	}

	p, err := Select(s, ParseColorIDs(colorIDs))
	if err != nil {
		return nil, err
	}

	width, height := int(s.Width), int(s.Height)
	data, err := pngenc.Encode(width, height, pattern.Generate(width, height, p))
	if err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &Result{Session: s, Pattern: p, PNG: data}, nil
}

// ParseColorIDs splits a comma-separated id list, trimming entries and
// dropping empty ones.
func ParseColorIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Select chooses the pattern for the requested colour ids:
//
//	0 ids  -> Banded over the full stored palette
//	1 id   -> IsolatedStipple of that colour
//	2+ ids -> Banded over the requested colours in request order
//
// Every id must exist in the session palette.
func Select(s *session.ColorSession, ids []string) (pattern.Pattern, error) {
	resolved := make([]colour.RGBA, 0, len(ids))
	for _, id := range ids {
		c, ok := s.Color(id)
		if !ok {
			return pattern.Pattern{}, &ColorIDError{ID: id}
		}
		resolved = append(resolved, c.RGBA())
	}

	switch len(resolved) {
	case 0:
		return pattern.Banded(colour.RGBAs(s.DetectedColors)), nil
	case 1:
		return pattern.IsolatedStipple(resolved[0], pattern.StippleSeed(s.ID, ids[0])), nil
	default:
		return pattern.Banded(resolved), nil
	}
}
