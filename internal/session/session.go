// Package session holds colour sessions created by image processing requests.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jmylchreest/pixelpad/internal/colour"
	"github.com/jmylchreest/pixelpad/internal/pngenc"
)

const (
	// DefaultWidth is the canvas width used when nothing overrides it.
	DefaultWidth = 128
	// DefaultHeight is the canvas height used when nothing overrides it.
	DefaultHeight = 128
	// TotalPixels is the pixel total reported for every session.
	TotalPixels = 1024
)

// ColorSession links a generated id to a canvas size and detected palette.
// Sessions are never modified after creation.
type ColorSession struct {
	ID             string                 `json:"session_id"`
	TotalPixels    uint32                 `json:"total_pixels"`
	DetectedColors []colour.DetectedColor `json:"detected_colors"`
	SettingsFile   string                 `json:"settings_file"`
	Width          uint32                 `json:"width"`
	Height         uint32                 `json:"height"`
}

// Color returns the detected colour with the given id.
func (s *ColorSession) Color(id string) (colour.DetectedColor, bool) {
	for _, c := range s.DetectedColors {
		if c.ID != "" && c.ID == id {
			return c, true
		}
	}
	return colour.DetectedColor{}, false
}

// CreateOptions describes a processing request.
type CreateOptions struct {
	SettingsFile string

	// MaxColors truncates the palette when set; values are clamped to [0, len].
	MaxColors *int

	// Width and Height override the default canvas when both are non-zero.
	Width  uint32
	Height uint32

	// Upload is the submitted image. When it is a PNG its IHDR size wins
	// over every other size source.
	Upload []byte
}

// Size returns the canvas size the options resolve to.
func (o CreateOptions) Size() (width, height uint32) {
	width, height = DefaultWidth, DefaultHeight
	if o.Width > 0 && o.Height > 0 {
		width, height = o.Width, o.Height
	}
	if w, h, ok := pngenc.DecodeSize(o.Upload); ok {
		width, height = w, h
	}
	return width, height
}

// Registry is a process-wide, concurrency-safe table of sessions.
// It has no capacity bound and never expires entries.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*ColorSession
	newID    func() string
}

// NewRegistry creates an empty registry issuing random UUID session ids.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*ColorSession),
		newID:    uuid.NewString,
	}
}

// Create builds a session from opts, stores it, and returns it.
func (r *Registry) Create(opts CreateOptions) *ColorSession {
	colors := colour.BuiltinPalette()
	if opts.MaxColors != nil {
		colors = colour.Truncate(colors, *opts.MaxColors)
	}

	width, height := opts.Size()
	s := &ColorSession{
		ID:             r.newID(),
		TotalPixels:    TotalPixels,
		DetectedColors: colors,
		SettingsFile:   opts.SettingsFile,
		Width:          width,
		Height:         height,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Lookup returns the session with the given id.
func (r *Registry) Lookup(id string) (*ColorSession, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	return s, ok
}

// Len returns the number of stored sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
