// Package pattern generates flat RGBA pixel buffers for preview patterns.
//
// All generators are pure: the same width, height and pattern always yield the
// same buffer. Width and height must be at least 1; callers validate sizes
// before generating.
package pattern

import (
	"fmt"

	"github.com/jmylchreest/pixelpad/internal/colour"
)

// Kind identifies a pattern variant.
type Kind int

const (
	// KindSolid fills every pixel with one colour.
	KindSolid Kind = iota
	// KindBanded splits the canvas into horizontal bands, one per palette entry.
	KindBanded
	// KindIsolatedStipple draws a sparse dot mask of one colour on transparency.
	KindIsolatedStipple
)

// String returns the pattern kind name.
func (k Kind) String() string {
	switch k {
	case KindSolid:
		return "solid"
	case KindBanded:
		return "banded"
	case KindIsolatedStipple:
		return "isolated-stipple"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// stippleModulus is the period of the stipple dot mask.
const stippleModulus = 11

// Pattern describes what to draw. Only the fields relevant to Kind are used.
type Pattern struct {
	Kind    Kind
	Colour  colour.RGBA   // Solid and IsolatedStipple
	Palette []colour.RGBA // Banded
	Seed    uint32        // IsolatedStipple
}

// Solid returns a single-colour pattern.
func Solid(c colour.RGBA) Pattern {
	return Pattern{Kind: KindSolid, Colour: c}
}

// Banded returns a horizontal-band pattern over palette.
func Banded(palette []colour.RGBA) Pattern {
	return Pattern{Kind: KindBanded, Palette: palette}
}

// IsolatedStipple returns a dot-mask pattern of c phased by seed.
func IsolatedStipple(c colour.RGBA, seed uint32) Pattern {
	return Pattern{Kind: KindIsolatedStipple, Colour: c, Seed: seed}
}

// StippleSeed derives the stipple phase for a session and colour: the sum of the
// UTF-8 bytes of sessionID+colorID, wrapping at 2^32.
func StippleSeed(sessionID, colorID string) uint32 {
	var sum uint32
	for _, b := range []byte(sessionID + colorID) {
		sum += uint32(b)
	}
	return sum
}

// Generate produces a row-major RGBA buffer of exactly width*height*4 bytes.
func Generate(width, height int, p Pattern) []byte {
	switch p.Kind {
	case KindSolid:
		return solid(width, height, p.Colour)
	case KindBanded:
		return banded(width, height, p.Palette)
	case KindIsolatedStipple:
		return stipple(width, height, p.Colour, p.Seed)
	default:
		panic(fmt.Sprintf("pattern: unknown kind %v", p.Kind))
	}
}

// BandHeight returns the number of rows per band for a palette of n entries.
func BandHeight(height, n int) int {
	if n == 0 {
		return height
	}
	return max(1, height/n)
}

func solid(width, height int, c colour.RGBA) []byte {
	pix := make([]byte, width*height*4)
	fillRow(pix[:width*4], c)
	for y := 1; y < height; y++ {
		copy(pix[y*width*4:(y+1)*width*4], pix[:width*4])
	}
	return pix
}

func banded(width, height int, palette []colour.RGBA) []byte {
	if len(palette) == 0 {
		return solid(width, height, colour.Transparent)
	}

	bandHeight := BandHeight(height, len(palette))
	stride := width * 4
	pix := make([]byte, height*stride)
	for y := 0; y < height; y++ {
		// The last band absorbs any remainder rows.
		idx := min(y/bandHeight, len(palette)-1)
		fillRow(pix[y*stride:(y+1)*stride], palette[idx])
	}
	return pix
}

func stipple(width, height int, c colour.RGBA, seed uint32) []byte {
	opaque := colour.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	pix := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (uint64(x)*3+uint64(y)*5+uint64(seed))%stippleModulus != 0 {
				continue
			}
			off := (y*width + x) * 4
			pix[off] = opaque.R
			pix[off+1] = opaque.G
			pix[off+2] = opaque.B
			pix[off+3] = opaque.A
		}
	}
	return pix
}

func fillRow(row []byte, c colour.RGBA) {
	for i := 0; i+3 < len(row); i += 4 {
		row[i] = c.R
		row[i+1] = c.G
		row[i+2] = c.B
		row[i+3] = c.A
	}
}
