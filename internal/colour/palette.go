// Package colour provides the detected-colour model and hex/RGBA conversions.
package colour

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// RGBA represents an 8-bit-per-channel colour with alpha.
type RGBA struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

// Transparent is fully transparent black.
var Transparent = RGBA{}

// Black is opaque black, the fallback for malformed hex strings.
var Black = RGBA{A: 255}

// String returns the colour as a string in the format "rgba(r, g, b, a)".
func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %d)", c.R, c.G, c.B, c.A)
}

// Hex returns the RGB part of the colour as a hex string (e.g., "#1a2b3c").
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Bytes returns the colour as a 4-byte RGBA array.
func (c RGBA) Bytes() [4]byte {
	return [4]byte{c.R, c.G, c.B, c.A}
}

// MarshalJSON encodes the colour as a [r, g, b, a] array.
func (c RGBA) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]uint8{c.R, c.G, c.B, c.A})
}

// UnmarshalJSON decodes a [r, g, b, a] array.
func (c *RGBA) UnmarshalJSON(data []byte) error {
	var v [4]uint8
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to decode rgba: %w", err)
	}
	*c = RGBA{R: v[0], G: v[1], B: v[2], A: v[3]}
	return nil
}

// ToRGBA converts a color.Color to RGBA.
func ToRGBA(c color.Color) RGBA {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{R: nc.R, G: nc.G, B: nc.B, A: nc.A}
}

// ParseHex parses a 6-digit hex colour with an optional leading '#'.
// Anything else resolves to opaque black.
func ParseHex(hex string) RGBA {
	hex = strings.TrimLeft(hex, "#")
	if len(hex) != 6 {
		return Black
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Black
	}

	return RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}
}
