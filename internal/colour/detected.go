package colour

import "encoding/json"

// DetectedColor is a colour reported for an analysed image.
type DetectedColor struct {
	ID         string `json:"id"`
	PixelCount uint32 `json:"count"`
	Hex        string `json:"hex"`
}

// RGBA returns the colour resolved from its hex value.
func (d DetectedColor) RGBA() RGBA {
	return ParseHex(d.Hex)
}

// detectedColorJSON is the wire form, which carries the resolved rgba alongside the hex.
type detectedColorJSON struct {
	ID         string `json:"id"`
	PixelCount uint32 `json:"count"`
	RGBA       RGBA   `json:"rgba"`
	Hex        string `json:"hex"`
}

// MarshalJSON encodes the colour with its resolved rgba array.
func (d DetectedColor) MarshalJSON() ([]byte, error) {
	return json.Marshal(detectedColorJSON{
		ID:         d.ID,
		PixelCount: d.PixelCount,
		RGBA:       d.RGBA(),
		Hex:        d.Hex,
	})
}

// BuiltinPalette returns a fresh copy of the synthetic palette reported for every image.
func BuiltinPalette() []DetectedColor {
	return []DetectedColor{
		{ID: "A1", PixelCount: 50, Hex: "#ff0000"},
		{ID: "B2", PixelCount: 30, Hex: "#00ff00"},
		{ID: "C3", PixelCount: 20, Hex: "#0000ff"},
	}
}

// Truncate returns at most n leading colours. Negative n yields an empty palette.
func Truncate(colors []DetectedColor, n int) []DetectedColor {
	n = max(0, min(n, len(colors)))
	return colors[:n:n]
}

// RGBAs resolves every colour in order.
func RGBAs(colors []DetectedColor) []RGBA {
	out := make([]RGBA, len(colors))
	for i, c := range colors {
		out[i] = c.RGBA()
	}
	return out
}
