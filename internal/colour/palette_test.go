package colour

import (
	"encoding/json"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want RGBA
	}{
		{
			name: "red with hash",
			hex:  "#ff0000",
			want: RGBA{R: 255, A: 255},
		},
		{
			name: "green without hash",
			hex:  "00ff00",
			want: RGBA{G: 255, A: 255},
		},
		{
			name: "mixed case",
			hex:  "#1A2b3C",
			want: RGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 255},
		},
		{
			name: "empty",
			hex:  "",
			want: Black,
		},
		{
			name: "short form",
			hex:  "#fff",
			want: Black,
		},
		{
			name: "too long",
			hex:  "#ff000000",
			want: Black,
		},
		{
			name: "not hex",
			hex:  "#zzzzzz",
			want: Black,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseHex(tt.hex); got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.hex, got, tt.want)
			}
		})
	}
}

func TestRGBAHex(t *testing.T) {
	c := RGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 0x80}
	if got := c.Hex(); got != "#1a2b3c" {
		t.Errorf("Hex() = %q, want %q", got, "#1a2b3c")
	}
	if got := ParseHex(c.Hex()); got != (RGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 255}) {
		t.Errorf("ParseHex(Hex()) = %v", got)
	}
}

func TestToRGBA(t *testing.T) {
	got := ToRGBA(color.RGBA{R: 255, G: 0, B: 0, A: 255})
	if got != (RGBA{R: 255, A: 255}) {
		t.Errorf("ToRGBA() = %v", got)
	}
}

func TestBuiltinPalette(t *testing.T) {
	p := BuiltinPalette()
	want := []RGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
	}
	if diff := cmp.Diff(want, RGBAs(p)); diff != "" {
		t.Errorf("builtin palette mismatch (-want +got):\n%s", diff)
	}

	// Callers get their own copy.
	p[0].Hex = "#000000"
	if BuiltinPalette()[0].Hex != "#ff0000" {
		t.Error("BuiltinPalette() shares backing storage between calls")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{name: "negative", n: -1, want: 0},
		{name: "zero", n: 0, want: 0},
		{name: "partial", n: 2, want: 2},
		{name: "exact", n: 3, want: 3},
		{name: "above length", n: 10, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(Truncate(BuiltinPalette(), tt.n)); got != tt.want {
				t.Errorf("len(Truncate(%d)) = %d, want %d", tt.n, got, tt.want)
			}
		})
	}
}

func TestDetectedColorJSON(t *testing.T) {
	data, err := json.Marshal(DetectedColor{ID: "A1", PixelCount: 50, Hex: "#ff0000"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"id":"A1","count":50,"rgba":[255,0,0,255],"hex":"#ff0000"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
