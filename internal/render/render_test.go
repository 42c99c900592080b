package render

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jmylchreest/pixelpad/internal/colour"
	"github.com/jmylchreest/pixelpad/internal/pattern"
	"github.com/jmylchreest/pixelpad/internal/session"
)

var (
	red   = colour.RGBA{R: 255, A: 255}
	green = colour.RGBA{G: 255, A: 255}
	blue  = colour.RGBA{B: 255, A: 255}
)

func intPtr(v int) *int { return &v }

func newSession(t *testing.T, opts session.CreateOptions) (*Dispatcher, *session.ColorSession) {
	t.Helper()
	reg := session.NewRegistry()
	return NewDispatcher(reg), reg.Create(opts)
}

func decode(t *testing.T, data []byte) *image.NRGBA {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("decoded %T, want *image.NRGBA", img)
	}
	return nrgba
}

func TestParseColorIDs(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: nil},
		{raw: " , ,", want: nil},
		{raw: "A1", want: []string{"A1"}},
		{raw: " C3 ,A1,, B2 ", want: []string{"C3", "A1", "B2"}},
		{raw: "A1,A1", want: []string{"A1", "A1"}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseColorIDs(tt.raw)); diff != "" {
			t.Errorf("ParseColorIDs(%q) mismatch (-want +got):\n%s", tt.raw, diff)
		}
	}
}

func TestSelect(t *testing.T) {
	_, s := newSession(t, session.CreateOptions{})

	tests := []struct {
		name string
		ids  []string
		want pattern.Pattern
	}{
		{
			name: "no selection bands full palette",
			ids:  nil,
			want: pattern.Banded([]colour.RGBA{red, green, blue}),
		},
		{
			name: "single colour stipples",
			ids:  []string{"B2"},
			want: pattern.IsolatedStipple(green, pattern.StippleSeed(s.ID, "B2")),
		},
		{
			name: "multiple colours keep request order",
			ids:  []string{"C3", "A1"},
			want: pattern.Banded([]colour.RGBA{blue, red}),
		},
		{
			name: "duplicates are kept",
			ids:  []string{"A1", "A1"},
			want: pattern.Banded([]colour.RGBA{red, red}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(s, tt.ids)
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Select() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectUnknownColour(t *testing.T) {
	_, s := newSession(t, session.CreateOptions{})

	_, err := Select(s, []string{"A1", "Z9", "B2"})
	if !errors.Is(err, ErrInvalidColorID) {
		t.Fatalf("Select() error = %v, want ErrInvalidColorID", err)
	}
	var idErr *ColorIDError
	if !errors.As(err, &idErr) || idErr.ID != "Z9" {
		t.Errorf("Select() error = %#v, want ColorIDError{ID: Z9}", err)
	}
}

func TestRenderInvalidSession(t *testing.T) {
	d, _ := newSession(t, session.CreateOptions{})

	for _, id := range []string{"", "   ", "unknown"} {
		res, err := d.Render(id, "")
		if !errors.Is(err, ErrInvalidSession) {
			t.Errorf("Render(%q) error = %v, want ErrInvalidSession", id, err)
		}
		if res != nil {
			t.Errorf("Render(%q) returned a result alongside an error", id)
		}
	}
}

func TestRenderUnknownColourProducesNothing(t *testing.T) {
	d, s := newSession(t, session.CreateOptions{})

	res, err := d.Render(s.ID, "A1,nope")
	if !errors.Is(err, ErrInvalidColorID) {
		t.Fatalf("Render() error = %v, want ErrInvalidColorID", err)
	}
	if res != nil {
		t.Errorf("Render() returned %d bytes for an invalid colour", len(res.PNG))
	}
}

func TestRenderFullPalette(t *testing.T) {
	d, s := newSession(t, session.CreateOptions{Width: 4, Height: 90})

	res, err := d.Render(s.ID, "")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	img := decode(t, res.PNG)
	if got := img.Bounds(); got != image.Rect(0, 0, 4, 90) {
		t.Fatalf("bounds = %v", got)
	}

	for _, tt := range []struct {
		y    int
		want colour.RGBA
	}{{0, red}, {29, red}, {30, green}, {59, green}, {60, blue}, {89, blue}} {
		if got := colour.ToRGBA(img.At(2, tt.y)); got != tt.want {
			t.Errorf("row %d = %v, want %v", tt.y, got, tt.want)
		}
	}
}

func TestRenderSingleColourStipple(t *testing.T) {
	d, s := newSession(t, session.CreateOptions{Width: 22, Height: 22})

	res, err := d.Render(" "+s.ID+" ", " C3 ")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	img := decode(t, res.PNG)
	seed := uint64(pattern.StippleSeed(s.ID, "C3"))

	for y := 0; y < 22; y++ {
		for x := 0; x < 22; x++ {
			want := colour.Transparent
			if (uint64(3*x)+uint64(5*y)+seed)%11 == 0 {
				want = blue
			}
			if got := colour.ToRGBA(img.At(x, y)); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}

	again, err := d.Render(s.ID, "C3")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.Equal(res.PNG, again.PNG) {
		t.Error("repeated render produced different bytes")
	}
}

func TestRenderMultiColourOrder(t *testing.T) {
	d, s := newSession(t, session.CreateOptions{Width: 1, Height: 2})

	res, err := d.Render(s.ID, "B2,A1")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	img := decode(t, res.PNG)
	if got := colour.ToRGBA(img.At(0, 0)); got != green {
		t.Errorf("row 0 = %v, want green", got)
	}
	if got := colour.ToRGBA(img.At(0, 1)); got != red {
		t.Errorf("row 1 = %v, want red", got)
	}
}

func TestRenderEmptyPaletteIsTransparent(t *testing.T) {
	d, s := newSession(t, session.CreateOptions{MaxColors: intPtr(0), Width: 8, Height: 6})

	res, err := d.Render(s.ID, "")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	img := decode(t, res.PNG)
	if diff := cmp.Diff(make([]byte, 8*6*4), img.Pix); diff != "" {
		t.Errorf("expected fully transparent image (-want +got):\n%s", diff)
	}

	if _, err := d.Render(s.ID, "A1"); !errors.Is(err, ErrInvalidColorID) {
		t.Errorf("Render(A1) on empty palette error = %v, want ErrInvalidColorID", err)
	}
}
