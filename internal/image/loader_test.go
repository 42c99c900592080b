package image

import (
	"bytes"
	"compress/gzip"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func encodeGIF(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.Black, color.White})
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("gif.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    Info
		wantErr bool
	}{
		{name: "png", data: encodePNG(t, 12, 7), want: Info{Format: "png", Width: 12, Height: 7}},
		{name: "gif", data: encodeGIF(t, 3, 4), want: Info{Format: "gif", Width: 3, Height: 4}},
		{name: "empty", data: nil, wantErr: true},
		{name: "garbage", data: []byte("definitely not an image"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Inspect(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Inspect() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Inspect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadSourceFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.png")
	data := encodePNG(t, 2, 2)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := LoadSource(context.Background(), path, 1<<20)
	if err != nil {
		t.Fatalf("LoadSource() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("LoadSource() returned different bytes")
	}

	if _, err := LoadSource(context.Background(), path, 8); err == nil {
		t.Error("LoadSource() with tiny limit: expected error")
	}
	if _, err := LoadSource(context.Background(), dir, 1<<20); err == nil {
		t.Error("LoadSource() of a directory: expected error")
	}
	if _, err := LoadSource(context.Background(), filepath.Join(dir, "missing.png"), 1<<20); err == nil {
		t.Error("LoadSource() of a missing file: expected error")
	}
	if _, err := LoadSource(context.Background(), "", 1<<20); err == nil {
		t.Error("LoadSource() of empty path: expected error")
	}
}

func TestLoadSourceURL(t *testing.T) {
	data := encodePNG(t, 5, 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.UserAgent(), "pixelpad/") {
			t.Errorf("User-Agent = %q", r.UserAgent())
		}
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	got, err := LoadSource(context.Background(), srv.URL+"/in.png", 1<<20)
	if err != nil {
		t.Fatalf("LoadSource() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("LoadSource() returned different bytes")
	}

	if _, err := LoadSource(context.Background(), srv.URL+"/missing.png", 1<<20); err == nil {
		t.Error("LoadSource() of a 404 URL: expected error")
	}
}

func TestLoadSourceCompressed(t *testing.T) {
	data := encodePNG(t, 6, 4)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "in.png.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadSource(context.Background(), path, 1<<20)
	if err != nil {
		t.Fatalf("LoadSource() error = %v", err)
	}
	info, err := Inspect(got)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.Format != "png" || info.Width != 6 || info.Height != 4 {
		t.Errorf("Inspect() = %+v, want png 6x4", info)
	}
}
