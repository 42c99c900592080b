package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmylchreest/pixelpad/internal/security"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			if got := r.Header.Get("X-Test"); got != "yes" {
				t.Errorf("X-Test header = %q", got)
			}
			_, _ = w.Write([]byte("payload"))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 100)))
		default:
			http.Error(w, "nope", http.StatusTeapot)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	data, err := Fetch(ctx, srv.URL+"/ok", FetchOptions{Headers: map[string]string{"X-Test": "yes"}})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("Fetch() = %q", data)
	}

	if _, err := Fetch(ctx, srv.URL+"/teapot", FetchOptions{}); err == nil || !strings.Contains(err.Error(), "418") {
		t.Errorf("Fetch() of failing URL error = %v, want HTTP 418", err)
	}

	if _, err := Fetch(ctx, srv.URL+"/big", FetchOptions{MaxBytes: 10}); !errors.Is(err, security.ErrSizeLimit) {
		t.Errorf("Fetch() over limit error = %v, want ErrSizeLimit", err)
	}
}
