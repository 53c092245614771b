package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"talk-explorer/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func catalogServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != CatalogPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestLoader(t *testing.T, baseURL string) *CatalogLoader {
	t.Helper()
	l, err := NewCatalogLoader(baseURL, 5*time.Second, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	return l
}

const scenarioCatalog = `[{"id":1,"title":"Intro","speaker":"A. Dev","url":"/v1.mp4"},
{"id":2,"title":"Deep Dive","speaker":"B. Dev","url":"/v2.mp4"}]`

func TestCatalogLoader_Success(t *testing.T) {
	srv := catalogServer(t, http.StatusOK, scenarioCatalog)
	videos, err := newTestLoader(t, srv.URL).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []models.Video{
		{ID: 1, Title: "Intro", Speaker: "A. Dev", URL: "/v1.mp4"},
		{ID: 2, Title: "Deep Dive", Speaker: "B. Dev", URL: "/v2.mp4"},
	}
	if diff := cmp.Diff(want, videos); diff != "" {
		t.Fatalf("videos mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogLoader_Empty(t *testing.T) {
	srv := catalogServer(t, http.StatusOK, `[]`)
	videos, err := newTestLoader(t, srv.URL).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if videos == nil || len(videos) != 0 {
		t.Fatalf("expected empty non-nil catalog, got %#v", videos)
	}
}

func TestCatalogLoader_Endpoint(t *testing.T) {
	l := newTestLoader(t, "http://example.test/base/")
	if got := l.Endpoint(); got != "http://example.test/base/tutorial/data.json" {
		t.Fatalf("endpoint = %q", got)
	}
	if _, err := NewCatalogLoader("/relative", 0, nil); err == nil {
		t.Fatal("expected error for relative base url")
	}
}

func TestCatalogLoader_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   ErrorKind
	}{
		{"server error", http.StatusInternalServerError, "oops", KindTransport},
		{"not found", http.StatusNotFound, "", KindTransport},
		{"malformed json", http.StatusOK, `[{"id":1,`, KindDecode},
		{"not an array", http.StatusOK, `{"id":1}`, KindDecode},
		{"null", http.StatusOK, `null`, KindDecode},
		{"missing url", http.StatusOK, `[{"id":1,"title":"T","speaker":"S"}]`, KindDecode},
		{"empty title", http.StatusOK, `[{"id":1,"title":"","speaker":"S","url":"/u"}]`, KindDecode},
		{"negative id", http.StatusOK, `[{"id":-1,"title":"T","speaker":"S","url":"/u"}]`, KindDecode},
		{"fractional id", http.StatusOK, `[{"id":1.5,"title":"T","speaker":"S","url":"/u"}]`, KindDecode},
		{"duplicate id", http.StatusOK, `[{"id":1,"title":"T","speaker":"S","url":"/u"},{"id":1,"title":"U","speaker":"S","url":"/v"}]`, KindDecode},
		{"trailing data", http.StatusOK, `[] []`, KindDecode},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := catalogServer(t, tc.status, tc.body)
			_, err := newTestLoader(t, srv.URL).Load(context.Background())
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LoadError, got %v", err)
			}
			if le.Kind != tc.kind {
				t.Fatalf("kind = %s, want %s (%v)", le.Kind, tc.kind, err)
			}
		})
	}
}

func TestCatalogLoader_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestLoader(t, url).Load(context.Background())
	var le *LoadError
	if !errors.As(err, &le) || le.Kind != KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "transport: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCatalogLoader_ContextCanceled(t *testing.T) {
	srv := catalogServer(t, http.StatusOK, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestLoader(t, srv.URL).Load(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}
