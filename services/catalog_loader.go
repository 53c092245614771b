package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"talk-explorer/models"
)

// CatalogPath is the fixed resource the catalog is fetched from.
const CatalogPath = "/tutorial/data.json"

// maxCatalogBytes caps the response body; the catalog is held in memory.
const maxCatalogBytes = 8 << 20

// ErrorKind classifies a failed load.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindDecode    ErrorKind = "decode"
)

// LoadError is returned by CatalogLoader.Load for every failure.
type LoadError struct {
	Kind ErrorKind
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader fetches the whole catalog once.
type Loader interface {
	Load(ctx context.Context) ([]models.Video, error)
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(ctx context.Context) ([]models.Video, error)

// Load calls f(ctx).
func (f LoaderFunc) Load(ctx context.Context) ([]models.Video, error) { return f(ctx) }

// CatalogLoader fetches CatalogPath from a base URL over HTTP.
type CatalogLoader struct {
	client   *http.Client
	endpoint string
	logger   *slog.Logger
}

// NewCatalogLoader creates a loader for baseURL + CatalogPath. A zero timeout
// leaves the request unbounded.
func NewCatalogLoader(baseURL string, timeout time.Duration, logger *slog.Logger) (*CatalogLoader, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("catalog base url %q must be absolute", baseURL)
	}
	endpoint := base.JoinPath(CatalogPath)
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogLoader{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint.String(),
		logger:   logger,
	}, nil
}

// Endpoint is the absolute URL the loader requests.
func (l *CatalogLoader) Endpoint() string { return l.endpoint }

// Load performs a single GET and decodes the response into videos.
func (l *CatalogLoader) Load(ctx context.Context) ([]models.Video, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return nil, &LoadError{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Warn("catalog fetch failed", "endpoint", l.endpoint, "err", err)
		return nil, &LoadError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxCatalogBytes))
		l.logger.Warn("catalog fetch rejected", "endpoint", l.endpoint, "status", resp.StatusCode)
		return nil, &LoadError{Kind: KindTransport, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	videos, err := DecodeCatalog(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		l.logger.Warn("catalog decode failed", "endpoint", l.endpoint, "err", err)
		return nil, err
	}
	l.logger.Info("catalog loaded", "endpoint", l.endpoint, "videos", len(videos), "duration", time.Since(start))
	return videos, nil
}

type wireVideo struct {
	ID      *int64  `json:"id"`
	Title   *string `json:"title"`
	Speaker *string `json:"speaker"`
	URL     *string `json:"url"`
}

// DecodeCatalog decodes a JSON array of videos. Every field is required,
// ids must be non-negative and unique, title and speaker non-empty.
func DecodeCatalog(r io.Reader) ([]models.Video, error) {
	var wire []wireVideo
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return nil, &LoadError{Kind: KindDecode, Err: err}
	}
	if wire == nil {
		return nil, &LoadError{Kind: KindDecode, Err: errors.New("expected a JSON array")}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &LoadError{Kind: KindDecode, Err: errors.New("trailing data after catalog")}
	}

	videos := make([]models.Video, 0, len(wire))
	seen := make(map[int64]struct{}, len(wire))
	for i, w := range wire {
		if err := w.validate(); err != nil {
			return nil, &LoadError{Kind: KindDecode, Err: fmt.Errorf("entry %d: %w", i, err)}
		}
		if _, dup := seen[*w.ID]; dup {
			return nil, &LoadError{Kind: KindDecode, Err: fmt.Errorf("entry %d: duplicate id %d", i, *w.ID)}
		}
		seen[*w.ID] = struct{}{}
		videos = append(videos, models.Video{
			ID:      *w.ID,
			Title:   *w.Title,
			Speaker: *w.Speaker,
			URL:     *w.URL,
		})
	}
	return videos, nil
}

func (w wireVideo) validate() error {
	switch {
	case w.ID == nil:
		return errors.New("missing id")
	case *w.ID < 0:
		return fmt.Errorf("negative id %d", *w.ID)
	case w.Title == nil || *w.Title == "":
		return errors.New("missing title")
	case w.Speaker == nil || *w.Speaker == "":
		return errors.New("missing speaker")
	case w.URL == nil:
		return errors.New("missing url")
	}
	return nil
}
