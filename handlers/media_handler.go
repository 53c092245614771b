package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"talk-explorer/utils"
)

// MediaHandler serves the static catalog document and the media files it
// points at.
type MediaHandler struct {
	catalogFile string
	mediaDir    string
	logger      *slog.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(catalogFile, mediaDir string, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{catalogFile: catalogFile, mediaDir: mediaDir, logger: logger}
}

// ServeCatalog handles GET /tutorial/data.json. The file is served verbatim.
func (h *MediaHandler) ServeCatalog(w http.ResponseWriter, r *http.Request) {
	if !utils.FileExists(h.catalogFile) {
		h.logger.Warn("catalog file not found", "path", h.catalogFile)
		http.Error(w, "Catalog not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, h.catalogFile)
}

// ServeMedia serves a file from the media directory by URL path. Range
// requests are honoured so players can seek.
func (h *MediaHandler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/")
	path, err := utils.ResolveUnder(h.mediaDir, rel)
	if err != nil {
		if errors.Is(err, utils.ErrOutsideRoot) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	if !utils.FileExists(path) {
		http.NotFound(w, r)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		h.logger.Error("open media file failed", "path", path, "err", err)
		http.Error(w, "Failed to open media file", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		h.logger.Error("stat media file failed", "path", path, "err", err)
		http.Error(w, "Failed to get file info", http.StatusInternalServerError)
		return
	}

	h.logger.Debug("serving media", "path", path, "size", info.Size(), "range", r.Header.Get("Range"))
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
