package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"talk-explorer/services"
)

// Dependencies is what the router needs to build its handlers.
type Dependencies struct {
	Sessions    *services.SessionService
	CatalogFile string
	MediaDir    string
	Logger      *slog.Logger
}

// NewRouter wires every route of the application.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pageHandler := NewPageHandler(deps.Sessions, logger)
	stateHandler := NewStateHandler(deps.Sessions, logger)
	mediaHandler := NewMediaHandler(deps.CatalogFile, deps.MediaDir, logger)

	r := mux.NewRouter()
	r.Use(loggingMiddleware(logger))

	// Page and form actions
	r.HandleFunc("/", pageHandler.Index).Methods(http.MethodGet)
	r.HandleFunc("/select/{id:[0-9]+}", pageHandler.Select).Methods(http.MethodPost)
	r.HandleFunc("/deselect", pageHandler.Deselect).Methods(http.MethodPost)
	r.HandleFunc("/retry", pageHandler.Retry).Methods(http.MethodPost)
	r.HandleFunc("/events", pageHandler.Events).Methods(http.MethodGet)

	// JSON state API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", stateHandler.GetState).Methods(http.MethodGet)
	api.HandleFunc("/selection", stateHandler.UpdateSelection).Methods(http.MethodPut)
	api.HandleFunc("/selection", stateHandler.ClearSelection).Methods(http.MethodDelete)
	api.HandleFunc("/retry", stateHandler.Retry).Methods(http.MethodPost)

	r.Handle("/health", HealthHandler()).Methods(http.MethodGet)

	// Static catalog document, then media files for everything else
	r.HandleFunc(services.CatalogPath, mediaHandler.ServeCatalog).Methods(http.MethodGet, http.MethodHead)
	r.PathPrefix("/").HandlerFunc(mediaHandler.ServeMedia).Methods(http.MethodGet, http.MethodHead)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return corsHandler.Handler(r)
}
