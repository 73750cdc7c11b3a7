package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the API, file and health routes on router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/upload", h.Upload).Methods(http.MethodPost).Name("upload")
	api.HandleFunc("/videos", h.ListVideos).Methods(http.MethodGet).Name("list")
	api.HandleFunc("/videos/{id}", h.GetVideo).Methods(http.MethodGet).Name("get")
	api.HandleFunc("/videos/{id}", h.DeleteVideo).Methods(http.MethodDelete).Name("delete")
	api.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet).Name("health")
	api.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet).Name("version")

	router.HandleFunc("/uploads/{id}/{file}", h.ServeFile).Methods(http.MethodGet, http.MethodHead).Name("file")

	router.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	router.HandleFunc("/healthz", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, "not found", http.StatusNotFound)
	})
}
