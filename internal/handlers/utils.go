package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"video-ingest/internal/assets"
	"video-ingest/internal/logging"
)

const msgInternal = "internal server error"

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeJSONStatus writes a JSON body with a 200 status.
func writeJSONStatus(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, v)
}

// statusFor maps an error to its HTTP status and the message safe to show
// to clients.
func statusFor(err error) (int, string) {
	var (
		validation *assets.ValidationError
		probe      *assets.ProbeError
		notFound   *assets.NotFoundError
		tooLarge   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusBadRequest, "file exceeds maximum upload size"
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error()
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.As(err, &probe):
		return http.StatusInternalServerError, "could not read video file: " + probe.Reason
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// writeError logs err and writes the mapped JSON error response.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("%s %s: %v", r.Method, r.URL.Path, err)
	} else {
		h.log.Debug("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSONError(w, message, status)
}
