package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/ternarybob/bursa/internal/common"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{
			"message": "Method not allowed",
		})
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteMessage writes a `{message}` JSON body with the given status.
func WriteMessage(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"message": message,
	})
}

// StatusForError maps the error taxonomy onto an HTTP status: lookup
// misses are 404, malformed requests 400, everything else (including
// infrastructure failures) 500.
func StatusForError(err error) int {
	switch {
	case common.IsNotFound(err):
		return http.StatusNotFound
	case common.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError translates a service error into the standard
// `{message}` body. On a 500 the underlying detail is attached under
// `error` only when includeDetail is set (never in production).
func WriteServiceError(w http.ResponseWriter, err error, includeDetail bool) error {
	status := StatusForError(err)

	body := map[string]string{}
	switch status {
	case http.StatusNotFound, http.StatusBadRequest:
		body["message"] = err.Error()
	default:
		body["message"] = "Internal server error"
		if includeDetail {
			body["error"] = err.Error()
		}
	}

	return WriteJSON(w, status, body)
}

// PathParam extracts and unescapes the path segment following prefix,
// e.g. PathParam("/api/country/South%20Korea", "/api/country/") ->
// "South Korea". Empty when the path has no segment or carries a
// deeper subpath.
func PathParam(path, prefix string) string {
	param := strings.TrimPrefix(path, prefix)
	if param == "" || strings.Contains(param, "/") {
		return ""
	}
	if unescaped, err := url.PathUnescape(param); err == nil {
		return unescaped
	}
	return param
}
