package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/book-rental/backend/internal/domain"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// sentinels pairs each domain error with its HTTP status and error code.
var sentinels = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
	{domain.ErrUnavailable, http.StatusConflict, "unavailable"},
	{domain.ErrInvalidState, http.StatusConflict, "invalid_state"},
}

// writeError maps err onto the HTTP error contract. Unrecognised errors are
// logged and reported as a bare 500 so internals never leak to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			writeJSON(w, s.status, errorBody(s.code, unwrapMessage(err)))
			return
		}
	}
	slog.ErrorContext(r.Context(), "unhandled error",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
}

// writeNotFound writes a 404 for a missing resource.
// The caller supplies the message (e.g. "reservation not found") because the
// handler is the layer that knows what was being looked up.
func writeNotFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, errorBody("not_found", message))
}

// writeRequestError writes a 422 for a request rejected before reaching the
// service layer (e.g. missing body, malformed id or query parameter).
func writeRequestError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", message))
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// unwrapMessage extracts the human-readable part that follows the sentinel.
// e.g. "service.ReservationService.Create: unavailable: no copies of book 7 are available"
// → "no copies of book 7 are available"
func unwrapMessage(err error) string {
	msg := err.Error()
	for _, s := range sentinels {
		marker := s.err.Error() + ": "
		if i := strings.Index(msg, marker); i >= 0 {
			return msg[i+len(marker):]
		}
	}
	// A bare sentinel behind "pkg.Type.Method: " prefixes.
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+len(": "):]
	}
	return msg
}
