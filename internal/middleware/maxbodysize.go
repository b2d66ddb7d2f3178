package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
)

// tooLargeBody is the JSON error envelope the API returns for oversized
// requests. It matches the handler package's ErrorResponse shape.
type tooLargeBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewMaxBodySizeHandler returns a middleware that limits incoming request body
// sizes to limit bytes. Requests advertising a larger Content-Length are
// rejected with a 413 payload_too_large JSON error before reaching the next
// handler. Bodies of unknown length are wrapped in http.MaxBytesReader, so the
// read inside the handler fails once the limit is crossed.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	limitBytes := middleware.RequestSize(limit)
	return func(next http.Handler) http.Handler {
		limited := limitBytes(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeTooLarge(w)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func writeTooLarge(w http.ResponseWriter) {
	var body tooLargeBody
	body.Error.Code = "payload_too_large"
	body.Error.Message = "request body is too large"

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusRequestEntityTooLarge)
	_ = jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(body)
}
