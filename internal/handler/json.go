package handler

import (
	"errors"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

// json is a drop-in replacement for encoding/json. It honours the same struct
// tags and Marshaler interfaces, which uuid, decimal and openapi Date rely on.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// errEmptyBody is returned by decodeJSON when the request carries no body.
	errEmptyBody = errors.New("request body is required")
	// errBodyTooLarge is returned when the body crosses the MaxBodySize limit.
	errBodyTooLarge = errors.New("request body is too large")
)

// writeJSON writes v as the JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already sent, so an encode error has nowhere to go.
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the whole request body and decodes it into dst.
// The body is read up front so a size-limit failure stays distinguishable
// from malformed JSON.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return err
	}
	if len(raw) == 0 {
		return errEmptyBody
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.New("request body is not valid JSON")
	}
	return nil
}

// writeBodyError reports a decodeJSON failure: 413 for an oversized body,
// 422 for everything else.
func writeBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("payload_too_large", err.Error()))
		return
	}
	writeRequestError(w, err.Error())
}
