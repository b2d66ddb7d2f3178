package handler_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/book-rental/backend/internal/middleware"
)

func TestCreateReservation_413_BodyOverLimit(t *testing.T) {
	cases := []struct {
		name     string
		streamed bool
	}{
		{"declared content length", false},
		{"streamed body", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// create is nil: reaching the service would panic.
			h := middleware.NewMaxBodySizeHandler(16)(reservationsHandler(&mockReservationServicer{}))
			body := `{"user_id":"` + strings.Repeat("x", 50) + `"}`

			rec := doWithLength(h, http.MethodPost, "/reservations", body, tc.streamed)

			require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			detail := decodeError(t, rec)
			assert.Equal(t, "payload_too_large", detail.Code)
			assert.Equal(t, "request body is too large", detail.Message)
		})
	}
}

// doWithLength is do with control over Content-Length. A streamed request
// reports an unknown length, so only the read inside the handler can trip
// the limit.
func doWithLength(h http.Handler, method, target, body string, streamed bool) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if streamed {
		req.ContentLength = -1
	}
	h.ServeHTTP(rec, req)
	return rec
}
