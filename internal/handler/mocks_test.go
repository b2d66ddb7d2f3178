package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/book-rental/backend/internal/domain"
	"github.com/pkordes/book-rental/backend/internal/handler"
)

// mockUserServicer is a test double for handler.UserServicer.
// Set only the method fields your test needs.
type mockUserServicer struct {
	create  func(ctx context.Context, user domain.User) (domain.User, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.User, error)
}

func (m *mockUserServicer) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return m.create(ctx, u)
}
func (m *mockUserServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}

var _ handler.UserServicer = (*mockUserServicer)(nil)

// mockBookServicer is a test double for handler.BookServicer.
type mockBookServicer struct {
	create          func(ctx context.Context, book domain.Book) (domain.Book, error)
	getByExternalID func(ctx context.Context, externalID int64) (domain.Book, error)
	listPaged       func(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Book], error)
}

func (m *mockBookServicer) Create(ctx context.Context, b domain.Book) (domain.Book, error) {
	return m.create(ctx, b)
}
func (m *mockBookServicer) GetByExternalID(ctx context.Context, externalID int64) (domain.Book, error) {
	return m.getByExternalID(ctx, externalID)
}
func (m *mockBookServicer) ListPaged(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Book], error) {
	return m.listPaged(ctx, p)
}

var _ handler.BookServicer = (*mockBookServicer)(nil)

// mockReservationServicer is a test double for handler.ReservationServicer.
type mockReservationServicer struct {
	create      func(ctx context.Context, req domain.NewReservation) (domain.ReservationView, error)
	ret         func(ctx context.Context, id uuid.UUID, returnDate *time.Time) (domain.ReservationView, error)
	quote       func(ctx context.Context, bookExternalID int64, rentalDays int, startDate time.Time) (domain.Quote, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.ReservationView, error)
	listAll     func(ctx context.Context) ([]domain.ReservationView, error)
	listByUser  func(ctx context.Context, userID uuid.UUID) ([]domain.ReservationView, error)
	listActive  func(ctx context.Context) ([]domain.ReservationView, error)
	listOverdue func(ctx context.Context) ([]domain.ReservationView, error)
	listPaged   func(ctx context.Context, f domain.ReservationFilter, p domain.PaginationParams) (domain.Page[domain.ReservationView], error)
}

func (m *mockReservationServicer) Create(ctx context.Context, req domain.NewReservation) (domain.ReservationView, error) {
	return m.create(ctx, req)
}
func (m *mockReservationServicer) Return(ctx context.Context, id uuid.UUID, returnDate *time.Time) (domain.ReservationView, error) {
	return m.ret(ctx, id, returnDate)
}
func (m *mockReservationServicer) Quote(ctx context.Context, bookExternalID int64, rentalDays int, startDate time.Time) (domain.Quote, error) {
	return m.quote(ctx, bookExternalID, rentalDays, startDate)
}
func (m *mockReservationServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.ReservationView, error) {
	return m.getByID(ctx, id)
}
func (m *mockReservationServicer) ListAll(ctx context.Context) ([]domain.ReservationView, error) {
	return m.listAll(ctx)
}
func (m *mockReservationServicer) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ReservationView, error) {
	return m.listByUser(ctx, userID)
}
func (m *mockReservationServicer) ListActive(ctx context.Context) ([]domain.ReservationView, error) {
	return m.listActive(ctx)
}
func (m *mockReservationServicer) ListOverdue(ctx context.Context) ([]domain.ReservationView, error) {
	return m.listOverdue(ctx)
}
func (m *mockReservationServicer) ListPaged(ctx context.Context, f domain.ReservationFilter, p domain.PaginationParams) (domain.Page[domain.ReservationView], error) {
	return m.listPaged(ctx, f, p)
}

var _ handler.ReservationServicer = (*mockReservationServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler builds the real chi router around the given mocks.
// This mirrors how main.go mounts the routes in production.
func newHTTPHandler(users handler.UserServicer, books handler.BookServicer, res handler.ReservationServicer) http.Handler {
	return handler.NewServer(users, books, res).Routes()
}

// do sends a request through h and returns the recorder.
func do(h http.Handler, method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// decodeError decodes an ErrorResponse body and returns its detail.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}
