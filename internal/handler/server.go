// Package handler implements the HTTP handlers for the book rental API.
// All handlers are methods on Server. Methods are split into resource files
// (health.go, user.go, book.go, reservation.go, export.go) but all share the
// same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/book-rental/backend/internal/domain"
	"github.com/pkordes/book-rental/backend/spec"
)

// UserServicer defines the user operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type UserServicer interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// BookServicer defines the catalog operations the handlers depend on.
type BookServicer interface {
	Create(ctx context.Context, book domain.Book) (domain.Book, error)
	GetByExternalID(ctx context.Context, externalID int64) (domain.Book, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Book], error)
}

// ReservationServicer defines the reservation lifecycle operations the
// handlers depend on.
type ReservationServicer interface {
	Create(ctx context.Context, req domain.NewReservation) (domain.ReservationView, error)
	Return(ctx context.Context, id uuid.UUID, returnDate *time.Time) (domain.ReservationView, error)
	Quote(ctx context.Context, bookExternalID int64, rentalDays int, startDate time.Time) (domain.Quote, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.ReservationView, error)
	ListAll(ctx context.Context) ([]domain.ReservationView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ReservationView, error)
	ListActive(ctx context.Context) ([]domain.ReservationView, error)
	ListOverdue(ctx context.Context) ([]domain.ReservationView, error)
	ListPaged(ctx context.Context, f domain.ReservationFilter, p domain.PaginationParams) (domain.Page[domain.ReservationView], error)
}

// Server holds the dependencies shared by every handler.
// Wire it in main.go by mounting Routes() on the top-level router.
type Server struct {
	users        UserServicer
	books        BookServicer
	reservations ReservationServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(users UserServicer, books BookServicer, reservations ReservationServicer) *Server {
	return &Server{users: users, books: books, reservations: reservations}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes returns a chi router with every API endpoint registered.
// Static segments (/reservations/active) take precedence over {id} in chi,
// so registration order does not matter.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", s.CreateUser)
		r.Get("/{id}", s.GetUser)
		r.Get("/{id}/reservations", s.ListUserReservations)
	})

	r.Route("/books", func(r chi.Router) {
		r.Post("/", s.CreateBook)
		r.Get("/", s.ListBooks)
		r.Get("/{externalId}", s.GetBook)
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", s.CreateReservation)
		r.Get("/", s.ListReservations)
		r.Get("/active", s.ListActiveReservations)
		r.Get("/overdue", s.ListOverdueReservations)
		r.Get("/quote", s.QuoteReservation)
		r.Get("/export", s.ExportReservations)
		r.Get("/{id}", s.GetReservation)
		r.Post("/{id}/return", s.ReturnReservation)
	})

	return r
}

// serveOpenAPI handles GET /openapi.yaml with the description embedded in the binary.
func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
