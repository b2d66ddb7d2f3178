// Package service contains the business logic for the book rental API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/book-rental/backend/internal/domain"
	"github.com/pkordes/book-rental/backend/internal/repo"
)

// ReservationService creates and returns reservations and computes their
// rental and late fees. Every write runs as one unit of work through the
// Transactor so the reservation row and the book's available-copy counter
// change together or not at all.
type ReservationService struct {
	repos repo.Repos
	tx    repo.Transactor
	clock Clock
	log   *slog.Logger
}

// NewReservationService constructs a ReservationService.
// repos serves the read operations; tx scopes every write to one transaction.
// A nil clock uses SystemClock and a nil logger uses slog.Default().
func NewReservationService(repos repo.Repos, tx repo.Transactor, clock Clock, log *slog.Logger) *ReservationService {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &ReservationService{repos: repos, tx: tx, clock: clock, log: log}
}

// Create reserves one copy of a book for a user.
//
// The book row is locked before its availability is checked, the ACTIVE
// reservation is written, and then one copy is taken off the shelf.
// Returns domain.ErrNotFound if the user or book does not exist,
// domain.ErrUnavailable if no copy is left, domain.ErrValidation for bad input.
func (s *ReservationService) Create(ctx context.Context, req domain.NewReservation) (domain.ReservationView, error) {
	if req.StartDate.IsZero() {
		return domain.ReservationView{}, fmt.Errorf("%w: start_date is required", domain.ErrValidation)
	}

	var view domain.ReservationView
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		user, err := r.Users.GetByID(ctx, req.UserID)
		if err != nil {
			return notFound(err, "user %s does not exist", req.UserID)
		}
		book, err := r.Books.GetByExternalIDForUpdate(ctx, req.BookExternalID)
		if err != nil {
			return notFound(err, "book %d does not exist", req.BookExternalID)
		}
		if !book.HasAvailableCopies() {
			return fmt.Errorf("%w: no copies of book %d are available", domain.ErrUnavailable, book.ExternalID)
		}

		quote := domain.PriceQuote(book, req.RentalDays, req.StartDate)
		created, err := r.Reservations.Create(ctx, domain.Reservation{
			UserID:             user.ID,
			BookExternalID:     book.ExternalID,
			RentalDays:         req.RentalDays,
			DailyRate:          quote.DailyRate,
			TotalFee:           quote.TotalFee,
			StartDate:          quote.StartDate,
			ExpectedReturnDate: quote.ExpectedReturnDate,
			LateFee:            decimal.Zero,
			Status:             domain.StatusActive,
		})
		if err != nil {
			return err
		}
		if err := r.Books.DecreaseAvailable(ctx, book.ExternalID); err != nil {
			return err
		}

		view = domain.NewReservationView(created, user, book)
		return nil
	})
	if err != nil {
		return domain.ReservationView{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}

	s.log.InfoContext(ctx, "reservation created",
		"reservation_id", view.ID,
		"user_id", view.UserID,
		"book_external_id", view.BookExternalID,
		"total_fee", view.TotalFee.StringFixed(2),
		"expected_return_date", view.ExpectedReturnDate.Format(time.DateOnly),
	)
	return view, nil
}

// Return closes an ACTIVE reservation and puts the copy back on the shelf.
//
// returnDate defaults to today. The late fee is charged from the book's price
// at return time, not the daily rate captured at creation.
// Returns domain.ErrNotFound if the reservation does not exist and
// domain.ErrInvalidState if it was already returned.
func (s *ReservationService) Return(ctx context.Context, id uuid.UUID, returnDate *time.Time) (domain.ReservationView, error) {
	on := s.today()
	if returnDate != nil {
		on = domain.DateOf(*returnDate)
	}

	var view domain.ReservationView
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		res, err := r.Reservations.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "reservation %s does not exist", id)
		}
		if res.Status != domain.StatusActive {
			return fmt.Errorf("%w: reservation %s is already %s", domain.ErrInvalidState, id, res.Status)
		}
		book, err := r.Books.GetByExternalIDForUpdate(ctx, res.BookExternalID)
		if err != nil {
			return err
		}

		settled, err := domain.Settle(res, book.Price, on)
		if err != nil {
			return err
		}
		saved, err := r.Reservations.MarkReturned(ctx, settled)
		if err != nil {
			return err
		}
		if err := r.Books.IncreaseAvailable(ctx, book.ExternalID); err != nil {
			return err
		}

		user, err := r.Users.GetByID(ctx, saved.UserID)
		if err != nil {
			return err
		}
		view = domain.NewReservationView(saved, user, book)
		return nil
	})
	if err != nil {
		return domain.ReservationView{}, fmt.Errorf("service.ReservationService.Return: %w", err)
	}

	s.log.InfoContext(ctx, "reservation returned",
		"reservation_id", view.ID,
		"status", view.Status,
		"late_fee", view.LateFee.StringFixed(2),
		"actual_return_date", on.Format(time.DateOnly),
	)
	return view, nil
}

// Quote previews the fees and expected return date of a reservation without
// persisting anything. A zero startDate means today.
// Returns domain.ErrNotFound if the book does not exist.
func (s *ReservationService) Quote(ctx context.Context, bookExternalID int64, rentalDays int, startDate time.Time) (domain.Quote, error) {
	if startDate.IsZero() {
		startDate = s.today()
	}
	book, err := s.repos.Books.GetByExternalID(ctx, bookExternalID)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("service.ReservationService.Quote: %w", notFound(err, "book %d does not exist", bookExternalID))
	}
	return domain.PriceQuote(book, rentalDays, startDate), nil
}

// GetByID returns the view of a single reservation.
// Returns domain.ErrNotFound if it does not exist.
func (s *ReservationService) GetByID(ctx context.Context, id uuid.UUID) (domain.ReservationView, error) {
	view, err := s.repos.Reservations.GetView(ctx, id)
	if err != nil {
		return domain.ReservationView{}, fmt.Errorf("service.ReservationService.GetByID: %w", err)
	}
	return view, nil
}

// ListAll returns every reservation, newest first.
func (s *ReservationService) ListAll(ctx context.Context) ([]domain.ReservationView, error) {
	return s.list(ctx, "ListAll", domain.ReservationFilter{})
}

// ListByUser returns every reservation of one user, newest first.
func (s *ReservationService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ReservationView, error) {
	return s.list(ctx, "ListByUser", domain.ReservationFilter{UserID: &userID})
}

// ListActive returns every reservation whose book is still out.
func (s *ReservationService) ListActive(ctx context.Context) ([]domain.ReservationView, error) {
	status := domain.StatusActive
	return s.list(ctx, "ListActive", domain.ReservationFilter{Status: &status})
}

// ListOverdue returns ACTIVE reservations whose expected return date has passed.
func (s *ReservationService) ListOverdue(ctx context.Context) ([]domain.ReservationView, error) {
	today := s.today()
	return s.list(ctx, "ListOverdue", domain.ReservationFilter{OverdueAsOf: &today})
}

// ListPaged returns one page of reservations matching f.
func (s *ReservationService) ListPaged(ctx context.Context, f domain.ReservationFilter, p domain.PaginationParams) (domain.Page[domain.ReservationView], error) {
	if f.Status != nil && !f.Status.Valid() {
		return domain.Page[domain.ReservationView]{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *f.Status)
	}
	views, total, err := s.repos.Reservations.ListPaged(ctx, f, p)
	if err != nil {
		return domain.Page[domain.ReservationView]{}, fmt.Errorf("service.ReservationService.ListPaged: %w", err)
	}
	return domain.Page[domain.ReservationView]{Items: views, Total: total}, nil
}

// list always returns a non-nil slice so callers can safely range over it.
func (s *ReservationService) list(ctx context.Context, op string, f domain.ReservationFilter) ([]domain.ReservationView, error) {
	views, err := s.repos.Reservations.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.%s: %w", op, err)
	}
	if views == nil {
		return []domain.ReservationView{}, nil
	}
	return views, nil
}

func (s *ReservationService) today() time.Time {
	return domain.DateOf(s.clock.Now())
}

// notFound rewrites a domain.ErrNotFound into one that names the missing
// resource. Other errors pass through untouched.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: "+format, append([]any{domain.ErrNotFound}, args...)...)
	}
	return err
}
