package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/book-rental/backend/internal/domain"
	"github.com/pkordes/book-rental/backend/internal/repo"
)

// mockUserRepo is a hand-written test double for repo.UserRepo.
// Each method is a function field; set only the ones your test needs.
type mockUserRepo struct {
	create  func(ctx context.Context, user domain.User) (domain.User, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	return m.create(ctx, user)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

// mockBookRepo is a hand-written test double for repo.BookRepo.
type mockBookRepo struct {
	create                   func(ctx context.Context, book domain.Book) (domain.Book, error)
	getByExternalID          func(ctx context.Context, externalID int64) (domain.Book, error)
	getByExternalIDForUpdate func(ctx context.Context, externalID int64) (domain.Book, error)
	listPaged                func(ctx context.Context, p domain.PaginationParams) ([]domain.Book, int64, error)
	decreaseAvailable        func(ctx context.Context, externalID int64) error
	increaseAvailable        func(ctx context.Context, externalID int64) error
}

func (m *mockBookRepo) Create(ctx context.Context, book domain.Book) (domain.Book, error) {
	return m.create(ctx, book)
}
func (m *mockBookRepo) GetByExternalID(ctx context.Context, externalID int64) (domain.Book, error) {
	return m.getByExternalID(ctx, externalID)
}
func (m *mockBookRepo) GetByExternalIDForUpdate(ctx context.Context, externalID int64) (domain.Book, error) {
	return m.getByExternalIDForUpdate(ctx, externalID)
}
func (m *mockBookRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Book, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockBookRepo) DecreaseAvailable(ctx context.Context, externalID int64) error {
	return m.decreaseAvailable(ctx, externalID)
}
func (m *mockBookRepo) IncreaseAvailable(ctx context.Context, externalID int64) error {
	return m.increaseAvailable(ctx, externalID)
}

var _ repo.BookRepo = (*mockBookRepo)(nil)

// mockReservationRepo is a hand-written test double for repo.ReservationRepo.
type mockReservationRepo struct {
	create           func(ctx context.Context, res domain.Reservation) (domain.Reservation, error)
	getByID          func(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	getByIDForUpdate func(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	markReturned     func(ctx context.Context, res domain.Reservation) (domain.Reservation, error)
	getView          func(ctx context.Context, id uuid.UUID) (domain.ReservationView, error)
	list             func(ctx context.Context, f domain.ReservationFilter) ([]domain.ReservationView, error)
	listPaged        func(ctx context.Context, f domain.ReservationFilter, p domain.PaginationParams) ([]domain.ReservationView, int64, error)
}

func (m *mockReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	return m.create(ctx, res)
}
func (m *mockReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	return m.getByID(ctx, id)
}
func (m *mockReservationRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	return m.getByIDForUpdate(ctx, id)
}
func (m *mockReservationRepo) MarkReturned(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	return m.markReturned(ctx, res)
}
func (m *mockReservationRepo) GetView(ctx context.Context, id uuid.UUID) (domain.ReservationView, error) {
	return m.getView(ctx, id)
}
func (m *mockReservationRepo) List(ctx context.Context, f domain.ReservationFilter) ([]domain.ReservationView, error) {
	return m.list(ctx, f)
}
func (m *mockReservationRepo) ListPaged(ctx context.Context, f domain.ReservationFilter, p domain.PaginationParams) ([]domain.ReservationView, int64, error) {
	return m.listPaged(ctx, f, p)
}

var _ repo.ReservationRepo = (*mockReservationRepo)(nil)

// fakeTransactor runs fn directly against the mock repos and counts units of work.
// Errors are returned as-is so tests can assert on the sentinel.
type fakeTransactor struct {
	repos repo.Repos
	units int
}

func (f *fakeTransactor) InTx(_ context.Context, fn func(r repo.Repos) error) error {
	f.units++
	return fn(f.repos)
}

var _ repo.Transactor = (*fakeTransactor)(nil)
