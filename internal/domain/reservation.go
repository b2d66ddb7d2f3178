package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationStatus is the lifecycle state of a reservation.
// ACTIVE is the only entry state; RETURNED and OVERDUE are terminal.
type ReservationStatus string

const (
	StatusActive   ReservationStatus = "ACTIVE"
	StatusReturned ReservationStatus = "RETURNED"
	StatusOverdue  ReservationStatus = "OVERDUE"
)

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusActive, StatusReturned, StatusOverdue:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s ReservationStatus) Terminal() bool {
	return s == StatusReturned || s == StatusOverdue
}

// Reservation is a single rental of one copy of a book by one user.
//
// DailyRate is the book price captured at creation. ActualReturnDate is nil
// until the book comes back. All dates are calendar dates at UTC midnight.
type Reservation struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	BookExternalID     int64
	RentalDays         int
	DailyRate          decimal.Decimal
	TotalFee           decimal.Decimal
	StartDate          time.Time
	ExpectedReturnDate time.Time
	ActualReturnDate   *time.Time
	LateFee            decimal.Decimal
	Status             ReservationStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ReservationView is the read-side projection of a reservation.
// UserName and BookTitle are joined from the owning rows at read time and are
// never stored on the reservation itself.
type ReservationView struct {
	Reservation
	UserName  string
	BookTitle string
}

// NewReservationView pairs a reservation with the names of its owners.
func NewReservationView(r Reservation, u User, b Book) ReservationView {
	return ReservationView{Reservation: r, UserName: u.Name, BookTitle: b.Title}
}

// ReservationFilter narrows a reservation listing. Nil fields do not filter.
// OverdueAsOf selects ACTIVE reservations whose expected return date is
// strictly before the given date.
type ReservationFilter struct {
	UserID      *uuid.UUID
	Status      *ReservationStatus
	OverdueAsOf *time.Time
}

// MaxRentalDays is the longest rental period accepted over the API.
const MaxRentalDays = 365

// NewReservation is the input to reservation creation.
type NewReservation struct {
	UserID         uuid.UUID
	BookExternalID int64
	RentalDays     int
	StartDate      time.Time
}

// Quote is a fee preview for a prospective reservation.
type Quote struct {
	BookExternalID     int64
	RentalDays         int
	DailyRate          decimal.Decimal
	TotalFee           decimal.Decimal
	StartDate          time.Time
	ExpectedReturnDate time.Time
}
