package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LateFeeRate is the share of the book price charged per day late.
var LateFeeRate = decimal.RequireFromString("0.15")

// feePlaces is the number of fractional digits kept on computed amounts.
const feePlaces = 2

const secondsPerDay = 24 * 60 * 60

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
// The result is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	// Unix seconds rather than Sub: a Duration saturates after ~292 years.
	return int((DateOf(b).Unix() - DateOf(a).Unix()) / secondsPerDay)
}

// ExpectedReturnDate is startDate plus rentalDays calendar days.
func ExpectedReturnDate(startDate time.Time, rentalDays int) time.Time {
	return DateOf(startDate).AddDate(0, 0, rentalDays)
}

// DailyRate is the rate captured on a new reservation: the book price, or zero
// for an unpriced book.
func DailyRate(price decimal.NullDecimal) decimal.Decimal {
	if !price.Valid {
		return decimal.Zero
	}
	return price.Decimal
}

// TotalFee is dailyRate × rentalDays, or zero when the rate is missing or the
// rental period is not positive.
func TotalFee(dailyRate decimal.NullDecimal, rentalDays int) decimal.Decimal {
	if !dailyRate.Valid || rentalDays <= 0 {
		return decimal.Zero
	}
	return dailyRate.Decimal.Mul(decimal.NewFromInt(int64(rentalDays))).Round(feePlaces)
}

// DaysLate is max(0, whole days from expected to actual).
func DaysLate(expected, actual time.Time) int {
	return max(0, DaysBetween(expected, actual))
}

// LateFee is bookPrice × LateFeeRate × daysLate, or zero when the price is
// missing or the book was not late.
func LateFee(bookPrice decimal.NullDecimal, daysLate int) decimal.Decimal {
	if !bookPrice.Valid || daysLate <= 0 {
		return decimal.Zero
	}
	return bookPrice.Decimal.Mul(LateFeeRate).Mul(decimal.NewFromInt(int64(daysLate))).Round(feePlaces)
}

// Settle closes an ACTIVE reservation returned on returnDate, charging late
// fees from the book's current price. It returns a copy; r is not modified.
// Returns ErrInvalidState if r is not ACTIVE.
func Settle(r Reservation, currentPrice decimal.NullDecimal, returnDate time.Time) (Reservation, error) {
	if r.Status != StatusActive {
		return Reservation{}, ErrInvalidState
	}
	returned := DateOf(returnDate)
	daysLate := DaysLate(r.ExpectedReturnDate, returned)

	r.ActualReturnDate = &returned
	r.LateFee = LateFee(currentPrice, daysLate)
	r.Status = StatusReturned
	if daysLate > 0 {
		r.Status = StatusOverdue
	}
	return r, nil
}

// PriceQuote computes the fees a reservation would be created with.
func PriceQuote(book Book, rentalDays int, startDate time.Time) Quote {
	rate := DailyRate(book.Price)
	return Quote{
		BookExternalID:     book.ExternalID,
		RentalDays:         rentalDays,
		DailyRate:          rate,
		TotalFee:           TotalFee(book.Price, rentalDays),
		StartDate:          DateOf(startDate),
		ExpectedReturnDate: ExpectedReturnDate(startDate, rentalDays),
	}
}
