package repo_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/book-rental/backend/internal/domain"
	"github.com/pkordes/book-rental/backend/internal/repo"
	"github.com/pkordes/book-rental/backend/testutil"
)

// newTestRepos opens a transaction against the test database and returns
// repositories bound to it. The transaction is rolled back when the test
// finishes, giving free per-test isolation.
func newTestRepos(t *testing.T) (repo.Repos, pgx.Tx) {
	t.Helper()
	tx := testutil.BeginTx(t)
	return repo.NewRepos(tx), tx
}

// nextExternalID hands out catalog ids that do not collide across tests that
// share a database.
var nextExternalID atomic.Int64

func init() {
	nextExternalID.Store(time.Now().UnixNano() % 1_000_000_000)
}

func mustCreateUser(t *testing.T, r repo.Repos, name string) domain.User {
	t.Helper()
	u, err := r.Users.Create(context.Background(), domain.User{
		Name:  name,
		Email: uuid.NewString() + "@example.com",
	})
	require.NoError(t, err, "create user fixture")
	return u
}

func mustCreateBook(t *testing.T, r repo.Repos, title, price string, stock int) domain.Book {
	t.Helper()
	b := domain.Book{
		ExternalID:        nextExternalID.Add(1),
		Title:             title,
		Author:            "Test Author",
		StockQuantity:     stock,
		AvailableQuantity: stock,
	}
	if price != "" {
		b.Price = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	created, err := r.Books.Create(context.Background(), b)
	require.NoError(t, err, "create book fixture")
	return created
}

func mustCreateReservation(t *testing.T, r repo.Repos, u domain.User, b domain.Book, start time.Time, days int) domain.Reservation {
	t.Helper()
	q := domain.PriceQuote(b, days, start)
	res, err := r.Reservations.Create(context.Background(), domain.Reservation{
		UserID:             u.ID,
		BookExternalID:     b.ExternalID,
		RentalDays:         days,
		DailyRate:          q.DailyRate,
		TotalFee:           q.TotalFee,
		StartDate:          q.StartDate,
		ExpectedReturnDate: q.ExpectedReturnDate,
		LateFee:            decimal.Zero,
		Status:             domain.StatusActive,
	})
	require.NoError(t, err, "create reservation fixture")
	return res
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
