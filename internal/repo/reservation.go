package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the "postgres" dialect
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/book-rental/backend/internal/domain"
)

// ReservationRepo defines the persistence operations for Reservations and the
// joined ReservationView read model.
type ReservationRepo interface {
	// Create inserts a new reservation and returns the persisted record with
	// DB-generated id, created_at and updated_at.
	Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error)

	// GetByID retrieves a reservation by primary key.
	// Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error)

	// GetByIDForUpdate is GetByID plus a row lock held until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Reservation, error)

	// MarkReturned persists the outcome of a return: actual return date, late
	// fee and terminal status. Only an ACTIVE row is updated; otherwise
	// domain.ErrInvalidState is returned.
	MarkReturned(ctx context.Context, res domain.Reservation) (domain.Reservation, error)

	// GetView returns the reservation joined with its user name and book title.
	// Returns domain.ErrNotFound if it does not exist.
	GetView(ctx context.Context, id uuid.UUID) (domain.ReservationView, error)

	// List returns every reservation view matching f, newest first.
	List(ctx context.Context, f domain.ReservationFilter) ([]domain.ReservationView, error)

	// ListPaged returns one page of reservation views matching f and the total
	// number of matches.
	ListPaged(ctx context.Context, f domain.ReservationFilter, p domain.PaginationParams) ([]domain.ReservationView, int64, error)
}

// pgReservationRepo is the Postgres implementation of ReservationRepo.
type pgReservationRepo struct {
	db db
}

// NewReservationRepo constructs a ReservationRepo backed by the provided db connection.
func NewReservationRepo(db db) ReservationRepo {
	return &pgReservationRepo{db: db}
}

const reservationColumns = `id, user_id, book_external_id, rental_days, daily_rate, total_fee,
		start_date, expected_return_date, actual_return_date, late_fee, status, created_at, updated_at`

func (r *pgReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	const q = `
		INSERT INTO reservations (user_id, book_external_id, rental_days, daily_rate, total_fee,
		                          start_date, expected_return_date, late_fee, status)
		VALUES (@user_id, @book_external_id, @rental_days, @daily_rate, @total_fee,
		        @start_date, @expected_return_date, @late_fee, @status)
		RETURNING ` + reservationColumns

	args := pgx.NamedArgs{
		"user_id":              res.UserID,
		"book_external_id":     res.BookExternalID,
		"rental_days":          res.RentalDays,
		"daily_rate":           res.DailyRate,
		"total_fee":            res.TotalFee,
		"start_date":           res.StartDate,
		"expected_return_date": res.ExpectedReturnDate,
		"late_fee":             res.LateFee,
		"status":               string(res.Status),
	}

	result, err := scanReservation(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = @id`

	result, err := scanReservation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = @id FOR UPDATE`

	result, err := scanReservation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByIDForUpdate: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) MarkReturned(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	const q = `
		UPDATE reservations
		SET actual_return_date = @actual_return_date,
		    late_fee           = @late_fee,
		    status             = @status,
		    updated_at         = now()
		WHERE id = @id
		  AND status = 'ACTIVE'
		RETURNING ` + reservationColumns

	args := pgx.NamedArgs{
		"id":                 res.ID,
		"actual_return_date": res.ActualReturnDate,
		"late_fee":           res.LateFee,
		"status":             string(res.Status),
	}

	result, err := scanReservation(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.MarkReturned: %w: reservation is not active", domain.ErrInvalidState)
		}
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.MarkReturned: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) GetView(ctx context.Context, id uuid.UUID) (domain.ReservationView, error) {
	q, args, err := viewDataset().
		Where(goqu.I("r.id").Eq(goqu.Cast(goqu.V(id.String()), "UUID"))).
		ToSQL()
	if err != nil {
		return domain.ReservationView{}, fmt.Errorf("repo.ReservationRepo.GetView: build: %w", err)
	}

	result, err := scanReservationView(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		return domain.ReservationView{}, fmt.Errorf("repo.ReservationRepo.GetView: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) List(ctx context.Context, f domain.ReservationFilter) ([]domain.ReservationView, error) {
	q, args, err := filtered(viewDataset(), f).Order(viewOrder...).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.List: build: %w", err)
	}

	views, err := r.queryViews(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.List: %w", err)
	}
	return views, nil
}

func (r *pgReservationRepo) ListPaged(ctx context.Context, f domain.ReservationFilter, p domain.PaginationParams) ([]domain.ReservationView, int64, error) {
	countQ, countArgs, err := filtered(baseDataset(), f).Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListPaged: build count: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListPaged: count: %w", err)
	}

	q, args, err := filtered(viewDataset(), f).
		Order(viewOrder...).
		Limit(uint(p.Limit)).
		Offset(uint(p.Offset())).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListPaged: build: %w", err)
	}
	views, err := r.queryViews(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListPaged: %w", err)
	}
	return views, total, nil
}

func (r *pgReservationRepo) queryViews(ctx context.Context, q string, args []any) ([]domain.ReservationView, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []domain.ReservationView{}
	for rows.Next() {
		v, err := scanReservationView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return views, nil
}

// --- query building ---------------------------------------------------------

var dialect = goqu.Dialect("postgres")

// viewOrder lists newest reservations first; id breaks ties so pages are stable.
var viewOrder = []exp.OrderedExpression{
	goqu.I("r.created_at").Desc(),
	goqu.I("r.id").Asc(),
}

// baseDataset joins reservations to their owning user and book rows.
// Prepared mode emits $n placeholders with the values returned as args.
func baseDataset() *goqu.SelectDataset {
	return dialect.From(goqu.T("reservations").As("r")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("r.user_id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.external_id").Eq(goqu.I("r.book_external_id")))).
		Prepared(true)
}

// viewDataset selects the columns scanReservationView expects, in order.
func viewDataset() *goqu.SelectDataset {
	return baseDataset().Select(
		goqu.I("r.id"),
		goqu.I("r.user_id"),
		goqu.I("r.book_external_id"),
		goqu.I("r.rental_days"),
		goqu.I("r.daily_rate"),
		goqu.I("r.total_fee"),
		goqu.I("r.start_date"),
		goqu.I("r.expected_return_date"),
		goqu.I("r.actual_return_date"),
		goqu.I("r.late_fee"),
		goqu.I("r.status"),
		goqu.I("r.created_at"),
		goqu.I("r.updated_at"),
		goqu.I("u.name"),
		goqu.I("b.title"),
	)
}

// filtered applies every non-nil field of f as an AND condition.
func filtered(ds *goqu.SelectDataset, f domain.ReservationFilter) *goqu.SelectDataset {
	if f.UserID != nil {
		ds = ds.Where(goqu.I("r.user_id").Eq(goqu.Cast(goqu.V(f.UserID.String()), "UUID")))
	}
	if f.Status != nil {
		ds = ds.Where(goqu.I("r.status").Eq(string(*f.Status)))
	}
	if f.OverdueAsOf != nil {
		ds = ds.Where(
			goqu.I("r.status").Eq(string(domain.StatusActive)),
			goqu.I("r.expected_return_date").Lt(domain.DateOf(*f.OverdueAsOf)),
		)
	}
	return ds
}

// --- scanning ---------------------------------------------------------------

// reservationDest holds the raw column targets shared by both scan functions.
type reservationDest struct {
	res      domain.Reservation
	id       pgtype.UUID
	userID   pgtype.UUID
	start    pgtype.Date
	expected pgtype.Date
	actual   pgtype.Date
	status   string
}

func (d *reservationDest) targets() []any {
	return []any{
		&d.id, &d.userID, &d.res.BookExternalID, &d.res.RentalDays,
		&d.res.DailyRate, &d.res.TotalFee, &d.start, &d.expected, &d.actual,
		&d.res.LateFee, &d.status, &d.res.CreatedAt, &d.res.UpdatedAt,
	}
}

func (d *reservationDest) reservation() domain.Reservation {
	res := d.res
	res.ID = uuid.UUID(d.id.Bytes)
	res.UserID = uuid.UUID(d.userID.Bytes)
	res.StartDate = d.start.Time
	res.ExpectedReturnDate = d.expected.Time
	if d.actual.Valid {
		actual := d.actual.Time
		res.ActualReturnDate = &actual
	}
	res.Status = domain.ReservationStatus(d.status)
	return res
}

func scanReservation(s scanner) (domain.Reservation, error) {
	var d reservationDest
	if err := s.Scan(d.targets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrNotFound
		}
		return domain.Reservation{}, err
	}
	return d.reservation(), nil
}

func scanReservationView(s scanner) (domain.ReservationView, error) {
	var (
		d         reservationDest
		userName  string
		bookTitle string
	)
	if err := s.Scan(append(d.targets(), &userName, &bookTitle)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ReservationView{}, domain.ErrNotFound
		}
		return domain.ReservationView{}, err
	}
	return domain.ReservationView{Reservation: d.reservation(), UserName: userName, BookTitle: bookTitle}, nil
}
