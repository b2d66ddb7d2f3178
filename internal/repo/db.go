// Package repo contains all database access logic for the book rental API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Repos bundles every repository bound to the same connection or transaction.
type Repos struct {
	Users        UserRepo
	Books        BookRepo
	Reservations ReservationRepo
}

// NewRepos binds all repositories to db.
func NewRepos(db db) Repos {
	return Repos{
		Users:        NewUserRepo(db),
		Books:        NewBookRepo(db),
		Reservations: NewReservationRepo(db),
	}
}

// Transactor runs a unit of work inside one database transaction.
// fn receives repositories bound to that transaction; returning an error
// rolls everything back, returning nil commits.
type Transactor interface {
	InTx(ctx context.Context, fn func(r Repos) error) error
}

// txBeginner is satisfied by *pgxpool.Pool and pgx.Tx. Beginning on a pgx.Tx
// opens a savepoint, so tests can nest units of work inside a rolled-back tx.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgTransactor struct {
	db txBeginner
}

// NewTransactor constructs a Transactor backed by db.
func NewTransactor(db txBeginner) Transactor {
	return &pgTransactor{db: db}
}

// InTx begins a transaction, runs fn, and commits or rolls back.
func (t *pgTransactor) InTx(ctx context.Context, fn func(r Repos) error) error {
	err := pgx.BeginFunc(ctx, t.db, func(tx pgx.Tx) error {
		return fn(NewRepos(tx))
	})
	if err != nil {
		return fmt.Errorf("repo.Transactor.InTx: %w", err)
	}
	return nil
}
