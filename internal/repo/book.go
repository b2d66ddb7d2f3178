package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/book-rental/backend/internal/domain"
)

// BookRepo defines the persistence operations for catalog books and their
// available-copy counters.
type BookRepo interface {
	// Create inserts a new book and returns the persisted record.
	// Returns domain.ErrValidation if a book with the same external id exists.
	Create(ctx context.Context, book domain.Book) (domain.Book, error)

	// GetByExternalID retrieves a book by its catalog id.
	// Returns domain.ErrNotFound if no such book exists.
	GetByExternalID(ctx context.Context, externalID int64) (domain.Book, error)

	// GetByExternalIDForUpdate is GetByExternalID plus a row lock held until
	// the surrounding transaction ends. Only meaningful inside Transactor.InTx.
	GetByExternalIDForUpdate(ctx context.Context, externalID int64) (domain.Book, error)

	// ListPaged returns one page of books ordered by title and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Book, int64, error)

	// DecreaseAvailable takes one copy off the shelf.
	// Returns domain.ErrUnavailable if no copy is left.
	DecreaseAvailable(ctx context.Context, externalID int64) error

	// IncreaseAvailable puts one copy back on the shelf.
	// Returns domain.ErrInvalidState if every copy is already on the shelf.
	IncreaseAvailable(ctx context.Context, externalID int64) error
}

// pgBookRepo is the Postgres implementation of BookRepo.
type pgBookRepo struct {
	db db
}

// NewBookRepo constructs a BookRepo backed by the provided db connection.
func NewBookRepo(db db) BookRepo {
	return &pgBookRepo{db: db}
}

const bookColumns = `external_id, title, author, price, stock_quantity, available_quantity, created_at, updated_at`

func (r *pgBookRepo) Create(ctx context.Context, book domain.Book) (domain.Book, error) {
	const q = `
		INSERT INTO books (external_id, title, author, price, stock_quantity, available_quantity)
		VALUES (@external_id, @title, @author, @price, @stock_quantity, @available_quantity)
		RETURNING ` + bookColumns

	args := pgx.NamedArgs{
		"external_id":        book.ExternalID,
		"title":              book.Title,
		"author":             book.Author,
		"price":              book.Price, // invalid NullDecimal becomes NULL
		"stock_quantity":     book.StockQuantity,
		"available_quantity": book.AvailableQuantity,
	}

	result, err := scanBook(r.db.QueryRow(ctx, q, args))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Book{}, fmt.Errorf("repo.BookRepo.Create: %w: external id already exists", domain.ErrValidation)
		}
		return domain.Book{}, fmt.Errorf("repo.BookRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgBookRepo) GetByExternalID(ctx context.Context, externalID int64) (domain.Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books WHERE external_id = @external_id`

	result, err := scanBook(r.db.QueryRow(ctx, q, pgx.NamedArgs{"external_id": externalID}))
	if err != nil {
		return domain.Book{}, fmt.Errorf("repo.BookRepo.GetByExternalID: %w", err)
	}
	return result, nil
}

func (r *pgBookRepo) GetByExternalIDForUpdate(ctx context.Context, externalID int64) (domain.Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books WHERE external_id = @external_id FOR UPDATE`

	result, err := scanBook(r.db.QueryRow(ctx, q, pgx.NamedArgs{"external_id": externalID}))
	if err != nil {
		return domain.Book{}, fmt.Errorf("repo.BookRepo.GetByExternalIDForUpdate: %w", err)
	}
	return result, nil
}

func (r *pgBookRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Book, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM books`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.BookRepo.ListPaged: count: %w", err)
	}

	const q = `
		SELECT ` + bookColumns + `
		FROM books
		ORDER BY title, external_id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BookRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	books := []domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.BookRepo.ListPaged: scan: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.BookRepo.ListPaged: rows: %w", err)
	}
	return books, total, nil
}

func (r *pgBookRepo) DecreaseAvailable(ctx context.Context, externalID int64) error {
	const q = `
		UPDATE books
		SET available_quantity = available_quantity - 1,
		    updated_at         = now()
		WHERE external_id = @external_id
		  AND available_quantity > 0`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"external_id": externalID})
	if err != nil {
		return fmt.Errorf("repo.BookRepo.DecreaseAvailable: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BookRepo.DecreaseAvailable: %w", domain.ErrUnavailable)
	}
	return nil
}

func (r *pgBookRepo) IncreaseAvailable(ctx context.Context, externalID int64) error {
	const q = `
		UPDATE books
		SET available_quantity = available_quantity + 1,
		    updated_at         = now()
		WHERE external_id = @external_id
		  AND available_quantity < stock_quantity`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"external_id": externalID})
	if err != nil {
		return fmt.Errorf("repo.BookRepo.IncreaseAvailable: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BookRepo.IncreaseAvailable: %w: all copies already available", domain.ErrInvalidState)
	}
	return nil
}

func scanBook(s scanner) (domain.Book, error) {
	var b domain.Book
	err := s.Scan(&b.ExternalID, &b.Title, &b.Author, &b.Price,
		&b.StockQuantity, &b.AvailableQuantity, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Book{}, domain.ErrNotFound
		}
		return domain.Book{}, err
	}
	return b, nil
}
