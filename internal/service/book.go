package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/book-rental/backend/internal/domain"
	"github.com/pkordes/book-rental/backend/internal/repo"
)

// BookService implements business logic for the book catalog.
type BookService struct {
	books repo.BookRepo
}

// NewBookService constructs a BookService backed by the provided BookRepo.
func NewBookService(books repo.BookRepo) *BookService {
	return &BookService{books: books}
}

// Create validates and persists a new catalog book. Every copy starts on the
// shelf, so AvailableQuantity is set to StockQuantity.
// Returns domain.ErrValidation for invalid input or a duplicate external id.
func (s *BookService) Create(ctx context.Context, book domain.Book) (domain.Book, error) {
	book.Title = strings.TrimSpace(book.Title)
	book.Author = strings.TrimSpace(book.Author)
	if err := validateBook(book); err != nil {
		return domain.Book{}, err
	}
	book.AvailableQuantity = book.StockQuantity

	created, err := s.books.Create(ctx, book)
	if err != nil {
		return domain.Book{}, fmt.Errorf("service.BookService.Create: %w", err)
	}
	return created, nil
}

// GetByExternalID returns a single book by catalog id.
// Returns domain.ErrNotFound if it does not exist.
func (s *BookService) GetByExternalID(ctx context.Context, externalID int64) (domain.Book, error) {
	book, err := s.books.GetByExternalID(ctx, externalID)
	if err != nil {
		return domain.Book{}, fmt.Errorf("service.BookService.GetByExternalID: %w", err)
	}
	return book, nil
}

// ListPaged returns one page of books ordered by title.
func (s *BookService) ListPaged(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Book], error) {
	books, total, err := s.books.ListPaged(ctx, p)
	if err != nil {
		return domain.Page[domain.Book]{}, fmt.Errorf("service.BookService.ListPaged: %w", err)
	}
	return domain.Page[domain.Book]{Items: books, Total: total}, nil
}

// validateBook enforces catalog rules:
//   - ExternalID must be positive.
//   - Title must be non-empty.
//   - StockQuantity must not be negative.
//   - Price, when set, must not be negative.
func validateBook(b domain.Book) error {
	if b.ExternalID <= 0 {
		return fmt.Errorf("%w: external_id must be positive", domain.ErrValidation)
	}
	if b.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if b.StockQuantity < 0 {
		return fmt.Errorf("%w: stock_quantity must not be negative", domain.ErrValidation)
	}
	if b.Price.Valid && b.Price.Decimal.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	return nil
}
