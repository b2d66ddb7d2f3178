package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/pkordes/book-rental/backend/internal/domain"
)

// CreateBookRequest is the body of POST /books.
// Price accepts a JSON number or a decimal string; omit it for an unpriced title.
type CreateBookRequest struct {
	ExternalID    int64            `json:"external_id"`
	Title         string           `json:"title"`
	Author        string           `json:"author"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity int              `json:"stock_quantity"`
}

// BookResponse is the JSON representation of a catalog book.
type BookResponse struct {
	ExternalID        int64     `json:"external_id"`
	Title             string    `json:"title"`
	Author            string    `json:"author"`
	Price             *string   `json:"price"`
	StockQuantity     int       `json:"stock_quantity"`
	AvailableQuantity int       `json:"available_quantity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BookList is the body of GET /books.
type BookList struct {
	Data       []BookResponse `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// CreateBook handles POST /books.
func (s *Server) CreateBook(w http.ResponseWriter, r *http.Request) {
	var body CreateBookRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBodyError(w, err)
		return
	}

	book := domain.Book{
		ExternalID:    body.ExternalID,
		Title:         body.Title,
		Author:        body.Author,
		StockQuantity: body.StockQuantity,
	}
	if body.Price != nil {
		book.Price = decimal.NewNullDecimal(*body.Price)
	}

	created, err := s.books.Create(r.Context(), book)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookToResponse(created))
}

// ListBooks handles GET /books.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListBooks(w http.ResponseWriter, r *http.Request) {
	params, err := paginationQuery(r)
	if err != nil {
		writeRequestError(w, err.Error())
		return
	}

	page, err := s.books.ListPaged(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data := make([]BookResponse, len(page.Items))
	for i, b := range page.Items {
		data[i] = bookToResponse(b)
	}
	writeJSON(w, http.StatusOK, BookList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: page.Total},
	})
}

// GetBook handles GET /books/{externalId}.
func (s *Server) GetBook(w http.ResponseWriter, r *http.Request) {
	externalID, err := strconv.ParseInt(chi.URLParam(r, "externalId"), 10, 64)
	if err != nil {
		writeRequestError(w, "externalId must be an integer")
		return
	}

	book, err := s.books.GetByExternalID(r.Context(), externalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "book not found")
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookToResponse(book))
}

// paginationQuery reads ?page= and ?limit= into domain.PaginationParams.
func paginationQuery(r *http.Request) (domain.PaginationParams, error) {
	page, err := intQuery(r, "page")
	if err != nil {
		return domain.PaginationParams{}, err
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		return domain.PaginationParams{}, err
	}
	return domain.NewPaginationParams(page, limit), nil
}

func bookToResponse(b domain.Book) BookResponse {
	resp := BookResponse{
		ExternalID:        b.ExternalID,
		Title:             b.Title,
		Author:            b.Author,
		StockQuantity:     b.StockQuantity,
		AvailableQuantity: b.AvailableQuantity,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
	if b.Price.Valid {
		p := money(b.Price.Decimal)
		resp.Price = &p
	}
	return resp
}

// money renders an amount with exactly two fractional digits.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
