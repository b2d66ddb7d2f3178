package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/book-rental/backend/internal/domain"
)

// CreateReservationRequest is the body of POST /reservations.
type CreateReservationRequest struct {
	UserID         uuid.UUID           `json:"user_id"`
	BookExternalID int64               `json:"book_external_id"`
	RentalDays     int                 `json:"rental_days"`
	StartDate      *openapi_types.Date `json:"start_date"`
}

// ReturnReservationRequest is the optional body of POST /reservations/{id}/return.
// A missing body or return_date means the book comes back today.
type ReturnReservationRequest struct {
	ReturnDate *openapi_types.Date `json:"return_date"`
}

// ReservationResponse is the JSON representation of a reservation view.
// Amounts are decimal strings with two fractional digits.
type ReservationResponse struct {
	ID                 uuid.UUID           `json:"id"`
	UserID             uuid.UUID           `json:"user_id"`
	UserName           string              `json:"user_name"`
	BookExternalID     int64               `json:"book_external_id"`
	BookTitle          string              `json:"book_title"`
	RentalDays         int                 `json:"rental_days"`
	StartDate          openapi_types.Date  `json:"start_date"`
	ExpectedReturnDate openapi_types.Date  `json:"expected_return_date"`
	ActualReturnDate   *openapi_types.Date `json:"actual_return_date"`
	DailyRate          string              `json:"daily_rate"`
	TotalFee           string              `json:"total_fee"`
	LateFee            string              `json:"late_fee"`
	Status             string              `json:"status"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// ReservationList is the body of every reservation listing.
// Pagination is only present on GET /reservations.
type ReservationList struct {
	Data       []ReservationResponse `json:"data"`
	Pagination *Pagination           `json:"pagination,omitempty"`
}

// QuoteResponse is the body of GET /reservations/quote.
type QuoteResponse struct {
	BookExternalID     int64              `json:"book_external_id"`
	RentalDays         int                `json:"rental_days"`
	DailyRate          string             `json:"daily_rate"`
	TotalFee           string             `json:"total_fee"`
	StartDate          openapi_types.Date `json:"start_date"`
	ExpectedReturnDate openapi_types.Date `json:"expected_return_date"`
}

// CreateReservation handles POST /reservations.
func (s *Server) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var body CreateReservationRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBodyError(w, err)
		return
	}
	req, err := requestToReservation(body)
	if err != nil {
		writeRequestError(w, err.Error())
		return
	}

	created, err := s.reservations.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewToResponse(created))
}

// ReturnReservation handles POST /reservations/{id}/return.
func (s *Server) ReturnReservation(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeRequestError(w, err.Error())
		return
	}

	var body ReturnReservationRequest
	if err := decodeJSON(r, &body); err != nil && !errors.Is(err, errEmptyBody) {
		writeBodyError(w, err)
		return
	}
	var returnDate *time.Time
	if body.ReturnDate != nil {
		returnDate = &body.ReturnDate.Time
	}

	returned, err := s.reservations.Return(r.Context(), id, returnDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToResponse(returned))
}

// GetReservation handles GET /reservations/{id}.
func (s *Server) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeRequestError(w, err.Error())
		return
	}

	view, err := s.reservations.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "reservation not found")
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToResponse(view))
}

// ListReservations handles GET /reservations.
// Supports ?user_id=, ?status= (ACTIVE, RETURNED, OVERDUE), ?page= and ?limit=.
func (s *Server) ListReservations(w http.ResponseWriter, r *http.Request) {
	params, err := paginationQuery(r)
	if err != nil {
		writeRequestError(w, err.Error())
		return
	}
	filter, err := reservationFilterQuery(r)
	if err != nil {
		writeRequestError(w, err.Error())
		return
	}

	page, err := s.reservations.ListPaged(r.Context(), filter, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReservationList{
		Data:       viewsToResponse(page.Items),
		Pagination: &Pagination{Page: params.Page, Limit: params.Limit, Total: page.Total},
	})
}

// ListActiveReservations handles GET /reservations/active.
func (s *Server) ListActiveReservations(w http.ResponseWriter, r *http.Request) {
	views, err := s.reservations.ListActive(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReservationList{Data: viewsToResponse(views)})
}

// ListOverdueReservations handles GET /reservations/overdue.
// Overdue means still ACTIVE with an expected return date before today.
func (s *Server) ListOverdueReservations(w http.ResponseWriter, r *http.Request) {
	views, err := s.reservations.ListOverdue(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReservationList{Data: viewsToResponse(views)})
}

// QuoteReservation handles GET /reservations/quote.
// Requires ?book_external_id= and ?rental_days=; ?start_date= defaults to today.
func (s *Server) QuoteReservation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bookID, err := strconv.ParseInt(q.Get("book_external_id"), 10, 64)
	if err != nil {
		writeRequestError(w, "book_external_id must be an integer")
		return
	}
	days, err := strconv.Atoi(q.Get("rental_days"))
	if err != nil || !validRentalDays(days) {
		writeRequestError(w, errRentalDays.Error())
		return
	}
	start, err := dateQuery(r, "start_date")
	if err != nil {
		writeRequestError(w, err.Error())
		return
	}
	var startDate time.Time
	if start != nil {
		startDate = *start
	}

	quote, err := s.reservations.Quote(r.Context(), bookID, days, startDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QuoteResponse{
		BookExternalID:     quote.BookExternalID,
		RentalDays:         quote.RentalDays,
		DailyRate:          money(quote.DailyRate),
		TotalFee:           money(quote.TotalFee),
		StartDate:          openapi_types.Date{Time: quote.StartDate},
		ExpectedReturnDate: openapi_types.Date{Time: quote.ExpectedReturnDate},
	})
}

// --- mapping helpers --------------------------------------------------------

// requestToReservation converts a CreateReservationRequest into domain input.
// Returns an error if required fields are missing or out of range.
func requestToReservation(body CreateReservationRequest) (domain.NewReservation, error) {
	if body.UserID == uuid.Nil {
		return domain.NewReservation{}, errors.New("user_id is required")
	}
	if body.BookExternalID <= 0 {
		return domain.NewReservation{}, errors.New("book_external_id is required")
	}
	if !validRentalDays(body.RentalDays) {
		return domain.NewReservation{}, errRentalDays
	}
	if body.StartDate == nil {
		return domain.NewReservation{}, errors.New("start_date is required")
	}
	return domain.NewReservation{
		UserID:         body.UserID,
		BookExternalID: body.BookExternalID,
		RentalDays:     body.RentalDays,
		StartDate:      body.StartDate.Time,
	}, nil
}

var errRentalDays = fmt.Errorf("rental_days must be between 1 and %d", domain.MaxRentalDays)

func validRentalDays(days int) bool {
	return days >= 1 && days <= domain.MaxRentalDays
}

// reservationFilterQuery reads ?user_id= and ?status= into a filter.
// Status is matched case-insensitively; unknown values are rejected by the service.
func reservationFilterQuery(r *http.Request) (domain.ReservationFilter, error) {
	var f domain.ReservationFilter
	q := r.URL.Query()
	if raw := q.Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, errors.New("user_id must be a UUID")
		}
		f.UserID = &id
	}
	if raw := q.Get("status"); raw != "" {
		status := domain.ReservationStatus(strings.ToUpper(raw))
		f.Status = &status
	}
	return f, nil
}

// viewToResponse converts a domain.ReservationView into its JSON shape.
func viewToResponse(v domain.ReservationView) ReservationResponse {
	resp := ReservationResponse{
		ID:                 v.ID,
		UserID:             v.UserID,
		UserName:           v.UserName,
		BookExternalID:     v.BookExternalID,
		BookTitle:          v.BookTitle,
		RentalDays:         v.RentalDays,
		StartDate:          openapi_types.Date{Time: v.StartDate},
		ExpectedReturnDate: openapi_types.Date{Time: v.ExpectedReturnDate},
		DailyRate:          money(v.DailyRate),
		TotalFee:           money(v.TotalFee),
		LateFee:            money(v.LateFee),
		Status:             string(v.Status),
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
	if v.ActualReturnDate != nil {
		d := openapi_types.Date{Time: *v.ActualReturnDate}
		resp.ActualReturnDate = &d
	}
	return resp
}

// viewsToResponse never returns nil so empty lists encode as [] rather than null.
func viewsToResponse(views []domain.ReservationView) []ReservationResponse {
	out := make([]ReservationResponse, len(views))
	for i, v := range views {
		out[i] = viewToResponse(v)
	}
	return out
}
