package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/book-rental/backend/internal/domain"
	"github.com/pkordes/book-rental/backend/internal/handler"
)

func TestCreateUser_201(t *testing.T) {
	svc := &mockUserServicer{
		create: func(_ context.Context, u domain.User) (domain.User, error) {
			u.ID = uuid.New()
			u.CreatedAt = time.Now().UTC()
			return u, nil
		},
	}

	rec := do(newHTTPHandler(svc, nil, nil), http.MethodPost, "/users",
		jsonBody(t, map[string]any{"name": "Juan Pérez", "email": "juan@example.com"}))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp handler.UserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, "Juan Pérez", resp.Name)
	assert.Equal(t, "juan@example.com", resp.Email)
}

func TestCreateUser_422_ValidationError(t *testing.T) {
	svc := &mockUserServicer{
		create: func(_ context.Context, _ domain.User) (domain.User, error) {
			return domain.User{}, fmt.Errorf("%w: email is required", domain.ErrValidation)
		},
	}

	rec := do(newHTTPHandler(svc, nil, nil), http.MethodPost, "/users", jsonBody(t, map[string]any{"name": "Ana"}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "validation_error", detail.Code)
	assert.Equal(t, "email is required", detail.Message)
}

func TestGetUser_404(t *testing.T) {
	svc := &mockUserServicer{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.User, error) {
			return domain.User{}, fmt.Errorf("service.UserService.GetByID: %w", domain.ErrNotFound)
		},
	}

	rec := do(newHTTPHandler(svc, nil, nil), http.MethodGet, "/users/"+uuid.NewString(), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", decodeError(t, rec).Message)
}

func TestListUserReservations_200(t *testing.T) {
	userID := uuid.New()
	res := &mockReservationServicer{
		listByUser: func(_ context.Context, id uuid.UUID) ([]domain.ReservationView, error) {
			assert.Equal(t, userID, id)
			return []domain.ReservationView{viewFixture(), viewFixture()}, nil
		},
	}

	rec := do(newHTTPHandler(nil, nil, res), http.MethodGet, "/users/"+userID.String()+"/reservations", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.ReservationList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 2)
	assert.Nil(t, resp.Pagination)
}
