package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/book-rental/backend/internal/domain"
	"github.com/pkordes/book-rental/backend/internal/service"
)

func TestBookService_Create_StartsFullyAvailable(t *testing.T) {
	var captured domain.Book
	svc := service.NewBookService(&mockBookRepo{
		create: func(_ context.Context, b domain.Book) (domain.Book, error) {
			captured = b
			return b, nil
		},
	})

	got, err := svc.Create(context.Background(), domain.Book{
		ExternalID:        258027,
		Title:             " The Lord of the Rings ",
		Author:            "J.R.R. Tolkien",
		Price:             decimal.NewNullDecimal(decimal.RequireFromString("15.99")),
		StockQuantity:     5,
		AvailableQuantity: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, "The Lord of the Rings", captured.Title)
	assert.Equal(t, 5, got.AvailableQuantity)
}

func TestBookService_Create_Validation(t *testing.T) {
	cases := []struct {
		name string
		book domain.Book
	}{
		{"zero external id", domain.Book{Title: "Dune"}},
		{"blank title", domain.Book{ExternalID: 1, Title: " "}},
		{"negative stock", domain.Book{ExternalID: 1, Title: "Dune", StockQuantity: -1}},
		{"negative price", domain.Book{
			ExternalID: 1,
			Title:      "Dune",
			Price:      decimal.NewNullDecimal(decimal.RequireFromString("-1")),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := service.NewBookService(&mockBookRepo{})

			_, err := svc.Create(context.Background(), tc.book)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestBookService_Create_UnpricedIsValid(t *testing.T) {
	svc := service.NewBookService(&mockBookRepo{
		create: func(_ context.Context, b domain.Book) (domain.Book, error) { return b, nil },
	})

	got, err := svc.Create(context.Background(), domain.Book{ExternalID: 2, Title: "Draft"})

	require.NoError(t, err)
	assert.False(t, got.Price.Valid)
}

func TestBookService_GetByExternalID_NotFound(t *testing.T) {
	svc := service.NewBookService(&mockBookRepo{
		getByExternalID: func(_ context.Context, _ int64) (domain.Book, error) {
			return domain.Book{}, domain.ErrNotFound
		},
	})

	_, err := svc.GetByExternalID(context.Background(), 99)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookService_ListPaged(t *testing.T) {
	books := []domain.Book{{ExternalID: 1, Title: "A"}, {ExternalID: 2, Title: "B"}}
	svc := service.NewBookService(&mockBookRepo{
		listPaged: func(_ context.Context, p domain.PaginationParams) ([]domain.Book, int64, error) {
			assert.Equal(t, 20, p.Offset())
			return books, 22, nil
		},
	})

	page, err := svc.ListPaged(context.Background(), domain.PaginationParams{Page: 2, Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, books, page.Items)
	assert.Equal(t, int64(22), page.Total)
}
