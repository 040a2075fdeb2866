package product

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aura-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *mockRepository) GetByIDs(ctx context.Context, ids []int64) ([]*Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Product), args.Error(1)
}

func (m *mockRepository) UpdateStock(ctx context.Context, id int64, stock int) error {
	args := m.Called(ctx, id, stock)
	return args.Error(0)
}

func ownerCtx() context.Context {
	return utils.SetUserContext(context.Background(), "uid-9", "owner@aura.shop", "Olu", utils.RoleStoreOwner)
}

func customerCtx() context.Context {
	return utils.SetUserContext(context.Background(), "uid-1", "ada@aura.shop", "Ada", utils.RoleCustomer)
}

func TestUpdateStockHandler(t *testing.T) {
	put := func(h *Handler, ctx context.Context, id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/products/"+id+"/stock", strings.NewReader(body)).WithContext(ctx)
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()
		h.UpdateStockHandler(rec, req)
		return rec
	}

	t.Run("Owner sets stock", func(t *testing.T) {
		repo := new(mockRepository)
		h := NewHandler(repo)
		repo.On("UpdateStock", mock.Anything, int64(101), 7).Return(nil)
		repo.On("GetByID", mock.Anything, int64(101)).
			Return(&Product{ID: 101, Name: "Radiance Serum", Stock: 7}, nil)

		rec := put(h, ownerCtx(), "101", `{"stock":7}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"stock":7`)
	})

	t.Run("Customer forbidden", func(t *testing.T) {
		repo := new(mockRepository)
		h := NewHandler(repo)

		rec := put(h, customerCtx(), "101", `{"stock":7}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		repo.AssertNotCalled(t, "UpdateStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Negative stock rejected", func(t *testing.T) {
		repo := new(mockRepository)
		h := NewHandler(repo)
		repo.On("UpdateStock", mock.Anything, int64(101), -1).Return(ErrNegativeStock)

		rec := put(h, ownerCtx(), "101", `{"stock":-1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown product", func(t *testing.T) {
		repo := new(mockRepository)
		h := NewHandler(repo)
		repo.On("UpdateStock", mock.Anything, int64(999), 7).Return(ErrProductNotFound)

		rec := put(h, ownerCtx(), "999", `{"stock":7}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Non-numeric id", func(t *testing.T) {
		h := NewHandler(new(mockRepository))
		rec := put(h, ownerCtx(), "abc", `{"stock":7}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStockLevelsHandler(t *testing.T) {
	get := func(h *Handler, ctx context.Context, query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/products/stock"+query, nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		h.StockLevelsHandler(rec, req)
		return rec
	}

	t.Run("Owner lists stock", func(t *testing.T) {
		repo := new(mockRepository)
		h := NewHandler(repo)
		repo.On("GetByIDs", mock.Anything, []int64{101, 102}).
			Return([]*Product{
				{ID: 101, Name: "Radiance Serum", Stock: 7},
				{ID: 102, Name: "Aura Mist", Stock: 0},
			}, nil)

		rec := get(h, ownerCtx(), "?ids=101,102")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Aura Mist")
	})

	t.Run("Customer forbidden", func(t *testing.T) {
		h := NewHandler(new(mockRepository))
		rec := get(h, customerCtx(), "?ids=101")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Missing ids", func(t *testing.T) {
		h := NewHandler(new(mockRepository))
		rec := get(h, ownerCtx(), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Malformed id", func(t *testing.T) {
		h := NewHandler(new(mockRepository))
		rec := get(h, ownerCtx(), "?ids=101,xyz")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
