package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aura-be/internal/payment"
	"aura-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *mockService) GetOrders(ctx context.Context) ([]*Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *mockService) GetOrder(ctx context.Context, id string) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *mockService) UpdateStatus(ctx context.Context, id string, status OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockService) SettlePayment(ctx context.Context, txnid string) (SettleOutcome, error) {
	args := m.Called(ctx, txnid)
	return args.Get(0).(SettleOutcome), args.Error(1)
}

func (m *mockService) CancelWithNote(ctx context.Context, id, note string) error {
	args := m.Called(ctx, id, note)
	return args.Error(0)
}

func handlerGateway() *payment.Gateway {
	return payment.NewGateway(
		payment.Credentials{Key: "ABC123", Salt: "SECRET"},
		"https://test.payu.in/_payment",
		"https://shop.example.com/payment/return",
	)
}

func TestCreateOrderHandler(t *testing.T) {
	post := func(h *Handler, ctx context.Context, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)).WithContext(ctx)
		rec := httptest.NewRecorder()
		h.CreateOrderHandler(rec, req)
		return rec
	}

	t.Run("Pending order includes the gateway redirect", func(t *testing.T) {
		svc := new(mockService)
		h := NewHandler(svc, handlerGateway())

		placed := &Order{
			ID:        "AURA-1",
			UserEmail: "ada@aura.shop",
			Items:     []OrderItem{{ProductID: 101, Name: "Radiance Serum", Price: 972, Quantity: 1}},
			Total:     972,
			Status:    StatusPendingPayment,
			Phone:     "5551234567",
		}
		svc.On("PlaceOrder", mock.Anything, mock.Anything).Return(placed, nil)

		rec := post(h, authedCtx(), `{"store_id":1,"items":[{"product_id":101,"quantity":1}]}`)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Order   *Order                   `json:"order"`
			Payment *payment.RedirectPayload `json:"payment"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "AURA-1", resp.Order.ID)
		require.NotNil(t, resp.Payment)
		assert.Equal(t, "https://test.payu.in/_payment", resp.Payment.GatewayURL)
		assert.Equal(t, "AURA-1", resp.Payment.TxnID)
		assert.Equal(t, "972.00", resp.Payment.Amount)
		assert.Equal(t, "Ada", resp.Payment.FirstName)
		assert.Len(t, resp.Payment.Hash, 128)
	})

	t.Run("Nameless token falls back to the email local-part", func(t *testing.T) {
		svc := new(mockService)
		h := NewHandler(svc, handlerGateway())

		svc.On("PlaceOrder", mock.Anything, mock.Anything).Return(&Order{
			ID:        "AURA-3",
			UserEmail: "ada@aura.shop",
			Items:     []OrderItem{{ProductID: 101, Name: "Radiance Serum", Price: 972, Quantity: 1}},
			Total:     972,
			Status:    StatusPendingPayment,
		}, nil)

		ctx := utils.SetUserContext(context.Background(), "uid-1", "ada@aura.shop", "", utils.RoleCustomer)
		rec := post(h, ctx, `{"store_id":1,"items":[{"product_id":101,"quantity":1}]}`)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Payment *payment.RedirectPayload `json:"payment"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Payment)
		assert.Equal(t, "ada", resp.Payment.FirstName)
		assert.Len(t, resp.Payment.Hash, 128)
	})

	t.Run("Direct order skips the gateway", func(t *testing.T) {
		svc := new(mockService)
		h := NewHandler(svc, handlerGateway())

		svc.On("PlaceOrder", mock.Anything, mock.Anything).
			Return(&Order{ID: "AURA-2", Status: StatusProcessing}, nil)

		rec := post(h, authedCtx(), `{"store_id":1,"items":[{"product_id":101,"quantity":1}],"direct":true}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.NotContains(t, rec.Body.String(), `"payment"`)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		h := NewHandler(new(mockService), handlerGateway())
		rec := post(h, authedCtx(), `{"items":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		svc := new(mockService)
		h := NewHandler(svc, handlerGateway())
		svc.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, ErrUnauthenticated)

		rec := post(h, context.Background(), `{"store_id":1,"items":[{"product_id":101,"quantity":1}]}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Empty cart", func(t *testing.T) {
		svc := new(mockService)
		h := NewHandler(svc, handlerGateway())
		svc.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, ErrEmptyCart)

		rec := post(h, authedCtx(), `{"store_id":1,"items":[]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Repository failure", func(t *testing.T) {
		svc := new(mockService)
		h := NewHandler(svc, handlerGateway())
		svc.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		rec := post(h, authedCtx(), `{"store_id":1,"items":[{"product_id":101,"quantity":1}]}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestGetOrderHandler(t *testing.T) {
	get := func(h *Handler, id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/orders/"+id, nil).WithContext(authedCtx())
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()
		h.GetOrderHandler(rec, req)
		return rec
	}

	t.Run("Found", func(t *testing.T) {
		svc := new(mockService)
		h := NewHandler(svc, handlerGateway())
		svc.On("GetOrder", mock.Anything, "AURA-1").Return(&Order{ID: "AURA-1"}, nil)

		rec := get(h, "AURA-1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "AURA-1")
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := new(mockService)
		h := NewHandler(svc, handlerGateway())
		svc.On("GetOrder", mock.Anything, "AURA-x").Return(nil, ErrOrderNotFound)

		assert.Equal(t, http.StatusNotFound, get(h, "AURA-x").Code)
	})

	t.Run("Forbidden", func(t *testing.T) {
		svc := new(mockService)
		h := NewHandler(svc, handlerGateway())
		svc.On("GetOrder", mock.Anything, "AURA-1").Return(nil, ErrForbidden)

		assert.Equal(t, http.StatusForbidden, get(h, "AURA-1").Code)
	})
}

func TestUpdateStatusHandler(t *testing.T) {
	patch := func(h *Handler, ctx context.Context, id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/orders/"+id+"/status", strings.NewReader(body)).WithContext(ctx)
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()
		h.UpdateStatusHandler(rec, req)
		return rec
	}

	adminCtx := utils.SetUserContext(context.Background(), "uid-2", "admin@aura.shop", "Root", utils.RoleAdmin)

	t.Run("Admin ships the order", func(t *testing.T) {
		svc := new(mockService)
		h := NewHandler(svc, handlerGateway())
		svc.On("UpdateStatus", mock.Anything, "AURA-1", StatusShipped).Return(nil)

		rec := patch(h, adminCtx, "AURA-1", `{"status":"Shipped"}`)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Customer forbidden", func(t *testing.T) {
		svc := new(mockService)
		h := NewHandler(svc, handlerGateway())

		rec := patch(h, authedCtx(), "AURA-1", `{"status":"Shipped"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		svc.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Invalid transition", func(t *testing.T) {
		svc := new(mockService)
		h := NewHandler(svc, handlerGateway())
		svc.On("UpdateStatus", mock.Anything, "AURA-1", StatusPendingPayment).Return(ErrInvalidStatus)

		rec := patch(h, adminCtx, "AURA-1", `{"status":"Pending Payment"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListOrdersHandler(t *testing.T) {
	svc := new(mockService)
	h := NewHandler(svc, handlerGateway())
	svc.On("GetOrders", mock.Anything).Return([]*Order{{ID: "AURA-1"}, {ID: "AURA-2"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil).WithContext(authedCtx())
	rec := httptest.NewRecorder()
	h.ListOrdersHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AURA-2")
}
