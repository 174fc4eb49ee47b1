package httphandler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/niksmo/cart-api/internal/adapter/httphandler"
	"github.com/niksmo/cart-api/internal/adapter/storage"
	"github.com/niksmo/cart-api/internal/core/domain"
	"github.com/niksmo/cart-api/internal/core/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	redis   *miniredis.Miniredis
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	kv, err := storage.NewRedisKV(storage.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(kv.Close)

	catalog := service.NewCatalog(service.DefaultProducts())
	svc := service.NewCartService(catalog, storage.NewCartRepository(kv), nil)

	return testServer{
		handler: httphandler.NewRouter(svc, svc, kv, nil),
		redis:   mr,
	}
}

func (s testServer) do(
	t *testing.T, method, target, body string,
) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestGetProducts(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	ps := decode[[]httphandler.Product](t, w)
	require.Len(t, ps, 5)
	assert.Equal(t, 1, ps[0].ID)
	assert.Equal(t, "Laptop Dell", ps[0].Name)
	assert.Equal(t, "999.99", ps[0].Price.StringFixed(2))
	assert.Equal(t, 10, ps[0].Stock)
}

func TestNumericMoney(t *testing.T) {
	t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = false })
	httphandler.NumericMoney()

	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"price":999.99`)

	w = s.do(t, http.MethodPost, "/cart/userA/add", `{"productId": 1, "quantity": 3}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"total":2999.97`)
	assert.Contains(t, body, `"subtotal":2999.97`)

	w = s.do(t, http.MethodGet, "/cart/userA", "")
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode[httphandler.Cart](t, w)
	assert.Equal(t, "2999.97", cart.Total.StringFixed(2))
}

func TestGetCartEmpty(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/cart/userA", "")
	require.Equal(t, http.StatusOK, w.Code)

	cart := decode[httphandler.Cart](t, w)
	assert.Equal(t, "userA", cart.UserID)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total.IsZero())
	assert.Zero(t, cart.TotalItems)
}

func TestAddToCart(t *testing.T) {
	t.Run("Added", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/cart/userA/add",
			`{"productId": 1, "quantity": 3}`)
		require.Equal(t, http.StatusOK, w.Code)

		res := decode[httphandler.CartResponse](t, w)
		assert.Equal(t, "product added to cart", res.Message)
		require.Len(t, res.Cart.Items, 1)
		assert.Equal(t, 3, res.Cart.Items[0].Quantity)
		assert.Equal(t, "2999.97", res.Cart.Total.StringFixed(2))
		assert.True(t, s.redis.Exists("cart:userA"))
	})

	t.Run("DefaultQuantity", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/cart/userA/add", `{"productId": 2}`)
		require.Equal(t, http.StatusOK, w.Code)

		res := decode[httphandler.CartResponse](t, w)
		require.Len(t, res.Cart.Items, 1)
		assert.Equal(t, 1, res.Cart.Items[0].Quantity)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/cart/userA/add",
			`{"productId": 1, "quantity": 3}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodPost, "/cart/userA/add",
			`{"productId": 1, "quantity": 8}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		res := decode[httphandler.MessageResponse](t, w)
		assert.Contains(t, res.Message, "10")

		w = s.do(t, http.MethodGet, "/cart/userA", "")
		cart := decode[httphandler.Cart](t, w)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 3, cart.Items[0].Quantity)
	})

	t.Run("HugeQuantity", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/cart/userA/add",
			`{"productId": 1, "quantity": 3}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodPost, "/cart/userA/add",
			`{"productId": 1, "quantity": 9223372036854775807}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodGet, "/cart/userA", "")
		cart := decode[httphandler.Cart](t, w)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 3, cart.Items[0].Quantity)
	})

	t.Run("InvalidQuantity", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/cart/userA/add",
			`{"productId": 1, "quantity": 0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, s.redis.Exists("cart:userA"))
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/cart/userA/add",
			`{"productId": 99, "quantity": 1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/cart/userA/add", `{"productId":`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		res := decode[httphandler.MessageResponse](t, w)
		assert.Equal(t, "invalid JSON data", res.Message)
	})

	t.Run("InvalidMediaType", func(t *testing.T) {
		s := newTestServer(t)

		r := httptest.NewRequest(http.MethodPost, "/cart/userA/add",
			strings.NewReader(`{"productId": 1}`))
		r.Header.Set("Content-Type", "text/plain")
		w := httptest.NewRecorder()
		s.handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})
}

func TestUpdateQuantity(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/cart/userA/add", `{"productId": 3, "quantity": 2}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/cart/userA/update", `{"productId": 3, "quantity": 5}`)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[httphandler.CartResponse](t, w)
	assert.Equal(t, 5, res.Cart.Items[0].Quantity)

	w = s.do(t, http.MethodPut, "/cart/userA/update", `{"productId": 3, "quantity": -1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/cart/userA/update", `{"productId": 4, "quantity": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/cart/userA/update", `{"productId": 3, "quantity": 0}`)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[httphandler.CartResponse](t, w)
	assert.Empty(t, res.Cart.Items)
}

func TestRemoveItem(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodDelete, "/cart/userA/remove/1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/cart/userA/remove/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/cart/userA/add", `{"productId": 1, "quantity": 1}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/cart/userA/remove/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[httphandler.CartResponse](t, w)
	assert.Equal(t, "item removed", res.Message)
	assert.Empty(t, res.Cart.Items)
}

func TestClearCart(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodDelete, "/cart/userA/clear", "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[httphandler.MessageResponse](t, w)
	assert.Equal(t, "cart cleared", res.Message)

	w = s.do(t, http.MethodPost, "/cart/userA/add", `{"productId": 1, "quantity": 1}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/cart/userA/clear", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, s.redis.Exists("cart:userA"))
}

func TestConfirmCart(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/cart/userA/confirm", "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		res := decode[httphandler.MessageResponse](t, w)
		assert.Equal(t, "cart is empty", res.Message)
	})

	t.Run("Confirmed", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/cart/userA/add", `{"productId": 5, "quantity": 2}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodPost, "/cart/userA/confirm", "")
		require.Equal(t, http.StatusOK, w.Code)
		res := decode[httphandler.ConfirmResponse](t, w)
		assert.Regexp(t, `^ORD-\d{8}-[A-Z0-9]{8}$`, res.OrderID)
		assert.False(t, s.redis.Exists("cart:userA"))
	})
}

func TestStoreUnavailable(t *testing.T) {
	s := newTestServer(t)
	s.redis.Close()

	w := s.do(t, http.MethodGet, "/cart/userA", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	res := decode[httphandler.MessageResponse](t, w)
	assert.Equal(t, "service unavailable", res.Message)

	w = s.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[httphandler.HealthResponse](t, w)
	assert.Equal(t, "ok", res.Status)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	r := httptest.NewRequest(http.MethodOptions, "/cart/userA/add", nil)
	r.Header.Set("Origin", "https://shop.example")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

type MockCartHandler struct {
	mock.Mock
}

func (m *MockCartHandler) GetCart(
	ctx context.Context, userID string,
) (domain.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *MockCartHandler) AddToCart(
	ctx context.Context, userID string, productID, quantity int,
) (domain.Result, error) {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *MockCartHandler) UpdateQuantity(
	ctx context.Context, userID string, productID, quantity int,
) (domain.Result, error) {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *MockCartHandler) RemoveItem(
	ctx context.Context, userID string, productID int,
) (domain.Result, error) {
	args := m.Called(ctx, userID, productID)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *MockCartHandler) ClearCart(
	ctx context.Context, userID string,
) (domain.Result, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *MockCartHandler) ConfirmCart(
	ctx context.Context, userID string,
) (domain.Result, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Result), args.Error(1)
}

func TestCartHandlerPassesPathValues(t *testing.T) {
	svc := new(MockCartHandler)
	svc.On("RemoveItem", mock.Anything, "user-42", 7).
		Return(domain.Fail(domain.FailureItemNotFound, "item not found"), nil)
	svc.On("ClearCart", mock.Anything, "user-42").
		Return(domain.Result{}, domain.ErrStoreUnavailable)

	mux := http.NewServeMux()
	httphandler.RegisterCart(mux, svc)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart/user-42/remove/7", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart/user-42/clear", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	svc.AssertExpectations(t)
}
