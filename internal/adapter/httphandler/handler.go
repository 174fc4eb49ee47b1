package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/cart-api/internal/core/domain"
	"github.com/niksmo/cart-api/internal/core/port"
)

const (
	msgInvalidJSON        = "invalid JSON data"
	msgInvalidProductID   = "invalid product id"
	msgServiceUnavailable = "service unavailable"
)

// GET /products (200 OK)

type ProductsHandler struct {
	lister port.ProductsLister
}

func RegisterProducts(mux *http.ServeMux, lister port.ProductsLister) {
	h := ProductsHandler{lister}
	mux.HandleFunc("GET /products", h.GetProducts)
}

func (h ProductsHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProducts"

	ps := h.lister.ListProducts()
	vs := make([]Product, len(ps))
	for i, p := range ps {
		vs[i] = productFromDomain(p)
	}

	writeJSON(w, http.StatusOK, vs, op)
}

// GET    /cart/{userID}                      (200 OK)
// POST   /cart/{userID}/add                  (200 OK, 400 Bad request)
// PUT    /cart/{userID}/update               (200 OK, 400 Bad request)
// DELETE /cart/{userID}/remove/{productID}   (200 OK, 400 Bad request)
// DELETE /cart/{userID}/clear                (200 OK)
// POST   /cart/{userID}/confirm              (200 OK, 400 Bad request)
//
// Any route answers 503 Service unavailable when the cart store fails.

type CartHandler struct {
	service port.CartHandler
}

func RegisterCart(mux *http.ServeMux, service port.CartHandler) {
	h := CartHandler{service}
	mux.HandleFunc("GET /cart/{userID}", h.GetCart)
	mux.HandleFunc("POST /cart/{userID}/add", h.AddToCart)
	mux.HandleFunc("PUT /cart/{userID}/update", h.UpdateQuantity)
	mux.HandleFunc("DELETE /cart/{userID}/remove/{productID}", h.RemoveItem)
	mux.HandleFunc("DELETE /cart/{userID}/clear", h.ClearCart)
	mux.HandleFunc("POST /cart/{userID}/confirm", h.ConfirmCart)
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.GetCart"

	cart, err := h.service.GetCart(r.Context(), r.PathValue("userID"))
	if err != nil {
		h.unavailable(w, op, err)
		return
	}

	writeJSON(w, http.StatusOK, cartFromDomain(cart), op)
}

func (h CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.AddToCart"
	log := slog.With("op", op)

	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidJSON, op)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	userID := r.PathValue("userID")
	res, err := h.service.AddToCart(r.Context(), userID, req.ProductID, quantity)
	h.respondWithCart(w, r, userID, res, err, op)
}

func (h CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.UpdateQuantity"
	log := slog.With("op", op)

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidJSON, op)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	userID := r.PathValue("userID")
	res, err := h.service.UpdateQuantity(
		r.Context(), userID, req.ProductID, req.Quantity,
	)
	h.respondWithCart(w, r, userID, res, err, op)
}

func (h CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.RemoveItem"

	productID, err := strconv.Atoi(r.PathValue("productID"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidProductID, op)
		return
	}

	userID := r.PathValue("userID")
	res, err := h.service.RemoveItem(r.Context(), userID, productID)
	h.respondWithCart(w, r, userID, res, err, op)
}

func (h CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.ClearCart"

	res, err := h.service.ClearCart(r.Context(), r.PathValue("userID"))
	if err != nil {
		h.unavailable(w, op, err)
		return
	}

	writeMessage(w, http.StatusOK, res.Message, op)
}

func (h CartHandler) ConfirmCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.ConfirmCart"

	res, err := h.service.ConfirmCart(r.Context(), r.PathValue("userID"))
	if err != nil {
		h.unavailable(w, op, err)
		return
	}

	if !res.Succeeded() {
		writeMessage(w, http.StatusBadRequest, res.Message, op)
		return
	}

	writeJSON(w, http.StatusOK, ConfirmResponse{
		Message: res.Message,
		OrderID: res.OrderID,
	}, op)
}

// respondWithCart renders a mutation result followed by the current cart.
func (h CartHandler) respondWithCart(
	w http.ResponseWriter,
	r *http.Request,
	userID string,
	res domain.Result,
	err error,
	op string,
) {
	if err != nil {
		h.unavailable(w, op, err)
		return
	}

	if !res.Succeeded() {
		writeMessage(w, http.StatusBadRequest, res.Message, op)
		return
	}

	cart, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		h.unavailable(w, op, err)
		return
	}

	writeJSON(w, http.StatusOK, CartResponse{
		Message: res.Message,
		Cart:    cartFromDomain(cart),
	}, op)
}

func (h CartHandler) unavailable(w http.ResponseWriter, op string, err error) {
	log := slog.With("op", op)
	if errors.Is(err, domain.ErrStoreUnavailable) {
		log.Error("cart store is unavailable", "err", err)
	} else {
		log.Error("failed to handle request", "err", err)
	}
	writeMessage(w, http.StatusServiceUnavailable, msgServiceUnavailable, op)
}

// GET /healthz (200 OK, 503 Service unavailable)

type HealthHandler struct {
	checker port.HealthChecker
}

func RegisterHealth(mux *http.ServeMux, checker port.HealthChecker) {
	h := HealthHandler{checker}
	mux.HandleFunc("GET /healthz", h.GetHealth)
}

func (h HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	const op = "HealthHandler.GetHealth"

	if err := h.checker.Ping(r.Context()); err != nil {
		slog.Warn("health check failed", "op", op, "err", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{"unavailable"}, op)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{"ok"}, op)
}

func writeMessage(w http.ResponseWriter, status int, msg string, op string) {
	writeJSON(w, status, MessageResponse{msg}, op)
}

func writeJSON(w http.ResponseWriter, status int, v any, op string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "op", op, "err", err)
	}
}
