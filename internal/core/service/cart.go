package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/cart-api/internal/core/domain"
	"github.com/niksmo/cart-api/internal/core/port"
)

var _ port.ProductsLister = (*CartService)(nil)
var _ port.CartHandler = (*CartService)(nil)

const orderIDPrefix = "ORD"

const (
	msgAdded           = "product added to cart"
	msgUpdated         = "quantity updated"
	msgRemoved         = "item removed"
	msgCleared         = "cart cleared"
	msgConfirmed       = "order confirmed"
	msgQuantityNotPos  = "quantity must be greater than 0"
	msgQuantityNeg     = "quantity cannot be negative"
	msgProductNotFound = "product not found"
	msgItemNotInCart   = "item not found in cart"
	msgItemNotFound    = "item not found"
	msgEmptyCart       = "cart is empty"
)

// A CartService applies cart operations over the catalog and the cart storage.
//
// Every mutation is a single load, an in-memory change and a single save.
// Concurrent mutations of one user's cart are not serialized, the last save wins.
type CartService struct {
	catalog port.Catalog
	storage port.CartStorage
	orders  port.OrdersProducer
	now     func() time.Time
}

// NewCartService returns the cart service.
//
// The orders producer is optional, confirmations are only logged when nil.
func NewCartService(
	catalog port.Catalog,
	storage port.CartStorage,
	orders port.OrdersProducer,
) CartService {
	return CartService{
		catalog: catalog,
		storage: storage,
		orders:  orders,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s CartService) ListProducts() []domain.Product {
	return s.catalog.ListAll()
}

func (s CartService) GetCart(
	ctx context.Context, userID string,
) (domain.Cart, error) {
	const op = "CartService.GetCart"

	cart, err := s.storage.LoadCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

func (s CartService) AddToCart(
	ctx context.Context, userID string, productID, quantity int,
) (domain.Result, error) {
	const op = "CartService.AddToCart"

	if quantity <= 0 {
		return domain.Fail(domain.FailureInvalidQuantity, msgQuantityNotPos), nil
	}

	product, ok := s.catalog.GetByID(productID)
	if !ok {
		return domain.Fail(domain.FailureProductNotFound, msgProductNotFound), nil
	}

	cart, err := s.storage.LoadCart(ctx, userID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%s: %w", op, err)
	}

	idx := cart.ItemIndex(productID)
	inCart := 0
	if idx != -1 {
		inCart = cart.Items[idx].Quantity
	}

	// compared against the remainder so a huge quantity cannot wrap the sum
	if quantity > product.Stock-inCart {
		return insufficientStock(product.Stock), nil
	}

	if idx != -1 {
		cart.Items[idx].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Price:       product.Price,
			Quantity:    quantity,
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return domain.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	return domain.Success(msgAdded), nil
}

// UpdateQuantity sets the absolute quantity of an item.
// A zero quantity removes the item exactly like [CartService.RemoveItem].
func (s CartService) UpdateQuantity(
	ctx context.Context, userID string, productID, quantity int,
) (domain.Result, error) {
	const op = "CartService.UpdateQuantity"

	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	if quantity < 0 {
		return domain.Fail(domain.FailureInvalidQuantity, msgQuantityNeg), nil
	}

	cart, err := s.storage.LoadCart(ctx, userID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%s: %w", op, err)
	}

	idx := cart.ItemIndex(productID)
	if idx == -1 {
		return domain.Fail(domain.FailureItemNotFound, msgItemNotInCart), nil
	}

	if !s.catalog.HasStock(productID, quantity) {
		return insufficientStock(s.availableStock(productID)), nil
	}

	cart.Items[idx].Quantity = quantity

	if err := s.save(ctx, cart); err != nil {
		return domain.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	return domain.Success(msgUpdated), nil
}

func (s CartService) RemoveItem(
	ctx context.Context, userID string, productID int,
) (domain.Result, error) {
	const op = "CartService.RemoveItem"

	cart, err := s.storage.LoadCart(ctx, userID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%s: %w", op, err)
	}

	idx := cart.ItemIndex(productID)
	if idx == -1 {
		return domain.Fail(domain.FailureItemNotFound, msgItemNotFound), nil
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := s.save(ctx, cart); err != nil {
		return domain.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	return domain.Success(msgRemoved), nil
}

// ClearCart deletes the stored cart. It succeeds whether or not a cart existed.
func (s CartService) ClearCart(
	ctx context.Context, userID string,
) (domain.Result, error) {
	const op = "CartService.ClearCart"

	if err := s.storage.DeleteCart(ctx, userID); err != nil {
		return domain.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	return domain.Success(msgCleared), nil
}

// ConfirmCart re-checks stock for every item, mints an order id
// and clears the cart. Nothing is cleared when any check fails.
func (s CartService) ConfirmCart(
	ctx context.Context, userID string,
) (domain.Result, error) {
	const op = "CartService.ConfirmCart"
	log := slog.With("op", op)

	cart, err := s.storage.LoadCart(ctx, userID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%s: %w", op, err)
	}

	if cart.IsEmpty() {
		return domain.Fail(domain.FailureEmptyCart, msgEmptyCart), nil
	}

	for _, item := range cart.Items {
		if !s.catalog.HasStock(item.ProductID, item.Quantity) {
			msg := fmt.Sprintf(
				"insufficient stock for %s, available: %d",
				item.ProductName, s.availableStock(item.ProductID),
			)
			return domain.Fail(domain.FailureInsufficientStock, msg), nil
		}
	}

	confirmedAt := s.now()
	orderID := newOrderID(confirmedAt)

	log.Info(
		"order confirmed",
		"orderID", orderID,
		"userID", userID,
		"total", cart.Total().StringFixed(2),
	)

	if _, err := s.ClearCart(ctx, userID); err != nil {
		return domain.Result{}, fmt.Errorf("%s: %w", op, err)
	}

	s.announce(ctx, domain.OrderConfirmed{
		OrderID:     orderID,
		UserID:      userID,
		Items:       cart.Items,
		Total:       cart.Total(),
		TotalItems:  cart.TotalItems(),
		ConfirmedAt: confirmedAt,
	})

	res := domain.Success(msgConfirmed)
	res.OrderID = orderID
	return res, nil
}

func (s CartService) save(ctx context.Context, cart domain.Cart) error {
	cart.UpdatedAt = s.now()
	return s.storage.SaveCart(ctx, cart)
}

func (s CartService) announce(ctx context.Context, evt domain.OrderConfirmed) {
	const op = "CartService.announce"

	if s.orders == nil {
		return
	}

	err := s.orders.ProduceOrderConfirmed(ctx, evt)
	if err != nil {
		slog.Error(
			"failed to produce order confirmed event",
			"op", op,
			"orderID", evt.OrderID,
			"err", err,
		)
	}
}

func (s CartService) availableStock(productID int) int {
	p, ok := s.catalog.GetByID(productID)
	if !ok {
		return 0
	}
	return p.Stock
}

func insufficientStock(available int) domain.Result {
	msg := fmt.Sprintf("insufficient stock, available: %d", available)
	return domain.Fail(domain.FailureInsufficientStock, msg)
}

// newOrderID returns ORD-YYYYMMDD-XXXXXXXX, the suffix taken from a random UUID.
func newOrderID(t time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("%s-%s-%s", orderIDPrefix, t.UTC().Format("20060102"), suffix)
}
