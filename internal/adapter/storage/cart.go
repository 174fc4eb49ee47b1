package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/cart-api/internal/core/domain"
	"github.com/niksmo/cart-api/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.CartStorage = (*CartRepository)(nil)

// CartTTL is the expiry of a stored cart, refreshed on every save.
const CartTTL = 14 * 24 * time.Hour

const cartKeyPrefix = "cart:"

type (
	cartRecord struct {
		UserID     string           `json:"userId"`
		Items      []cartItemRecord `json:"items"`
		Total      decimal.Decimal  `json:"total"`
		TotalItems int              `json:"totalItems"`
		UpdatedAt  time.Time        `json:"updatedAt"`
	}

	cartItemRecord struct {
		ProductID   int             `json:"productId"`
		ProductName string          `json:"productName"`
		Price       decimal.Decimal `json:"price"`
		Quantity    int             `json:"quantity"`
		Subtotal    decimal.Decimal `json:"subtotal"`
	}
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// A CartRepository keeps one JSON record per user under "cart:{userID}".
type CartRepository struct {
	kv kvStore
}

func NewCartRepository(kv kvStore) CartRepository {
	return CartRepository{kv}
}

// LoadCart returns the stored cart or an empty one
// when the record is absent, cannot be decoded or holds
// non-positive quantities or repeated products.
func (r CartRepository) LoadCart(
	ctx context.Context, userID string,
) (domain.Cart, error) {
	const op = "CartRepository.LoadCart"
	log := slog.With("op", op, "userID", userID)

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	data, err := r.kv.Get(ctx, cartKey(userID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.NewCart(userID), nil
		}
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	if data == "" {
		return domain.NewCart(userID), nil
	}

	var rec cartRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		log.Warn("discard undecodable cart record", "err", err)
		return domain.NewCart(userID), nil
	}
	if err := checkRecord(rec); err != nil {
		log.Warn("discard inconsistent cart record", "err", err)
		return domain.NewCart(userID), nil
	}

	return r.toDomain(userID, rec), nil
}

// SaveCart overwrites the stored cart unconditionally.
func (r CartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	const op = "CartRepository.SaveCart"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	data, err := json.Marshal(r.toRecord(cart))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = r.kv.Set(ctx, cartKey(cart.UserID), string(data), CartTTL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r CartRepository) DeleteCart(ctx context.Context, userID string) error {
	const op = "CartRepository.DeleteCart"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.kv.Del(ctx, cartKey(userID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func checkRecord(rec cartRecord) error {
	seen := make(map[int]struct{}, len(rec.Items))
	for _, item := range rec.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("product %d: non-positive quantity %d",
				item.ProductID, item.Quantity)
		}
		if _, ok := seen[item.ProductID]; ok {
			return fmt.Errorf("product %d: repeated", item.ProductID)
		}
		seen[item.ProductID] = struct{}{}
	}
	return nil
}

func cartKey(userID string) string {
	return cartKeyPrefix + userID
}

func (CartRepository) toRecord(c domain.Cart) (rec cartRecord) {
	rec.UserID = c.UserID
	rec.Total = c.Total()
	rec.TotalItems = c.TotalItems()
	rec.UpdatedAt = c.UpdatedAt.UTC()

	rec.Items = make([]cartItemRecord, len(c.Items))
	for i, item := range c.Items {
		rec.Items[i] = cartItemRecord{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal(),
		}
	}
	return rec
}

// toDomain ignores the derived fields of the record.
func (CartRepository) toDomain(userID string, rec cartRecord) (c domain.Cart) {
	c.UserID = rec.UserID
	if c.UserID == "" {
		c.UserID = userID
	}
	c.UpdatedAt = rec.UpdatedAt.UTC()

	c.Items = make([]domain.CartItem, len(rec.Items))
	for i, item := range rec.Items {
		c.Items[i] = domain.CartItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
		}
	}
	return c
}
