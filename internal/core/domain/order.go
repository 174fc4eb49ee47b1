package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// An OrderConfirmed is announced after a cart confirmation.
// The order itself is never stored.
type OrderConfirmed struct {
	OrderID     string
	UserID      string
	Items       []CartItem
	Total       decimal.Decimal
	TotalItems  int
	ConfirmedAt time.Time
}
