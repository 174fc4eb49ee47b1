package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// A CartItem holds the product name and price captured when the
// product was added, later catalog changes do not affect it.
type CartItem struct {
	ProductID   int
	ProductName string
	Price       decimal.Decimal
	Quantity    int
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// A Cart never holds two items with the same ProductID
// and never holds an item with a non-positive Quantity.
type Cart struct {
	UserID    string
	Items     []CartItem
	UpdatedAt time.Time
}

func NewCart(userID string) Cart {
	return Cart{
		UserID:    userID,
		Items:     []CartItem{},
		UpdatedAt: time.Now().UTC(),
	}
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c Cart) TotalItems() (n int) {
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemIndex returns the index of the item with productID or -1.
func (c Cart) ItemIndex(productID int) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
