package httphandler

import (
	"time"

	"github.com/niksmo/cart-api/internal/core/domain"
	"github.com/shopspring/decimal"
)

type (
	Product struct {
		ID       int             `json:"id"`
		Name     string          `json:"name"`
		Price    decimal.Decimal `json:"price"`
		Stock    int             `json:"stock"`
		ImageURL string          `json:"imageUrl,omitempty"`
	}

	Cart struct {
		UserID     string          `json:"userId"`
		Items      []CartItem      `json:"items"`
		Total      decimal.Decimal `json:"total"`
		TotalItems int             `json:"totalItems"`
		UpdatedAt  time.Time       `json:"updatedAt"`
	}

	CartItem struct {
		ProductID   int             `json:"productId"`
		ProductName string          `json:"productName"`
		Price       decimal.Decimal `json:"price"`
		Quantity    int             `json:"quantity"`
		Subtotal    decimal.Decimal `json:"subtotal"`
	}
)

// AddToCartRequest.Quantity defaults to 1 when omitted.
type (
	AddToCartRequest struct {
		ProductID int  `json:"productId"`
		Quantity  *int `json:"quantity"`
	}

	UpdateQuantityRequest struct {
		ProductID int `json:"productId"`
		Quantity  int `json:"quantity"`
	}
)

type (
	MessageResponse struct {
		Message string `json:"message"`
	}

	CartResponse struct {
		Message string `json:"message"`
		Cart    Cart   `json:"cart"`
	}

	ConfirmResponse struct {
		Message string `json:"message"`
		OrderID string `json:"orderId"`
	}

	HealthResponse struct {
		Status string `json:"status"`
	}
)

// NumericMoney makes decimal amounts marshal as JSON numbers ("price": 999.99)
// for the whole process, stored cart records included. Decoding accepts both
// numbers and strings.
func NumericMoney() {
	decimal.MarshalJSONWithoutQuotes = true
}

func productFromDomain(p domain.Product) Product {
	return Product{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		ImageURL: p.ImageURL,
	}
}

func cartFromDomain(c domain.Cart) (v Cart) {
	v.UserID = c.UserID
	v.Total = c.Total()
	v.TotalItems = c.TotalItems()
	v.UpdatedAt = c.UpdatedAt.UTC()

	v.Items = make([]CartItem, len(c.Items))
	for i, item := range c.Items {
		v.Items[i] = CartItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal(),
		}
	}
	return v
}
