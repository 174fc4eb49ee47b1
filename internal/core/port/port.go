package port

import (
	"context"

	"github.com/niksmo/cart-api/internal/core/domain"
)

type ProductsLister interface {
	ListProducts() []domain.Product
}

type CartReader interface {
	GetCart(ctx context.Context, userID string) (domain.Cart, error)
}

type CartEditor interface {
	AddToCart(
		ctx context.Context, userID string, productID, quantity int,
	) (domain.Result, error)
	UpdateQuantity(
		ctx context.Context, userID string, productID, quantity int,
	) (domain.Result, error)
	RemoveItem(
		ctx context.Context, userID string, productID int,
	) (domain.Result, error)
	ClearCart(ctx context.Context, userID string) (domain.Result, error)
}

type CartConfirmer interface {
	ConfirmCart(ctx context.Context, userID string) (domain.Result, error)
}

type CartHandler interface {
	CartReader
	CartEditor
	CartConfirmer
}

type Catalog interface {
	ListAll() []domain.Product
	GetByID(id int) (domain.Product, bool)
	HasStock(id, quantity int) bool
}

type CartStorage interface {
	LoadCart(ctx context.Context, userID string) (domain.Cart, error)
	SaveCart(ctx context.Context, cart domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

type OrdersProducer interface {
	ProduceOrderConfirmed(context.Context, domain.OrderConfirmed) error
}

type HealthChecker interface {
	Ping(context.Context) error
}
