package service

import (
	"slices"

	"github.com/niksmo/cart-api/internal/core/domain"
	"github.com/niksmo/cart-api/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.Catalog = (*Catalog)(nil)

// A Catalog is a read-only set of products.
//
// It is never mutated after [NewCatalog] and needs no synchronization.
type Catalog struct {
	products []domain.Product
	byID     map[int]int
}

func NewCatalog(ps []domain.Product) Catalog {
	products := slices.Clone(ps)
	slices.SortStableFunc(products, func(a, b domain.Product) int {
		return a.ID - b.ID
	})

	byID := make(map[int]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	return Catalog{products, byID}
}

// DefaultProducts returns the built-in product list.
func DefaultProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Laptop Dell", Price: decimal.RequireFromString("999.99"), Stock: 10},
		{ID: 2, Name: "iPhone 15", Price: decimal.RequireFromString("1099.99"), Stock: 15},
		{ID: 3, Name: "Sony Headphones", Price: decimal.RequireFromString("299.99"), Stock: 20},
		{ID: 4, Name: "Samsung TV", Price: decimal.RequireFromString("799.99"), Stock: 8},
		{ID: 5, Name: "Apple Watch", Price: decimal.RequireFromString("399.99"), Stock: 12},
	}
}

// ListAll returns products ordered by id.
func (c Catalog) ListAll() []domain.Product {
	return slices.Clone(c.products)
}

func (c Catalog) GetByID(id int) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// HasStock reports whether the product exists with at least quantity in stock.
// Stock is never reserved or decremented.
func (c Catalog) HasStock(id, quantity int) bool {
	p, ok := c.GetByID(id)
	return ok && p.Stock >= quantity
}
