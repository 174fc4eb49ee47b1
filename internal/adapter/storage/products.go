package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/niksmo/cart-api/internal/core/domain"
	"github.com/shopspring/decimal"
)

// A ProductsRepository reads the catalog seed from the products table.
type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

// ReadProducts returns all products ordered by id.
func (r ProductsRepository) ReadProducts(
	ctx context.Context,
) (ps []domain.Product, err error) {
	const op = "ProductsRepository.ReadProducts"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT id, name, price, stock, image_url
		FROM products
		ORDER BY id ASC;`

	rows, err := r.sqldb.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query: %w", op, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", "err", err)
		}
	}()

	for rows.Next() {
		var (
			p        domain.Product
			price    decimal.Decimal
			imageURL sql.NullString
		)
		err := rows.Scan(&p.ID, &p.Name, &price, &p.Stock, &imageURL)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan: %w", op, err)
		}
		p.Price = price
		p.ImageURL = imageURL.String
		ps = append(ps, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("products loaded", "nProducts", len(ps))
	return ps, nil
}
