package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/pharmstock/internal/inventory"
)

// GetProduct returns one product by id.
func (s *Store) GetProduct(ctx context.Context, id int64) (inventory.Product, error) {
	var p inventory.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, quantity, COALESCE(declared_quantity, quantity)
		FROM products
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Quantity, &p.DeclaredQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.Product{}, fmt.Errorf("get product %d: %w", id, ErrProductNotFound)
	}
	if err != nil {
		return inventory.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// ListProducts returns all products ordered by name, case-insensitively.
// Names that fold to the same text are returned in creation order.
//
// Returns an empty slice (not nil) if there are no products.
func (s *Store) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, quantity, COALESCE(declared_quantity, quantity)
		FROM products
		ORDER BY name COLLATE FOLD ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []inventory.Product{}
	for rows.Next() {
		var p inventory.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &p.DeclaredQuantity); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// ListMovements returns every movement, newest first, joined with the
// product's name and current quantity text.
//
// Returns an empty slice (not nil) if there are no movements.
func (s *Store) ListMovements(ctx context.Context) ([]inventory.MovementLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.created_at, m.product_id, p.name, p.quantity, m.type, m.quantity
		FROM movements m
		JOIN products p ON p.id = m.product_id
		ORDER BY m.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()

	lines := []inventory.MovementLine{}
	for rows.Next() {
		var (
			line inventory.MovementLine
			typ  string
			qty  float64
		)
		if err := rows.Scan(
			&line.ID,
			&line.CreatedAt,
			&line.ProductID,
			&line.ProductName,
			&line.ProductQuantity,
			&typ,
			&qty,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		line.Type = inventory.MovementType(typ)
		line.Quantity = inventory.FromREAL(qty)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movements: %w", err)
	}

	return lines, nil
}

// GetInventory returns the stock summary of every product, in ListProducts
// order.
//
// For each product, TotalOut is the sum of its OUT movements (zero when
// there are none) and Remaining is numeric(declared quantity) - TotalOut.
// IN movements are ignored here. When the declared quantity is not a
// number, Remaining is left invalid rather than coerced to zero.
func (s *Store) GetInventory(ctx context.Context) ([]inventory.InventoryLine, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}

	totals, err := s.totalsByProduct(ctx, inventory.MovementOut)
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}

	lines := make([]inventory.InventoryLine, 0, len(products))
	for _, p := range products {
		totalOut, ok := totals[p.ID]
		if !ok {
			totalOut = decimal.Zero
		}

		line := inventory.InventoryLine{
			ProductID:        p.ID,
			Name:             p.Name,
			Quantity:         p.Quantity,
			DeclaredQuantity: p.DeclaredQuantity,
			TotalOut:         totalOut,
		}
		if base, err := inventory.ParseQuantity(p.DeclaredQuantity); err == nil {
			line.Remaining = decimal.NewNullDecimal(base.Sub(totalOut))
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// RemainingForProduct returns sum(IN) - sum(OUT) over the product's
// movements. The product's quantity text plays no part; this is a
// different figure from GetInventory's Remaining.
func (s *Store) RemainingForProduct(ctx context.Context, productID int64) (decimal.Decimal, error) {
	if _, err := declaredQuantity(ctx, s.db, productID); err != nil {
		return decimal.Zero, fmt.Errorf("remaining for product: %w", err)
	}

	in, err := sumMovements(ctx, s.db, productID, inventory.MovementIn)
	if err != nil {
		return decimal.Zero, fmt.Errorf("remaining for product %d: %w", productID, err)
	}
	out, err := sumMovements(ctx, s.db, productID, inventory.MovementOut)
	if err != nil {
		return decimal.Zero, fmt.Errorf("remaining for product %d: %w", productID, err)
	}

	return in.Sub(out), nil
}

// CountProducts returns the number of products.
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	return s.count(ctx, "products")
}

// CountMovements returns the number of movements.
func (s *Store) CountMovements(ctx context.Context) (int, error) {
	return s.count(ctx, "movements")
}

// count returns the row count of one of the store's own tables.
func (s *Store) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// totalsByProduct sums movement quantities of one type per product.
func (s *Store) totalsByProduct(ctx context.Context, typ inventory.MovementType) (map[int64]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, quantity FROM movements
		WHERE type = ?
		ORDER BY id ASC
	`, string(typ))
	if err != nil {
		return nil, fmt.Errorf("query %s totals: %w", typ, err)
	}
	defer rows.Close()

	totals := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var (
			productID int64
			qty       float64
		)
		if err := rows.Scan(&productID, &qty); err != nil {
			return nil, fmt.Errorf("scan %s total: %w", typ, err)
		}
		totals[productID] = totals[productID].Add(inventory.FromREAL(qty))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s totals: %w", typ, err)
	}

	return totals, nil
}
