package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/pharmstock/internal/inventory"
)

// AddProduct inserts a product after trimming name and quantity.
//
// The quantity text is stored twice: as quantity (rewritten by OUT
// movements) and as declared_quantity (never rewritten).
//
// Returns a ValidationError if either value is empty after trimming, and an
// error wrapping ErrDuplicateProduct if the name is already taken (exact,
// case-sensitive match). Nothing is written in either case.
func (s *Store) AddProduct(ctx context.Context, name, quantity string) (inventory.Product, error) {
	p, err := inventory.NewProduct(name, quantity)
	if err != nil {
		return inventory.Product{}, fmt.Errorf("add product: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO products (name, quantity, declared_quantity)
		VALUES (?, ?, ?)
	`, p.Name, p.Quantity, p.DeclaredQuantity)
	if err != nil {
		if isUniqueViolation(err) {
			return inventory.Product{}, fmt.Errorf("add product %q: %w: %w", p.Name, ErrDuplicateProduct, err)
		}
		return inventory.Product{}, fmt.Errorf("add product: %w", err)
	}

	p.ID, err = result.LastInsertId()
	if err != nil {
		return inventory.Product{}, fmt.Errorf("add product: last insert id: %w", err)
	}

	s.log.Info().
		Int64("product_id", p.ID).
		Str("name", p.Name).
		Str("quantity", p.Quantity).
		Msg("product added")

	return p, nil
}

// AddMovement records a stock movement for an existing product.
//
// Validation happens before the database is touched: the type must be IN or
// OUT and the quantity strictly positive. The product must exist
// (ErrProductNotFound otherwise).
//
// For OUT movements the product's quantity column is rewritten, in the same
// transaction, to numeric(declared_quantity) - sum of all OUT quantities
// including this one. If the declared quantity is not a number the movement
// is rejected with a ValidationError (code E005) and nothing is written.
// IN movements leave products.quantity untouched.
func (s *Store) AddMovement(ctx context.Context, productID int64, typ inventory.MovementType, quantity decimal.Decimal) (inventory.Movement, error) {
	m := inventory.Movement{
		ProductID: productID,
		Type:      typ,
		Quantity:  quantity,
	}
	if err := m.Validate(); err != nil {
		return inventory.Movement{}, fmt.Errorf("add movement: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return inventory.Movement{}, fmt.Errorf("add movement: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	declared, err := declaredQuantity(ctx, tx, productID)
	if err != nil {
		return inventory.Movement{}, fmt.Errorf("add movement: %w", err)
	}

	// Parse before inserting so a non-numeric product is a clean no-op.
	var base decimal.Decimal
	if typ == inventory.MovementOut {
		base, err = inventory.ParseQuantity(declared)
		if err != nil {
			return inventory.Movement{}, fmt.Errorf("add movement for product %d: %w", productID, err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO movements (product_id, type, quantity)
		VALUES (?, ?, ?)
	`, productID, string(typ), quantity.InexactFloat64())
	if err != nil {
		return inventory.Movement{}, fmt.Errorf("add movement: insert: %w", err)
	}

	m.ID, err = result.LastInsertId()
	if err != nil {
		return inventory.Movement{}, fmt.Errorf("add movement: last insert id: %w", err)
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT created_at FROM movements WHERE id = ?`, m.ID,
	).Scan(&m.CreatedAt); err != nil {
		return inventory.Movement{}, fmt.Errorf("add movement: read created_at: %w", err)
	}

	var remaining decimal.Decimal
	if typ == inventory.MovementOut {
		totalOut, err := sumMovements(ctx, tx, productID, inventory.MovementOut)
		if err != nil {
			return inventory.Movement{}, fmt.Errorf("add movement: %w", err)
		}
		remaining = base.Sub(totalOut)

		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET quantity = ? WHERE id = ?`,
			inventory.FormatQuantity(remaining), productID,
		); err != nil {
			return inventory.Movement{}, fmt.Errorf("add movement: update product quantity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return inventory.Movement{}, fmt.Errorf("add movement: commit: %w", err)
	}

	ev := s.log.Info().
		Int64("movement_id", m.ID).
		Int64("product_id", productID).
		Str("type", string(typ)).
		Str("quantity", quantity.String())
	if typ == inventory.MovementOut {
		ev = ev.Str("remaining", inventory.FormatQuantity(remaining))
	}
	ev.Msg("movement recorded")

	return m, nil
}

// declaredQuantity returns the declared quantity text of a product.
// Rows inserted by tools unaware of declared_quantity fall back to quantity.
func declaredQuantity(ctx context.Context, q querier, productID int64) (string, error) {
	var declared string
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(declared_quantity, quantity)
		FROM products
		WHERE id = ?
	`, productID).Scan(&declared)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read product %d: %w", productID, err)
	}
	return declared, nil
}

// sumMovements adds up the quantities of one product's movements of one type.
func sumMovements(ctx context.Context, q querier, productID int64, typ inventory.MovementType) (decimal.Decimal, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT quantity FROM movements
		WHERE product_id = ? AND type = ?
		ORDER BY id ASC
	`, productID, string(typ))
	if err != nil {
		return decimal.Zero, fmt.Errorf("query %s movements: %w", typ, err)
	}
	defer rows.Close()

	var quantities []decimal.Decimal
	for rows.Next() {
		var f float64
		if err := rows.Scan(&f); err != nil {
			return decimal.Zero, fmt.Errorf("scan %s movement: %w", typ, err)
		}
		quantities = append(quantities, inventory.FromREAL(f))
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("iterate %s movements: %w", typ, err)
	}
	return inventory.Sum(quantities...), nil
}
