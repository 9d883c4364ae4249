package inventory

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType is the direction of a stock movement.
type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// TimestampLayout is the format SQLite's datetime('now') produces.
const TimestampLayout = "2006-01-02 15:04:05"

// Valid reports whether t is one of the persisted movement types.
func (t MovementType) Valid() bool {
	return t == MovementIn || t == MovementOut
}

// ParseMovementType accepts "in"/"out" in any case and surrounding space.
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ValidationError{
			Field:   "type",
			Code:    ErrInvalidMovementType,
			Message: fmt.Sprintf("movement type must be IN or OUT, got %q", s),
		}
	}
	return t, nil
}

// Product is a trackable inventory item.
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`

	// DeclaredQuantity is the quantity text as entered at creation.
	DeclaredQuantity string `json:"declared_quantity"`
}

// NewProduct normalizes name and quantity and checks that neither is empty.
// The returned product has no ID yet.
func NewProduct(name, quantity string) (Product, error) {
	name = NormalizeText(name)
	quantity = NormalizeText(quantity)

	if name == "" {
		return Product{}, ValidationError{
			Field:   "name",
			Code:    ErrEmptyName,
			Message: "product name is required",
		}
	}
	if quantity == "" {
		return Product{}, ValidationError{
			Field:   "quantity",
			Code:    ErrEmptyQuantity,
			Message: "product quantity is required",
		}
	}

	return Product{
		Name:             name,
		Quantity:         quantity,
		DeclaredQuantity: quantity,
	}, nil
}

// Movement is a dated record of stock entering or leaving for a product.
type Movement struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Type      MovementType    `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	CreatedAt string          `json:"created_at"`
}

// Validate checks the movement type and that the quantity is strictly
// positive. The check runs on the float64 written to the REAL column, so
// values that underflow to zero or overflow to infinity are rejected too.
func (m Movement) Validate() error {
	if !m.Type.Valid() {
		return ValidationError{
			Field:   "type",
			Code:    ErrInvalidMovementType,
			Message: fmt.Sprintf("movement type must be IN or OUT, got %q", string(m.Type)),
		}
	}
	if f := m.Quantity.InexactFloat64(); !m.Quantity.IsPositive() || f <= 0 || math.IsInf(f, 0) {
		return ValidationError{
			Field:   "quantity",
			Code:    ErrNonPositiveQuantity,
			Message: fmt.Sprintf("movement quantity must be > 0, got %s", m.Quantity.String()),
		}
	}
	return nil
}

// CreatedTime parses CreatedAt as a UTC timestamp.
func (m Movement) CreatedTime() (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, m.CreatedAt, time.UTC)
}

// MovementLine is a movement joined with its product, as listed to users.
type MovementLine struct {
	Movement
	ProductName     string `json:"product_name"`
	ProductQuantity string `json:"product_quantity"`
}

// InventoryLine is the per-product stock summary.
//
// Remaining is numeric(DeclaredQuantity) - TotalOut. It is invalid (JSON
// null) when the declared quantity text is not a number.
type InventoryLine struct {
	ProductID        int64               `json:"product_id"`
	Name             string              `json:"name"`
	Quantity         string              `json:"quantity"`
	DeclaredQuantity string              `json:"declared_quantity"`
	TotalOut         decimal.Decimal     `json:"total_out"`
	Remaining        decimal.NullDecimal `json:"remaining"`
}
