package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseQuantity reads quantity text as a number.
//
// Surrounding space is ignored and a single comma is accepted as the
// decimal separator ("2,5"). Anything else that decimal cannot parse,
// such as "2 boites", is a ValidationError with code E005.
func ParseQuantity(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ValidationError{
			Field:   "quantity",
			Code:    ErrNotNumeric,
			Message: fmt.Sprintf("quantity %q is not a number", text),
		}
	}
	return d, nil
}

// FormatQuantity renders d the way it is written back to products.quantity.
func FormatQuantity(d decimal.Decimal) string {
	return d.String()
}

// FromREAL converts a value read from a REAL column.
func FromREAL(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Sum adds up quantities.
func Sum(qs ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, q := range qs {
		total = total.Add(q)
	}
	return total
}
