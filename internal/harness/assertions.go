package harness

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/pharmstock/internal/inventory"
	"github.com/roach88/pharmstock/internal/store"
)

// AssertionError is returned when an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Expectation section: products, inventory, remaining, movements
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Executed steps for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nSteps:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n", event.Seq, event.Op, formatArgs(event.Args), event.Outcome)
		}
	}

	return buf.String()
}

// checkExpectations evaluates every expectation section present and
// records failures on result. Only store failures are returned.
func (h *Harness) checkExpectations(ctx context.Context, expect Expectations, result *Result) error {
	var failures []error

	if expect.Products != nil {
		if err := assertProducts(expect.Products, result.Products); err != nil {
			failures = append(failures, err)
		}
	}

	if expect.Inventory != nil {
		if err := assertInventory(expect.Inventory, result.Inventory); err != nil {
			failures = append(failures, err)
		}
	}

	if len(expect.Remaining) > 0 {
		errs, err := h.assertRemaining(ctx, expect.Remaining)
		if err != nil {
			return err
		}
		failures = append(failures, errs...)
	}

	if expect.Movements != nil {
		n, err := h.store.CountMovements(ctx)
		if err != nil {
			return fmt.Errorf("count movements: %w", err)
		}
		if n != *expect.Movements {
			failures = append(failures, &AssertionError{
				Type:     "movements",
				Expected: fmt.Sprintf("%d movement(s)", *expect.Movements),
				Actual:   fmt.Sprintf("%d movement(s)", n),
			})
		}
	}

	for _, f := range failures {
		var ae *AssertionError
		if errors.As(f, &ae) {
			ae.Trace = result.Trace
		}
		result.AddError(f.Error())
	}

	return nil
}

// assertProducts checks the full ordered list of product names.
func assertProducts(expected []string, actual []inventory.Product) error {
	got := lo.Map(actual, func(p inventory.Product, _ int) string { return p.Name })

	if len(got) != len(expected) {
		return &AssertionError{
			Type:     "products",
			Expected: fmt.Sprintf("%d product(s) %q", len(expected), expected),
			Actual:   fmt.Sprintf("%d product(s) %q", len(got), got),
		}
	}
	for i := range expected {
		if got[i] != expected[i] {
			return &AssertionError{
				Type:     "products",
				Expected: fmt.Sprintf("%q", expected),
				Actual:   fmt.Sprintf("%q (first difference at position %d)", got, i),
			}
		}
	}

	return nil
}

// assertInventory checks inventory lines in order. Each expected entry is
// a subset match over the line's fields.
func assertInventory(expected []map[string]any, actual []inventory.InventoryLine) error {
	if len(actual) != len(expected) {
		return &AssertionError{
			Type:     "inventory",
			Expected: fmt.Sprintf("%d line(s)", len(expected)),
			Actual:   fmt.Sprintf("%d line(s)", len(actual)),
		}
	}

	for i, want := range expected {
		got := lineFields(actual[i])
		for _, key := range sortedKeys(want) {
			if !valueMatches(want[key], got[key]) {
				return &AssertionError{
					Type:     "inventory",
					Expected: fmt.Sprintf("line %d %s = %s", i, key, describe(want[key])),
					Actual:   fmt.Sprintf("line %d (%s) %s = %s", i, actual[i].Name, key, describe(got[key])),
				}
			}
		}
	}

	return nil
}

// assertRemaining checks RemainingForProduct for each named product.
func (h *Harness) assertRemaining(ctx context.Context, expected map[string]any) ([]error, error) {
	var failures []error

	for _, name := range sortedKeys(expected) {
		id, ok := h.ids[inventory.NormalizeText(name)]
		if !ok {
			failures = append(failures, &AssertionError{
				Type:     "remaining",
				Expected: fmt.Sprintf("product %q", name),
				Actual:   "product was never added",
			})
			continue
		}

		remaining, err := h.store.RemainingForProduct(ctx, id)
		if errors.Is(err, store.ErrProductNotFound) {
			failures = append(failures, &AssertionError{
				Type:     "remaining",
				Expected: fmt.Sprintf("product %q", name),
				Actual:   "product not found",
			})
			continue
		}
		if err != nil {
			return nil, err
		}

		got := inventory.FormatQuantity(remaining)
		if !valueMatches(expected[name], got) {
			failures = append(failures, &AssertionError{
				Type:     "remaining",
				Expected: fmt.Sprintf("%s = %s", name, describe(expected[name])),
				Actual:   fmt.Sprintf("%s = %s", name, got),
			})
		}
	}

	return failures, nil
}

// lineFields flattens an inventory line for subset matching. A
// non-numeric remaining is nil.
func lineFields(l inventory.InventoryLine) map[string]any {
	fields := map[string]any{
		"name":              l.Name,
		"quantity":          l.Quantity,
		"declared_quantity": l.DeclaredQuantity,
		"total_out":         inventory.FormatQuantity(l.TotalOut),
		"remaining":         nil,
	}
	if l.Remaining.Valid {
		fields["remaining"] = inventory.FormatQuantity(l.Remaining.Decimal)
	}
	return fields
}

// valueMatches compares a YAML value with an actual field. nil only
// matches nil. When both sides read as numbers they are compared
// numerically, so 7, "7" and "7.0" are equal.
func valueMatches(want, got any) bool {
	if want == nil || got == nil {
		return want == nil && got == nil
	}

	w := fmt.Sprint(want)
	g := fmt.Sprint(got)
	if w == g {
		return true
	}

	wd, werr := inventory.ParseQuantity(w)
	gd, gerr := inventory.ParseQuantity(g)
	return werr == nil && gerr == nil && wd.Equal(gd)
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%q", fmt.Sprint(v))
}

func formatArgs(args map[string]string) string {
	parts := make([]string, 0, len(args))
	for _, k := range sortedKeys(args) {
		parts = append(parts, fmt.Sprintf("%s=%q", k, args[k]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
