package harness

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/roach88/pharmstock/internal/inventory"
	"github.com/roach88/pharmstock/internal/store"
)

// Harness executes one scenario against its own store.
type Harness struct {
	store *store.Store
	ids   map[string]int64 // product name -> id, for products added so far
	log   zerolog.Logger

	storeLog zerolog.Logger
}

// Option configures a scenario run.
type Option func(*Harness)

// WithLogger sets the logger for step events and for the scratch store.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Harness) {
		h.log = l.With().Str("component", "harness").Logger()
		h.storeLog = l
	}
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, so
// product and movement ids are deterministic.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Execute steps, comparing each outcome with expect_error
// 3. Capture products and inventory
// 4. Check expectations
//
// A returned error means the scenario could not be executed at all;
// failed expectations are reported through Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		ids:      make(map[string]int64),
		log:      zerolog.Nop(),
		storeLog: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	st, err := store.OpenMemory(store.WithLogger(h.storeLog))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()
	h.store = st

	ctx := context.Background()
	result := NewResult()

	h.log.Debug().Str("scenario", scenario.Name).Int("steps", len(scenario.Steps)).Msg("scenario started")

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	products, err := st.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture products: %w", err)
	}
	lines, err := st.GetInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture inventory: %w", err)
	}
	result.Products = products
	result.Inventory = lines

	if err := h.checkExpectations(ctx, scenario.Expect, result); err != nil {
		return nil, err
	}

	h.log.Debug().Str("scenario", scenario.Name).Bool("pass", result.Pass).Msg("scenario finished")
	return result, nil
}

// executeStep runs one step and records its outcome.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	var (
		op   string
		args map[string]string
		id   int64
		err  error
	)

	switch {
	case step.AddProduct != nil:
		op = "add_product"
		args = map[string]string{
			"name":     step.AddProduct.Name,
			"quantity": step.AddProduct.Quantity,
		}

		var p inventory.Product
		p, err = h.store.AddProduct(ctx, step.AddProduct.Name, step.AddProduct.Quantity)
		if err == nil {
			h.ids[p.Name] = p.ID
			id = p.ID
		}

	case step.AddMovement != nil:
		op = "add_movement"
		m := step.AddMovement
		args = map[string]string{
			"type":     m.Type,
			"quantity": m.Quantity,
		}
		if args["type"] == "" {
			args["type"] = string(inventory.MovementOut)
		}

		productID := m.ProductID
		if m.Product != "" {
			args["product"] = m.Product
			known, ok := h.ids[inventory.NormalizeText(m.Product)]
			if !ok {
				result.AddError(fmt.Sprintf("steps[%d] %s: product %q was never added", index, op, m.Product))
				return nil
			}
			productID = known
		} else {
			args["product_id"] = strconv.FormatInt(productID, 10)
		}

		var mv inventory.Movement
		mv, err = h.addMovement(ctx, productID, args["type"], m.Quantity)
		if err == nil {
			id = mv.ID
		}
	}

	outcome, err := outcomeOf(err)
	if err != nil {
		return fmt.Errorf("steps[%d] %s: %w", index, op, err)
	}
	result.addTrace(op, args, outcome, id)

	want := step.ExpectError
	if want == "" {
		want = OutcomeOK
	}
	if outcome != want {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected %s, got %s", index, op, want, outcome))
	}

	h.log.Debug().Int("step", index).Str("op", op).Str("outcome", outcome).Msg("step executed")
	return nil
}

// addMovement parses the textual step fields the same way the CLI does.
func (h *Harness) addMovement(ctx context.Context, productID int64, typeText, qtyText string) (inventory.Movement, error) {
	typ, err := inventory.ParseMovementType(typeText)
	if err != nil {
		return inventory.Movement{}, err
	}
	qty, err := inventory.ParseQuantity(qtyText)
	if err != nil {
		return inventory.Movement{}, err
	}
	return h.store.AddMovement(ctx, productID, typ, qty)
}

// outcomeOf names the outcome of a store call. Errors that are not an
// expected kind of rejection are returned as is.
func outcomeOf(err error) (string, error) {
	if err == nil {
		return OutcomeOK, nil
	}
	if code := inventory.ValidationCode(err); code != "" {
		return code, nil
	}
	switch {
	case errors.Is(err, store.ErrDuplicateProduct):
		return OutcomeDuplicateProduct, nil
	case errors.Is(err, store.ErrProductNotFound):
		return OutcomeProductNotFound, nil
	}
	return "", err
}
