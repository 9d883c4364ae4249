package harness

import (
	"github.com/roach88/pharmstock/internal/inventory"
)

// TraceEvent records one executed step and how it ended.
type TraceEvent struct {
	Seq     int               `json:"seq"`
	Op      string            `json:"op"` // "add_product" or "add_movement"
	Args    map[string]string `json:"args"`
	Outcome string            `json:"outcome"`      // "ok", a validation code, or an outcome name
	ID      int64             `json:"id,omitempty"` // id of the created row on success
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step ended as expected and all expectations hold.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final state, captured after the last step.
	Products  []inventory.Product       `json:"products"`
	Inventory []inventory.InventoryLine `json:"inventory"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Trace:     []TraceEvent{},
		Errors:    []string{},
		Products:  []inventory.Product{},
		Inventory: []inventory.InventoryLine{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addTrace appends a step to the trace with the next sequence number.
func (r *Result) addTrace(op string, args map[string]string, outcome string, id int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     len(r.Trace) + 1,
		Op:      op,
		Args:    args,
		Outcome: outcome,
		ID:      id,
	})
}
