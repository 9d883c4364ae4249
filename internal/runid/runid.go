// Package runid generates the identifier attached to every log event of
// one CLI invocation.
package runid

import (
	"github.com/google/uuid"
)

// Generator produces run identifiers.
type Generator interface {
	Generate() string
}

// UUIDv7 generates time-sortable UUIDv7 run ids, so log lines from
// successive invocations sort by start time.
//
// Stateless and safe for concurrent use.
type UUIDv7 struct{}

// Generate returns a new hyphenated UUIDv7.
//
// Panics if the random source fails.
func (UUIDv7) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Fixed returns the same id every time. Used by tests that assert on log
// output.
type Fixed struct {
	id string
}

// NewFixed returns a generator for id. An empty id becomes "run-fixed".
func NewFixed(id string) Fixed {
	if id == "" {
		id = "run-fixed"
	}
	return Fixed{id: id}
}

// Generate returns the fixed id.
func (g Fixed) Generate() string {
	return g.id
}
