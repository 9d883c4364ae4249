package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/roach88/pharmstock/internal/inventory"
)

// createTestStore creates a new file-backed store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustAddProduct adds a product and returns its id.
func mustAddProduct(t *testing.T, s *Store, name, quantity string) int64 {
	t.Helper()
	p, err := s.AddProduct(context.Background(), name, quantity)
	if err != nil {
		t.Fatalf("AddProduct(%q, %q) failed: %v", name, quantity, err)
	}
	return p.ID
}

// mustAddMovement records a movement with a quantity given as text.
func mustAddMovement(t *testing.T, s *Store, productID int64, typ inventory.MovementType, qty string) inventory.Movement {
	t.Helper()
	m, err := s.AddMovement(context.Background(), productID, typ, decimal.RequireFromString(qty))
	if err != nil {
		t.Fatalf("AddMovement(%d, %s, %s) failed: %v", productID, typ, qty, err)
	}
	return m
}
