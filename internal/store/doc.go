// Package store provides SQLite-backed storage for pharmacy stock.
//
// The store owns two relations:
//   - products: id, name (UNIQUE), quantity (TEXT), declared_quantity (TEXT)
//   - movements: id, product_id, type (IN|OUT), quantity (REAL > 0), created_at
//
// # Critical Patterns
//
// Quantity rewrite: recording an OUT movement rewrites products.quantity to
// numeric(declared_quantity) - sum(OUT) inside the same transaction as the
// insert. IN movements never touch products.quantity.
//
// Two remaining formulas, kept apart on purpose:
//   - GetInventory: numeric(declared_quantity) - sum(OUT)
//   - RemainingForProduct: sum(IN) - sum(OUT)
//
// Deterministic ordering: product listings use ORDER BY name COLLATE FOLD,
// id ASC. FOLD is a Unicode case-folding collation registered on every
// connection; equal folded names fall back to creation order.
//
// Referential existence: AddMovement rejects unknown product ids with
// ErrProductNotFound before anything is written.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: movements.product_id must reference a product
//
// The products and movements DDL in schema.sql is byte-compatible with
// databases created by the earlier tool; declared_quantity is added by the
// v1 migration.
package store
