// Package inventory holds the domain types for pharmacy stock tracking.
//
// This package contains types and pure helpers only. The store imports
// inventory; inventory imports nothing internal.
//
// Key design constraints:
//   - Quantities are shopspring/decimal values, never float arithmetic.
//     REAL columns are converted at the store boundary.
//   - Product.Quantity is free text at creation and a numeric remainder
//     once an OUT movement has been recorded. DeclaredQuantity keeps the
//     text as entered and is never rewritten.
//   - Text read from callers is trimmed and NFC normalized before storage.
//   - All JSON tags use snake_case.
package inventory
