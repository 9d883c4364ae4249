// Package harness runs YAML scenarios against a scratch store and checks
// the resulting stock state.
//
// # Scenario Format
//
//	name: out_rewrites_quantity
//	description: "An OUT movement rewrites the stored quantity"
//	steps:
//	  - add_product: { name: Aspirin, quantity: "10" }
//	  - add_movement: { product: Aspirin, type: OUT, quantity: "3" }
//	  - add_movement: { product: Aspirin, quantity: "0" }
//	    expect_error: E004
//	expect:
//	  products: [Aspirin]
//	  inventory:
//	    - { name: Aspirin, quantity: "7", total_out: "3", remaining: "7" }
//	  remaining:
//	    Aspirin: "-3"
//	  movements: 1
//
// Steps reference products by the name they were added under, or by a raw
// product_id. A step without expect_error must succeed. expect_error
// takes a validation code (E001-E005), duplicate_product or
// product_not_found.
//
// # Expectations
//
//   - products: every product name, in listing order
//   - inventory: every inventory line, in order; subset match per line,
//     remaining: null for a non-numeric declared quantity
//   - remaining: IN minus OUT per product name
//   - movements: total movement rows
//
// # Determinism
//
// Every scenario runs in its own in-memory database, so ids in the trace
// and the snapshot are stable across runs and suitable for golden files.
package harness
