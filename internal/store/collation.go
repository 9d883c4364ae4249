package store

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/pharmstock/internal/inventory"
)

// driverName is the go-sqlite3 driver with the FOLD collation registered.
const driverName = "sqlite3_pharmstock"

// foldCollation orders text by Unicode case folding. SQLite's built-in
// NOCASE only folds ASCII, which misplaces names such as "Éther".
const foldCollation = "FOLD"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterCollation(foldCollation, inventory.CompareFolded)
		},
	})
}
