// Package sqlite implements the SQLite credential store for storefront.
// Schema for the entries table.
package sqlite

// Schema DDL. Statements are idempotent so an existing database file keeps
// its entries across runs.
const (
	createEntries = `CREATE TABLE IF NOT EXISTS entries (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createEntries,
}

// Entry names.
const (
	entryAccessToken = "access_token"
)

// dbFileName is the database file created inside the data directory.
const dbFileName = "storefront.db"
