package database

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// NewSQLite opens the SQLite database at path. ":memory:" gives a private
// in-memory database.
func NewSQLite(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer at a time; a single connection also keeps an
	// in-memory database alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// MigrateSQLite runs the SQL statements to set up the database schema.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS invoices (
		id TEXT NOT NULL PRIMARY KEY,
		invoice_id TEXT NOT NULL UNIQUE,
		-- Optional link to customers.id; customer keeps the billed name
		customer_id TEXT,
		customer TEXT,
		date TEXT,
		-- Line items are stored as a JSON array
		items_json TEXT NOT NULL,
		grand_total REAL NOT NULL,
		payment_status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS customers (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS inventory_items (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		price REAL NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shop_profile (
		id TEXT NOT NULL PRIMARY KEY,
		shop_name TEXT NOT NULL,
		shop_phone TEXT NOT NULL,
		logo_url TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := db.ExecContext(ctx, sqlStmt)
	return err
}
