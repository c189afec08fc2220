package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

const memoryDSN = ":memory:"

// DB manages an in-memory SQLite database. Nothing is written to disk;
// the data lives as long as the process keeps the connection open.
type DB struct {
	sqlDB *sql.DB
}

// OpenMemory opens a fresh in-memory database and applies the schema.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", memoryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every new connection to :memory: would see an empty database
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{sqlDB: sqlDB}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.sqlDB.Close()
}

// BeginTx starts a new transaction
func (db *DB) BeginTx() (*sql.Tx, error) {
	return db.sqlDB.Begin()
}
