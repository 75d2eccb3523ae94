// Package journal records every event triggered on the light channel to a
// SQLite database so past sessions can be listed with `treelights history`.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/treelights/internal/log"
)

// DB is an open journal database with its schema applied.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens the journal at path, creating the file and its directory as
// needed, and applies pending migrations.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	dsn := "file:" + path +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(wal)"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connecting to journal: %w", err)
	}

	version, err := migrate(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Info(log.CatJournal, "Opened journal", "path", path, "schema", version)

	return &DB{conn: conn, path: path}, nil
}

// Close closes the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }
