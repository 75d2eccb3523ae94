package journal

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/zjrosen/treelights/internal/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migrate applies every embedded up migration newer than the database's
// user_version, each in its own transaction, and returns the final version.
func migrate(conn *sql.DB) (uint, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("loading migrations: %w", err)
	}
	defer func() { _ = src.Close() }()

	var current uint
	if err := conn.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	version, err := src.First()
	for err == nil {
		if version > current {
			if err := applyMigration(conn, src.ReadUp, version); err != nil {
				return current, err
			}
			current = version
		}
		version, err = src.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return current, fmt.Errorf("listing migrations: %w", err)
	}
	return current, nil
}

func applyMigration(conn *sql.DB, readUp func(uint) (io.ReadCloser, string, error), version uint) error {
	r, name, err := readUp(version)
	if err != nil {
		return fmt.Errorf("reading migration %d: %w", version, err)
	}
	body, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", name, err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(string(body)); err != nil {
		return fmt.Errorf("applying migration %s: %w", name, err)
	}
	// PRAGMA takes no bound parameters; version is an integer we parsed.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("recording migration %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration %s: %w", name, err)
	}
	log.Debug(log.CatJournal, "Applied migration", "version", version, "name", name)
	return nil
}
