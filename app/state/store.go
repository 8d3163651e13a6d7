package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists the dedup ledger in a local SQLite database. The
// ledger is written as a single transaction so a failed run leaves the
// previous ledger untouched.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	if _, _, err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the ledger. Callers treat a failed read as an empty ledger
// rather than aborting the run.
func (s *Store) Load() (Record, error) {
	var record Record

	rows, err := s.db.Query(`SELECT identifier FROM seen_identifiers ORDER BY position`)
	if err != nil {
		return Record{}, fmt.Errorf("failed to read seen identifiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var identifier string
		if err := rows.Scan(&identifier); err != nil {
			return Record{}, fmt.Errorf("failed to scan identifier: %w", err)
		}
		record.Seen = append(record.Seen, identifier)
	}
	if err := rows.Err(); err != nil {
		return Record{}, fmt.Errorf("failed to iterate identifiers: %w", err)
	}

	var lastRun sql.NullString
	err = s.db.QueryRow(`SELECT last_run FROM run_state WHERE id = 1`).Scan(&lastRun)
	if err != nil && err != sql.ErrNoRows {
		return Record{}, fmt.Errorf("failed to read last run: %w", err)
	}

	if lastRun.Valid {
		parsed, err := time.Parse(time.RFC3339, lastRun.String)
		if err != nil {
			return Record{}, fmt.Errorf("failed to parse last run timestamp: %w", err)
		}
		record.LastRun = parsed
	}

	return record, nil
}

// Save replaces the ledger in one transaction.
func (s *Store) Save(record Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM seen_identifiers`); err != nil {
		return fmt.Errorf("failed to clear seen identifiers: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO seen_identifiers (position, identifier) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, identifier := range record.Seen {
		if _, err := stmt.Exec(i, identifier); err != nil {
			return fmt.Errorf("failed to insert identifier: %w", err)
		}
	}

	_, err = tx.Exec(`INSERT INTO run_state (id, last_run) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET last_run = excluded.last_run`,
		record.LastRun.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store last run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
