// Package ledger records the terminal outcome of every visited URL in a
// SQLite file, one row per URL per run. The ledger is a run artifact for
// post-migration auditing ("which posts were dropped and why"); the scraper
// never reads it back.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Outcome is a URL's terminal state. Every visited URL reaches exactly one.
type Outcome string

const (
	OutcomeAccepted    Outcome = "accepted"
	OutcomeRejected    Outcome = "rejected"
	OutcomeDuplicate   Outcome = "duplicate"
	OutcomeFetchFailed Outcome = "fetch-failed"
)

// Store appends outcome rows to the ledger database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS outcomes (
		run_id TEXT NOT NULL,
		url TEXT NOT NULL,
		outcome TEXT NOT NULL,
		detail TEXT,
		recorded_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one outcome row. detail carries the skip reason or error
// message; empty for accepted records.
func (s *Store) Record(runID uuid.UUID, url string, outcome Outcome, detail string) error {
	query := `
		INSERT INTO outcomes (run_id, url, outcome, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		runID.String(), url, string(outcome), detail,
		time.Now().Truncate(0).Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record outcome for %s: %w", url, err)
	}
	return nil
}

// Summary returns per-outcome counts for a run.
func (s *Store) Summary(runID uuid.UUID) (map[Outcome]int, error) {
	query := `
		SELECT outcome, COUNT(*) FROM outcomes
		WHERE run_id = ?
		GROUP BY outcome
	`

	rows, err := s.db.Query(query, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger summary: %w", err)
	}
	defer rows.Close()

	summary := make(map[Outcome]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan ledger summary: %w", err)
		}
		summary[Outcome(outcome)] = count
	}

	return summary, rows.Err()
}
