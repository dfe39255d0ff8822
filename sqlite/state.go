package sqlite

import (
	"context"
	"fmt"

	"github.com/corpuscrawl/corpuscrawl"
)

// Ensure State implements corpuscrawl.StateStore at compile time.
var _ corpuscrawl.StateStore = (*State)(nil)

// State records visited URLs and written chunk hashes as the crawl
// proceeds, making resume a straight load instead of a re-scan of the
// corpus files. Unlike the output-scanning store it also remembers
// pages that were popped but produced no output, so a resumed run
// never re-fetches them.
type State struct {
	db *DB
}

// NewState creates a State backed by an open DB.
func NewState(db *DB) *State {
	return &State{db: db}
}

// Load returns the persisted crawl state.
func (s *State) Load(ctx context.Context) (*corpuscrawl.CrawlState, error) {
	state := &corpuscrawl.CrawlState{}

	rows, err := s.db.QueryContext(ctx, `SELECT url FROM visited ORDER BY sequence_id`)
	if err != nil {
		return nil, fmt.Errorf("loading visited set: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scanning visited row: %w", err)
		}
		state.Visited = append(state.Visited, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading visited set: %w", err)
	}

	hashRows, err := s.db.QueryContext(ctx, `SELECT hash FROM chunk_hashes`)
	if err != nil {
		return nil, fmt.Errorf("loading dedup index: %w", err)
	}
	defer hashRows.Close()
	for hashRows.Next() {
		var hash string
		if err := hashRows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("scanning hash row: %w", err)
		}
		state.Hashes = append(state.Hashes, hash)
	}
	if err := hashRows.Err(); err != nil {
		return nil, fmt.Errorf("loading dedup index: %w", err)
	}

	var maxSeq *int
	row := s.db.QueryRowContext(ctx, `SELECT MAX(sequence_id) FROM visited`)
	if err := row.Scan(&maxSeq); err != nil {
		return nil, fmt.Errorf("loading sequence counter: %w", err)
	}
	if maxSeq != nil {
		state.NextSequenceID = *maxSeq + 1
	}

	return state, nil
}

// Reset clears all persisted state. A fresh run truncates the corpus
// files, so rows carried over from a prior run would claim output
// that no longer exists.
func (s *State) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM visited`); err != nil {
		return fmt.Errorf("clearing visited set: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunk_hashes`); err != nil {
		return fmt.Errorf("clearing dedup index: %w", err)
	}
	return nil
}

// RecordVisit durably notes a popped URL and its sequence id.
func (s *State) RecordVisit(ctx context.Context, url string, sequenceID int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO visited (url, sequence_id) VALUES (?, ?)`,
		url, sequenceID)
	if err != nil {
		return fmt.Errorf("recording visit: %w", err)
	}
	return nil
}

// RecordHash durably notes a written content digest.
func (s *State) RecordHash(ctx context.Context, digest string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO chunk_hashes (hash) VALUES (?)`,
		digest)
	if err != nil {
		return fmt.Errorf("recording hash: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *State) Close() error {
	return s.db.Close()
}
