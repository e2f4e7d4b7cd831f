// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists resolved references and resolver candidates in a
// SQLite database. Lookups against external registries are slow and rate
// limited; anything resolved once should never be fetched again.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/taxoref/pkg/types"
)

const dbFile = "results.db"

// Store manages the cache database. The results table is append-only;
// a lookup returns the most recent row for a term, compared
// case-insensitively.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache at the configured path. An empty path
// selects ~/.cache/taxoref/results.db.
func Open(cfg types.CacheConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		path = filepath.Join(home, ".cache", "taxoref", dbFile)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// OpenMemory opens an in-memory cache, for tests.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS results (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			search_term TEXT NOT NULL,
			taxonomic_authority TEXT,
			year INTEGER,
			author TEXT,
			reference TEXT,
			doi TEXT,
			paper_link TEXT,
			source TEXT,
			year_mismatch INTEGER NOT NULL DEFAULT 0,
			timestamp TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_term ON results(search_term COLLATE NOCASE)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT NOT NULL,
			payload TEXT NOT NULL,
			timestamp TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_key ON candidates(key)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Store appends a resolved reference. Earlier rows for the same term are
// kept; Lookup prefers the newest.
func (s *Store) Store(ref *types.ResolvedReference) error {
	var year any
	if ref.Year != nil {
		year = *ref.Year
	}
	mismatch := 0
	if ref.YearMismatch {
		mismatch = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO results
		 (search_term, taxonomic_authority, year, author, reference, doi, paper_link, source, year_mismatch, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ref.SearchTerm, ref.Authority, year, ref.Author, ref.Reference,
		ref.DOI, ref.PaperLink, ref.Source, mismatch, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storing result: %w", err)
	}
	return nil
}

// Lookup returns the most recent result for a term, matched
// case-insensitively, with FromCache set. A read error counts as a miss;
// the cache never blocks a lookup.
func (s *Store) Lookup(term string) (*types.ResolvedReference, bool) {
	row := s.db.QueryRow(
		`SELECT search_term, taxonomic_authority, year, author, reference, doi, paper_link, source, year_mismatch
		 FROM results WHERE search_term = ? COLLATE NOCASE
		 ORDER BY rowid DESC LIMIT 1`, term)

	var ref types.ResolvedReference
	var year sql.NullInt64
	var mismatch int
	err := row.Scan(&ref.SearchTerm, &ref.Authority, &year, &ref.Author,
		&ref.Reference, &ref.DOI, &ref.PaperLink, &ref.Source, &mismatch)
	if err != nil {
		return nil, false
	}
	if year.Valid {
		y := int(year.Int64)
		ref.Year = &y
	}
	ref.YearMismatch = mismatch != 0
	ref.FromCache = true
	return &ref, true
}

// PutCandidate stores a resolver candidate as JSON under its strategy key.
func (s *Store) PutCandidate(key string, cand *types.ReferenceCandidate) error {
	payload, err := json.Marshal(cand)
	if err != nil {
		return fmt.Errorf("encoding candidate: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO candidates (key, payload, timestamp) VALUES (?, ?, ?)`,
		key, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storing candidate: %w", err)
	}
	return nil
}

// GetCandidate returns the most recent candidate stored under the key.
// Undecodable payloads count as a miss.
func (s *Store) GetCandidate(key string) (*types.ReferenceCandidate, bool) {
	row := s.db.QueryRow(
		`SELECT payload FROM candidates WHERE key = ? ORDER BY rowid DESC LIMIT 1`, key)
	var payload string
	if err := row.Scan(&payload); err != nil {
		return nil, false
	}
	var cand types.ReferenceCandidate
	if err := json.Unmarshal([]byte(payload), &cand); err != nil {
		return nil, false
	}
	return &cand, true
}

// Clear deletes every cached result and candidate.
func (s *Store) Clear() error {
	for _, table := range []string{"results", "candidates"} {
		if _, err := s.db.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// Stats summarizes cache contents.
type Stats struct {
	Results    int                `json:"results"`
	Candidates int                `json:"candidates"`
	BySource   map[string]int     `json:"by_source"`
	Recent     []types.CacheEntry `json:"recent"`
}

// Stats reports row counts, per-source counts, and the ten most recently
// cached search terms.
func (s *Store) Stats() (*Stats, error) {
	st := &Stats{BySource: map[string]int{}}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&st.Results); err != nil {
		return nil, fmt.Errorf("counting results: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM candidates`).Scan(&st.Candidates); err != nil {
		return nil, fmt.Errorf("counting candidates: %w", err)
	}

	rows, err := s.db.Query(`SELECT source, COUNT(*) FROM results WHERE source != '' GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("counting by source: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("scanning source count: %w", err)
		}
		st.BySource[source] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("counting by source: %w", err)
	}

	recent, err := s.db.Query(
		`SELECT search_term, taxonomic_authority, year, author, reference, doi, paper_link, source, year_mismatch, timestamp
		 FROM results ORDER BY rowid DESC LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("listing recent entries: %w", err)
	}
	defer recent.Close()
	for recent.Next() {
		var e types.CacheEntry
		var year sql.NullInt64
		var mismatch int
		var ts string
		if err := recent.Scan(&e.SearchTerm, &e.Authority, &year, &e.Author,
			&e.Reference, &e.DOI, &e.PaperLink, &e.Source, &mismatch, &ts); err != nil {
			return nil, fmt.Errorf("scanning recent entry: %w", err)
		}
		if year.Valid {
			y := int(year.Int64)
			e.Year = &y
		}
		e.YearMismatch = mismatch != 0
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Timestamp = t
		}
		st.Recent = append(st.Recent, e)
	}
	if err := recent.Err(); err != nil {
		return nil, fmt.Errorf("listing recent entries: %w", err)
	}
	return st, nil
}
