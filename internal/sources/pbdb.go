// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/taxoref/internal/textextract"
	"github.com/pdiddy/taxoref/pkg/types"
)

// PBDB serves lookups from a local snapshot of Paleobiology Database
// taxonomy records. The snapshot is a SQLite file with one row per taxon;
// it is read fully into memory on first use so repeated lookups during a
// batch run never touch disk.
type PBDB struct {
	Path string

	once    sync.Once
	loadErr error
	records []pbdbRecord
}

// NewPBDB constructs the adapter for the dataset at the given path. The
// file is not opened until the first Lookup.
func NewPBDB(cfg types.SourcesConfig) *PBDB {
	return &PBDB{Path: cfg.DatasetPath}
}

// Name returns the source identifier.
func (s *PBDB) Name() string { return "PBDB" }

// Local marks the adapter as disk-backed, exempt from inter-call delays.
func (s *PBDB) Local() bool { return true }

// Lookup finds the taxon in the local dataset. Matching cascades from
// exact through case-insensitive to substring, so "Enchodus" finds
// "Enchodus petrosus" when no exact row exists.
func (s *PBDB) Lookup(ctx context.Context, name string) (*types.ReferenceCandidate, error) {
	s.once.Do(s.load)
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := s.match(name)
	if rec == nil {
		return nil, nil
	}

	cand := &types.ReferenceCandidate{
		MatchedName:        rec.Name,
		TaxonomicAuthority: rec.Authority,
		Citation:           rec.Citation,
		DOI:                rec.DOI,
		Source:             "PBDB",
		Confidence:         0.6,
	}
	if y := textextract.Year(rec.Authority); y != nil {
		cand.Year = fmt.Sprintf("%d", *y)
	}
	if author := textextract.Author(rec.Authority); author != "" {
		cand.Authors = []string{author}
	}
	return cand, nil
}

func (s *PBDB) match(name string) *pbdbRecord {
	for i := range s.records {
		if s.records[i].Name == name {
			return &s.records[i]
		}
	}
	lower := strings.ToLower(name)
	for i := range s.records {
		if strings.ToLower(s.records[i].Name) == lower {
			return &s.records[i]
		}
	}
	for i := range s.records {
		if strings.Contains(strings.ToLower(s.records[i].Name), lower) {
			return &s.records[i]
		}
	}
	return nil
}

func (s *PBDB) load() {
	if s.Path == "" {
		s.loadErr = fmt.Errorf("no PBDB dataset path configured")
		return
	}

	db, err := sql.Open("sqlite3", s.Path+"?mode=ro")
	if err != nil {
		s.loadErr = fmt.Errorf("opening PBDB dataset: %w", err)
		return
	}
	defer db.Close()

	rows, err := db.Query(`SELECT name, authority, citation, COALESCE(doi, '') FROM taxa`)
	if err != nil {
		s.loadErr = fmt.Errorf("reading PBDB dataset: %w", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var rec pbdbRecord
		if err := rows.Scan(&rec.Name, &rec.Authority, &rec.Citation, &rec.DOI); err != nil {
			s.loadErr = fmt.Errorf("scanning PBDB row: %w", err)
			return
		}
		s.records = append(s.records, rec)
	}
	if err := rows.Err(); err != nil {
		s.loadErr = fmt.Errorf("reading PBDB dataset: %w", err)
	}
}

type pbdbRecord struct {
	Name      string
	Authority string
	Citation  string
	DOI       string
}
