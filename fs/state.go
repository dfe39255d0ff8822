package fs

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/corpuscrawl/corpuscrawl"
)

// Ensure State implements corpuscrawl.StateStore at compile time.
var _ corpuscrawl.StateStore = (*State)(nil)

// State reconstructs crawl state by re-scanning prior output: visited
// URLs come from the manifest and written hashes from the full corpus
// stream. The corpus files are themselves the durable record, so
// RecordVisit and RecordHash are no-ops.
type State struct {
	dir string
}

// NewState creates a State that scans the given corpus directory.
func NewState(dir string) *State {
	return &State{dir: dir}
}

// Load scans prior output. A missing file yields an empty state, not
// an error: a fresh directory is a valid starting point.
func (s *State) Load(ctx context.Context) (*corpuscrawl.CrawlState, error) {
	state := &corpuscrawl.CrawlState{}

	visited, err := s.scanManifest()
	if err != nil {
		return nil, err
	}
	state.Visited = visited

	hashes, nextSeq, err := s.scanCorpus(ctx)
	if err != nil {
		return nil, err
	}
	state.Hashes = hashes
	state.NextSequenceID = nextSeq

	return state, nil
}

// scanManifest reads the url column of manifest.csv.
func (s *State) scanManifest() ([]string, error) {
	f, err := os.Open(filepath.Join(s.dir, ManifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var visited []string
	first := true
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading manifest: %w", err)
		}
		if first {
			first = false
			if len(row) > 0 && row[0] == "id" {
				continue
			}
		}
		if len(row) >= 2 && row[1] != "" {
			visited = append(visited, row[1])
		}
	}
	return visited, nil
}

// fullRow is the subset of a full corpus line needed for resume.
type fullRow struct {
	ID   string `json:"id"`
	Hash string `json:"hash"`
}

// scanCorpus reads corpus_full.jsonl, collecting written hashes and
// the highest page sequence id seen.
func (s *State) scanCorpus(ctx context.Context) ([]string, int, error) {
	f, err := os.Open(filepath.Join(s.dir, FullCorpusFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	var hashes []string
	maxSeq := -1

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row fullRow
		if err := json.Unmarshal(line, &row); err != nil {
			// A torn final line from a crash is expected; later
			// appends remain valid JSONL.
			continue
		}
		if row.Hash != "" {
			hashes = append(hashes, row.Hash)
		}
		if seq, ok := parseSequenceID(row.ID); ok && seq > maxSeq {
			maxSeq = seq
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scanning corpus: %w", err)
	}
	return hashes, maxSeq + 1, nil
}

// parseSequenceID extracts N from "page-N" or "page-N-cM".
func parseSequenceID(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "page-")
	if !ok {
		return 0, false
	}
	if idx := strings.Index(rest, "-c"); idx >= 0 {
		rest = rest[:idx]
	}
	seq, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return seq, true
}

// RecordVisit is a no-op: visits are derivable from the manifest.
func (s *State) RecordVisit(ctx context.Context, url string, sequenceID int) error {
	return nil
}

// RecordHash is a no-op: hashes are derivable from the corpus stream.
func (s *State) RecordHash(ctx context.Context, digest string) error {
	return nil
}

// Close releases resources. A no-op for the scanning store.
func (s *State) Close() error {
	return nil
}
