// Package fs provides file-based corpus output and state
// reconstruction.
package fs

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/corpuscrawl/corpuscrawl"
)

// Output file names inside the corpus directory.
const (
	MinCorpusFile  = "corpus_min.jsonl"
	FullCorpusFile = "corpus_full.jsonl"
	ManifestFile   = "manifest.csv"
	StatsFile      = "stats.json"
	TextDir        = "text"
	HTMLDir        = "html"
)

var manifestHeader = []string{"id", "url", "title", "chars"}

// Ensure Writer implements corpuscrawl.CorpusWriter at compile time.
var _ corpuscrawl.CorpusWriter = (*Writer)(nil)

// Writer appends chunk records to the minimal and full JSONL streams,
// maintains the page manifest, and persists stats snapshots. All
// corpus writes are append-only and flushed per record, so a crash
// leaves at most a complete prefix of the intended output. Safe for
// concurrent use; appends are serialized so every row is a complete
// line.
type Writer struct {
	mu       sync.Mutex
	dir      string
	minFile  *os.File
	fullFile *os.File
	manifest *os.File
	csvw     *csv.Writer
	saveText bool
	saveHTML bool
}

// WriterOption configures a Writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	resume   bool
	saveText bool
	saveHTML bool
}

// WithResume opens existing output files for append instead of
// truncating them.
func WithResume(resume bool) WriterOption {
	return func(c *writerConfig) { c.resume = resume }
}

// WithSaveText additionally writes each page's cleaned text under
// text/ for auditing.
func WithSaveText(save bool) WriterOption {
	return func(c *writerConfig) { c.saveText = save }
}

// WithSaveHTML additionally writes each page's raw fetched HTML under
// html/ for auditing.
func WithSaveHTML(save bool) WriterOption {
	return func(c *writerConfig) { c.saveHTML = save }
}

// NewWriter opens the corpus output files in dir, creating the
// directory as needed. Without resume, prior output at the location is
// treated as stale and truncated. Open failures are fatal to the
// caller: they invalidate the durability contract.
func NewWriter(dir string, opts ...WriterOption) (*Writer, error) {
	var cfg writerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if cfg.resume {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	w := &Writer{dir: dir, saveText: cfg.saveText, saveHTML: cfg.saveHTML}

	var err error
	if w.minFile, err = os.OpenFile(filepath.Join(dir, MinCorpusFile), flags, 0644); err != nil {
		return nil, fmt.Errorf("opening %s: %w", MinCorpusFile, err)
	}
	if w.fullFile, err = os.OpenFile(filepath.Join(dir, FullCorpusFile), flags, 0644); err != nil {
		w.minFile.Close()
		return nil, fmt.Errorf("opening %s: %w", FullCorpusFile, err)
	}
	if w.manifest, err = os.OpenFile(filepath.Join(dir, ManifestFile), flags, 0644); err != nil {
		w.minFile.Close()
		w.fullFile.Close()
		return nil, fmt.Errorf("opening %s: %w", ManifestFile, err)
	}
	w.csvw = csv.NewWriter(w.manifest)

	// Header goes in once, on a fresh or empty manifest.
	info, err := w.manifest.Stat()
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("stat %s: %w", ManifestFile, err)
	}
	if info.Size() == 0 {
		if err := w.csvw.Write(manifestHeader); err != nil {
			w.Close()
			return nil, fmt.Errorf("writing manifest header: %w", err)
		}
		w.csvw.Flush()
		if err := w.csvw.Error(); err != nil {
			w.Close()
			return nil, fmt.Errorf("flushing manifest header: %w", err)
		}
	}

	return w, nil
}

// minimalRecord is the reduced corpus row consumed by retrieval
// pipelines that only need text.
type minimalRecord struct {
	ID       string `json:"id"`
	Contents string `json:"contents"`
}

// WriteChunk appends the chunk to both JSONL streams as single,
// complete lines.
func (w *Writer) WriteChunk(rec *corpuscrawl.ChunkRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	minLine, err := json.Marshal(minimalRecord{ID: rec.ID, Contents: rec.Contents})
	if err != nil {
		return fmt.Errorf("encoding minimal record: %w", err)
	}
	fullLine, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding full record: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.minFile.Write(append(minLine, '\n')); err != nil {
		return fmt.Errorf("appending to %s: %w", MinCorpusFile, err)
	}
	if _, err := w.fullFile.Write(append(fullLine, '\n')); err != nil {
		return fmt.Errorf("appending to %s: %w", FullCorpusFile, err)
	}
	return nil
}

// WritePage appends the page's manifest row and, when enabled, the
// cleaned-text audit file.
func (w *Writer) WritePage(page *corpuscrawl.PageRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	row := []string{page.ID(), page.URL, page.Title, strconv.Itoa(page.CharCount)}
	if err := w.csvw.Write(row); err != nil {
		return fmt.Errorf("appending manifest row: %w", err)
	}
	w.csvw.Flush()
	if err := w.csvw.Error(); err != nil {
		return fmt.Errorf("flushing manifest: %w", err)
	}

	if w.saveText {
		if err := w.writeAuditFile(TextDir, page.URL, ".txt", []byte(page.Text)); err != nil {
			return err
		}
	}
	if w.saveHTML {
		if err := w.writeAuditFile(HTMLDir, page.URL, ".html", page.HTML); err != nil {
			return err
		}
	}
	return nil
}

// writeAuditFile writes one per-page audit file under dir using the
// page's URL-derived relative path.
func (w *Writer) writeAuditFile(dir, pageURL, ext string, data []byte) error {
	relPath, err := URLToPath(pageURL, ext)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(w.dir, dir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("creating %s directory: %w", dir, err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return fmt.Errorf("writing %s file: %w", dir, err)
	}
	return nil
}

// WriteStats atomically replaces stats.json: the snapshot is written
// to a temp file and renamed into place, so readers never observe a
// partial snapshot.
func (w *Writer) WriteStats(stats *corpuscrawl.Stats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	tmpPath := filepath.Join(w.dir, StatsFile+".tmp")
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(w.dir, StatsFile)); err != nil {
		return fmt.Errorf("replacing stats: %w", err)
	}
	return nil
}

// Close flushes and closes the output files.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.csvw.Flush()
	var firstErr error
	for _, f := range []*os.File{w.minFile, w.fullFile, w.manifest} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
