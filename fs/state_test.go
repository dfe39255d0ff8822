package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/corpuscrawl/corpuscrawl"
	"github.com/corpuscrawl/corpuscrawl/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure State implements corpuscrawl.StateStore.
var _ corpuscrawl.StateStore = (*fs.State)(nil)

func TestState_Load_empty_directory_yields_empty_state(t *testing.T) {
	t.Parallel()

	s := fs.NewState(t.TempDir())
	state, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, state.Visited)
	assert.Empty(t, state.Hashes)
	assert.Equal(t, 0, state.NextSequenceID)
}

func TestState_Load_reconstructs_from_prior_output(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// Produce output the way a crawl would.
	w, err := fs.NewWriter(dir)
	require.NoError(t, err)
	require.NoError(t, w.WriteChunk(chunk("page-0", "https://example.com/docs/", "root text", "hash-root")))
	require.NoError(t, w.WritePage(&corpuscrawl.PageRecord{SequenceID: 0, URL: "https://example.com/docs/", CharCount: 9}))
	require.NoError(t, w.WriteChunk(chunk("page-2-c0", "https://example.com/docs/a", "a text part one", "hash-a0")))
	require.NoError(t, w.WriteChunk(chunk("page-2-c1", "https://example.com/docs/a", "a text part two", "hash-a1")))
	require.NoError(t, w.WritePage(&corpuscrawl.PageRecord{SequenceID: 2, URL: "https://example.com/docs/a", CharCount: 30}))
	require.NoError(t, w.Close())

	s := fs.NewState(dir)
	state, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://example.com/docs/",
		"https://example.com/docs/a",
	}, state.Visited)
	assert.Equal(t, []string{"hash-root", "hash-a0", "hash-a1"}, state.Hashes)
	assert.Equal(t, 3, state.NextSequenceID, "next id follows the highest seen")
}

func TestState_Load_tolerates_torn_final_line(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	w, err := fs.NewWriter(dir)
	require.NoError(t, err)
	require.NoError(t, w.WriteChunk(chunk("page-0", "https://example.com/docs/", "good line", "hash-0")))
	require.NoError(t, w.Close())

	// Simulate a crash mid-append.
	f, err := os.OpenFile(filepath.Join(dir, fs.FullCorpusFile), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"id":"page-1","url":"https://example.com/docs/a","titl`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	s := fs.NewState(dir)
	state, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"hash-0"}, state.Hashes)
	assert.Equal(t, 1, state.NextSequenceID)
}

func TestState_record_operations_are_noops(t *testing.T) {
	t.Parallel()

	s := fs.NewState(t.TempDir())
	ctx := context.Background()

	assert.NoError(t, s.RecordVisit(ctx, "https://example.com/docs/", 0))
	assert.NoError(t, s.RecordHash(ctx, "abc"))
	assert.NoError(t, s.Close())
}
