package mock

import "github.com/corpuscrawl/corpuscrawl"

var _ corpuscrawl.CorpusWriter = (*CorpusWriter)(nil)

// CorpusWriter is a mock implementation of corpuscrawl.CorpusWriter.
type CorpusWriter struct {
	WriteChunkFn func(rec *corpuscrawl.ChunkRecord) error
	WritePageFn  func(page *corpuscrawl.PageRecord) error
	WriteStatsFn func(stats *corpuscrawl.Stats) error
	CloseFn      func() error
}

func (w *CorpusWriter) WriteChunk(rec *corpuscrawl.ChunkRecord) error {
	return w.WriteChunkFn(rec)
}

func (w *CorpusWriter) WritePage(page *corpuscrawl.PageRecord) error {
	if w.WritePageFn == nil {
		return nil
	}
	return w.WritePageFn(page)
}

func (w *CorpusWriter) WriteStats(stats *corpuscrawl.Stats) error {
	if w.WriteStatsFn == nil {
		return nil
	}
	return w.WriteStatsFn(stats)
}

func (w *CorpusWriter) Close() error {
	if w.CloseFn == nil {
		return nil
	}
	return w.CloseFn()
}
