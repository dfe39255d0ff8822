package corpuscrawl

import "fmt"

// PageRecord is a successfully fetched and cleaned page. It is created
// once per page and read-only thereafter; the CorpusWriter emits one
// manifest row for it the first time one of its chunks is written.
type PageRecord struct {
	// SequenceID is the monotonic page counter assigned when the URL
	// was popped from the frontier. IDs are never reused, even for
	// pages that are later skipped or fail.
	SequenceID int

	URL       string
	Title     string
	Text      string
	CharCount int

	// HTML holds the raw fetched document for the html/ audit trail.
	HTML []byte
}

// ID returns the page identifier used in the manifest.
func (p *PageRecord) ID() string {
	return fmt.Sprintf("page-%d", p.SequenceID)
}

// ChunkRecord is the unit of corpus output: a contiguous slice of a
// page's cleaned text plus provenance metadata. Written at most once,
// subject to deduplication.
type ChunkRecord struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	ChunkIndex int    `json:"chunk_index"`
	ChunkCount int    `json:"chunk_count"`
	Contents   string `json:"contents"`
	Hash       string `json:"hash"`
}

// ChunkID returns the record identifier for a chunk. Single-chunk pages
// use the bare page id; multi-chunk pages append the chunk index.
func ChunkID(sequenceID, index, count int) string {
	if count > 1 {
		return fmt.Sprintf("page-%d-c%d", sequenceID, index)
	}
	return fmt.Sprintf("page-%d", sequenceID)
}

// Validate returns an error if the chunk record is not writable.
func (c *ChunkRecord) Validate() error {
	if c.ID == "" {
		return Errorf(EINVALID, "chunk id required")
	}
	if c.URL == "" {
		return Errorf(EINVALID, "chunk URL required")
	}
	if c.Hash == "" {
		return Errorf(EINVALID, "chunk hash required")
	}
	return nil
}
