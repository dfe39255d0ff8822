package corpuscrawl

// SplitChunks splits cleaned text into consecutive windows of size
// characters, each subsequent window starting size-overlap characters
// after the previous one. The final chunk may be shorter; together the
// chunks cover the full text. A size of 0 returns the whole text as a
// single chunk. An overlap >= size is treated as 0. Empty text yields
// no chunks.
//
// Windows are measured in runes so multi-byte text never splits inside
// a character.
func SplitChunks(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	var chunks []string
	for start := 0; ; start += step {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// BuildChunks turns a page's text into chunk records with ids and
// provenance filled in. Hashes are assigned by the caller.
func BuildChunks(page *PageRecord, size, overlap int) []ChunkRecord {
	parts := SplitChunks(page.Text, size, overlap)
	records := make([]ChunkRecord, 0, len(parts))
	for i, contents := range parts {
		records = append(records, ChunkRecord{
			ID:         ChunkID(page.SequenceID, i, len(parts)),
			URL:        page.URL,
			Title:      page.Title,
			ChunkIndex: i,
			ChunkCount: len(parts),
			Contents:   contents,
		})
	}
	return records
}
