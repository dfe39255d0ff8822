package corpuscrawl

import (
	"regexp"
	"strings"
)

// CleanResult holds the output of cleaning a fetched page.
type CleanResult struct {
	// Text is the cleaned plain text. Empty for non-HTML input; the
	// caller treats empty text as a skip.
	Text string

	// Title is the document title, or "" if absent.
	Title string

	// Links are all hyperlink targets found in the document, resolved
	// to absolute URLs. Extracted from the full document, independent
	// of boilerplate removal.
	Links []string
}

// Cleaner strips boilerplate markup and normalizes raw page bytes into
// plain text. Cleaning is deterministic: the same input bytes produce
// the same output text, which hash-based dedup depends on.
type Cleaner interface {
	Clean(html []byte, pageURL string) (*CleanResult, error)
}

var (
	spaceRunRE   = regexp.MustCompile(`[ \t]+`)
	lineEdgeRE   = regexp.MustCompile(`(?m)^[ \t]+|[ \t]+$`)
	newlineRunRE = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText applies the fixed whitespace normalization rule shared
// by all cleaners: runs of spaces and tabs collapse to a single space,
// line edges are trimmed, and runs of three or more newlines collapse
// to a blank line.
func NormalizeText(s string) string {
	s = spaceRunRE.ReplaceAllString(s, " ")
	s = lineEdgeRE.ReplaceAllString(s, "")
	s = newlineRunRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
