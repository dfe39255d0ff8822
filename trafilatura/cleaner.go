// Package trafilatura provides the readability cleaning mode: main
// content extraction via go-trafilatura followed by markdown
// conversion. Compared with the tag-stripping default it discards
// sidebars and chrome more aggressively, at the cost of occasionally
// dropping short reference pages.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/corpuscrawl/corpuscrawl"
	"github.com/corpuscrawl/corpuscrawl/goquery"
	"github.com/corpuscrawl/corpuscrawl/htmltomarkdown"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Cleaner implements corpuscrawl.Cleaner at compile time.
var _ corpuscrawl.Cleaner = (*Cleaner)(nil)

// Cleaner extracts a page's main content and converts it to markdown.
// Link discovery still scans the full document so boilerplate removal
// never hides navigation from the frontier.
type Cleaner struct {
	conv *htmltomarkdown.Converter
}

// NewCleaner creates a new readability-mode Cleaner.
func NewCleaner() *Cleaner {
	return &Cleaner{conv: htmltomarkdown.NewConverter()}
}

// Clean extracts main content, converts it to markdown, and applies
// the shared whitespace normalization. Pages where trafilatura finds
// no main content yield empty text, which the caller treats as a skip.
func (c *Cleaner) Clean(rawHTML []byte, pageURL string) (*corpuscrawl.CleanResult, error) {
	links, err := goquery.ExtractLinks(rawHTML, pageURL)
	if err != nil {
		return nil, err
	}

	result, err := trafilatura.Extract(bytes.NewReader(rawHTML), trafilatura.Options{
		EnableFallback: true,
	})
	if err != nil {
		// No extractable content is a skip, not a crawl failure.
		return &corpuscrawl.CleanResult{Links: links}, nil
	}

	var text string
	if result.ContentNode != nil {
		contentHTML, err := renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
		markdown, err := c.conv.Convert(contentHTML)
		if err != nil {
			if corpuscrawl.ErrorCode(err) == corpuscrawl.EINVALID {
				return &corpuscrawl.CleanResult{Links: links, Title: result.Metadata.Title}, nil
			}
			return nil, err
		}
		text = corpuscrawl.NormalizeText(markdown)
	}

	return &corpuscrawl.CleanResult{
		Text:  text,
		Title: strings.TrimSpace(result.Metadata.Title),
		Links: links,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
