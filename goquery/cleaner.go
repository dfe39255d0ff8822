// Package goquery provides the default HTML cleaner: boilerplate tag
// removal, deterministic whitespace normalization, title and hyperlink
// extraction.
package goquery

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/corpuscrawl/corpuscrawl"
	"golang.org/x/net/html"
)

// Ensure Cleaner implements corpuscrawl.Cleaner at compile time.
var _ corpuscrawl.Cleaner = (*Cleaner)(nil)

// boilerplateTags are removed before text extraction.
var boilerplateTags = []string{
	"script", "style", "noscript", "svg", "img", "iframe",
	"button", "form", "nav", "header", "footer", "aside",
}

// blockTags get a trailing newline during text extraction so block
// structure survives into the plain text.
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true,
	"table": true, "tr": true, "section": true, "article": true,
	"main": true, "blockquote": true, "pre": true, "dd": true,
	"dt": true, "figcaption": true,
}

// headingLevels maps heading tags to their markdown marker depth.
var headingLevels = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

// Cleaner strips boilerplate elements and flattens the remaining
// document to plain text. Headings are preserved as #-prefixed marker
// lines for readability of the corpus.
type Cleaner struct{}

// NewCleaner creates a new Cleaner.
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean parses the page, extracts links and title from the full
// document, removes boilerplate containers, and normalizes whitespace.
// Unparsable input yields an EINVALID error; parsable non-HTML bytes
// simply produce empty text, which the caller treats as a skip.
func (c *Cleaner) Clean(rawHTML []byte, pageURL string) (*corpuscrawl.CleanResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rawHTML))
	if err != nil {
		return nil, corpuscrawl.Errorf(corpuscrawl.EINVALID, "parsing HTML: %v", err)
	}

	// Links come from the full document, before boilerplate removal,
	// so navigation links still feed discovery.
	links, err := ExtractLinks(rawHTML, pageURL)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find(strings.Join(boilerplateTags, ", ")).Remove()

	var b strings.Builder
	for _, node := range doc.Selection.Nodes {
		flattenText(node, &b)
	}

	return &corpuscrawl.CleanResult{
		Text:  corpuscrawl.NormalizeText(b.String()),
		Title: title,
		Links: links,
	}, nil
}

// flattenText walks the node tree, writing text content with newlines
// after block elements and markdown-style markers around headings.
func flattenText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type != html.ElementNode && n.Type != html.DocumentNode {
		return
	}

	if n.Type == html.ElementNode {
		if n.Data == "br" {
			b.WriteString("\n")
			return
		}
		if lvl, ok := headingLevels[n.Data]; ok {
			b.WriteString("\n")
			b.WriteString(strings.Repeat("#", lvl))
			b.WriteString(" ")
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				flattenText(child, b)
			}
			b.WriteString("\n")
			return
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		flattenText(child, b)
	}

	if n.Type == html.ElementNode && blockTags[n.Data] {
		b.WriteString("\n")
	}
}
