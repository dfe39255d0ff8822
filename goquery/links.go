package goquery

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/corpuscrawl/corpuscrawl"
)

// ExtractLinks returns all hyperlink targets in the document, resolved
// against the page URL. Relative links become absolute; mailto:,
// javascript:, tel: and data: targets are dropped. Duplicates are
// preserved in document order; the frontier's admission filter owns
// deduplication.
func ExtractLinks(rawHTML []byte, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, corpuscrawl.Errorf(corpuscrawl.EINVALID, "invalid page URL %q: %v", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rawHTML))
	if err != nil {
		return nil, corpuscrawl.Errorf(corpuscrawl.EINVALID, "parsing HTML: %v", err)
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || isNonHTTPLink(href) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, base.ResolveReference(ref).String())
	})
	return links, nil
}

// isNonHTTPLink reports whether an href uses a scheme that can never
// be crawled.
func isNonHTTPLink(href string) bool {
	lower := strings.ToLower(href)
	for _, prefix := range []string{"mailto:", "javascript:", "tel:", "data:", "ftp:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
