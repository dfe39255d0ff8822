// Package htmltomarkdown converts extracted content HTML to markdown
// for the readability cleaning mode.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/corpuscrawl/corpuscrawl"
)

// Converter wraps html-to-markdown. The conversion is deterministic
// for a given input, which hash-based dedup depends on.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a Converter with commonmark and table support.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", corpuscrawl.Errorf(corpuscrawl.EINVALID, "empty HTML input")
	}
	return c.conv.ConvertString(html)
}
