// Package markdown converts post bodies to HTML and extracts link
// destinations for content checking.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Converter renders Markdown bodies to HTML.
//
// The converter is deterministic: identical input bytes produce identical
// output bytes, which the build relies on for idempotent output trees.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter constructs a converter with GFM tables/strikethrough/autolinks
// and stable auto-generated heading IDs.
func NewConverter() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

// Convert renders a Markdown body (front matter already removed) to HTML.
func (c *Converter) Convert(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
