// Package frontmatter handles the `---` delimited YAML metadata block that
// prefixes post files: splitting it from the body, parsing it, and writing it
// back without disturbing the document's newline shape.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a frontmatter
// block but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Style records the newline convention of a document so a rewrite keeps the
// file byte-stable aside from the edited fields. YAML key order and quoting
// are not preserved.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Split separates the YAML metadata from the Markdown body. A document that
// does not open with a delimiter line is all body: had is false and body is
// the input unchanged.
func Split(content []byte) (meta []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	delim := []byte("---" + style.Newline)

	if !bytes.HasPrefix(content, delim) {
		return nil, content, false, style, nil
	}
	rest := content[len(delim):]

	// An immediately repeated delimiter is an empty metadata block.
	if bytes.HasPrefix(rest, delim) {
		return []byte{}, rest[len(delim):], true, style, nil
	}

	end := bytes.Index(rest, []byte(style.Newline+"---"+style.Newline))
	if end < 0 {
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	meta = rest[:end+len(style.Newline)]
	body = rest[end+len(style.Newline)+len(delim):]
	return meta, body, true, style, nil
}

// Join rebuilds a document from metadata and body. With had false the
// document never had a frontmatter block and body passes through unchanged.
func Join(meta []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}
	delim := "---" + nl

	var b bytes.Buffer
	b.Grow(2*len(delim) + len(meta) + len(body))
	b.WriteString(delim)
	b.Write(meta)
	b.WriteString(delim)
	b.Write(body)
	return b.Bytes()
}

// ParseYAML decodes a raw metadata block (no delimiters) into a map. Empty
// input yields an empty, non-nil map.
func ParseYAML(meta []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(meta) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(meta, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// detectStyle inspects the first line break to pick the newline convention.
func detectStyle(content []byte) Style {
	style := Style{Newline: "\n"}
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		style.Newline = "\r\n"
	}
	style.HasTrailingNewline = len(content) > 0 && content[len(content)-1] == '\n'
	return style
}
