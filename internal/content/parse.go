package content

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
)

// Meta is the typed front matter schema for a post.
type Meta struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Draft       bool     `yaml:"draft,omitempty"`
	Slug        string   `yaml:"slug,omitempty"`
	UID         string   `yaml:"uid,omitempty"`
}

// dateLayouts are the accepted front matter date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses a front matter date value.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q (expected ISO-8601)", raw)
}

// Parse converts a raw content file into a Post. defaultSlug is the slug
// derived from the file's location; an explicit slug in front matter wins.
//
// Parse is pure: it never touches the filesystem. Missing front matter,
// malformed YAML, and missing required fields (title, date) are parse errors
// naming the offending file.
func Parse(path string, raw []byte, defaultSlug string) (Post, error) {
	metaRaw, body, had, _, err := frontmatter.Split(raw)
	if err != nil {
		return Post{}, berrors.ParseError(path, err)
	}
	if !had {
		return Post{}, berrors.ParseError(path, fmt.Errorf("missing front matter block"))
	}

	var meta Meta
	if err := yaml.Unmarshal(metaRaw, &meta); err != nil {
		return Post{}, berrors.ParseError(path, err)
	}

	if meta.Title == "" {
		return Post{}, berrors.ParseError(path, fmt.Errorf("missing required field: title"))
	}
	if meta.Date == "" {
		return Post{}, berrors.ParseError(path, fmt.Errorf("missing required field: date"))
	}

	date, err := ParseDate(meta.Date)
	if err != nil {
		return Post{}, berrors.ParseError(path, err)
	}

	slug := meta.Slug
	if slug == "" {
		slug = defaultSlug
	}
	slug = Slugify(slug)
	if slug == "" {
		return Post{}, berrors.ParseError(path, fmt.Errorf("cannot derive a non-empty slug"))
	}

	return Post{
		Title:       meta.Title,
		Date:        date,
		Description: meta.Description,
		Tags:        meta.Tags,
		Draft:       meta.Draft,
		Slug:        slug,
		UID:         meta.UID,
		Body:        body,
		Path:        path,
	}, nil
}
