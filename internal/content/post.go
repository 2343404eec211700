// Package content loads the post store: Markdown files with YAML front
// matter, one file or bundle directory per post, plus their sibling assets.
package content

import (
	"sort"
	"time"
)

// Asset is a non-markdown file that belongs to a post bundle (images etc.).
// It is copied verbatim next to the rendered post page.
type Asset struct {
	Path         string // absolute path on disk
	RelativePath string // path relative to the post bundle directory
}

// Post is a single blog entry parsed from a content file.
//
// Posts are immutable after load; the renderer treats the post set as
// read-only.
type Post struct {
	Title       string
	Date        time.Time
	Description string
	Tags        []string
	Draft       bool
	Slug        string
	UID         string
	Body        []byte // Markdown body, front matter removed
	Path        string // source file path, for error reporting
	Assets      []Asset
}

// SortPosts orders posts date-descending, ties broken by slug ascending so
// repeated builds produce identical listings.
func SortPosts(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
}

// Public returns the subset of posts visible in public listings (non-drafts),
// already sorted.
func Public(posts []Post) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if !p.Draft {
			out = append(out, p)
		}
	}
	SortPosts(out)
	return out
}

// ByTag groups posts by tag, each group date-descending. Draft visibility is
// the caller's concern: pass only the posts that should be listed.
func ByTag(posts []Post) map[string][]Post {
	groups := make(map[string][]Post)
	for _, p := range posts {
		for _, tag := range p.Tags {
			groups[tag] = append(groups[tag], p)
		}
	}
	for tag := range groups {
		SortPosts(groups[tag])
	}
	return groups
}
