package render

import (
	"html/template"
	"time"
)

// SiteInfo is the site-level metadata exposed to every template.
type SiteInfo struct {
	Title       string
	Author      string
	Description string
	BaseURL     string
	Params      map[string]any
}

// PostView is a post as seen by templates: metadata plus converted HTML.
type PostView struct {
	Title       string
	Date        time.Time
	Description string
	Tags        []string
	Draft       bool
	Slug        string
	Permalink   string
	Content     template.HTML
}

// TagSummary is one entry on the tags index page.
type TagSummary struct {
	Name  string
	Count int
	URL   string
}

// Pagination describes the home listing's position within its page chunks.
type Pagination struct {
	Current int
	Total   int
	PrevURL string
	NextURL string
}

// PageData is the root template context. Fields not applicable to a page
// kind are left zero; templates only reach for what their kind provides.
type PageData struct {
	Site       SiteInfo
	Post       *PostView    // post pages
	Posts      []PostView   // home and tag listings
	Tag        string       // tag pages
	Tags       []TagSummary // tags index
	Pagination *Pagination  // paginated home pages
}
