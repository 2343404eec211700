// Package render turns the loaded post set plus a theme into the full set of
// output pages. Rendering is pure: given identical posts, theme, and site
// metadata it produces byte-identical pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
	"git.home.luguber.info/inful/blogbuilder/internal/theme"
)

// Page is a rendered output artifact: a slash-separated path relative to the
// output root plus its HTML bytes.
type Page struct {
	Path string
	Data []byte
}

// Renderer renders posts through a theme's templates.
type Renderer struct {
	site     SiteInfo
	theme    *theme.Theme
	conv     *markdown.Converter
	pageSize int
}

// New constructs a renderer. pageSize controls home listing pagination.
func New(site SiteInfo, th *theme.Theme, pageSize int) *Renderer {
	if site.BaseURL == "" {
		site.BaseURL = "/"
	}
	if !strings.HasSuffix(site.BaseURL, "/") {
		site.BaseURL += "/"
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return &Renderer{
		site:     site,
		theme:    th,
		conv:     markdown.NewConverter(),
		pageSize: pageSize,
	}
}

// Render produces every output page for the given posts. With includeDrafts
// false (a public build) drafts are excluded from all pages; with it true
// (a preview build) drafts render and list like any other post.
//
// Any template or markdown failure aborts rendering; unlike load errors
// these indicate a structural problem, not a per-post content issue.
func (r *Renderer) Render(posts []content.Post, includeDrafts bool) ([]Page, error) {
	visible := make([]content.Post, 0, len(posts))
	for _, p := range posts {
		if p.Draft && !includeDrafts {
			continue
		}
		visible = append(visible, p)
	}
	content.SortPosts(visible)

	views := make([]PostView, 0, len(visible))
	for _, p := range visible {
		v, err := r.postView(p)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}

	var pages []Page

	for _, v := range views {
		page, err := r.renderPost(v)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	tagPages, err := r.renderTags(visible, views)
	if err != nil {
		return nil, err
	}
	pages = append(pages, tagPages...)

	homePages, err := r.renderHome(views)
	if err != nil {
		return nil, err
	}
	pages = append(pages, homePages...)

	return pages, nil
}

// postView converts a post's Markdown body and computes its permalink.
func (r *Renderer) postView(p content.Post) (PostView, error) {
	html, err := r.conv.Convert(p.Body)
	if err != nil {
		return PostView{}, berrors.RenderFailed(p.Path, err)
	}
	return PostView{
		Title:       p.Title,
		Date:        p.Date,
		Description: p.Description,
		Tags:        p.Tags,
		Draft:       p.Draft,
		Slug:        p.Slug,
		Permalink:   r.site.BaseURL + "posts/" + p.Slug + "/",
		Content:     template.HTML(html),
	}, nil
}

func (r *Renderer) renderPost(v PostView) (Page, error) {
	data := PageData{Site: r.site, Post: &v}
	out, err := r.execute(theme.KindPost, data)
	if err != nil {
		return Page{}, berrors.RenderFailed(v.Slug, err)
	}
	return Page{Path: path.Join("posts", v.Slug, "index.html"), Data: out}, nil
}

// renderTags produces one listing page per tag plus the tags index, in
// alphabetical tag order for deterministic output.
func (r *Renderer) renderTags(posts []content.Post, views []PostView) ([]Page, error) {
	viewBySlug := make(map[string]PostView, len(views))
	for _, v := range views {
		viewBySlug[v.Slug] = v
	}

	groups := content.ByTag(posts)
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var pages []Page
	summaries := make([]TagSummary, 0, len(names))
	for _, name := range names {
		tagSlug := content.Slugify(name)
		if tagSlug == "" {
			return nil, berrors.RenderFailed("tags", fmt.Errorf("tag %q yields an empty path segment", name))
		}

		tagViews := make([]PostView, 0, len(groups[name]))
		for _, p := range groups[name] {
			tagViews = append(tagViews, viewBySlug[p.Slug])
		}

		data := PageData{Site: r.site, Tag: name, Posts: tagViews}
		out, err := r.execute(theme.KindTag, data)
		if err != nil {
			return nil, berrors.RenderFailed("tags/"+tagSlug, err)
		}
		pages = append(pages, Page{Path: path.Join("tags", tagSlug, "index.html"), Data: out})

		summaries = append(summaries, TagSummary{
			Name:  name,
			Count: len(tagViews),
			URL:   r.site.BaseURL + "tags/" + tagSlug + "/",
		})
	}

	data := PageData{Site: r.site, Tags: summaries}
	out, err := r.execute(theme.KindTagsIndex, data)
	if err != nil {
		return nil, berrors.RenderFailed("tags", err)
	}
	pages = append(pages, Page{Path: path.Join("tags", "index.html"), Data: out})

	return pages, nil
}

// renderHome paginates the full listing: page 1 at index.html, page N at
// page/N/index.html. An empty store still yields a home page.
func (r *Renderer) renderHome(views []PostView) ([]Page, error) {
	total := (len(views) + r.pageSize - 1) / r.pageSize
	if total == 0 {
		total = 1
	}

	var pages []Page
	for n := 1; n <= total; n++ {
		start := (n - 1) * r.pageSize
		end := min(start+r.pageSize, len(views))

		pg := &Pagination{Current: n, Total: total}
		if n > 1 {
			pg.PrevURL = r.homeURL(n - 1)
		}
		if n < total {
			pg.NextURL = r.homeURL(n + 1)
		}

		data := PageData{Site: r.site, Posts: views[start:end], Pagination: pg}
		out, err := r.execute(theme.KindHome, data)
		if err != nil {
			return nil, berrors.RenderFailed(r.homePath(n), err)
		}
		pages = append(pages, Page{Path: r.homePath(n), Data: out})
	}
	return pages, nil
}

func (r *Renderer) homePath(n int) string {
	if n == 1 {
		return "index.html"
	}
	return path.Join("page", fmt.Sprint(n), "index.html")
}

func (r *Renderer) homeURL(n int) string {
	if n == 1 {
		return r.site.BaseURL
	}
	return fmt.Sprintf("%spage/%d/", r.site.BaseURL, n)
}

func (r *Renderer) execute(kind theme.PageKind, data PageData) ([]byte, error) {
	tmpl, err := r.theme.Template(kind)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
