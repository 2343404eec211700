package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/theme"
)

func testSite() SiteInfo {
	return SiteInfo{Title: "Test Blog", Author: "Tester", BaseURL: "/"}
}

func mkPost(t *testing.T, slug, date string, tags []string, draft bool) content.Post {
	t.Helper()
	d, err := content.ParseDate(date)
	require.NoError(t, err)
	return content.Post{
		Title: "Post " + slug,
		Date:  d,
		Tags:  tags,
		Draft: draft,
		Slug:  slug,
		Body:  []byte("# " + slug + "\n\nbody of " + slug + "\n"),
		Path:  "posts/" + slug + ".md",
	}
}

func pageMap(pages []Page) map[string][]byte {
	m := make(map[string][]byte, len(pages))
	for _, p := range pages {
		m[p.Path] = p.Data
	}
	return m
}

func TestRender_EmptyStore_HomeOnlyNoTagPages(t *testing.T) {
	r := New(testSite(), theme.Builtin(), 10)

	pages, err := r.Render(nil, false)
	require.NoError(t, err)

	m := pageMap(pages)
	require.Contains(t, m, "index.html")
	require.Contains(t, string(m["index.html"]), "Nothing here yet.")
	for path := range m {
		if strings.HasPrefix(path, "tags/") {
			require.Equal(t, "tags/index.html", path, "no per-tag pages expected")
		}
	}
}

func TestRender_HomeOrder_DateDescending(t *testing.T) {
	posts := []content.Post{
		mkPost(t, "middle", "2019-12-05", nil, false),
		mkPost(t, "newest", "2021-07-08", nil, false),
		mkPost(t, "oldest", "2019-06-25", nil, false),
	}
	r := New(testSite(), theme.Builtin(), 10)

	pages, err := r.Render(posts, false)
	require.NoError(t, err)

	home := string(pageMap(pages)["index.html"])
	iNew := strings.Index(home, "/posts/newest/")
	iMid := strings.Index(home, "/posts/middle/")
	iOld := strings.Index(home, "/posts/oldest/")
	require.True(t, iNew >= 0 && iMid >= 0 && iOld >= 0)
	require.Less(t, iNew, iMid)
	require.Less(t, iMid, iOld)
}

func TestRender_TagPages_SpecScenario(t *testing.T) {
	posts := []content.Post{
		mkPost(t, "first", "2021-07-08", []string{"swift", "engineering"}, false),
		mkPost(t, "second", "2019-12-05", []string{"swift"}, false),
	}
	r := New(testSite(), theme.Builtin(), 10)

	pages, err := r.Render(posts, false)
	require.NoError(t, err)
	m := pageMap(pages)

	swift := string(m["tags/swift/index.html"])
	require.Contains(t, swift, "/posts/first/")
	require.Contains(t, swift, "/posts/second/")
	require.Less(t, strings.Index(swift, "/posts/first/"), strings.Index(swift, "/posts/second/"))

	engineering := string(m["tags/engineering/index.html"])
	require.Contains(t, engineering, "/posts/first/")
	require.NotContains(t, engineering, "/posts/second/")

	index := string(m["tags/index.html"])
	require.Contains(t, index, "swift")
	require.Contains(t, index, "(2)")
}

func TestRender_Drafts_ExcludedPubliclyIncludedInPreview(t *testing.T) {
	posts := []content.Post{
		mkPost(t, "live", "2021-07-08", []string{"swift"}, false),
		mkPost(t, "wip", "2021-07-09", []string{"swift"}, true),
	}
	r := New(testSite(), theme.Builtin(), 10)

	public, err := r.Render(posts, false)
	require.NoError(t, err)
	pm := pageMap(public)
	require.NotContains(t, pm, "posts/wip/index.html")
	require.NotContains(t, string(pm["index.html"]), "/posts/wip/")
	require.NotContains(t, string(pm["tags/swift/index.html"]), "/posts/wip/")

	preview, err := r.Render(posts, true)
	require.NoError(t, err)
	vm := pageMap(preview)
	require.Contains(t, vm, "posts/wip/index.html")
	require.Contains(t, string(vm["index.html"]), "/posts/wip/")
	require.Contains(t, string(vm["tags/swift/index.html"]), "/posts/wip/")
}

func TestRender_Pagination(t *testing.T) {
	var posts []content.Post
	dates := []string{"2021-01-05", "2021-01-04", "2021-01-03", "2021-01-02", "2021-01-01"}
	slugsByAge := []string{"e1", "e2", "e3", "e4", "e5"}
	for i, d := range dates {
		posts = append(posts, mkPost(t, slugsByAge[i], d, nil, false))
	}

	r := New(testSite(), theme.Builtin(), 2)
	pages, err := r.Render(posts, false)
	require.NoError(t, err)
	m := pageMap(pages)

	require.Contains(t, m, "index.html")
	require.Contains(t, m, "page/2/index.html")
	require.Contains(t, m, "page/3/index.html")
	require.NotContains(t, m, "page/4/index.html")

	first := string(m["index.html"])
	require.Contains(t, first, "/posts/e1/")
	require.Contains(t, first, "/posts/e2/")
	require.NotContains(t, first, "/posts/e3/")
	require.Contains(t, first, `href="/page/2/"`)

	last := string(m["page/3/index.html"])
	require.Contains(t, last, "/posts/e5/")
	require.Contains(t, last, `href="/page/2/"`)
	require.Contains(t, last, "page 3 of 3")
}

func TestRender_Deterministic(t *testing.T) {
	posts := []content.Post{
		mkPost(t, "alpha", "2021-07-08", []string{"go", "notes"}, false),
		mkPost(t, "beta", "2019-12-05", []string{"go"}, false),
	}
	r := New(testSite(), theme.Builtin(), 1)

	first, err := r.Render(posts, false)
	require.NoError(t, err)
	for range 3 {
		again, err := r.Render(posts, false)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestRender_PostPageContent(t *testing.T) {
	posts := []content.Post{mkPost(t, "alpha", "2021-07-08", []string{"go"}, false)}
	r := New(testSite(), theme.Builtin(), 10)

	pages, err := r.Render(posts, false)
	require.NoError(t, err)
	m := pageMap(pages)

	post := string(m["posts/alpha/index.html"])
	require.Contains(t, post, "body of alpha")
	require.Contains(t, post, `datetime="2021-07-08"`)
	require.Contains(t, post, `href="/tags/go/"`)
}

func TestRender_BaseURLPrefixesPermalinks(t *testing.T) {
	site := testSite()
	site.BaseURL = "https://example.com"
	posts := []content.Post{mkPost(t, "alpha", "2021-07-08", nil, false)}

	pages, err := New(site, theme.Builtin(), 10).Render(posts, false)
	require.NoError(t, err)
	home := string(pageMap(pages)["index.html"])
	require.Contains(t, home, "https://example.com/posts/alpha/")
}
