// Package linkcheck verifies that internal links in a rendered site resolve
// to files that actually exist in the output tree.
package linkcheck

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// Link is a reference extracted from rendered HTML.
type Link struct {
	URL        string // raw URL or path as written
	Text       string // link text or alt text
	Tag        string // source element (a, img, link, script)
	Attribute  string // attribute holding the reference
	IsInternal bool   // resolves within the site
}

// ExtractLinks extracts every link from an HTML file.
func ExtractLinks(htmlPath, baseURL string) ([]Link, error) {
	f, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, berrors.LoadError(err).WithContext("path", htmlPath)
	}
	defer f.Close()
	return ExtractLinksFromReader(f, baseURL)
}

// ExtractLinksFromReader extracts every link from an HTML document.
func ExtractLinksFromReader(r io.Reader, baseURL string) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, berrors.ValidationFailed("html", err.Error())
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, berrors.ValidationFailed("base_url", "invalid URL "+baseURL)
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			collectElementLinks(n, &links, base)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func collectElementLinks(n *html.Node, links *[]Link, base *url.URL) {
	add := func(attr, text string) {
		val := getAttr(n, attr)
		if val == "" {
			return
		}
		*links = append(*links, Link{
			URL:        val,
			Text:       text,
			Tag:        n.Data,
			Attribute:  attr,
			IsInternal: isInternalLink(val, base),
		})
	}
	switch n.Data {
	case "a":
		add("href", extractText(n))
	case "img":
		add("src", getAttr(n, "alt"))
	case "script":
		add("src", "")
	case "link":
		add("href", getAttr(n, "rel"))
	case "video", "audio", "source":
		add("src", "")
	}
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(extractText(c))
	}
	return strings.TrimSpace(b.String())
}

// isInternalLink reports whether a URL resolves within the site.
func isInternalLink(linkURL string, base *url.URL) bool {
	if strings.HasPrefix(linkURL, "mailto:") ||
		strings.HasPrefix(linkURL, "tel:") ||
		strings.HasPrefix(linkURL, "javascript:") ||
		strings.HasPrefix(linkURL, "#") {
		return true
	}
	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}
	if u.Scheme == "" || u.Host == "" {
		return true
	}
	return base != nil && u.Host == base.Host
}

// shouldVerify filters out references that have no file to resolve to.
func shouldVerify(l Link) bool {
	if l.URL == "" || strings.HasPrefix(l.URL, "#") {
		return false
	}
	if strings.HasPrefix(l.URL, "mailto:") ||
		strings.HasPrefix(l.URL, "tel:") ||
		strings.HasPrefix(l.URL, "javascript:") ||
		strings.HasPrefix(l.URL, "data:") {
		return false
	}
	return l.IsInternal
}
