package linkcheck

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// Issue describes one internal link that does not resolve.
type Issue struct {
	Page   string // output-relative path of the page containing the link
	URL    string // the broken reference as written
	Target string // output-relative path the reference resolved to
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s -> %s not found", i.Page, i.URL, i.Target)
}

// Verifier checks internal links against the rendered output tree.
type Verifier struct {
	root    string
	baseURL string
}

// NewVerifier creates a verifier for the output tree at root. baseURL is the
// site base used to distinguish internal from external references.
func NewVerifier(root, baseURL string) *Verifier {
	if baseURL == "" {
		baseURL = "/"
	}
	return &Verifier{root: root, baseURL: baseURL}
}

// Verify walks every .html file under the output root and resolves each
// internal reference. Returned issues are sorted by page then URL.
func (v *Verifier) Verify() ([]Issue, error) {
	var issues []Issue

	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}
		rel, err := filepath.Rel(v.root, p)
		if err != nil {
			return err
		}
		pageIssues, err := v.verifyPage(p, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		issues = append(issues, pageIssues...)
		return nil
	})
	if err != nil {
		return nil, berrors.LoadError(err).WithContext("dir", v.root)
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Page != issues[j].Page {
			return issues[i].Page < issues[j].Page
		}
		return issues[i].URL < issues[j].URL
	})
	return issues, nil
}

func (v *Verifier) verifyPage(absPath, relPath string) ([]Issue, error) {
	links, err := ExtractLinks(absPath, v.baseURL)
	if err != nil {
		return nil, err
	}

	var issues []Issue
	for _, l := range links {
		if !shouldVerify(l) {
			continue
		}
		target := v.resolve(relPath, l.URL)
		if target == "" {
			continue
		}
		if !v.targetExists(target) {
			issues = append(issues, Issue{Page: relPath, URL: l.URL, Target: target})
		}
	}
	return issues, nil
}

// resolve maps a reference to an output-relative path. Returns empty for
// references that cannot be checked against the tree.
func (v *Verifier) resolve(pageRel, raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	p := u.Path
	if p == "" {
		return ""
	}

	base, _ := url.Parse(v.baseURL)
	if base != nil && base.Path != "" && base.Path != "/" {
		p = strings.TrimPrefix(p, strings.TrimSuffix(base.Path, "/"))
	}

	if path.IsAbs(p) {
		return strings.TrimPrefix(path.Clean(p), "/")
	}
	return path.Join(path.Dir(pageRel), p)
}

// targetExists accepts a concrete file, or a directory containing index.html
// for pretty URLs ending in a slash.
func (v *Verifier) targetExists(target string) bool {
	full := filepath.Join(v.root, filepath.FromSlash(target))
	info, err := os.Stat(full)
	if err == nil && !info.IsDir() {
		return true
	}
	if err == nil && info.IsDir() {
		_, err = os.Stat(filepath.Join(full, "index.html"))
		return err == nil
	}
	return false
}
