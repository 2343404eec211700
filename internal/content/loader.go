package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// Loader scans a posts root directory for content files.
//
// Layout contract: each post is either a single Markdown file directly under
// the root (`root/<name>.md`) or a bundle directory with an index.md
// (`root/<name>/index.md`) whose sibling files are the post's assets.
type Loader struct {
	root string
}

// NewLoader creates a loader for the given posts root directory.
func NewLoader(root string) *Loader {
	return &Loader{root: root}
}

// Load scans the root and parses every post. Rescanning an unchanged
// directory yields the same set.
//
// All parse failures are aggregated so an author sees every broken post in
// one pass; the returned error is non-nil if any post failed. Slug
// collisions are build errors naming both files.
func (l *Loader) Load() ([]Post, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, berrors.LoadError(err).WithContext("dir", l.root)
	}

	agg := &berrors.LoadErrors{}
	var posts []Post
	seen := map[string]string{} // slug -> source path

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		var post Post
		var perr error
		switch {
		case entry.IsDir():
			post, perr = l.loadBundle(filepath.Join(l.root, name))
			if perr == errNoIndex {
				slog.Debug("Skipping directory without index.md", "dir", name)
				continue
			}
		case strings.EqualFold(filepath.Ext(name), ".md"):
			post, perr = l.loadFile(filepath.Join(l.root, name))
		default:
			continue
		}

		if perr != nil {
			agg.Append(perr)
			continue
		}

		if prev, dup := seen[post.Slug]; dup {
			agg.Append(berrors.SlugCollision(post.Slug, prev, post.Path))
			continue
		}
		seen[post.Slug] = post.Path
		posts = append(posts, post)
	}

	if err := agg.OrNil(); err != nil {
		return nil, err
	}

	slog.Debug("Content store loaded", "posts", len(posts), "root", l.root)
	return posts, nil
}

var errNoIndex = fmt.Errorf("no index.md in bundle directory")

// loadBundle parses root/<dir>/index.md and collects sibling assets.
func (l *Loader) loadBundle(dir string) (Post, error) {
	indexPath := filepath.Join(dir, "index.md")
	raw, err := os.ReadFile(indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Post{}, errNoIndex
		}
		return Post{}, berrors.LoadError(err).WithContext("path", indexPath)
	}

	post, err := Parse(indexPath, raw, filepath.Base(dir))
	if err != nil {
		return Post{}, err
	}

	assets, err := collectAssets(dir)
	if err != nil {
		return Post{}, berrors.LoadError(err).WithContext("path", dir)
	}
	post.Assets = assets
	return post, nil
}

// loadFile parses a standalone root/<name>.md post.
func (l *Loader) loadFile(path string) (Post, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Post{}, berrors.LoadError(err).WithContext("path", path)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(path, raw, stem)
}

// collectAssets walks a bundle directory gathering every non-markdown file.
// Relative references from the post body must resolve within this directory.
func collectAssets(dir string) ([]Asset, error) {
	var assets []Asset
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		assets = append(assets, Asset{Path: path, RelativePath: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assets, nil
}
