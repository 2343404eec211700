// Package theme loads the HTML templates and static assets that turn parsed
// posts into pages. A theme is a directory with layouts/ (base.html plus one
// template per page kind) and an optional static/ tree; when no theme is
// configured the built-in layouts are used.
package theme

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

// PageKind identifies a logical page type rendered by the theme.
type PageKind string

const (
	KindHome      PageKind = "home"
	KindPost      PageKind = "post"
	KindTag       PageKind = "tag"
	KindTagsIndex PageKind = "tags"
)

// layoutFiles maps page kinds to their template file under layouts/.
var layoutFiles = map[PageKind]string{
	KindHome:      "home.html",
	KindPost:      "post.html",
	KindTag:       "tag.html",
	KindTagsIndex: "tags.html",
}

// Theme is a loaded template set plus the path to its static assets.
type Theme struct {
	templates map[PageKind]*template.Template
	staticDir string // empty when the theme ships no static assets
}

// Load reads a theme from dir. Each page template is parsed together with
// layouts/base.html so it can fill the base skeleton's blocks.
func Load(dir string) (*Theme, error) {
	layoutsDir := filepath.Join(dir, "layouts")
	basePath := filepath.Join(layoutsDir, "base.html")
	baseRaw, err := os.ReadFile(basePath)
	if err != nil {
		return nil, fmt.Errorf("theme missing base layout: %w", err)
	}

	t := &Theme{templates: make(map[PageKind]*template.Template, len(layoutFiles))}
	for kind, file := range layoutFiles {
		path := filepath.Join(layoutsDir, file)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("theme missing %s layout: %w", kind, err)
		}
		tmpl, err := template.New("base").Parse(string(baseRaw))
		if err != nil {
			return nil, fmt.Errorf("parse base layout: %w", err)
		}
		if _, err := tmpl.Parse(string(raw)); err != nil {
			return nil, fmt.Errorf("parse %s layout: %w", file, err)
		}
		t.templates[kind] = tmpl
	}

	staticDir := filepath.Join(dir, "static")
	if fi, err := os.Stat(staticDir); err == nil && fi.IsDir() {
		t.staticDir = staticDir
	}

	return t, nil
}

// Builtin returns the embedded fallback theme used when no theme is
// configured.
func Builtin() *Theme {
	t := &Theme{templates: make(map[PageKind]*template.Template, len(layoutFiles))}
	for kind, raw := range builtinLayouts {
		tmpl := template.Must(template.New("base").Parse(builtinBase))
		template.Must(tmpl.Parse(raw))
		t.templates[kind] = tmpl
	}
	return t
}

// Template returns the template for a page kind.
func (t *Theme) Template(kind PageKind) (*template.Template, error) {
	tmpl, ok := t.templates[kind]
	if !ok {
		return nil, fmt.Errorf("theme has no template for page kind %q", kind)
	}
	return tmpl, nil
}

// StaticDir returns the theme's static asset directory, or empty.
func (t *Theme) StaticDir() string { return t.staticDir }
