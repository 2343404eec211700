package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
)

// NewCmd implements the 'new' command: scaffold a draft post bundle.
type NewCmd struct {
	Title []string `arg:"" help:"Title of the new post"`
}

func (n *NewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	title := strings.TrimSpace(strings.Join(n.Title, " "))
	if title == "" {
		return berrors.ValidationFailed("title", "post title must not be empty")
	}
	slug := content.Slugify(title)
	if slug == "" {
		return berrors.ValidationFailed("title", "title yields an empty slug")
	}

	bundleDir := filepath.Join(cfg.Content.Dir, slug)
	indexPath := filepath.Join(bundleDir, "index.md")
	if _, err := os.Stat(indexPath); err == nil {
		return berrors.ValidationFailed("title", "post already exists at "+indexPath)
	}

	meta, err := frontmatter.SerializeYAML(map[string]any{
		"title": title,
		"date":  time.Now().Format("2006-01-02"),
		"draft": true,
		"uid":   uuid.NewString(),
	}, frontmatter.Style{})
	if err != nil {
		return err
	}
	doc := frontmatter.Join(meta, []byte("\n"), true, frontmatter.Style{HasTrailingNewline: true})

	if err := os.MkdirAll(bundleDir, 0o755); err != nil {
		return berrors.WriteFailed(bundleDir, err)
	}
	if err := os.WriteFile(indexPath, doc, 0o644); err != nil {
		return berrors.WriteFailed(indexPath, err)
	}

	slog.Info("Created new draft post", "path", indexPath, "slug", slug)
	return nil
}
