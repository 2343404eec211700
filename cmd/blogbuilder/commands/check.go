package commands

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/linkcheck"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
)

// CheckCmd implements the 'check' command: validate every post and verify
// links without touching the output directory.
type CheckCmd struct {
	Output string `short:"o" help:"Rendered output directory to verify links against (overrides config)"`
	Links  bool   `help:"Also verify internal links in the rendered output" default:"true" negatable:""`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	// Parse the whole store so every broken post surfaces in one pass.
	posts, err := content.NewLoader(cfg.Content.Dir).Load()
	if err != nil {
		return err
	}
	slog.Info("Content store parsed", "posts", len(posts))

	problems := 0
	for _, p := range posts {
		problems += checkPostAssets(p)
	}

	if c.Links {
		outDir := c.Output
		if outDir == "" {
			outDir = cfg.Output.Directory
		}
		if _, err := os.Stat(outDir); err == nil {
			issues, err := linkcheck.NewVerifier(outDir, cfg.Site.BaseURL).Verify()
			if err != nil {
				return err
			}
			for _, issue := range issues {
				slog.Warn("Broken internal link", "page", issue.Page, "url", issue.URL, "target", issue.Target)
			}
			problems += len(issues)
		} else {
			slog.Info("No rendered output to verify links against", "dir", outDir)
		}
	}

	if problems > 0 {
		return berrors.ValidationFailed("check", fmt.Sprintf("%d problem(s) found", problems))
	}
	slog.Info("Check passed", "posts", len(posts))
	return nil
}

// checkPostAssets verifies that relative references in a post body resolve to
// files inside its bundle directory.
func checkPostAssets(p content.Post) int {
	links, err := markdown.ExtractLinks(p.Body)
	if err != nil {
		slog.Warn("Failed to extract links", "post", p.Path, "error", err)
		return 1
	}

	bundleDir := filepath.Dir(p.Path)
	problems := 0
	for _, l := range links {
		if !isRelativeAsset(l.Destination) {
			continue
		}
		target := filepath.Join(bundleDir, filepath.FromSlash(l.Destination))
		if _, err := os.Stat(target); err != nil {
			slog.Warn("Missing relative asset", "post", p.Path, "reference", l.Destination)
			problems++
		}
	}
	return problems
}

// isRelativeAsset reports whether a Markdown destination points at a file
// expected to sit next to the post.
func isRelativeAsset(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
		return false
	}
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return false
	}
	return true
}
