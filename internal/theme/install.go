package theme

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// Install clones a theme repository into themesDir/<name>. When name is
// empty it is derived from the repository URL. The cloned tree must contain
// a layouts/ directory to count as a theme.
func Install(themesDir, url, name string) (string, error) {
	if name == "" {
		name = nameFromURL(url)
	}
	if name == "" {
		return "", fmt.Errorf("cannot derive theme name from url %q", url)
	}

	dest := filepath.Join(themesDir, name)
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("theme directory already exists: %s", dest)
	}
	if err := os.MkdirAll(themesDir, 0o755); err != nil {
		return "", fmt.Errorf("create themes directory: %w", err)
	}

	slog.Info("Cloning theme", "url", url, "dest", dest)
	if _, err := git.PlainClone(dest, false, &git.CloneOptions{URL: url, Depth: 1}); err != nil {
		_ = os.RemoveAll(dest)
		return "", fmt.Errorf("clone theme: %w", err)
	}

	if fi, err := os.Stat(filepath.Join(dest, "layouts")); err != nil || !fi.IsDir() {
		_ = os.RemoveAll(dest)
		return "", fmt.Errorf("repository does not look like a theme (no layouts/ directory): %s", url)
	}

	return dest, nil
}

// nameFromURL derives a theme name from the final path segment of a
// repository URL, trimming a .git suffix.
func nameFromURL(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	idx := strings.LastIndexAny(trimmed, "/:")
	if idx < 0 || idx == len(trimmed)-1 {
		return ""
	}
	return trimmed[idx+1:]
}
