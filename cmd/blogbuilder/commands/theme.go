package commands

import (
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/blogbuilder/internal/theme"
)

// ThemeCmd groups theme management subcommands.
type ThemeCmd struct {
	Install ThemeInstallCmd `cmd:"" help:"Install a theme from a git repository"`
}

// ThemeInstallCmd clones a theme repository into the themes directory.
type ThemeInstallCmd struct {
	URL  string `arg:"" help:"Git URL of the theme repository"`
	Name string `help:"Directory name for the theme (defaults to the repository name)"`
}

func (t *ThemeInstallCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	dest, err := theme.Install(cfg.Theme.Dir, t.URL, t.Name)
	if err != nil {
		return err
	}

	name := filepath.Base(dest)
	slog.Info("Theme installed", "name", name, "dir", cfg.Theme.Dir)
	if cfg.Theme.Name != name {
		slog.Info("Set 'theme.name' in your configuration to activate it", "name", name)
	}
	return nil
}
