package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	slog.Info("Initializing configuration", "path", root.Config, "force", i.Force)
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}

	// Scaffold the directories the starter config points at.
	for _, dir := range []string{filepath.Join("content", "posts"), "themes"} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	slog.Info("Site skeleton ready", "config", root.Config)
	return nil
}
