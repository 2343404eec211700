package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output   string `short:"o" help:"Output directory (overrides config)"`
	Drafts   bool   `short:"D" help:"Include draft posts in the build"`
	Force    bool   `help:"Rebuild even when inputs are unchanged"`
	PageSize int    `help:"Posts per home listing page (overrides config)"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	store := openStateStore()
	if store != nil {
		defer store.Close()
	}

	gen := site.NewGenerator(site.Options{
		Config:        cfg,
		Store:         store,
		OutputDir:     b.Output,
		PageSize:      b.PageSize,
		IncludeDrafts: b.Drafts,
		Force:         b.Force,
	})

	slog.Info("Starting site build", "output", gen.OutputDir(), "drafts", b.Drafts)
	report, err := gen.Build(context.Background())
	if err != nil {
		return site.FirstBuildError(err)
	}

	slog.Info("Site build complete", "summary", report.Summary())
	return nil
}
