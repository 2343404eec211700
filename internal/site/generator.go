// Package site orchestrates a full build: load the content store, render
// every page through the theme, copy assets, and atomically promote the
// staged tree into the output directory.
package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/publish"
	"git.home.luguber.info/inful/blogbuilder/internal/render"
	"git.home.luguber.info/inful/blogbuilder/internal/state"
	"git.home.luguber.info/inful/blogbuilder/internal/theme"
)

// Options configures a Generator.
type Options struct {
	Config        *config.Config
	Logger        *slog.Logger
	Recorder      metrics.Recorder
	Store         *state.Store // optional build-state store for early skip
	OutputDir     string       // overrides Config.Output.Directory when set
	PageSize      int          // overrides Config.Content.PageSize when set
	IncludeDrafts bool         // preview builds render drafts like normal posts
	Force         bool         // bypass the unchanged-inputs skip
}

// Generator runs the staged build pipeline.
type Generator struct {
	cfg           *config.Config
	log           *slog.Logger
	recorder      metrics.Recorder
	store         *state.Store
	outputDir     string
	pageSize      int
	includeDrafts bool
	force         bool
}

// NewGenerator constructs a Generator from options, filling defaults for
// logger and recorder.
func NewGenerator(opts Options) *Generator {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	var rec metrics.Recorder = opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = opts.Config.Output.Directory
	}
	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = opts.Config.Content.PageSize
	}
	return &Generator{
		cfg:           opts.Config,
		log:           log,
		recorder:      rec,
		store:         opts.Store,
		outputDir:     outDir,
		pageSize:      pageSize,
		includeDrafts: opts.IncludeDrafts,
		force:         opts.Force,
	}
}

// OutputDir returns the directory the generator promotes builds into.
func (g *Generator) OutputDir() string { return g.outputDir }

// Build runs the full pipeline. The returned report is always non-nil;
// the error is the first fatal stage error, if any. On failure the output
// directory is left exactly as the previous build produced it.
func (g *Generator) Build(ctx context.Context) (*BuildReport, error) {
	report := newBuildReport()
	bs := newBuildState(g, report)

	fp, err := state.ComputeFingerprint(g.cfg, state.BuildOptions{
		IncludeDrafts: g.includeDrafts,
		PageSize:      g.pageSize,
	})
	if err != nil {
		g.log.Warn("Input fingerprint unavailable", "error", err)
	} else {
		report.BuildHash = fp.BuildHash
	}

	if fp != nil && g.store != nil && !g.force {
		skip, err := g.store.CanSkip(ctx, g.outputDir, fp.BuildHash)
		if err != nil {
			g.log.Warn("Build state lookup failed", "error", err)
		} else if skip {
			report.SkipReason = "no_changes"
			report.finish()
			report.deriveOutcome()
			g.recorder.IncBuildOutcome(report.Outcome)
			g.log.Info("Inputs unchanged since last build, skipping", "output", g.outputDir)
			return report, nil
		}
	}

	bs.Publisher = publish.New(g.outputDir)
	bs.Publisher.KeepBackup(!g.cfg.CleanOutput())
	if err := bs.Publisher.Begin(); err != nil {
		se := newFatalStageError("prepare_output", err)
		report.recordError("prepare_output", se)
		g.finishBuild(ctx, report)
		return report, se
	}

	stages := []namedStage{
		{"load_content", stageLoadContent},
		{"load_theme", stageLoadTheme},
		{"render_pages", stageRenderPages},
		{"write_pages", stageWritePages},
		{"copy_assets", stageCopyAssets},
		{"copy_static", stageCopyStatic},
		{"finalize", stageFinalize},
	}

	runErr := runStages(ctx, bs, g.recorder, stages)
	if runErr != nil {
		bs.Publisher.Abort()
	}

	g.finishBuild(ctx, report)

	if runErr == nil {
		if err := report.Persist(g.outputDir); err != nil {
			g.log.Warn("Failed to persist build report", "error", err)
		}
	}
	return report, runErr
}

// finishBuild derives the outcome, emits build-level metrics, and records the
// run in the state store.
func (g *Generator) finishBuild(ctx context.Context, report *BuildReport) {
	report.finish()
	report.deriveOutcome()

	dur := report.End.Sub(report.Start)
	g.recorder.ObserveBuildDuration(dur)
	g.recorder.IncBuildOutcome(report.Outcome)
	g.recorder.AddPagesRendered(report.Pages)
	g.recorder.SetPostCount(report.Posts)

	if g.store != nil {
		err := g.store.RecordBuild(ctx, state.BuildRecord{
			OutputDir: g.outputDir,
			BuildHash: report.BuildHash,
			Outcome:   report.Outcome,
			PostCount: report.Posts,
			Pages:     report.Pages,
			Duration:  dur,
		})
		if err != nil {
			g.log.Warn("Failed to record build state", "error", err)
		}
	}

	g.log.Info("Build finished", "summary", report.Summary())
}

// stageLoadContent scans the content store. A missing content directory is a
// warning and yields an empty store; parse failures abort the build so the
// author sees every broken post at once.
func stageLoadContent(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	root := g.cfg.Content.Dir
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return newWarnStageError("load_content", fmt.Errorf("content directory %s does not exist", root))
	}

	posts, err := content.NewLoader(root).Load()
	if err != nil {
		return newFatalStageError("load_content", err)
	}
	bs.Posts = posts

	for _, p := range posts {
		if p.Draft {
			bs.Report.Drafts++
		}
	}
	if g.includeDrafts {
		bs.Report.Posts = len(posts)
	} else {
		bs.Report.Posts = len(posts) - bs.Report.Drafts
	}
	return nil
}

// stageLoadTheme resolves the configured theme or falls back to the built-in
// layouts.
func stageLoadTheme(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	dir := g.cfg.ThemePath()
	if dir == "" {
		bs.Theme = theme.Builtin()
		return nil
	}
	th, err := theme.Load(dir)
	if err != nil {
		return newFatalStageError("load_theme", err)
	}
	bs.Theme = th
	return nil
}

func stageRenderPages(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	site := render.SiteInfo{
		Title:       g.cfg.Site.Title,
		Author:      g.cfg.Site.Author,
		Description: g.cfg.Site.Description,
		BaseURL:     g.cfg.Site.BaseURL,
		Params:      g.cfg.Site.Params,
	}
	pages, err := render.New(site, bs.Theme, g.pageSize).Render(bs.Posts, g.includeDrafts)
	if err != nil {
		return newFatalStageError("render_pages", err)
	}
	bs.Pages = pages
	bs.Report.Pages = len(pages)
	return nil
}

func stageWritePages(ctx context.Context, bs *BuildState) error {
	for _, pg := range bs.Pages {
		select {
		case <-ctx.Done():
			return newCanceledStageError("write_pages", ctx.Err())
		default:
		}
		if err := bs.Publisher.WriteFile(pg.Path, pg.Data); err != nil {
			return newFatalStageError("write_pages", err)
		}
	}
	return nil
}

// stageCopyAssets copies bundle assets next to their rendered post pages.
// Drafts excluded from the build contribute no assets.
func stageCopyAssets(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	for _, p := range bs.Posts {
		if p.Draft && !g.includeDrafts {
			continue
		}
		for _, a := range p.Assets {
			select {
			case <-ctx.Done():
				return newCanceledStageError("copy_assets", ctx.Err())
			default:
			}
			rel := path.Join("posts", p.Slug, filepath.ToSlash(a.RelativePath))
			if err := bs.Publisher.CopyFile(a.Path, rel); err != nil {
				return newFatalStageError("copy_assets", err)
			}
			bs.Report.Assets++
		}
	}
	return nil
}

// stageCopyStatic copies the theme's static tree into the output root.
func stageCopyStatic(ctx context.Context, bs *BuildState) error {
	dir := bs.Theme.StaticDir()
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	if err := bs.Publisher.CopyTree(dir, ""); err != nil {
		return newFatalStageError("copy_static", err)
	}
	return nil
}

func stageFinalize(ctx context.Context, bs *BuildState) error {
	if err := bs.Publisher.Finalize(); err != nil {
		return newFatalStageError("finalize", err)
	}
	return nil
}

// FirstBuildError extracts the underlying build error from a stage error so
// the CLI can map it to an exit code.
func FirstBuildError(err error) error {
	var se *StageError
	if errors.As(err, &se) && se.Err != nil {
		return se.Err
	}
	return err
}
