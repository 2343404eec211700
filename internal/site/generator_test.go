package site

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/state"
)

func writePost(t *testing.T, dir, name, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Site.Title = "Test Blog"
	cfg.Site.BaseURL = "/"
	cfg.Content.Dir = filepath.Join(root, "posts")
	cfg.Content.PageSize = 10
	cfg.Output.Directory = filepath.Join(root, "public")
	require.NoError(t, os.MkdirAll(cfg.Content.Dir, 0o755))
	return cfg
}

const postOne = `---
title: First Post
date: 2024-03-01
tags: [go, blog]
---
Hello **world**.
`

const postTwo = `---
title: Second Post
date: 2024-04-01
tags: [go]
---
More content.
`

const draftPost = `---
title: Work In Progress
date: 2024-05-01
draft: true
---
Not ready.
`

func TestBuild_WritesFullTree(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg.Content.Dir, "first-post.md", postOne)
	writePost(t, cfg.Content.Dir, "second-post.md", postTwo)

	g := NewGenerator(Options{Config: cfg})
	report, err := g.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, report.OutcomeT)
	require.Equal(t, 2, report.Posts)

	for _, rel := range []string{
		"index.html",
		filepath.Join("posts", "first-post", "index.html"),
		filepath.Join("posts", "second-post", "index.html"),
		filepath.Join("tags", "go", "index.html"),
		filepath.Join("tags", "blog", "index.html"),
		filepath.Join("tags", "index.html"),
		"build-report.json",
	} {
		_, err := os.Stat(filepath.Join(cfg.Output.Directory, rel))
		require.NoError(t, err, "expected %s in output", rel)
	}

	// staging directory must not survive
	_, err = os.Stat(cfg.Output.Directory + "_stage")
	require.True(t, os.IsNotExist(err))
}

func TestBuild_FailureLeavesPreviousOutputIntact(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg.Content.Dir, "first-post.md", postOne)

	g := NewGenerator(Options{Config: cfg})
	_, err := g.Build(context.Background())
	require.NoError(t, err)

	firstIndex, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)

	// a post without front matter aborts the build
	writePost(t, cfg.Content.Dir, "broken.md", "no front matter here")

	report, err := g.Build(context.Background())
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, report.OutcomeT)

	after, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)
	require.Equal(t, firstIndex, after, "failed build must not touch existing output")
}

func TestBuild_DraftsExcludedFromPublicBuild(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg.Content.Dir, "first-post.md", postOne)
	writePost(t, cfg.Content.Dir, "wip.md", draftPost)

	g := NewGenerator(Options{Config: cfg})
	report, err := g.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Posts)
	require.Equal(t, 1, report.Drafts)

	_, err = os.Stat(filepath.Join(cfg.Output.Directory, "posts", "wip", "index.html"))
	require.True(t, os.IsNotExist(err), "draft page must not exist in public build")
}

func TestBuild_DraftsIncludedInPreviewBuild(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg.Content.Dir, "wip.md", draftPost)

	g := NewGenerator(Options{Config: cfg, IncludeDrafts: true})
	report, err := g.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Posts)

	_, err = os.Stat(filepath.Join(cfg.Output.Directory, "posts", "wip", "index.html"))
	require.NoError(t, err)
}

func TestBuild_BundleAssetsCopied(t *testing.T) {
	cfg := testConfig(t)
	bundle := filepath.Join(cfg.Content.Dir, "with-image")
	require.NoError(t, os.MkdirAll(bundle, 0o755))
	writePost(t, bundle, "index.md", postOne)
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "photo.png"), []byte("png-bytes"), 0o644))

	g := NewGenerator(Options{Config: cfg})
	report, err := g.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Assets)

	data, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "posts", "with-image", "photo.png"))
	require.NoError(t, err)
	require.Equal(t, []byte("png-bytes"), data)
}

func TestBuild_MissingContentDirIsWarning(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.RemoveAll(cfg.Content.Dir))

	g := NewGenerator(Options{Config: cfg})
	report, err := g.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, report.OutcomeT)

	// empty store still renders a home page
	_, err = os.Stat(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)
}

func TestBuild_UnchangedInputsSkipped(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg.Content.Dir, "first-post.md", postOne)

	store, err := state.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	g := NewGenerator(Options{Config: cfg, Store: store})
	first, err := g.Build(context.Background())
	require.NoError(t, err)
	require.Empty(t, first.SkipReason)

	second, err := g.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, "no_changes", second.SkipReason)
	require.Equal(t, OutcomeSkipped, second.OutcomeT)

	// force bypasses the skip
	forced := NewGenerator(Options{Config: cfg, Store: store, Force: true})
	third, err := forced.Build(context.Background())
	require.NoError(t, err)
	require.Empty(t, third.SkipReason)
}

func TestBuild_FlagChangeBypassesSkip(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg.Content.Dir, "first-post.md", postOne)
	writePost(t, cfg.Content.Dir, "wip.md", draftPost)

	store, err := state.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	public := NewGenerator(Options{Config: cfg, Store: store})
	first, err := public.Build(context.Background())
	require.NoError(t, err)
	require.Empty(t, first.SkipReason)
	require.NoFileExists(t, filepath.Join(public.OutputDir(), "posts", "work-in-progress", "index.html"))

	preview := NewGenerator(Options{Config: cfg, Store: store, IncludeDrafts: true})
	second, err := preview.Build(context.Background())
	require.NoError(t, err)
	require.Empty(t, second.SkipReason, "a flag change must rebuild, not skip")
	require.FileExists(t, filepath.Join(preview.OutputDir(), "posts", "work-in-progress", "index.html"))

	smaller := NewGenerator(Options{Config: cfg, Store: store, PageSize: 1})
	third, err := smaller.Build(context.Background())
	require.NoError(t, err)
	require.Empty(t, third.SkipReason, "a page-size change must rebuild, not skip")
}

func TestBuild_CanceledContext(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg.Content.Dir, "first-post.md", postOne)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGenerator(Options{Config: cfg})
	report, err := g.Build(ctx)
	require.Error(t, err)
	require.Equal(t, OutcomeCanceled, report.OutcomeT)
}

func TestBuild_ReportStageDurationsRecorded(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg.Content.Dir, "first-post.md", postOne)

	g := NewGenerator(Options{Config: cfg})
	report, err := g.Build(context.Background())
	require.NoError(t, err)

	for _, stage := range []string{"load_content", "load_theme", "render_pages", "write_pages", "finalize"} {
		require.Contains(t, report.StageDurations, stage)
	}
}
