package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "blogbuilder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "site:\n  title: Test Blog\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Test Blog", cfg.Site.Title)
	require.Equal(t, "content/posts", cfg.Content.Dir)
	require.Equal(t, 10, cfg.Content.PageSize)
	require.Equal(t, "./public", cfg.Output.Directory)
	require.True(t, cfg.CleanOutput())
	require.Equal(t, 1313, cfg.Serve.Port)
	require.True(t, cfg.ServeDrafts())
	require.True(t, cfg.ServeWatch())
}

func TestLoad_ServeDefaultsApplyPerField(t *testing.T) {
	path := writeConfig(t, "serve:\n  port: 8080\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Serve.Port)
	require.True(t, cfg.ServeDrafts(), "setting only the port keeps drafts on")
	require.True(t, cfg.ServeWatch(), "setting only the port keeps watch on")
}

func TestLoad_ExplicitFalseSurvivesDefaults(t *testing.T) {
	path := writeConfig(t, "serve:\n  drafts: false\n  watch: false\noutput:\n  directory: dist\n  clean: false\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1313, cfg.Serve.Port)
	require.False(t, cfg.ServeDrafts())
	require.False(t, cfg.ServeWatch())
	require.False(t, cfg.CleanOutput())
}

func TestLoad_MissingFile_ReturnsConfigError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryConfig))
}

func TestLoad_MalformedYAML_ReturnsConfigError(t *testing.T) {
	path := writeConfig(t, "site: [broken\n")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryConfig))
}

func TestLoad_InvalidPageSize_FailsValidation(t *testing.T) {
	path := writeConfig(t, "content:\n  page_size: -3\n")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryValidation))
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("BLOG_TITLE", "From Env")
	path := writeConfig(t, "site:\n  title: ${BLOG_TITLE}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "From Env", cfg.Site.Title)
}

func TestThemePath(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	require.Empty(t, cfg.ThemePath())

	cfg.Theme.Name = "paper"
	require.Equal(t, filepath.Join("themes", "paper"), cfg.ThemePath())
}

func TestInit_RefusesOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blogbuilder.yaml")

	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "My Blog", cfg.Site.Title)
}
