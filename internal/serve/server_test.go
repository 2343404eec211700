package serve

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

func TestShouldIgnoreEvent(t *testing.T) {
	cases := []struct {
		path   string
		ignore bool
	}{
		{"content/posts/hello.md", false},
		{"content/posts/.hello.md.swp", true},
		{"content/posts/hello.md~", true},
		{"content/posts/#hello.md#", true},
		{"content/posts/.#hello.md", true},
		{"content/.DS_Store", true},
		{"content/Thumbs.db", true},
		{"content/posts/image.png", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.ignore, shouldIgnoreEvent(tc.path), "path %s", tc.path)
	}
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	req := make(chan struct{}, 1)
	trigger := newDebouncer(20*time.Millisecond, req)

	for range 10 {
		trigger()
	}

	select {
	case <-req:
	case <-time.After(time.Second):
		t.Fatal("expected a rebuild request")
	}

	select {
	case <-req:
		t.Fatal("burst must coalesce into a single request")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHealthz_ReportsBuildState(t *testing.T) {
	s := New(Options{Config: &config.Config{}})

	s.status.setSuccess()
	rec := httptest.NewRecorder()
	s.handleHealthz(rec, httptest.NewRequest("GET", "/healthz", nil))
	require.Equal(t, 200, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp["status"])
	require.Equal(t, true, resp["good_build"])

	s.status.setError(errors.New("render exploded"))
	rec = httptest.NewRecorder()
	s.handleHealthz(rec, httptest.NewRequest("GET", "/healthz", nil))
	require.Equal(t, 200, rec.Code, "a previous good build keeps serving")

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "build_error", resp["status"])
}

func TestHealthz_UnavailableBeforeFirstGoodBuild(t *testing.T) {
	s := New(Options{Config: &config.Config{}})
	s.status.setError(errors.New("initial build failed"))

	rec := httptest.NewRecorder()
	s.handleHealthz(rec, httptest.NewRequest("GET", "/healthz", nil))
	require.Equal(t, 503, rec.Code)
}

func TestServer_RebuildUpdatesStatus(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Site.Title = "Preview"
	cfg.Content.Dir = filepath.Join(root, "posts")
	cfg.Content.PageSize = 10
	cfg.Output.Directory = filepath.Join(root, "public")
	require.NoError(t, os.MkdirAll(cfg.Content.Dir, 0o755))

	gen := site.NewGenerator(site.Options{Config: cfg, IncludeDrafts: true})
	s := New(Options{Config: cfg, Generator: gen})

	s.rebuild(context.Background())
	err, good, _ := s.status.snapshot()
	require.NoError(t, err)
	require.True(t, good)

	_, statErr := os.Stat(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, statErr)
}
