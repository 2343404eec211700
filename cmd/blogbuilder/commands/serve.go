package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/serve"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// ServeCmd implements the 'serve' command: a local preview that rebuilds
// when content or theme files change. Drafts render by default.
type ServeCmd struct {
	Port     int  `short:"p" help:"Port to listen on (overrides config)"`
	NoDrafts bool `help:"Exclude draft posts from the preview"`
	NoWatch  bool `help:"Serve without rebuilding on changes"`
	Metrics  bool `help:"Expose Prometheus metrics on /metrics"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	port := s.Port
	if port == 0 {
		port = cfg.Serve.Port
	}
	drafts := cfg.ServeDrafts() && !s.NoDrafts
	watch := cfg.ServeWatch() && !s.NoWatch

	// Preview builds go to a throwaway directory so the published output
	// directory never contains drafts.
	tmpDir, err := os.MkdirTemp("", "blogbuilder-preview-*")
	if err != nil {
		return err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			slog.Warn("Failed to remove preview output", "dir", tmpDir, "error", err)
		}
	}()

	var reg *prom.Registry
	var recorder metrics.Recorder
	if s.Metrics || cfg.Serve.Metrics {
		reg = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
	}

	gen := site.NewGenerator(site.Options{
		Config:        cfg,
		Recorder:      recorder,
		OutputDir:     tmpDir,
		IncludeDrafts: drafts,
		Force:         true, // preview always rebuilds
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := serve.New(serve.Options{
		Config:    cfg,
		Generator: gen,
		Port:      port,
		Watch:     watch,
		Registry:  reg,
	})
	return srv.Run(ctx)
}
