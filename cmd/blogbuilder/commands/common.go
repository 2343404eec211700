package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/state"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"blogbuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build the site into the output directory"`
	Serve ServeCmd `cmd:"" help:"Serve a draft-enabled preview and rebuild on changes"`
	Init  InitCmd  `cmd:"" help:"Initialize a new configuration file"`
	New   NewCmd   `cmd:"" help:"Scaffold a new draft post"`
	Check CheckCmd `cmd:"" help:"Validate content and verify links without publishing"`
	Theme ThemeCmd `cmd:"" help:"Manage themes"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads and validates the configuration named by the root flag.
func loadConfig(root *CLI) (*config.Config, error) {
	return config.Load(root.Config)
}

// openStateStore opens the build-state database. Failures are non-fatal:
// builds run without early-skip when no store is available.
func openStateStore() *state.Store {
	store, err := state.Open(state.DefaultPath())
	if err != nil {
		slog.Warn("Build state store unavailable", "error", err)
		return nil
	}
	return store
}
