// Package config loads and validates the blogbuilder.yaml site configuration.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// Config represents the application configuration
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Theme   ThemeConfig   `yaml:"theme"`
	Output  OutputConfig  `yaml:"output"`
	Serve   ServeConfig   `yaml:"serve"`
}

// SiteConfig holds site-level metadata rendered into every page.
type SiteConfig struct {
	Title       string         `yaml:"title"`
	Author      string         `yaml:"author,omitempty"`
	Description string         `yaml:"description,omitempty"`
	BaseURL     string         `yaml:"base_url,omitempty"`
	Params      map[string]any `yaml:"params,omitempty"`
}

// ContentConfig locates the content store and tunes listing behavior.
type ContentConfig struct {
	Dir      string `yaml:"dir"`       // posts root, defaults to content/posts
	PageSize int    `yaml:"page_size"` // home listing pagination, defaults to 10
}

// ThemeConfig selects the theme providing layouts and static assets.
type ThemeConfig struct {
	Name string `yaml:"name,omitempty"` // directory under themes/; empty uses built-in layouts
	Dir  string `yaml:"dir,omitempty"`  // themes root, defaults to themes
}

// OutputConfig represents output configuration.
//
// Pointer fields distinguish "unset" from an explicit false so each default
// applies independently of the other keys in the block.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     *bool  `yaml:"clean"` // remove the <directory>.prev backup after promote, defaults to true
}

// ServeConfig tunes the local preview server.
type ServeConfig struct {
	Port    int   `yaml:"port"`              // defaults to 1313
	Drafts  *bool `yaml:"drafts"`            // include drafts, defaults to true
	Watch   *bool `yaml:"watch"`             // rebuild on content/theme changes, defaults to true
	Metrics bool  `yaml:"metrics,omitempty"` // expose /metrics
}

// Load loads configuration from the specified file.
//
// A .env/.env.local file, when present, is loaded first and ${VAR} references
// in the YAML are expanded from the environment.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, berrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, berrors.Wrap(err, berrors.CategoryConfig, berrors.SeverityFatal, "failed to read config file").
			WithContext("path", configPath)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, berrors.Wrap(err, berrors.CategoryConfig, berrors.SeverityFatal, "failed to unmarshal config").
			WithContext("path", configPath)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadEnvFiles loads environment variables from .env/.env.local files.
// Existing process environment variables are not overwritten.
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
			return
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Site.Title == "" {
		cfg.Site.Title = "A Blog"
	}
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = "/"
	}
	if cfg.Content.Dir == "" {
		cfg.Content.Dir = "content/posts"
	}
	if cfg.Content.PageSize == 0 {
		cfg.Content.PageSize = 10
	}
	if cfg.Theme.Dir == "" {
		cfg.Theme.Dir = "themes"
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "./public"
	}
	if cfg.Output.Clean == nil {
		cfg.Output.Clean = boolPtr(true)
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = 1313
	}
	if cfg.Serve.Drafts == nil {
		cfg.Serve.Drafts = boolPtr(true)
	}
	if cfg.Serve.Watch == nil {
		cfg.Serve.Watch = boolPtr(true)
	}
}

func boolPtr(v bool) *bool { return &v }

// CleanOutput reports whether the previous-output backup should be removed
// after promote. Unset means true.
func (c *Config) CleanOutput() bool {
	return c.Output.Clean == nil || *c.Output.Clean
}

// ServeDrafts reports whether the preview server includes drafts. Unset means
// true.
func (c *Config) ServeDrafts() bool {
	return c.Serve.Drafts == nil || *c.Serve.Drafts
}

// ServeWatch reports whether the preview server rebuilds on file changes.
// Unset means true.
func (c *Config) ServeWatch() bool {
	return c.Serve.Watch == nil || *c.Serve.Watch
}

// Validate checks configuration invariants that would otherwise surface as
// confusing build failures later in the pipeline.
func (c *Config) Validate() error {
	if c.Content.PageSize < 1 {
		return berrors.ValidationFailed("content.page_size", "must be a positive integer")
	}
	if c.Serve.Port < 1 || c.Serve.Port > 65535 {
		return berrors.ValidationFailed("serve.port", "must be within 1-65535")
	}
	if c.Output.Directory == "" {
		return berrors.ConfigRequired("output.directory")
	}
	return nil
}

// ThemePath returns the selected theme's directory, or empty when the
// built-in layouts should be used.
func (c *Config) ThemePath() string {
	if c.Theme.Name == "" {
		return ""
	}
	return c.Theme.Dir + string(os.PathSeparator) + c.Theme.Name
}
