package config

import (
	"fmt"
	"os"
)

const exampleConfig = `# blogbuilder configuration
site:
  title: "My Blog"
  author: "Author Name"
  description: "Notes and essays"
  base_url: "https://example.com/"

content:
  dir: content/posts
  page_size: 10

theme:
  # name: mytheme     # directory under themes/; omit to use built-in layouts
  dir: themes

output:
  directory: ./public
  clean: true

serve:
  port: 1313
  drafts: true
  watch: true
  metrics: false
`

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
