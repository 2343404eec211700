package main

import (
	"fmt"
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/cmd/blogbuilder/commands"
	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

func main() {
	var cli commands.CLI
	ktx := kong.Parse(&cli,
		kong.Name("blogbuilder"),
		kong.Description("Static blog generator: Markdown posts in, a complete HTML site out"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("blogbuilder %s (commit %s, built %s)",
				version.Version, version.GitCommit, version.BuildTime),
		},
	)

	if err := ktx.Run(&commands.Global{Logger: slog.Default()}); err != nil {
		berrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
