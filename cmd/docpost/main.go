package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpost/cmd/docpost/commands"
	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
	"git.home.luguber.info/inful/docpost/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{}
	ctx := kong.Parse(&cli,
		kong.Name("docpost"),
		kong.Description("Post-process rendered documentation pages and build a site search index."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global, &cli),
	)
	if err := ctx.Run(); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
