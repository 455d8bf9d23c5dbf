// Command doxyrst turns Doxygen html output into reStructuredText pages
// for Sphinx.
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// CLI is the root of the command line.
type CLI struct {
	Config  string `short:"c" help:"YAML configuration file." type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging."`

	Build BuildCmd `cmd:"" help:"Convert Doxygen html output into rst files next to the html."`
	Clean CleanCmd `cmd:"" help:"Remove generated rst files and provisioned resources."`
	Serve ServeCmd `cmd:"" help:"Run the build service."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("doxyrst"),
		kong.Description("Integrate Doxygen html output into a Sphinx documentation build."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli); err != nil {
		slog.Error("doxyrst failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}
