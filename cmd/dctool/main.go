package main

import (
	"github.com/alecthomas/kong"

	"github.com/Qinmu-mu/libdc-for-dirk/internal/cli"
	"github.com/Qinmu-mu/libdc-for-dirk/internal/config"
)

func main() {
	var c cli.CLI
	ctx := kong.Parse(&c,
		kong.Name("dctool"),
		kong.Description("Download dive logs from Suunto D9-family dive computers."),
		kong.UsageOnError(),
	)
	config.Verbose = c.Verbose
	ctx.FatalIfErrorf(ctx.Run(&c))
}
