package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	a := &app{}
	a.SetFlags(flag.CommandLine)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range a.commands() {
		commander.Register(c, "transactions")
	}
	commander.Register(&serveCmd{app: a}, "server")
	commander.Register(&watchCmd{app: a}, "server")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
