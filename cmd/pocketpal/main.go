package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&statusCmd{}, "")
	commander.Register(&addExpenseCmd{}, "")
	commander.Register(&addMoneyCmd{}, "")
	commander.Register(&subtractMoneyCmd{}, "")
	commander.Register(&exportCmd{}, "")
	commander.Register(&importCmd{}, "")
	commander.Register(&validateCmd{}, "")
	commander.Register(&clearCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
