package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type validateCmd struct{}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "check stored data for problems" }
func (*validateCmd) Usage() string {
	return `pocketpal validate

  Inspects the stored data and lists anything out of shape. Exits
  non-zero when issues are found.
`
}

func (*validateCmd) SetFlags(f *flag.FlagSet) {}

func (*validateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	mgr, err := newManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	issues := mgr.ValidateData()
	if len(issues) == 0 {
		fmt.Println("data is valid")
		return subcommands.ExitSuccess
	}
	for _, issue := range issues {
		fmt.Println(issue)
	}
	return subcommands.ExitFailure
}

type clearCmd struct {
	yes bool
}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "delete all data and restore defaults" }
func (*clearCmd) Usage() string {
	return `pocketpal clear -yes

  Deletes every stored document and reinitializes defaults. Requires
  the -yes flag.
`
}

func (c *clearCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Confirm deletion of all data.")
}

func (c *clearCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintln(os.Stderr, "refusing to clear data without -yes")
		return subcommands.ExitUsageError
	}

	mgr, err := newManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if !mgr.ClearAllData() {
		fmt.Fprintln(os.Stderr, "failed to clear data")
		return subcommands.ExitFailure
	}
	fmt.Println("all data cleared")
	return subcommands.ExitSuccess
}
