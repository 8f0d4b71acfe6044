package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
)

type exportCmd struct {
	out string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export all data as JSON" }
func (*exportCmd) Usage() string {
	return `pocketpal export [-o <file>]

  Writes a JSON snapshot of all data to stdout or the given file.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "", "Destination file (defaults to stdout).")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	mgr, err := newManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	data, ok := mgr.ExportData()
	if !ok {
		fmt.Fprintln(os.Stderr, "failed to export data")
		return subcommands.ExitFailure
	}

	if c.out == "" {
		fmt.Println(data)
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.out, []byte(data+"\n"), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type importCmd struct {
	in string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import data from a JSON export" }
func (*importCmd) Usage() string {
	return `pocketpal import [-f <file>]

  Reads a JSON snapshot from the given file (or stdin) and applies
  every field it carries.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "f", "", "Source file (defaults to stdin).")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var payload []byte
	var err error
	if c.in == "" {
		payload, err = io.ReadAll(os.Stdin)
	} else {
		payload, err = os.ReadFile(c.in)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	mgr, err := newManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if !mgr.ImportData(string(payload)) {
		fmt.Fprintln(os.Stderr, "failed to import data")
		return subcommands.ExitFailure
	}
	fmt.Println("data imported")
	return subcommands.ExitSuccess
}
