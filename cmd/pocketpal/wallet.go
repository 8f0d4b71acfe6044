package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type addMoneyCmd struct {
	amount float64
}

func (*addMoneyCmd) Name() string     { return "add-money" }
func (*addMoneyCmd) Synopsis() string { return "add money to the wallet" }
func (*addMoneyCmd) Usage() string {
	return `pocketpal add-money -amount <amount>

  Increases the wallet balance and records an income transaction.
`
}

func (c *addMoneyCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.amount, "amount", 0, "Amount to add.")
}

func (c *addMoneyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	mgr, err := newManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if !mgr.AddMoney(c.amount) {
		fmt.Fprintln(os.Stderr, "failed to update wallet")
		return subcommands.ExitFailure
	}

	fmt.Printf("wallet balance: %.2f\n", mgr.GetWalletBalance())
	return subcommands.ExitSuccess
}

type subtractMoneyCmd struct {
	amount float64
}

func (*subtractMoneyCmd) Name() string     { return "subtract-money" }
func (*subtractMoneyCmd) Synopsis() string { return "take money out of the wallet" }
func (*subtractMoneyCmd) Usage() string {
	return `pocketpal subtract-money -amount <amount>

  Decreases the wallet balance without recording a transaction.
`
}

func (c *subtractMoneyCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.amount, "amount", 0, "Amount to subtract.")
}

func (c *subtractMoneyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	mgr, err := newManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if !mgr.SubtractMoney(c.amount) {
		fmt.Fprintln(os.Stderr, "failed to update wallet")
		return subcommands.ExitFailure
	}

	fmt.Printf("wallet balance: %.2f\n", mgr.GetWalletBalance())
	return subcommands.ExitSuccess
}
