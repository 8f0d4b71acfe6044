package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/google/subcommands"

	"github.com/pocketpal/pocketpal/pkg/api"
)

type statusCmd struct{}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show a summary of the stored data" }
func (*statusCmd) Usage() string {
	return `pocketpal status

  Prints the current user, wallet balance, entity counts, and budgets.
`
}

func (*statusCmd) SetFlags(f *flag.FlagSet) {}

func (*statusCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	mgr, err := newManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	snap := mgr.AllData()

	var spent api.Amount
	for _, e := range snap.Expenses {
		spent += e.Amount
	}

	fmt.Printf("User:          %s <%s>\n", snap.User.Username, snap.User.Email)
	fmt.Printf("Wallet:        %.2f\n", snap.Wallet)
	fmt.Printf("Expenses:      %d (total %.2f)\n", len(snap.Expenses), float64(spent))
	fmt.Printf("Transactions:  %d\n", len(snap.Transactions))
	fmt.Printf("Notifications: %d (%d unread)\n", len(snap.Notifications), len(mgr.UnreadNotifications()))

	fmt.Println("Budgets:")
	categories := make([]string, 0, len(snap.Budgets))
	for category := range snap.Budgets {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Printf("  %-14s %.2f\n", category, snap.Budgets[category])
	}

	return subcommands.ExitSuccess
}
