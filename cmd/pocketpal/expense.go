package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/pocketpal/pocketpal/pkg/api"
	"github.com/pocketpal/pocketpal/pkg/manager"
)

type addExpenseCmd struct {
	amount      float64
	category    string
	description string
	date        string
}

func (*addExpenseCmd) Name() string     { return "add-expense" }
func (*addExpenseCmd) Synopsis() string { return "record a new expense" }
func (*addExpenseCmd) Usage() string {
	return `pocketpal add-expense -amount <amount> [-category <category>] [-desc <description>] [-date <date>]

  Records an expense and the matching wallet transaction.
`
}

func (c *addExpenseCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.amount, "amount", 0, "Expense amount.")
	f.StringVar(&c.category, "category", "", "Category (food, travel, entertainment, study, other).")
	f.StringVar(&c.description, "desc", "", "Free-form description.")
	f.StringVar(&c.date, "date", "", "Date of the expense (defaults to now).")
}

func (c *addExpenseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	mgr, err := newManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	expense, ok := mgr.AddExpense(manager.ExpenseInput{
		Amount:      api.Amount(c.amount),
		Category:    c.category,
		Description: c.description,
		Date:        c.date,
	})
	if !ok {
		fmt.Fprintln(os.Stderr, "failed to record expense")
		return subcommands.ExitFailure
	}

	fmt.Printf("recorded expense %s: %.2f (%s)\n", expense.ID, float64(expense.Amount), expense.Category)
	return subcommands.ExitSuccess
}
