package manager

import (
	"time"

	"github.com/pocketpal/pocketpal/pkg/api"
	"github.com/pocketpal/pocketpal/pkg/storage"
)

// ExpenseInput holds the caller-supplied fields for a new expense.
// Amount uses the coercing type so a numeric string decodes to its
// value; missing category and description get defaults; a missing or
// unparseable date becomes now.
type ExpenseInput struct {
	Amount      api.Amount `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
}

// GetExpenses returns the stored expenses, newest first.
func (m *Manager) GetExpenses() []api.Expense {
	return storage.LoadOr(m.store, api.KeyExpenses, []api.Expense{})
}

// SetExpenses stores the expense list wholesale and publishes on the
// expenses channel when the write succeeds.
func (m *Manager) SetExpenses(expenses []api.Expense) bool {
	if expenses == nil {
		expenses = []api.Expense{}
	}
	if !m.store.Save(api.KeyExpenses, expenses) {
		return false
	}
	m.bus.Publish(api.ChannelExpenses, expenses)
	return true
}

// AddExpense builds a new expense from the input, prepends it to the
// stored list, and on success records a matching ledger transaction of
// type expense carrying a weak back-reference to the new expense id.
// ok is false when the underlying write failed.
func (m *Manager) AddExpense(input ExpenseInput) (expense api.Expense, ok bool) {
	expense = api.Expense{
		ID:          api.NewID(),
		Amount:      api.Amount(sanitizeAmount(float64(input.Amount))),
		Category:    input.Category,
		Description: input.Description,
		Date:        api.NormalizeDate(input.Date),
		Timestamp:   time.Now().UnixMilli(),
	}
	if expense.Category == "" {
		expense.Category = "other"
	}
	if expense.Description == "" {
		expense.Description = "No description"
	}

	expenses := append([]api.Expense{expense}, m.GetExpenses()...)
	if !m.SetExpenses(expenses) {
		return api.Expense{}, false
	}

	m.AddTransaction(TransactionInput{
		Type:        api.TypeExpense,
		Amount:      expense.Amount,
		Description: expense.Description,
		Category:    expense.Category,
		Date:        expense.Date,
		ExpenseID:   expense.ID,
	})
	return expense, true
}

// RemoveExpense drops the expense with the given id. Removing an id
// that is not present is a no-op that still reports success. The
// ledger transaction referencing the expense is left in place; its
// back-reference simply dangles.
func (m *Manager) RemoveExpense(id string) bool {
	expenses := m.GetExpenses()
	filtered := expenses[:0:0]
	for _, e := range expenses {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	return m.SetExpenses(filtered)
}

// ExpensePatch holds optional expense fields for a partial update.
type ExpensePatch struct {
	Amount      *api.Amount `json:"amount,omitempty"`
	Category    *string     `json:"category,omitempty"`
	Description *string     `json:"description,omitempty"`
	Date        *string     `json:"date,omitempty"`
}

// UpdateExpense merges the patch into the expense with the given id.
// Returns false when no expense matches or the write fails.
func (m *Manager) UpdateExpense(id string, patch ExpensePatch) bool {
	expenses := m.GetExpenses()
	for i := range expenses {
		if expenses[i].ID != id {
			continue
		}
		if patch.Amount != nil {
			expenses[i].Amount = api.Amount(sanitizeAmount(float64(*patch.Amount)))
		}
		if patch.Category != nil {
			expenses[i].Category = *patch.Category
		}
		if patch.Description != nil {
			expenses[i].Description = *patch.Description
		}
		if patch.Date != nil {
			expenses[i].Date = api.NormalizeDate(*patch.Date)
		}
		return m.SetExpenses(expenses)
	}
	return false
}

// ExpensesByPeriod returns the expenses dated within [start, end],
// bounds inclusive. Records with unparseable dates are excluded.
func (m *Manager) ExpensesByPeriod(start, end time.Time) []api.Expense {
	var out []api.Expense
	for _, e := range m.GetExpenses() {
		d, ok := api.ParseDate(e.Date)
		if !ok {
			continue
		}
		if !d.Before(start) && !d.After(end) {
			out = append(out, e)
		}
	}
	return out
}

// ExpensesByCategory returns the expenses in one category, or every
// expense for the category "all".
func (m *Manager) ExpensesByCategory(category string) []api.Expense {
	expenses := m.GetExpenses()
	if category == "all" {
		return expenses
	}
	var out []api.Expense
	for _, e := range expenses {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}
