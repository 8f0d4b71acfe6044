package manager

import (
	"time"

	"github.com/pocketpal/pocketpal/pkg/api"
	"github.com/pocketpal/pocketpal/pkg/storage"
)

// TransactionInput holds the caller-supplied fields for a new ledger
// transaction. Type defaults to expense and category to other.
// ExpenseID, when set, is a weak back-reference only: nothing checks
// that the expense exists, now or later.
type TransactionInput struct {
	Type        string     `json:"type"`
	Amount      api.Amount `json:"amount"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Date        string     `json:"date"`
	ExpenseID   string     `json:"expenseId"`
}

// GetTransactions returns the stored transactions, newest first.
func (m *Manager) GetTransactions() []api.Transaction {
	return storage.LoadOr(m.store, api.KeyTransactions, []api.Transaction{})
}

// SetTransactions stores the transaction list wholesale and publishes
// on the transactions channel when the write succeeds.
func (m *Manager) SetTransactions(transactions []api.Transaction) bool {
	if transactions == nil {
		transactions = []api.Transaction{}
	}
	if !m.store.Save(api.KeyTransactions, transactions) {
		return false
	}
	m.bus.Publish(api.ChannelTransactions, transactions)
	return true
}

// AddTransaction builds a transaction from the input and prepends it to
// the stored list. ok is false when the underlying write failed.
func (m *Manager) AddTransaction(input TransactionInput) (txn api.Transaction, ok bool) {
	txn = api.Transaction{
		ID:          api.NewID(),
		Type:        input.Type,
		Amount:      api.Amount(sanitizeAmount(float64(input.Amount))),
		Description: input.Description,
		Category:    input.Category,
		Date:        api.NormalizeDate(input.Date),
		Timestamp:   time.Now().UnixMilli(),
		ExpenseID:   input.ExpenseID,
	}
	if txn.Type == "" {
		txn.Type = api.TypeExpense
	}
	if txn.Category == "" {
		txn.Category = "other"
	}
	if txn.Description == "" {
		txn.Description = "No description"
	}

	transactions := append([]api.Transaction{txn}, m.GetTransactions()...)
	if !m.SetTransactions(transactions) {
		return api.Transaction{}, false
	}
	return txn, true
}

// TransactionsByType returns the transactions of one type, or every
// transaction for the type "all".
func (m *Manager) TransactionsByType(txType string) []api.Transaction {
	transactions := m.GetTransactions()
	if txType == "all" {
		return transactions
	}
	var out []api.Transaction
	for _, t := range transactions {
		if t.Type == txType {
			out = append(out, t)
		}
	}
	return out
}

// TransactionsByPeriod returns the transactions dated within
// [start, end], bounds inclusive.
func (m *Manager) TransactionsByPeriod(start, end time.Time) []api.Transaction {
	var out []api.Transaction
	for _, t := range m.GetTransactions() {
		d, ok := api.ParseDate(t.Date)
		if !ok {
			continue
		}
		if !d.Before(start) && !d.After(end) {
			out = append(out, t)
		}
	}
	return out
}
