package manager

import (
	"encoding/json"
	"strings"

	"github.com/pocketpal/pocketpal/pkg/api"
)

// DefaultUser returns the placeholder account created on first run.
func DefaultUser() api.User {
	return api.User{
		Username: "PocketPal User",
		Email:    "user@pocketpal.com",
	}
}

// DefaultBudgets returns a budget map with every fixed category at
// zero.
func DefaultBudgets() api.Budgets {
	b := make(api.Budgets, len(api.BudgetCategories))
	for _, category := range api.BudgetCategories {
		b[category] = 0
	}
	return b
}

// Sample-data fingerprint: placeholder content shipped with an earlier
// release. Initialize purges any store still carrying it. This is a
// one-shot migration rule, not a statement about user data.
var (
	sampleExpenseMarkers     = []string{"campus cafeteria", "Coffee at Starbucks", "Bus fare to college"}
	sampleTransactionMarkers = []string{"Coffee at Starbucks", "Bus fare to college"}
)

const sampleWalletBalance = 2500

// Initialize guarantees every entity key is present and structurally
// valid. It must run once per process before repository reads are
// trusted. The routine is idempotent; on an unexpected panic it resets
// every entity to its default rather than leaving the store
// half-initialized.
func (m *Manager) Initialize() {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("initialization failed, resetting to defaults", "panic", r)
			m.resetAll()
		}
	}()

	m.clearSampleData()

	// User: top-level malformation or empty username resets the record.
	var user api.User
	if !m.store.Load(api.KeyUser, &user) || user.Username == "" {
		m.logger.Info("initializing user data")
		m.store.Save(api.KeyUser, DefaultUser())
	}

	// Wallet: anything that does not decode as a number resets to zero.
	var wallet float64
	if !m.store.Load(api.KeyWallet, &wallet) {
		m.logger.Info("initializing wallet balance")
		m.store.Save(api.KeyWallet, 0.0)
	}

	// Budgets: a non-map resets wholesale; a valid map is merged over
	// the defaults so newly introduced categories are back-filled
	// without discarding user-set limits.
	var budgets api.Budgets
	if !m.store.Load(api.KeyBudgets, &budgets) {
		m.logger.Info("initializing budgets")
		m.store.Save(api.KeyBudgets, DefaultBudgets())
	} else {
		merged := DefaultBudgets()
		for category, limit := range budgets {
			merged[category] = sanitizeAmount(limit)
		}
		m.store.Save(api.KeyBudgets, merged)
	}

	initCollection(m, api.KeyExpenses, "expenses", api.Expense.Valid)
	initCollection(m, api.KeyTransactions, "transactions", api.Transaction.Valid)
	initCollection(m, api.KeyNotifications, "notifications", api.Notification.Valid)

	// Groups belong to the split view; ensure the key holds a list and
	// leave the elements alone.
	var groups []json.RawMessage
	if !m.store.Load(api.KeyGroups, &groups) || groups == nil {
		m.logger.Info("initializing groups")
		m.store.Save(api.KeyGroups, []api.Group{})
	}

	m.logger.Debug("data initialization and validation complete")
}

// initCollection ensures the key holds a list, drops elements that do
// not decode or fail the entity's required-field predicate, and
// persists the filtered list only when something was dropped.
func initCollection[T any](m *Manager, key, name string, valid func(T) bool) {
	// A stored JSON null decodes into a nil slice without an error, so
	// the nil check is what catches it; the key must hold a real array.
	var raw []json.RawMessage
	if !m.store.Load(key, &raw) || raw == nil {
		m.logger.Info("initializing collection", "entity", name)
		m.store.Save(key, []T{})
		return
	}

	kept := make([]T, 0, len(raw))
	for _, element := range raw {
		var v T
		if err := json.Unmarshal(element, &v); err != nil {
			continue
		}
		if !valid(v) {
			continue
		}
		kept = append(kept, v)
	}

	if len(kept) != len(raw) {
		m.logger.Info("cleaned invalid records", "entity", name, "dropped", len(raw)-len(kept))
		m.store.Save(key, kept)
	}
}

// clearSampleData wipes wallet, expenses, transactions, budgets, and
// notifications back to defaults when the store still carries the
// placeholder content of an earlier release.
func (m *Manager) clearSampleData() {
	wallet := m.GetWalletBalance()
	expenses := m.GetExpenses()
	transactions := m.GetTransactions()

	hit := wallet == sampleWalletBalance
	for _, e := range expenses {
		if hit {
			break
		}
		hit = containsAny(e.Description, sampleExpenseMarkers)
	}
	for _, t := range transactions {
		if hit {
			break
		}
		hit = containsAny(t.Description, sampleTransactionMarkers)
	}
	if !hit {
		return
	}

	m.logger.Info("clearing old sample data")
	m.store.Save(api.KeyWallet, 0.0)
	m.store.Save(api.KeyExpenses, []api.Expense{})
	m.store.Save(api.KeyTransactions, []api.Transaction{})
	m.store.Save(api.KeyBudgets, DefaultBudgets())
	m.store.Save(api.KeyNotifications, []api.Notification{})
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// resetAll overwrites every entity with its default value.
func (m *Manager) resetAll() {
	m.store.Save(api.KeyUser, DefaultUser())
	m.store.Save(api.KeyWallet, 0.0)
	m.store.Save(api.KeyBudgets, DefaultBudgets())
	m.store.Save(api.KeyExpenses, []api.Expense{})
	m.store.Save(api.KeyTransactions, []api.Transaction{})
	m.store.Save(api.KeyGroups, []api.Group{})
	m.store.Save(api.KeyNotifications, []api.Notification{})
}
