package manager

import (
	"github.com/pocketpal/pocketpal/pkg/api"
	"github.com/pocketpal/pocketpal/pkg/storage"
)

// GetBudgets returns the stored budget map, or the default map when
// the key is missing or malformed.
func (m *Manager) GetBudgets() api.Budgets {
	return storage.LoadOr(m.store, api.KeyBudgets, DefaultBudgets())
}

// SetBudgets merges the given map over the default categories, so the
// five fixed keys are always present, and stores the result. Extra
// keys are kept. Publishes on the budgets channel when the write
// succeeds.
func (m *Manager) SetBudgets(budgets api.Budgets) bool {
	merged := DefaultBudgets()
	for category, limit := range budgets {
		merged[category] = sanitizeAmount(limit)
	}
	if !m.store.Save(api.KeyBudgets, merged) {
		return false
	}
	m.bus.Publish(api.ChannelBudgets, merged)
	return true
}

// UpdateBudget sets the limit for one category, clamping non-finite
// amounts to zero.
func (m *Manager) UpdateBudget(category string, amount float64) bool {
	budgets := m.GetBudgets()
	budgets[category] = sanitizeAmount(amount)
	return m.SetBudgets(budgets)
}
