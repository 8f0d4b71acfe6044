package manager

import (
	"encoding/json"
	"fmt"

	"github.com/pocketpal/pocketpal/pkg/api"
)

// AllData returns a read-only snapshot of every core entity. The
// snapshot itself is never persisted; it exists for export and for
// views that want one consistent read.
func (m *Manager) AllData() api.Snapshot {
	return api.Snapshot{
		User:          m.GetUser(),
		Wallet:        m.GetWalletBalance(),
		Expenses:      m.GetExpenses(),
		Transactions:  m.GetTransactions(),
		Budgets:       m.GetBudgets(),
		Notifications: m.GetNotifications(),
	}
}

// ClearAllData deletes every persisted key, re-runs initialization to
// restore defaults, then publishes one event per entity channel so
// every listener resynchronizes.
func (m *Manager) ClearAllData() bool {
	for _, key := range []string{
		api.KeyUser,
		api.KeyWallet,
		api.KeyBudgets,
		api.KeyExpenses,
		api.KeyTransactions,
		api.KeyGroups,
		api.KeyNotifications,
		api.KeyReturningUser,
	} {
		m.store.Delete(key)
	}

	m.Initialize()

	m.bus.Publish(api.ChannelUser, m.GetUser())
	m.bus.Publish(api.ChannelWallet, m.GetWalletBalance())
	m.bus.Publish(api.ChannelExpenses, m.GetExpenses())
	m.bus.Publish(api.ChannelTransactions, m.GetTransactions())
	m.bus.Publish(api.ChannelBudgets, m.GetBudgets())
	m.bus.Publish(api.ChannelNotifications, m.GetNotifications())
	return true
}

// ExportData serializes the full snapshot as pretty-printed JSON, the
// portable backup format ImportData accepts.
func (m *Manager) ExportData() (string, bool) {
	data, err := json.MarshalIndent(m.AllData(), "", "  ")
	if err != nil {
		m.logger.Error("failed to export data", "error", err)
		return "", false
	}
	return string(data), true
}

// importPayload mirrors the export format with every field optional,
// so partial backups apply only what they carry.
type importPayload struct {
	User          *api.User          `json:"user"`
	Wallet        *float64           `json:"wallet"`
	Expenses      []api.Expense      `json:"expenses"`
	Transactions  []api.Transaction  `json:"transactions"`
	Budgets       api.Budgets        `json:"budgets"`
	Notifications []api.Notification `json:"notifications"`
}

// ImportData parses serialized export text and applies each present
// top-level field through the corresponding setter. Malformed input
// reports false without touching the store. Import is best-effort, not
// atomic: fields applied before a failed write stay applied.
func (m *Manager) ImportData(serialized string) bool {
	var payload importPayload
	if err := json.Unmarshal([]byte(serialized), &payload); err != nil {
		m.logger.Error("failed to import data", "error", err)
		return false
	}

	ok := true
	if payload.User != nil {
		ok = m.SetUser(*payload.User) && ok
	}
	if payload.Wallet != nil {
		ok = m.SetWalletBalance(*payload.Wallet) && ok
	}
	if payload.Expenses != nil {
		ok = m.SetExpenses(payload.Expenses) && ok
	}
	if payload.Transactions != nil {
		ok = m.SetTransactions(payload.Transactions) && ok
	}
	if payload.Budgets != nil {
		ok = m.SetBudgets(payload.Budgets) && ok
	}
	if payload.Notifications != nil {
		ok = m.SetNotifications(payload.Notifications) && ok
	}
	return ok
}

// ValidateData inspects the store without mutating it and returns
// human-readable descriptions of anything out of shape. An empty list
// means the store is clean.
func (m *Manager) ValidateData() []string {
	var issues []string

	var rawWallet json.RawMessage
	if m.store.Load(api.KeyWallet, &rawWallet) {
		var wallet float64
		if err := json.Unmarshal(rawWallet, &wallet); err != nil {
			issues = append(issues, "Invalid wallet balance")
		}
	}

	var rawExpenses json.RawMessage
	if m.store.Load(api.KeyExpenses, &rawExpenses) {
		var elements []json.RawMessage
		if err := json.Unmarshal(rawExpenses, &elements); err != nil {
			issues = append(issues, "Invalid expenses data")
		} else {
			for i, element := range elements {
				var probe struct {
					ID     string   `json:"id"`
					Amount *float64 `json:"amount"`
				}
				if err := json.Unmarshal(element, &probe); err != nil || probe.ID == "" || probe.Amount == nil {
					issues = append(issues, fmt.Sprintf("Invalid expense at index %d", i))
				}
			}
		}
	}

	return issues
}
