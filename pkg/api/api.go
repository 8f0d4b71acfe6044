// Package api defines the persisted entities and shared constants for pocketpal.
package api

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage keys for every persisted entity. Consumers and tests rely on
// these exact names; they also double as the store file names.
const (
	KeyUser          = "pocketpal_user"
	KeyWallet        = "pocketpal_wallet"
	KeyBudgets       = "pocketpal_budgets"
	KeyExpenses      = "pocketpal_expenses"
	KeyTransactions  = "pocketpal_transactions"
	KeyGroups        = "pocketpal_groups"
	KeyNotifications = "pocketpal_notifications"
	KeyReturningUser = "pocketpal_returning_user"
)

// Event channels, one per entity type. Publish/Subscribe only accept
// these names; anything else is a silent no-op.
const (
	ChannelUser          = "user"
	ChannelWallet        = "wallet"
	ChannelExpenses      = "expenses"
	ChannelTransactions  = "transactions"
	ChannelBudgets       = "budgets"
	ChannelNotifications = "notifications"
)

// Channels lists every valid event channel.
var Channels = []string{
	ChannelUser,
	ChannelWallet,
	ChannelExpenses,
	ChannelTransactions,
	ChannelBudgets,
	ChannelNotifications,
}

// ChannelForKey maps a storage key to its event channel. The groups and
// returning-user keys have no channel; ok is false for them and for
// unknown keys.
func ChannelForKey(key string) (channel string, ok bool) {
	switch key {
	case KeyUser:
		return ChannelUser, true
	case KeyWallet:
		return ChannelWallet, true
	case KeyExpenses:
		return ChannelExpenses, true
	case KeyTransactions:
		return ChannelTransactions, true
	case KeyBudgets:
		return ChannelBudgets, true
	case KeyNotifications:
		return ChannelNotifications, true
	}
	return "", false
}

// KeyForChannel is the inverse of ChannelForKey.
func KeyForChannel(channel string) (key string, ok bool) {
	switch channel {
	case ChannelUser:
		return KeyUser, true
	case ChannelWallet:
		return KeyWallet, true
	case ChannelExpenses:
		return KeyExpenses, true
	case ChannelTransactions:
		return KeyTransactions, true
	case ChannelBudgets:
		return KeyBudgets, true
	case ChannelNotifications:
		return KeyNotifications, true
	}
	return "", false
}

// Transaction types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Notification severities.
const (
	NotifyInfo    = "info"
	NotifySuccess = "success"
	NotifyWarning = "warning"
	NotifyError   = "error"
)

// BudgetCategories are the fixed budget category keys. Stored budget
// maps may carry extra keys, but these five are always present after
// initialization.
var BudgetCategories = []string{"food", "travel", "entertainment", "study", "other"}

// Amount is a float64 that tolerates sloppy JSON: numeric strings parse
// to their value, and anything unparseable decodes to zero instead of
// failing the whole document.
type Amount float64

// UnmarshalJSON implements the parse-or-zero rule for amounts.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	*a = Amount(ParseAmount(s))
	return nil
}

// ParseAmount converts arbitrary user input to a float64, falling back
// to zero when the input is not a finite number.
func ParseAmount(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// User is the cosmetic account record. There is no authentication; the
// username only personalizes the views.
type User struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
}

// Budgets maps category keys to spending limits.
type Budgets map[string]float64

// Expense is a single spend record.
type Expense struct {
	ID          string `json:"id"`
	Amount      Amount `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	// Date is RFC 3339.
	Date      string `json:"date"`
	Timestamp int64  `json:"timestamp"`
}

// Transaction is a ledger record of type income or expense. ExpenseID
// is a weak back-reference to the expense that produced it: lookup
// only, never enforced, and left dangling after the expense is removed.
type Transaction struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Amount      Amount `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Timestamp   int64  `json:"timestamp"`
	ExpenseID   string `json:"expenseId,omitempty"`
}

// Notification is an in-app message shown on the dashboard bell.
type Notification struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Read      bool   `json:"read"`
	Date      string `json:"date"`
	Timestamp int64  `json:"timestamp"`
}

// GroupExpense is one shared expense inside a split group.
type GroupExpense struct {
	ID           string   `json:"id"`
	Description  string   `json:"description"`
	Amount       Amount   `json:"amount"`
	PaidBy       string   `json:"paidBy"`
	SplitBetween []string `json:"splitBetween"`
	Date         string   `json:"date"`
}

// Group is a bill-splitting group. It is a collaborator entity owned by
// the split view: the data manager stores it, initializes the key to an
// empty list, and otherwise leaves it alone (no element validation, no
// events).
type Group struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Members  []string       `json:"members"`
	Expenses []GroupExpense `json:"expenses"`
}

// Snapshot aggregates every core entity. It is the export/import wire
// format: a pretty-printed JSON object with these six top-level fields.
type Snapshot struct {
	User          User           `json:"user"`
	Wallet        float64        `json:"wallet"`
	Expenses      []Expense      `json:"expenses"`
	Transactions  []Transaction  `json:"transactions"`
	Budgets       Budgets        `json:"budgets"`
	Notifications []Notification `json:"notifications"`
}

// NewID returns an identifier built from the current unix-millis plus a
// random suffix, so ids created in the same millisecond stay distinct.
func NewID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NormalizeDate returns the input as RFC 3339, accepting a few common
// layouts. Absent or unparseable input normalizes to the current time.
func NormalizeDate(s string) string {
	if t, ok := ParseDate(s); ok {
		return t.UTC().Format(time.RFC3339)
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// ParseDate parses a date in any of the layouts NormalizeDate accepts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Valid reports whether an expense satisfies the required-field
// predicate used by initialization and validation.
func (e Expense) Valid() bool {
	return e.ID != "" && e.Category != "" && e.Date != ""
}

// Valid reports whether a transaction carries its required fields.
func (t Transaction) Valid() bool {
	return t.ID != "" && t.Type != "" && t.Date != ""
}

// Valid reports whether a notification carries its required fields.
func (n Notification) Valid() bool {
	return n.ID != "" && n.Message != "" && n.Date != ""
}

// MarshalJSON ensures a nil Budgets map still encodes as an object.
func (b Budgets) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]float64(b))
}
