// Package manager implements the shared data manager: the single
// source of truth for every persisted entity. All views read through
// it, write through it, and subscribe to it; none touch the store
// directly.
//
// Every mutation is a whole-entity read-modify-write followed by an
// event on the entity's channel. The only error kind that propagates is
// a failed store write, reported as a boolean; malformed data is healed
// silently by coercion and by Initialize.
package manager

import (
	"log/slog"
	"math"

	"github.com/pocketpal/pocketpal/pkg/api"
	"github.com/pocketpal/pocketpal/pkg/events"
	"github.com/pocketpal/pocketpal/pkg/storage"
)

// Manager owns the persisted entities. Construct it with New at the
// composition root and hand it to every consumer; it is not a global.
type Manager struct {
	store  storage.Store
	bus    *events.Bus
	logger *slog.Logger
}

// New returns a manager over the given store and bus. A nil bus gets a
// private one (useful in tests that only exercise persistence).
func New(store storage.Store, bus *events.Bus, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if bus == nil {
		bus = events.NewBus(logger)
	}
	return &Manager{store: store, bus: bus, logger: logger}
}

// Bus exposes the event bus so the composition root can attach
// transports and run the listeners.
func (m *Manager) Bus() *events.Bus {
	return m.bus
}

// Subscribe registers a handler on an entity channel. See events.Bus.
func (m *Manager) Subscribe(channel string, fn events.Handler) events.Subscription {
	return m.bus.Subscribe(channel, fn)
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(sub events.Subscription) {
	m.bus.Unsubscribe(sub)
}

// sanitizeAmount clamps non-finite values to zero, the numeric analogue
// of the parse-or-zero rule.
func sanitizeAmount(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// User

// GetUser returns the stored user, or the default user when the key is
// missing or malformed.
func (m *Manager) GetUser() api.User {
	return storage.LoadOr(m.store, api.KeyUser, DefaultUser())
}

// SetUser stores the user, back-filling empty username and email from
// the defaults so the record never loses its identity fields. Publishes
// on the user channel when the write succeeds.
func (m *Manager) SetUser(u api.User) bool {
	def := DefaultUser()
	if u.Username == "" {
		u.Username = def.Username
	}
	if u.Email == "" {
		u.Email = def.Email
	}
	if !m.store.Save(api.KeyUser, u) {
		return false
	}
	m.bus.Publish(api.ChannelUser, u)
	return true
}

// UserPatch holds optional user fields for a partial update.
type UserPatch struct {
	Username       *string
	Email          *string
	ProfilePicture *string
}

// UpdateUser merges the patch over the current user and stores the
// result through SetUser.
func (m *Manager) UpdateUser(patch UserPatch) bool {
	u := m.GetUser()
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.ProfilePicture != nil {
		u.ProfilePicture = *patch.ProfilePicture
	}
	return m.SetUser(u)
}

// Wallet

// GetWalletBalance returns the wallet balance, or zero when the key is
// missing or malformed.
func (m *Manager) GetWalletBalance() float64 {
	return storage.LoadOr(m.store, api.KeyWallet, 0.0)
}

// SetWalletBalance stores the balance, clamping non-finite input to
// zero, and publishes on the wallet channel when the write succeeds.
func (m *Manager) SetWalletBalance(amount float64) bool {
	balance := sanitizeAmount(amount)
	if !m.store.Save(api.KeyWallet, balance) {
		return false
	}
	m.bus.Publish(api.ChannelWallet, balance)
	return true
}

// AddMoney increases the balance and, only if that write succeeds,
// records a matching income transaction.
func (m *Manager) AddMoney(amount float64) bool {
	amount = sanitizeAmount(amount)
	if !m.SetWalletBalance(m.GetWalletBalance() + amount) {
		return false
	}
	m.AddTransaction(TransactionInput{
		Type:        api.TypeIncome,
		Amount:      api.Amount(amount),
		Description: "Added money to wallet",
		Category:    "income",
	})
	return true
}

// SubtractMoney decreases the balance. It records no transaction: the
// expense flow creates its own ledger entry, and a second one here
// would double-count.
func (m *Manager) SubtractMoney(amount float64) bool {
	return m.SetWalletBalance(m.GetWalletBalance() - sanitizeAmount(amount))
}

// Returning-user flag

// IsReturningUser reports whether this browser profile has completed a
// first run before.
func (m *Manager) IsReturningUser() bool {
	return storage.LoadOr(m.store, api.KeyReturningUser, false)
}

// MarkReturningUser sets the returning-user flag.
func (m *Manager) MarkReturningUser() bool {
	return m.store.Save(api.KeyReturningUser, true)
}

// Groups

// GetGroups returns the stored split groups. Groups belong to the split
// view; the manager stores them untouched and publishes no events for
// them.
func (m *Manager) GetGroups() []api.Group {
	return storage.LoadOr(m.store, api.KeyGroups, []api.Group{})
}

// SetGroups stores the split groups wholesale.
func (m *Manager) SetGroups(groups []api.Group) bool {
	if groups == nil {
		groups = []api.Group{}
	}
	return m.store.Save(api.KeyGroups, groups)
}
