package manager

import (
	"time"

	"github.com/pocketpal/pocketpal/pkg/api"
	"github.com/pocketpal/pocketpal/pkg/storage"
)

// GetNotifications returns the stored notifications, newest first.
func (m *Manager) GetNotifications() []api.Notification {
	return storage.LoadOr(m.store, api.KeyNotifications, []api.Notification{})
}

// SetNotifications stores the notification list wholesale and publishes
// on the notifications channel when the write succeeds.
func (m *Manager) SetNotifications(notifications []api.Notification) bool {
	if notifications == nil {
		notifications = []api.Notification{}
	}
	if !m.store.Save(api.KeyNotifications, notifications) {
		return false
	}
	m.bus.Publish(api.ChannelNotifications, notifications)
	return true
}

// AddNotification prepends a new notification. autoRead creates it
// already marked read, for messages that only matter as history.
func (m *Manager) AddNotification(message, notifType string, autoRead bool) (api.Notification, bool) {
	if notifType == "" {
		notifType = api.NotifyInfo
	}
	n := api.Notification{
		ID:        api.NewID(),
		Message:   message,
		Type:      notifType,
		Read:      autoRead,
		Date:      time.Now().UTC().Format(time.RFC3339),
		Timestamp: time.Now().UnixMilli(),
	}

	notifications := append([]api.Notification{n}, m.GetNotifications()...)
	if !m.SetNotifications(notifications) {
		return api.Notification{}, false
	}
	return n, true
}

// MarkNotificationRead marks one notification read. Returns false when
// no notification matches or the write fails.
func (m *Manager) MarkNotificationRead(id string) bool {
	notifications := m.GetNotifications()
	for i := range notifications {
		if notifications[i].ID == id {
			notifications[i].Read = true
			return m.SetNotifications(notifications)
		}
	}
	return false
}

// MarkAllNotificationsRead marks every notification read.
func (m *Manager) MarkAllNotificationsRead() bool {
	notifications := m.GetNotifications()
	for i := range notifications {
		notifications[i].Read = true
	}
	return m.SetNotifications(notifications)
}

// DeleteNotification removes one notification by id. A missing id is a
// no-op that still reports success.
func (m *Manager) DeleteNotification(id string) bool {
	notifications := m.GetNotifications()
	filtered := notifications[:0:0]
	for _, n := range notifications {
		if n.ID != id {
			filtered = append(filtered, n)
		}
	}
	return m.SetNotifications(filtered)
}

// ClearNotifications removes every notification.
func (m *Manager) ClearNotifications() bool {
	return m.SetNotifications(nil)
}

// UnreadNotifications returns the notifications not yet marked read.
func (m *Manager) UnreadNotifications() []api.Notification {
	var out []api.Notification
	for _, n := range m.GetNotifications() {
		if !n.Read {
			out = append(out, n)
		}
	}
	return out
}
