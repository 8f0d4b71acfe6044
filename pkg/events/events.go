// Package events implements the observer layer of the data manager: an
// in-process bus with one channel per entity type, fanned out across
// cooperating processes by pluggable transports.
//
// Delivery is at-least-once. A single logical change can arrive through
// more than one transport (an explicit broadcast message and a storage
// change notification), so subscribers must be idempotent with respect
// to re-applying the same value.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pocketpal/pocketpal/pkg/api"
)

// UpdateType is the discriminant tag carried by every cross-process
// data-update message. Listeners must ignore messages with any other
// tag.
const UpdateType = "pocketpal_data_update"

// Update is the cross-process message contract: which entity channel
// changed and its new value.
type Update struct {
	Type    string          `json:"type"`
	Channel string          `json:"dataType"`
	Data    json.RawMessage `json:"data"`
}

// Transport moves Updates between processes. Broadcast sends one update
// to every other process; Listen blocks delivering inbound updates
// until the context is canceled.
type Transport interface {
	Broadcast(u Update) error
	Listen(ctx context.Context, deliver func(Update)) error
}

// Handler receives the new serialized value published on a channel.
type Handler func(data json.RawMessage)

// Subscription identifies a registered handler so it can be removed.
type Subscription struct {
	channel string
	id      int
}

type subscriber struct {
	id int
	fn Handler
}

// Bus registers handlers per entity channel and dispatches published
// values to them in registration order, then hands the update to every
// transport for cross-process fan-out.
type Bus struct {
	mu         sync.Mutex
	subs       map[string][]subscriber
	nextID     int
	transports []Transport
	logger     *slog.Logger
}

// NewBus returns a bus with one channel per entity type.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	subs := make(map[string][]subscriber, len(api.Channels))
	for _, ch := range api.Channels {
		subs[ch] = nil
	}
	return &Bus{subs: subs, logger: logger}
}

// AddTransport attaches a cross-process transport. Call before Run.
func (b *Bus) AddTransport(t Transport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transports = append(b.transports, t)
}

// Run starts listening on every attached transport, re-dispatching
// inbound updates through the local channels. It blocks until the
// context is canceled.
func (b *Bus) Run(ctx context.Context) {
	b.mu.Lock()
	transports := make([]Transport, len(b.transports))
	copy(transports, b.transports)
	b.mu.Unlock()

	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t Transport) {
			defer wg.Done()
			if err := t.Listen(ctx, b.dispatchRemote); err != nil && ctx.Err() == nil {
				b.logger.Error("transport listener stopped", "error", err)
			}
		}(t)
	}
	wg.Wait()
}

// Subscribe registers fn on an entity channel and returns its
// subscription. Unknown channel names are a silent no-op returning a
// zero subscription.
func (b *Bus) Subscribe(channel string, fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[channel]; !ok {
		return Subscription{}
	}
	b.nextID++
	b.subs[channel] = append(b.subs[channel], subscriber{id: b.nextID, fn: fn})
	return Subscription{channel: channel, id: b.nextID}
}

// Unsubscribe removes a subscription. Removing a zero or already
// removed subscription is a no-op.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list, ok := b.subs[sub.channel]
	if !ok {
		return
	}
	for i, s := range list {
		if s.id == sub.id {
			b.subs[sub.channel] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Publish serializes v, invokes every handler registered on the channel
// in registration order, then broadcasts the update to other processes.
// Unknown channels are a silent no-op.
func (b *Bus) Publish(channel string, v any) {
	b.mu.Lock()
	_, known := b.subs[channel]
	b.mu.Unlock()
	if !known {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		b.logger.Error("failed to serialize published value", "channel", channel, "error", err)
		return
	}

	b.dispatchLocal(channel, data)
	b.broadcast(Update{Type: UpdateType, Channel: channel, Data: data})
}

// dispatchRemote handles an update arriving from another process: it is
// dispatched locally only, never re-broadcast, so updates cannot loop
// between processes.
func (b *Bus) dispatchRemote(u Update) {
	if u.Type != UpdateType {
		return
	}
	b.mu.Lock()
	_, known := b.subs[u.Channel]
	b.mu.Unlock()
	if !known {
		return
	}
	b.dispatchLocal(u.Channel, u.Data)
}

// dispatchLocal invokes the channel's handlers in order. A panicking
// handler is logged and skipped so it cannot block the others.
func (b *Bus) dispatchLocal(channel string, data json.RawMessage) {
	b.mu.Lock()
	list := make([]subscriber, len(b.subs[channel]))
	copy(list, b.subs[channel])
	b.mu.Unlock()

	for _, s := range list {
		b.invoke(channel, s, data)
	}
}

func (b *Bus) invoke(channel string, s subscriber, data json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("data listener failed", "channel", channel, "panic", r)
		}
	}()
	s.fn(data)
}

func (b *Bus) broadcast(u Update) {
	b.mu.Lock()
	transports := make([]Transport, len(b.transports))
	copy(transports, b.transports)
	b.mu.Unlock()

	// Local dispatch already happened and the watch transport still
	// carries the change, so a failed broadcast (typically no hub
	// running) degrades delivery rather than losing the update.
	for _, t := range transports {
		if err := t.Broadcast(u); err != nil {
			b.logger.Warn("failed to broadcast data update", "channel", u.Channel, "error", err)
		}
	}
}
