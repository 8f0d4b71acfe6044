package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pocketpal/pocketpal/pkg/api"
)

func newTestBus() *Bus {
	return NewBus(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

// fakeTransport records broadcasts and can inject inbound updates.
type fakeTransport struct {
	mu      sync.Mutex
	sent    []Update
	inbound chan Update
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{inbound: make(chan Update, 8)}
}

func (f *fakeTransport) Broadcast(u Update) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, u)
	return nil
}

func (f *fakeTransport) Listen(ctx context.Context, deliver func(Update)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u := <-f.inbound:
			deliver(u)
		}
	}
}

func (f *fakeTransport) broadcasts() []Update {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Update(nil), f.sent...)
}

// TestPublish_DispatchesInRegistrationOrder tests that handlers on a
// channel run in the order they subscribed.
func TestPublish_DispatchesInRegistrationOrder(t *testing.T) {
	bus := newTestBus()

	var order []string
	bus.Subscribe(api.ChannelWallet, func(json.RawMessage) { order = append(order, "first") })
	bus.Subscribe(api.ChannelWallet, func(json.RawMessage) { order = append(order, "second") })

	bus.Publish(api.ChannelWallet, 10.0)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("dispatch order = %v", order)
	}
}

// TestPublish_SerializesValue tests that handlers receive the published
// value as JSON.
func TestPublish_SerializesValue(t *testing.T) {
	bus := newTestBus()

	var got json.RawMessage
	bus.Subscribe(api.ChannelWallet, func(data json.RawMessage) { got = data })

	bus.Publish(api.ChannelWallet, 125.5)

	if string(got) != "125.5" {
		t.Errorf("handler received %s, want 125.5", got)
	}
}

// TestSubscribe_UnknownChannel tests that unknown channels are accepted
// silently and never dispatched.
func TestSubscribe_UnknownChannel(t *testing.T) {
	bus := newTestBus()

	called := false
	sub := bus.Subscribe("bogus", func(json.RawMessage) { called = true })

	bus.Publish("bogus", 1)
	if called {
		t.Error("handler on unknown channel was invoked")
	}

	// Unsubscribing the zero subscription must not panic.
	bus.Unsubscribe(sub)
}

// TestUnsubscribe_StopsDelivery tests that a removed handler no longer
// receives updates while the remaining ones still do.
func TestUnsubscribe_StopsDelivery(t *testing.T) {
	bus := newTestBus()

	var first, second int
	sub := bus.Subscribe(api.ChannelUser, func(json.RawMessage) { first++ })
	bus.Subscribe(api.ChannelUser, func(json.RawMessage) { second++ })

	bus.Publish(api.ChannelUser, "a")
	bus.Unsubscribe(sub)
	bus.Publish(api.ChannelUser, "b")

	if first != 1 {
		t.Errorf("removed handler invoked %d times, want 1", first)
	}
	if second != 2 {
		t.Errorf("remaining handler invoked %d times, want 2", second)
	}
}

// TestPublish_PanickingHandlerDoesNotBlockOthers tests that one failing
// listener cannot starve the rest of the channel.
func TestPublish_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := newTestBus()

	var survived bool
	bus.Subscribe(api.ChannelExpenses, func(json.RawMessage) { panic("listener bug") })
	bus.Subscribe(api.ChannelExpenses, func(json.RawMessage) { survived = true })

	bus.Publish(api.ChannelExpenses, []string{})

	if !survived {
		t.Error("handler after a panicking one was not invoked")
	}
}

// TestPublish_BroadcastsToTransports tests that a local publish reaches
// every attached transport with the update message contract.
func TestPublish_BroadcastsToTransports(t *testing.T) {
	bus := newTestBus()
	transport := newFakeTransport()
	bus.AddTransport(transport)

	bus.Publish(api.ChannelWallet, 50.0)

	sent := transport.broadcasts()
	if len(sent) != 1 {
		t.Fatalf("got %d broadcasts, want 1", len(sent))
	}
	u := sent[0]
	if u.Type != UpdateType {
		t.Errorf("broadcast type = %q, want %q", u.Type, UpdateType)
	}
	if u.Channel != api.ChannelWallet {
		t.Errorf("broadcast channel = %q", u.Channel)
	}
	if string(u.Data) != "50" {
		t.Errorf("broadcast data = %s", u.Data)
	}
}

// brokenTransport always fails to send.
type brokenTransport struct{}

func (brokenTransport) Broadcast(Update) error {
	return errors.New("nobody listening")
}

func (brokenTransport) Listen(ctx context.Context, _ func(Update)) error {
	<-ctx.Done()
	return ctx.Err()
}

// TestPublish_BroadcastFailureIsWarning tests that a transport send
// failure still dispatches locally and is logged below Error: with no
// hub running a mutation is degraded, not broken, and must not print
// error lines.
func TestPublish_BroadcastFailureIsWarning(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(slog.New(slog.NewTextHandler(&buf, nil)))
	bus.AddTransport(brokenTransport{})

	delivered := false
	bus.Subscribe(api.ChannelWallet, func(json.RawMessage) { delivered = true })

	bus.Publish(api.ChannelWallet, 10.0)

	if !delivered {
		t.Error("local dispatch skipped on broadcast failure")
	}
	logged := buf.String()
	if !strings.Contains(logged, "failed to broadcast data update") {
		t.Errorf("broadcast failure not logged: %q", logged)
	}
	if strings.Contains(logged, "level=ERROR") {
		t.Errorf("broadcast failure logged as error: %q", logged)
	}
}

// TestRun_RemoteUpdateDispatchedNotRebroadcast tests that an inbound
// update reaches local handlers without echoing back out, so updates
// cannot loop between processes.
func TestRun_RemoteUpdateDispatchedNotRebroadcast(t *testing.T) {
	bus := newTestBus()
	transport := newFakeTransport()
	bus.AddTransport(transport)

	received := make(chan json.RawMessage, 1)
	bus.Subscribe(api.ChannelWallet, func(data json.RawMessage) { received <- data })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx)

	transport.inbound <- Update{Type: UpdateType, Channel: api.ChannelWallet, Data: json.RawMessage("75")}

	select {
	case data := <-received:
		if string(data) != "75" {
			t.Errorf("handler received %s, want 75", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("remote update never reached local handler")
	}

	if n := len(transport.broadcasts()); n != 0 {
		t.Errorf("remote update was re-broadcast %d times", n)
	}
}

// TestRun_IgnoresForeignMessages tests that messages without the update
// tag are dropped.
func TestRun_IgnoresForeignMessages(t *testing.T) {
	bus := newTestBus()
	transport := newFakeTransport()
	bus.AddTransport(transport)

	received := make(chan json.RawMessage, 1)
	bus.Subscribe(api.ChannelWallet, func(data json.RawMessage) { received <- data })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx)

	transport.inbound <- Update{Type: "some_other_message", Channel: api.ChannelWallet, Data: json.RawMessage("1")}
	transport.inbound <- Update{Type: UpdateType, Channel: api.ChannelWallet, Data: json.RawMessage("2")}

	select {
	case data := <-received:
		if string(data) != "2" {
			t.Errorf("handler received %s, want only the tagged update", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tagged update never delivered")
	}
}
