package watch

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/pocketpal/pocketpal/pkg/api"
	"github.com/pocketpal/pocketpal/pkg/events"
	storefile "github.com/pocketpal/pocketpal/pkg/storage/file"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// startWatch runs a watch transport over the directory and returns the
// delivery channel.
func startWatch(t *testing.T, ctx context.Context, dir string) <-chan events.Update {
	t.Helper()
	transport := New(dir, testLogger())
	updates := make(chan events.Update, 16)
	go transport.Listen(ctx, func(u events.Update) { updates <- u })
	// Give the watcher a moment to attach before the test writes.
	time.Sleep(100 * time.Millisecond)
	return updates
}

func waitFor(t *testing.T, updates <-chan events.Update, channel string) events.Update {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case u := <-updates:
			if u.Channel == channel {
				return u
			}
		case <-deadline:
			t.Fatalf("no update on channel %q", channel)
		}
	}
}

// TestListen_DeliversStoreWrites tests that rewriting an entity file
// surfaces as an update on the matching channel carrying the new value.
func TestListen_DeliversStoreWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storefile.New(storefile.Config{Dir: t.TempDir()}, testLogger())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	updates := startWatch(t, ctx, store.Dir())

	if !store.Save(api.KeyWallet, 125.5) {
		t.Fatal("Save reported failure")
	}

	u := waitFor(t, updates, api.ChannelWallet)
	if u.Type != events.UpdateType {
		t.Errorf("update type = %q, want %q", u.Type, events.UpdateType)
	}
	if string(u.Data) != "125.5" {
		t.Errorf("update data = %s, want 125.5", u.Data)
	}
}

// TestListen_DeliversNullOnDelete tests that removing an entity file
// delivers null so listeners fall back to defaults.
func TestListen_DeliversNullOnDelete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storefile.New(storefile.Config{Dir: t.TempDir()}, testLogger())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	if !store.Save(api.KeyWallet, 10.0) {
		t.Fatal("Save reported failure")
	}

	updates := startWatch(t, ctx, store.Dir())
	store.Delete(api.KeyWallet)

	u := waitFor(t, updates, api.ChannelWallet)
	if string(u.Data) != "null" {
		t.Errorf("update data = %s, want null", u.Data)
	}
}

// TestListen_IgnoresUnmappedFiles tests that files without an entity
// channel never produce updates.
func TestListen_IgnoresUnmappedFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storefile.New(storefile.Config{Dir: t.TempDir()}, testLogger())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	updates := startWatch(t, ctx, store.Dir())

	// Groups have no channel; the flag key has no channel either.
	store.Save(api.KeyGroups, []api.Group{})
	store.Save(api.KeyReturningUser, true)
	// A write with a channel proves the watcher was alive the whole time.
	store.Save(api.KeyWallet, 1.0)

	u := waitFor(t, updates, api.ChannelWallet)
	if u.Channel != api.ChannelWallet {
		t.Fatalf("unexpected update: %+v", u)
	}
	select {
	case extra := <-updates:
		if extra.Channel != api.ChannelWallet {
			t.Errorf("unmapped file produced update: %+v", extra)
		}
	default:
	}
}

// TestPlugin_NewTransport tests config parsing and the required dir.
func TestPlugin_NewTransport(t *testing.T) {
	var plugin Plugin

	if _, err := plugin.NewTransport(nil, testLogger()); err == nil {
		t.Error("expected error for missing dir, got nil")
	}
	transport, err := plugin.NewTransport(json.RawMessage(`{"dir":"/tmp"}`), testLogger())
	if err != nil {
		t.Fatalf("NewTransport returned error: %v", err)
	}
	if transport == nil {
		t.Fatal("NewTransport returned nil transport")
	}
}
