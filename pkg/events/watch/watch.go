// Package watch implements the redundant cross-process transport: a
// filesystem watcher on the store's data directory. Whenever another
// process rewrites an entity file, the change is translated into a
// data update on the channel inferred from the storage key.
//
// Broadcast is a no-op here: persisting the entity is the broadcast,
// since every other process watches the same directory. Together with
// the socket transport this means an update can be delivered twice for
// one change; subscribers are expected to be idempotent.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/pocketpal/pocketpal/pkg/api"
	"github.com/pocketpal/pocketpal/pkg/events"
	storefile "github.com/pocketpal/pocketpal/pkg/storage/file"
)

// Plugin registers the watch transport under the name "watch".
type Plugin struct{}

// Name implements events.TransportPlugin.
func (Plugin) Name() string { return "watch" }

// Description implements events.TransportPlugin.
func (Plugin) Description() string {
	return "storage change notifications from watching the data directory"
}

type pluginConfig struct {
	Dir string `json:"dir"`
}

// NewTransport implements events.TransportPlugin.
func (Plugin) NewTransport(config json.RawMessage, logger *slog.Logger) (events.Transport, error) {
	var cfg pluginConfig
	if len(config) > 0 {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return nil, fmt.Errorf("parsing watch transport config: %w", err)
		}
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("watch transport requires dir")
	}
	return New(cfg.Dir, logger), nil
}

// Transport watches one data directory.
type Transport struct {
	dir    string
	logger *slog.Logger
}

// New returns a transport watching the given data directory.
func New(dir string, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{dir: dir, logger: logger}
}

// Broadcast implements events.Transport. The file store's atomic write
// already signals every watcher, so there is nothing to send.
func (t *Transport) Broadcast(events.Update) error {
	return nil
}

// Listen translates file changes in the data directory into updates
// until the context is canceled.
func (t *Transport) Listen(ctx context.Context, deliver func(events.Update)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(t.dir); err != nil {
		return fmt.Errorf("watching %s: %w", t.dir, err)
	}

	t.logger.Info("watching data directory", "dir", t.dir)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Atomic writes surface as a rename onto the target,
			// deletions as remove.
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			t.handle(event, deliver)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			t.logger.Warn("watch error", "error", err)
		}
	}
}

// handle maps a file event to its entity channel and delivers the new
// value. Files without a channel (groups, flags, temp files) are
// ignored.
func (t *Transport) handle(event fsnotify.Event, deliver func(events.Update)) {
	key, ok := storefile.KeyForPath(event.Name)
	if !ok {
		return
	}
	channel, ok := api.ChannelForKey(key)
	if !ok {
		return
	}

	data, err := os.ReadFile(event.Name)
	if err != nil {
		if os.IsNotExist(err) {
			// Key deleted; deliver null so listeners re-read defaults.
			deliver(events.Update{Type: events.UpdateType, Channel: channel, Data: json.RawMessage("null")})
			return
		}
		t.logger.Warn("failed to read changed file", "file", event.Name, "error", err)
		return
	}
	if !json.Valid(data) {
		t.logger.Warn("ignoring malformed stored value", "file", event.Name)
		return
	}

	deliver(events.Update{Type: events.UpdateType, Channel: channel, Data: json.RawMessage(data)})
}
