package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pocketpal/pocketpal/pkg/config"
	"github.com/pocketpal/pocketpal/pkg/events"
	"github.com/pocketpal/pocketpal/pkg/events/socket"
	"github.com/pocketpal/pocketpal/pkg/logging"
	"github.com/pocketpal/pocketpal/pkg/manager"
	storefile "github.com/pocketpal/pocketpal/pkg/storage/file"
)

// newManager builds a manager over the shared data directory. Writes
// are announced over the update socket so a running daemon and other
// processes see them; without a daemon the announcement is dropped and
// the watch transport still carries the change.
func newManager() (*manager.Manager, error) {
	cfg := logging.DefaultConfig()
	// Keep command output clean unless the user asked for more.
	if os.Getenv("POCKETPAL_LOG_LEVEL") == "" {
		cfg.Level = slog.LevelError
	}
	logger := logging.Setup(cfg)

	appCfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := storefile.New(storefile.Config{Dir: appCfg.DataDir}, logger.With("component", "store"))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	bus := events.NewBus(logger.With("component", "bus"))
	bus.AddTransport(socket.New(appCfg.SocketPath, logger.With("component", "transport", "plugin", "socket")))

	mgr := manager.New(store, bus, logger.With("component", "manager"))
	mgr.Initialize()
	return mgr, nil
}
