// Package daemon provides the core daemon runner for PocketPal.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pocketpal/pocketpal/pkg/config"
	"github.com/pocketpal/pocketpal/pkg/events"
	"github.com/pocketpal/pocketpal/pkg/events/socket"
	"github.com/pocketpal/pocketpal/pkg/manager"
	storefile "github.com/pocketpal/pocketpal/pkg/storage/file"
)

// Runner manages the data daemon lifecycle: it owns the file store,
// the update hub, and the event bus that fans updates out to every
// connected process.
type Runner struct {
	registry *events.Registry
	logger   *slog.Logger
}

// New creates a new daemon runner.
func New(registry *events.Registry, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		registry: registry,
		logger:   logger,
	}
}

// Run starts the data daemon with the given configuration. It blocks
// until the context is canceled or an error occurs.
func (r *Runner) Run(ctx context.Context, cfg config.Config) error {
	names := cfg.TransportNames()
	if len(names) == 0 {
		return fmt.Errorf("POCKETPAL_TRANSPORTS selects no transports")
	}

	r.logger.Info("starting pocketpal daemon",
		"dataDir", cfg.DataDir,
		"transports", names,
	)

	store, err := storefile.New(storefile.Config{Dir: cfg.DataDir}, r.logger.With("component", "store"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	bus := events.NewBus(r.logger.With("component", "bus"))

	// The hub only exists where the socket transport is in play; other
	// transports carry updates without a central relay.
	var hubDone chan error
	for _, name := range names {
		if name != "socket" {
			continue
		}
		hub := socket.NewHub(cfg.SocketPath, r.logger.With("component", "hub"))
		hubDone = make(chan error, 1)
		go func() {
			hubDone <- hub.Run(ctx)
		}()
	}

	for _, name := range names {
		raw, err := cfg.TransportConfig(name)
		if err != nil {
			return err
		}
		transport, err := r.registry.Create(name, raw, r.logger.With("component", "transport", "plugin", name))
		if err != nil {
			return fmt.Errorf("creating transport: %w", err)
		}
		bus.AddTransport(transport)
	}
	go bus.Run(ctx)

	mgr := manager.New(store, bus, r.logger.With("component", "manager"))
	mgr.Initialize()
	mgr.MarkReturningUser()

	if issues := mgr.ValidateData(); len(issues) > 0 {
		r.logger.Warn("data validation found issues", "issues", issues)
	}

	r.logger.Info("daemon started")
	<-ctx.Done()

	if hubDone != nil {
		if err := <-hubDone; err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("hub error", "error", err)
		}
	}

	r.logger.Info("daemon stopped")
	return nil
}
