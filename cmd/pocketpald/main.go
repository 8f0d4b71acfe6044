package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketpal/pocketpal/internal/daemon"
	"github.com/pocketpal/pocketpal/pkg/config"
	"github.com/pocketpal/pocketpal/pkg/events"
	"github.com/pocketpal/pocketpal/pkg/events/socket"
	"github.com/pocketpal/pocketpal/pkg/events/watch"
	"github.com/pocketpal/pocketpal/pkg/logging"
)

func main() {
	// Setup logging
	logger := logging.Setup(logging.DefaultConfig())

	// Create transport registry
	registry := events.NewRegistry()

	if err := registry.Register(&socket.Plugin{}); err != nil {
		logger.Error("failed to register socket plugin", "error", err)
		os.Exit(1)
	}
	if err := registry.Register(&watch.Plugin{}); err != nil {
		logger.Error("failed to register watch plugin", "error", err)
		os.Exit(1)
	}

	logger.Info("transports registered", "transports", len(registry.List()))

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"dataDir", cfg.DataDir,
		"socketPath", cfg.SocketPath,
		"transports", cfg.Transports,
	)

	// Create daemon runner
	runner := daemon.New(registry, logger)

	// Setup context with cancellation on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Run daemon
	if err := runner.Run(ctx, cfg); err != nil {
		logger.Error("daemon failed", "error", err)
		os.Exit(1)
	}
}
