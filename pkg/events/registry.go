package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// TransportPlugin describes a named transport backend that the
// composition root can select through configuration.
type TransportPlugin interface {
	// Name returns the transport name (e.g., "socket", "watch").
	Name() string
	// Description returns a human-readable description.
	Description() string
	// NewTransport creates a transport instance with the given config.
	NewTransport(config json.RawMessage, logger *slog.Logger) (Transport, error)
}

// Registry manages available transport plugins.
type Registry struct {
	transports map[string]TransportPlugin
}

// NewRegistry creates an empty transport registry.
func NewRegistry() *Registry {
	return &Registry{transports: make(map[string]TransportPlugin)}
}

// Register registers a transport plugin.
func (r *Registry) Register(plugin TransportPlugin) error {
	name := plugin.Name()
	if _, exists := r.transports[name]; exists {
		return fmt.Errorf("transport plugin %q already registered", name)
	}
	r.transports[name] = plugin
	return nil
}

// Get returns a transport plugin by name.
func (r *Registry) Get(name string) (TransportPlugin, error) {
	plugin, exists := r.transports[name]
	if !exists {
		return nil, fmt.Errorf("transport plugin %q not found", name)
	}
	return plugin, nil
}

// List returns all registered transport plugins.
func (r *Registry) List() []TransportPlugin {
	plugins := make([]TransportPlugin, 0, len(r.transports))
	for _, plugin := range r.transports {
		plugins = append(plugins, plugin)
	}
	return plugins
}

// Create creates a transport instance from a registered plugin.
func (r *Registry) Create(name string, config json.RawMessage, logger *slog.Logger) (Transport, error) {
	plugin, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return plugin.NewTransport(config, logger)
}
