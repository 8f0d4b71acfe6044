// Package config holds the application configuration loaded from
// environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// DataDir is the directory where entity documents are stored.
	// Environment variable: POCKETPAL_DATA_DIR
	DataDir string `koanf:"POCKETPAL_DATA_DIR"`

	// SocketPath is the unix socket the update hub listens on.
	// Environment variable: POCKETPAL_SOCKET_PATH
	SocketPath string `koanf:"POCKETPAL_SOCKET_PATH"`

	// Transports is a comma-separated list of transport plugins to run.
	// Environment variable: POCKETPAL_TRANSPORTS
	Transports string `koanf:"POCKETPAL_TRANSPORTS"`

	// SocketConfig is the JSON configuration for the socket transport.
	// Environment variable: POCKETPAL_SOCKET_CONFIG
	SocketConfig json.RawMessage `koanf:"POCKETPAL_SOCKET_CONFIG"`

	// WatchConfig is the JSON configuration for the watch transport.
	// Environment variable: POCKETPAL_WATCH_CONFIG
	WatchConfig json.RawMessage `koanf:"POCKETPAL_WATCH_CONFIG"`
}

// Load reads configuration from the environment and fills in defaults
// for anything not set.
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.DataDir = filepath.Join(home, ".pocketpal")
	}
	if c.SocketPath == "" {
		c.SocketPath = filepath.Join(c.DataDir, "pocketpal.sock")
	}
	if c.Transports == "" {
		c.Transports = "socket,watch"
	}
}

// TransportNames splits the Transports list into individual plugin names.
func (c Config) TransportNames() []string {
	var names []string
	for _, name := range strings.Split(c.Transports, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// TransportConfig returns the JSON configuration for the named
// transport, synthesizing one from DataDir and SocketPath when no
// explicit override was provided.
func (c Config) TransportConfig(name string) (json.RawMessage, error) {
	switch name {
	case "socket":
		if len(c.SocketConfig) > 0 {
			return c.SocketConfig, nil
		}
		return json.Marshal(map[string]string{"socketPath": c.SocketPath})
	case "watch":
		if len(c.WatchConfig) > 0 {
			return c.WatchConfig, nil
		}
		return json.Marshal(map[string]string{"dir": c.DataDir})
	default:
		return nil, fmt.Errorf("no configuration for transport %q", name)
	}
}
