package config

import (
	"encoding/json"
	"slices"
	"testing"
)

// TestLoad_EnvOverrides tests that environment variables land in the
// config fields.
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("POCKETPAL_DATA_DIR", "/tmp/pp-data")
	t.Setenv("POCKETPAL_SOCKET_PATH", "/tmp/pp.sock")
	t.Setenv("POCKETPAL_TRANSPORTS", "socket")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DataDir != "/tmp/pp-data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.SocketPath != "/tmp/pp.sock" {
		t.Errorf("SocketPath = %q", cfg.SocketPath)
	}
	if got := cfg.TransportNames(); !slices.Equal(got, []string{"socket"}) {
		t.Errorf("TransportNames() = %v", got)
	}
}

// TestLoad_Defaults tests that the socket path defaults into the data
// directory and both transports run by default.
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POCKETPAL_DATA_DIR", "/tmp/pp-data")
	t.Setenv("POCKETPAL_SOCKET_PATH", "")
	t.Setenv("POCKETPAL_TRANSPORTS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SocketPath != "/tmp/pp-data/pocketpal.sock" {
		t.Errorf("default SocketPath = %q", cfg.SocketPath)
	}
	if got := cfg.TransportNames(); !slices.Equal(got, []string{"socket", "watch"}) {
		t.Errorf("default TransportNames() = %v", got)
	}
}

// TestTransportNames_TrimsAndSkipsEmpty tests list parsing.
func TestTransportNames_TrimsAndSkipsEmpty(t *testing.T) {
	cfg := Config{Transports: " socket, , watch ,"}
	got := cfg.TransportNames()
	if !slices.Equal(got, []string{"socket", "watch"}) {
		t.Errorf("TransportNames() = %v", got)
	}
}

// TestTransportConfig tests the synthesized per-transport configs and
// explicit overrides.
func TestTransportConfig(t *testing.T) {
	cfg := Config{DataDir: "/data", SocketPath: "/data/pp.sock"}

	raw, err := cfg.TransportConfig("socket")
	if err != nil {
		t.Fatalf("TransportConfig(socket) returned error: %v", err)
	}
	var socketCfg struct {
		SocketPath string `json:"socketPath"`
	}
	if err := json.Unmarshal(raw, &socketCfg); err != nil {
		t.Fatalf("parsing socket config: %v", err)
	}
	if socketCfg.SocketPath != "/data/pp.sock" {
		t.Errorf("socket config = %s", raw)
	}

	raw, err = cfg.TransportConfig("watch")
	if err != nil {
		t.Fatalf("TransportConfig(watch) returned error: %v", err)
	}
	var watchCfg struct {
		Dir string `json:"dir"`
	}
	if err := json.Unmarshal(raw, &watchCfg); err != nil {
		t.Fatalf("parsing watch config: %v", err)
	}
	if watchCfg.Dir != "/data" {
		t.Errorf("watch config = %s", raw)
	}

	cfg.SocketConfig = json.RawMessage(`{"socketPath":"/other.sock"}`)
	raw, err = cfg.TransportConfig("socket")
	if err != nil {
		t.Fatalf("TransportConfig(socket) returned error: %v", err)
	}
	if string(raw) != `{"socketPath":"/other.sock"}` {
		t.Errorf("override not honored: %s", raw)
	}

	if _, err := cfg.TransportConfig("carrier-pigeon"); err == nil {
		t.Error("expected error for unknown transport, got nil")
	}
}
