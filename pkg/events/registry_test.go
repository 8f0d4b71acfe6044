package events

import (
	"encoding/json"
	"log/slog"
	"testing"
)

type stubPlugin struct {
	name string
}

func (p *stubPlugin) Name() string        { return p.name }
func (p *stubPlugin) Description() string { return "stub transport for tests" }
func (p *stubPlugin) NewTransport(config json.RawMessage, logger *slog.Logger) (Transport, error) {
	return newFakeTransport(), nil
}

// TestRegistry_RegisterAndCreate tests the register, lookup, and create
// path.
func TestRegistry_RegisterAndCreate(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&stubPlugin{name: "stub"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	transport, err := registry.Create("stub", nil, slog.Default())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if transport == nil {
		t.Fatal("Create returned nil transport")
	}

	if len(registry.List()) != 1 {
		t.Errorf("List() has %d plugins, want 1", len(registry.List()))
	}
}

// TestRegistry_DuplicateName tests that a second plugin under the same
// name is rejected.
func TestRegistry_DuplicateName(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&stubPlugin{name: "stub"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := registry.Register(&stubPlugin{name: "stub"}); err == nil {
		t.Error("expected error registering duplicate plugin, got nil")
	}
}

// TestRegistry_UnknownPlugin tests lookup and create of a missing name.
func TestRegistry_UnknownPlugin(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Get("missing"); err == nil {
		t.Error("expected error from Get, got nil")
	}
	if _, err := registry.Create("missing", nil, slog.Default()); err == nil {
		t.Error("expected error from Create, got nil")
	}
}
