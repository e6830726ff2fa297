package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected default addr %q", cfg.ListenAddr)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("expected memory driver by default, got %q", cfg.Storage.Driver)
	}
	if cfg.TickInterval != 100*time.Millisecond {
		t.Fatalf("unexpected tick interval %v", cfg.TickInterval)
	}
	if cfg.World.Width != 5000 || cfg.World.InterestRadius != 1000 {
		t.Fatalf("unexpected world defaults: %+v", cfg.World)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
listenAddr: ":9000"
tickMs: 50
world:
  width: 8000
  graceSeconds: 120
storage:
  driver: sqlite
  path: /tmp/corsairs.db
logging:
  severity: debug
  sinks: [console, json]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("listen addr not merged: %q", cfg.ListenAddr)
	}
	if cfg.TickInterval != 50*time.Millisecond {
		t.Fatalf("tick not merged: %v", cfg.TickInterval)
	}
	if cfg.World.Width != 8000 {
		t.Fatalf("world width not merged: %v", cfg.World.Width)
	}
	if cfg.World.GraceWindow != 120*time.Second {
		t.Fatalf("grace window not merged: %v", cfg.World.GraceWindow)
	}
	// Untouched tunables keep their defaults.
	if cfg.World.Height != 5000 {
		t.Fatalf("world height should stay default, got %v", cfg.World.Height)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.Path != "/tmp/corsairs.db" {
		t.Fatalf("storage not merged: %+v", cfg.Storage)
	}
	logCfg := cfg.LoggingConfig()
	if !logCfg.HasSink("json") {
		t.Fatalf("expected json sink enabled, got %v", logCfg.EnabledSinks)
	}
}

func TestLoadCatalogOverride(t *testing.T) {
	path := writeConfig(t, `
shipClasses:
  - id: cutter
    displayName: Cutter
    maxHull: 80
    maxSpeed: 7
    cargoCapacity: 20
    cannonCount: 1
    cannonDamage: 8
    cannonRange: 400
    reloadMs: 1500
goods:
  - id: pearls
    displayName: Pearls
    basePrice: 200
    fluctuation: 50
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.ShipClasses) != 1 || cfg.ShipClasses[0].ID != "cutter" {
		t.Fatalf("ship classes not overridden: %+v", cfg.ShipClasses)
	}
	if cfg.ShipClasses[0].ReloadTime != 1500*time.Millisecond {
		t.Fatalf("reload not converted: %v", cfg.ShipClasses[0].ReloadTime)
	}
	if len(cfg.Goods) != 1 || cfg.Goods[0].ID != "pearls" {
		t.Fatalf("goods not overridden: %+v", cfg.Goods)
	}
	// Ports were not listed, so the built-in layout applies downstream.
	if len(cfg.Ports) != 0 {
		t.Fatalf("ports should stay empty when not configured, got %+v", cfg.Ports)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `listenAddr: ":9000"`)
	t.Setenv("CORSAIRS_ADDR", ":7777")
	t.Setenv("CORSAIRS_STORAGE_DRIVER", "sqlite")
	t.Setenv("CORSAIRS_STORAGE_PATH", "/tmp/env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":7777" {
		t.Fatalf("env addr override lost: %q", cfg.ListenAddr)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.Path != "/tmp/env.db" {
		t.Fatalf("env storage override lost: %+v", cfg.Storage)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown driver to fail validation")
	}

	cfg = Default()
	cfg.Storage.Driver = "sqlite"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected sqlite without path to fail validation")
	}

	cfg = Default()
	cfg.Logging.Severity = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown severity to fail validation")
	}

	if _, err := Load(writeConfig(t, "listenAddr: [")); err == nil {
		t.Fatalf("expected malformed yaml to fail")
	}
}
