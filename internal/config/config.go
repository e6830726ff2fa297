package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"corsairs/server/internal/world"
	"corsairs/server/logging"
)

// Storage selects and parameterizes the persistence backend.
type Storage struct {
	// Driver is "memory" or "sqlite".
	Driver string `yaml:"driver"`
	// Path is the sqlite database file. Ignored by the memory driver.
	Path string `yaml:"path"`
	// RecordTTLHours bounds how long disconnected player records survive.
	RecordTTLHours int `yaml:"recordTTLHours"`
}

// Logging configures the event router and its sinks.
type Logging struct {
	Sinks    []string `yaml:"sinks"`
	Severity string   `yaml:"severity"`
	JSONPath string   `yaml:"jsonPath"`
}

// worldSection is the YAML shape of the world tunables. Durations are spelled
// in whole units so a hand-edited file never needs nanosecond arithmetic.
type worldSection struct {
	Width             *float64 `yaml:"width"`
	Height            *float64 `yaml:"height"`
	ReferenceFPS      *float64 `yaml:"referenceFps"`
	HitRadius         *float64 `yaml:"hitRadius"`
	InterestRadius    *float64 `yaml:"interestRadius"`
	ProjectileSpeed   *float64 `yaml:"projectileSpeed"`
	ProjectileTTLSec  *int     `yaml:"projectileTTLSeconds"`
	VolleySpreadDeg   *float64 `yaml:"volleySpreadDeg"`
	GraceSeconds      *int     `yaml:"graceSeconds"`
	RemovalSeconds    *int     `yaml:"removalSeconds"`
	MarketSeconds     *int     `yaml:"marketSeconds"`
	LowStockThreshold *int     `yaml:"lowStockThreshold"`
	RestockMin        *int     `yaml:"restockMin"`
	RestockMax        *int     `yaml:"restockMax"`
	StartingGold      *int     `yaml:"startingGold"`
}

func (s worldSection) apply(cfg *world.Config) {
	if s.Width != nil {
		cfg.Width = *s.Width
	}
	if s.Height != nil {
		cfg.Height = *s.Height
	}
	if s.ReferenceFPS != nil {
		cfg.ReferenceFPS = *s.ReferenceFPS
	}
	if s.HitRadius != nil {
		cfg.HitRadius = *s.HitRadius
	}
	if s.InterestRadius != nil {
		cfg.InterestRadius = *s.InterestRadius
	}
	if s.ProjectileSpeed != nil {
		cfg.ProjectileSpeed = *s.ProjectileSpeed
	}
	if s.ProjectileTTLSec != nil {
		cfg.ProjectileTTL = time.Duration(*s.ProjectileTTLSec) * time.Second
	}
	if s.VolleySpreadDeg != nil {
		cfg.VolleySpreadDeg = *s.VolleySpreadDeg
	}
	if s.GraceSeconds != nil {
		cfg.GraceWindow = time.Duration(*s.GraceSeconds) * time.Second
	}
	if s.RemovalSeconds != nil {
		cfg.RemovalDelay = time.Duration(*s.RemovalSeconds) * time.Second
	}
	if s.MarketSeconds != nil {
		cfg.MarketInterval = time.Duration(*s.MarketSeconds) * time.Second
	}
	if s.LowStockThreshold != nil {
		cfg.LowStockThreshold = *s.LowStockThreshold
	}
	if s.RestockMin != nil {
		cfg.RestockMin = *s.RestockMin
	}
	if s.RestockMax != nil {
		cfg.RestockMax = *s.RestockMax
	}
	if s.StartingGold != nil {
		cfg.StartingGold = *s.StartingGold
	}
}

// shipClassSection mirrors world.ShipClass with the reload spelled in
// milliseconds.
type shipClassSection struct {
	ID            string  `yaml:"id"`
	DisplayName   string  `yaml:"displayName"`
	MaxHull       int     `yaml:"maxHull"`
	MaxSpeed      float64 `yaml:"maxSpeed"`
	Armor         float64 `yaml:"armor"`
	CargoCapacity int     `yaml:"cargoCapacity"`
	CannonCount   int     `yaml:"cannonCount"`
	CannonDamage  int     `yaml:"cannonDamage"`
	CannonRange   float64 `yaml:"cannonRange"`
	ReloadMs      int     `yaml:"reloadMs"`
}

func (s shipClassSection) toClass() world.ShipClass {
	return world.ShipClass{
		ID:            s.ID,
		DisplayName:   s.DisplayName,
		MaxHull:       s.MaxHull,
		MaxSpeed:      s.MaxSpeed,
		ArmorPercent:  s.Armor,
		CargoCapacity: s.CargoCapacity,
		CannonCount:   s.CannonCount,
		CannonDamage:  s.CannonDamage,
		CannonRange:   s.CannonRange,
		ReloadTime:    time.Duration(s.ReloadMs) * time.Millisecond,
	}
}

// file is the on-disk YAML shape.
type file struct {
	ListenAddr  string             `yaml:"listenAddr"`
	ClientDir   string             `yaml:"clientDir"`
	TickMs      int                `yaml:"tickMs"`
	PublishMs   int                `yaml:"publishMs"`
	World       worldSection       `yaml:"world"`
	ShipClasses []shipClassSection `yaml:"shipClasses"`
	Goods       []world.Good       `yaml:"goods"`
	Ports       []world.Port       `yaml:"ports"`
	Storage     Storage            `yaml:"storage"`
	Logging     Logging            `yaml:"logging"`
}

// Config is the resolved runtime configuration.
type Config struct {
	ListenAddr      string
	ClientDir       string
	TickInterval    time.Duration
	PublishInterval time.Duration

	World       world.Config
	ShipClasses []world.ShipClass
	Goods       []world.Good
	Ports       []world.Port

	Storage Storage
	Logging Logging
}

// Default returns the built-in configuration: memory storage, console
// logging, and the default catalogs.
func Default() Config {
	return Config{
		ListenAddr:      ":8080",
		TickInterval:    100 * time.Millisecond,
		PublishInterval: 100 * time.Millisecond,
		World:           world.DefaultConfig(),
		Storage:         Storage{Driver: "memory", RecordTTLHours: 24},
		Logging:         Logging{Sinks: []string{"console"}, Severity: "info"},
	}
}

// Load reads a YAML config file over the defaults and applies environment
// overrides. An empty path skips the file and leaves the defaults in place.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var f file
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		cfg.merge(f)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) merge(f file) {
	if f.ListenAddr != "" {
		c.ListenAddr = f.ListenAddr
	}
	if f.ClientDir != "" {
		c.ClientDir = f.ClientDir
	}
	if f.TickMs > 0 {
		c.TickInterval = time.Duration(f.TickMs) * time.Millisecond
	}
	if f.PublishMs > 0 {
		c.PublishInterval = time.Duration(f.PublishMs) * time.Millisecond
	}
	f.World.apply(&c.World)
	if len(f.ShipClasses) > 0 {
		classes := make([]world.ShipClass, 0, len(f.ShipClasses))
		for _, s := range f.ShipClasses {
			classes = append(classes, s.toClass())
		}
		c.ShipClasses = classes
	}
	if len(f.Goods) > 0 {
		c.Goods = f.Goods
	}
	if len(f.Ports) > 0 {
		c.Ports = f.Ports
	}
	if f.Storage.Driver != "" {
		c.Storage.Driver = f.Storage.Driver
	}
	if f.Storage.Path != "" {
		c.Storage.Path = f.Storage.Path
	}
	if f.Storage.RecordTTLHours > 0 {
		c.Storage.RecordTTLHours = f.Storage.RecordTTLHours
	}
	if len(f.Logging.Sinks) > 0 {
		c.Logging.Sinks = f.Logging.Sinks
	}
	if f.Logging.Severity != "" {
		c.Logging.Severity = f.Logging.Severity
	}
	if f.Logging.JSONPath != "" {
		c.Logging.JSONPath = f.Logging.JSONPath
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CORSAIRS_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("CORSAIRS_CLIENT_DIR"); v != "" {
		c.ClientDir = v
	}
	if v := os.Getenv("CORSAIRS_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("CORSAIRS_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("CORSAIRS_LOG_SEVERITY"); v != "" {
		c.Logging.Severity = v
	}
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage: sqlite driver requires a path")
		}
	default:
		return fmt.Errorf("storage: unknown driver %q", c.Storage.Driver)
	}
	if c.TickInterval <= 0 || c.PublishInterval <= 0 {
		return fmt.Errorf("tick and publish intervals must be positive")
	}
	if _, err := c.severity(); err != nil {
		return err
	}
	return nil
}

func (c Config) severity() (logging.Severity, error) {
	switch c.Logging.Severity {
	case "", "info":
		return logging.SeverityInfo, nil
	case "debug":
		return logging.SeverityDebug, nil
	case "warn":
		return logging.SeverityWarn, nil
	case "error":
		return logging.SeverityError, nil
	default:
		return 0, fmt.Errorf("logging: unknown severity %q", c.Logging.Severity)
	}
}

// LoggingConfig translates the file section into the router's configuration.
func (c Config) LoggingConfig() logging.Config {
	out := logging.DefaultConfig()
	if len(c.Logging.Sinks) > 0 {
		out.EnabledSinks = c.Logging.Sinks
	}
	if sev, err := c.severity(); err == nil {
		out.MinimumSeverity = sev
	}
	if c.Logging.JSONPath != "" {
		out.JSON.FilePath = c.Logging.JSONPath
	}
	return out
}

// RecordTTL converts the storage TTL into a duration.
func (c Config) RecordTTL() time.Duration {
	if c.Storage.RecordTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Storage.RecordTTLHours) * time.Hour
}
