package world

import "time"

// Config carries the simulation tunables. Values are tunables, not contracts;
// tests rely on DefaultConfig only for the map dimensions and hit radius.
type Config struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`

	// ReferenceFPS keeps speed units tick-rate independent: displacement per
	// tick is direction * speed * dt * ReferenceFPS.
	ReferenceFPS float64 `json:"referenceFps" yaml:"referenceFps"`

	HitRadius       float64       `json:"hitRadius" yaml:"hitRadius"`
	InterestRadius  float64       `json:"interestRadius" yaml:"interestRadius"`
	ProjectileSpeed float64       `json:"projectileSpeed" yaml:"projectileSpeed"`
	ProjectileTTL   time.Duration `json:"-" yaml:"projectileTTL"`
	VolleySpreadDeg float64       `json:"-" yaml:"volleySpreadDeg"`

	GraceWindow  time.Duration `json:"-" yaml:"graceWindow"`
	RemovalDelay time.Duration `json:"-" yaml:"removalDelay"`

	MarketInterval    time.Duration `json:"-" yaml:"marketInterval"`
	LowStockThreshold int           `json:"-" yaml:"lowStockThreshold"`
	RestockMin        int           `json:"-" yaml:"restockMin"`
	RestockMax        int           `json:"-" yaml:"restockMax"`

	StartingGold int `json:"-" yaml:"startingGold"`
}

func DefaultConfig() Config {
	return Config{
		Width:             5000,
		Height:            5000,
		ReferenceFPS:      60,
		HitRadius:         20,
		InterestRadius:    1000,
		ProjectileSpeed:   12,
		ProjectileTTL:     5 * time.Second,
		VolleySpreadDeg:   4,
		GraceWindow:       600 * time.Second,
		RemovalDelay:      30 * time.Second,
		MarketInterval:    60 * time.Second,
		LowStockThreshold: 20,
		RestockMin:        50,
		RestockMax:        150,
		StartingGold:      500,
	}
}
