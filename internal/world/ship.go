package world

import "time"

// PresenceState tracks the connection lifecycle of a ship independently of
// its combat state.
type PresenceState int

const (
	PresenceConnected PresenceState = iota
	PresenceDisconnected
	PresenceDead
	PresenceRemoved
)

func (s PresenceState) String() string {
	switch s {
	case PresenceConnected:
		return "connected"
	case PresenceDisconnected:
		return "disconnected"
	case PresenceDead:
		return "dead"
	case PresenceRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Ship is the canonical per-player record. It is mutated only by the engine
// goroutine; everything published outward is a copy.
type Ship struct {
	ID        string  `json:"id"`
	SessionID string  `json:"-"`
	Name      string  `json:"name"`
	Class     string  `json:"class"`
	X         float64 `json:"x"`
	Z         float64 `json:"z"`
	Heading   float64 `json:"heading"`
	Speed     float64 `json:"speed"`
	DirX      float64 `json:"dirX"`
	DirZ      float64 `json:"dirZ"`
	Hull      int     `json:"hull"`
	MaxHull   int     `json:"maxHull"`
	Gold      int     `json:"gold"`
	CargoUsed int     `json:"cargoUsed"`
	Sunk      bool    `json:"sunk"`

	Inventory   Inventory     `json:"-"`
	CanFire     bool          `json:"-"`
	LastFiredAt time.Time     `json:"-"`
	Presence    PresenceState `json:"-"`
	LastSeenAt  time.Time     `json:"-"`
}

// Alive reports whether the ship still accepts movement/fire/trade commands.
func (s *Ship) Alive() bool {
	return s != nil && !s.Sunk && s.Presence == PresenceConnected
}

// snapshot copies the broadcastable portion of the ship.
func (s *Ship) snapshot() Ship {
	copied := *s
	copied.Inventory = nil
	return copied
}
