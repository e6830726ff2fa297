package storage

import (
	"context"
	"errors"
	"time"

	"corsairs/server/internal/world"
)

var (
	// ErrNotFound indicates the requested record does not exist or expired.
	ErrNotFound = errors.New("storage: not found")
	// ErrNameTaken indicates another live player holds the name.
	ErrNameTaken = errors.New("storage: name taken")
	// ErrInsufficientStock indicates a conditional stock adjustment would
	// drive the stock negative.
	ErrInsufficientStock = errors.New("storage: insufficient stock")
)

// PlayerRecord is the persisted slice of a ship, enough to resume a session
// after a server restart.
type PlayerRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Class     string    `json:"class"`
	X         float64   `json:"x"`
	Z         float64   `json:"z"`
	Heading   float64   `json:"heading"`
	Hull      int       `json:"hull"`
	Gold      int       `json:"gold"`
	CargoUsed int       `json:"cargoUsed"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LeaderboardEntry is an immutable end-of-voyage score.
type LeaderboardEntry struct {
	PlayerName string    `json:"playerName"`
	Score      int       `json:"score"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Store is the persistence contract the simulation core requires. All
// records carry a TTL so an abandoned world eventually cleans itself up.
// AdjustStock must be atomic per port-good key: of two concurrent buyers of
// the last unit, exactly one may succeed.
type Store interface {
	GetPlayer(ctx context.Context, id string) (PlayerRecord, error)
	PutPlayer(ctx context.Context, rec PlayerRecord, ttl time.Duration) error
	DeletePlayer(ctx context.Context, id string) error

	GetInventory(ctx context.Context, id string) (map[string]int, error)
	PutInventory(ctx context.Context, id string, inv map[string]int, ttl time.Duration) error

	ReserveName(ctx context.Context, name, playerID string, ttl time.Duration) error
	ReleaseName(ctx context.Context, name string) error
	IsNameActive(ctx context.Context, name string) (bool, error)

	AppendLeaderboard(ctx context.Context, entry LeaderboardEntry) error
	TopLeaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error)

	GetPortGoods(ctx context.Context, portID string) ([]world.PortGood, error)
	PutPortGood(ctx context.Context, row world.PortGood) error
	AdjustStock(ctx context.Context, portID, goodID string, delta int) error

	Close() error
}
