package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"corsairs/server/internal/storage"
	"corsairs/server/internal/world"
)

// Store is the in-memory Store implementation used by tests and dev runs.
// One mutex guards every table; the engine is the only writer, so finer
// locking buys nothing here.
type Store struct {
	now func() time.Time

	mu          sync.RWMutex
	players     map[string]expiringPlayer
	inventories map[string]expiringInventory
	names       map[string]nameReservation
	leaderboard []storage.LeaderboardEntry
	market      map[world.MarketKey]world.PortGood
}

type expiringPlayer struct {
	rec       storage.PlayerRecord
	expiresAt time.Time
}

type expiringInventory struct {
	inv       map[string]int
	expiresAt time.Time
}

type nameReservation struct {
	playerID  string
	expiresAt time.Time
}

// New constructs an empty store. A nil clock falls back to the wall clock.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:         now,
		players:     make(map[string]expiringPlayer),
		inventories: make(map[string]expiringInventory),
		names:       make(map[string]nameReservation),
		market:      make(map[world.MarketKey]world.PortGood),
	}
}

func expired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && !now.Before(expiresAt)
}

func (s *Store) GetPlayer(ctx context.Context, id string) (storage.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.players[id]
	if !ok || expired(entry.expiresAt, s.now()) {
		return storage.PlayerRecord{}, storage.ErrNotFound
	}
	return entry.rec, nil
}

func (s *Store) PutPlayer(ctx context.Context, rec storage.PlayerRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}
	s.players[rec.ID] = expiringPlayer{rec: rec, expiresAt: expiresAt}
	return nil
}

func (s *Store) DeletePlayer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	delete(s.inventories, id)
	return nil
}

func (s *Store) GetInventory(ctx context.Context, id string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.inventories[id]
	if !ok || expired(entry.expiresAt, s.now()) {
		return nil, storage.ErrNotFound
	}
	copied := make(map[string]int, len(entry.inv))
	for k, v := range entry.inv {
		copied[k] = v
	}
	return copied, nil
}

func (s *Store) PutInventory(ctx context.Context, id string, inv map[string]int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[string]int, len(inv))
	for k, v := range inv {
		copied[k] = v
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}
	s.inventories[id] = expiringInventory{inv: copied, expiresAt: expiresAt}
	return nil
}

func (s *Store) ReserveName(ctx context.Context, name, playerID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if entry, ok := s.names[name]; ok && !expired(entry.expiresAt, now) && entry.playerID != playerID {
		return storage.ErrNameTaken
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}
	s.names[name] = nameReservation{playerID: playerID, expiresAt: expiresAt}
	return nil
}

func (s *Store) ReleaseName(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.names, name)
	return nil
}

func (s *Store) IsNameActive(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.names[name]
	if !ok || expired(entry.expiresAt, s.now()) {
		return false, nil
	}
	return true, nil
}

func (s *Store) AppendLeaderboard(ctx context.Context, entry storage.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaderboard = append(s.leaderboard, entry)
	return nil
}

func (s *Store) TopLeaderboard(ctx context.Context, n int) ([]storage.LeaderboardEntry, error) {
	s.mu.RLock()
	entries := make([]storage.LeaderboardEntry, len(s.leaderboard))
	copy(entries, s.leaderboard)
	s.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].RecordedAt.Before(entries[j].RecordedAt)
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

func (s *Store) GetPortGoods(ctx context.Context, portID string) ([]world.PortGood, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []world.PortGood
	for key, row := range s.market {
		if key.PortID == portID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].GoodID < rows[j].GoodID })
	return rows, nil
}

func (s *Store) PutPortGood(ctx context.Context, row world.PortGood) error {
	key := world.MarketKey{PortID: row.PortID, GoodID: row.GoodID}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.market[key] = row
	return nil
}

// AdjustStock applies a conditional delta under the store mutex so two
// concurrent buyers of the last unit cannot both succeed.
func (s *Store) AdjustStock(ctx context.Context, portID, goodID string, delta int) error {
	key := world.MarketKey{PortID: portID, GoodID: goodID}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.market[key]
	if !ok {
		return storage.ErrNotFound
	}
	if row.Stock+delta < 0 {
		return storage.ErrInsufficientStock
	}
	row.Stock += delta
	row.UpdatedAt = s.now()
	s.market[key] = row
	return nil
}

func (s *Store) Close() error { return nil }
