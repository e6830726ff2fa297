package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"corsairs/server/internal/storage"
	"corsairs/server/internal/world"
)

// Store is the durable Store implementation backed by SQLite. Stock
// adjustments run as conditional updates inside a transaction so the
// database itself refuses to oversell a port-good row.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens a database at the given path and applies the schema.
func Open(path string, now func() time.Time) (*Store, error) {
	if now == nil {
		now = time.Now
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db, now: now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			class TEXT NOT NULL,
			x REAL NOT NULL,
			z REAL NOT NULL,
			heading REAL NOT NULL,
			hull INTEGER NOT NULL,
			gold INTEGER NOT NULL,
			cargo_used INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS inventories (
			player_id TEXT PRIMARY KEY,
			items TEXT NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS name_reservations (
			name TEXT PRIMARY KEY,
			player_id TEXT NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS leaderboard (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_name TEXT NOT NULL,
			score INTEGER NOT NULL,
			recorded_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboard_rank ON leaderboard (score DESC, recorded_at ASC)`,
		`CREATE TABLE IF NOT EXISTS port_goods (
			port_id TEXT NOT NULL,
			good_id TEXT NOT NULL,
			price INTEGER NOT NULL,
			stock INTEGER NOT NULL CHECK (stock >= 0),
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (port_id, good_id)
		)`,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func expiryFrom(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now.Add(ttl).UnixMilli()
}

func live(expiresAt int64, now time.Time) bool {
	return expiresAt == 0 || now.UnixMilli() < expiresAt
}

func (s *Store) GetPlayer(ctx context.Context, id string) (storage.PlayerRecord, error) {
	var rec storage.PlayerRecord
	var updatedAt, expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, class, x, z, heading, hull, gold, cargo_used, updated_at, expires_at
		 FROM players WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Name, &rec.Class, &rec.X, &rec.Z, &rec.Heading, &rec.Hull, &rec.Gold, &rec.CargoUsed, &updatedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.PlayerRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.PlayerRecord{}, fmt.Errorf("get player: %w", err)
	}
	if !live(expiresAt, s.now()) {
		return storage.PlayerRecord{}, storage.ErrNotFound
	}
	rec.UpdatedAt = time.UnixMilli(updatedAt)
	return rec, nil
}

func (s *Store) PutPlayer(ctx context.Context, rec storage.PlayerRecord, ttl time.Duration) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, name, class, x, z, heading, hull, gold, cargo_used, updated_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, class = excluded.class,
			x = excluded.x, z = excluded.z, heading = excluded.heading,
			hull = excluded.hull, gold = excluded.gold, cargo_used = excluded.cargo_used,
			updated_at = excluded.updated_at, expires_at = excluded.expires_at`,
		rec.ID, rec.Name, rec.Class, rec.X, rec.Z, rec.Heading, rec.Hull, rec.Gold, rec.CargoUsed,
		now.UnixMilli(), expiryFrom(now, ttl))
	if err != nil {
		return fmt.Errorf("put player: %w", err)
	}
	return nil
}

func (s *Store) DeletePlayer(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM inventories WHERE player_id = ?`, id); err != nil {
		return fmt.Errorf("delete inventory: %w", err)
	}
	return tx.Commit()
}

func (s *Store) GetInventory(ctx context.Context, id string) (map[string]int, error) {
	var items string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT items, expires_at FROM inventories WHERE player_id = ?`, id).
		Scan(&items, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	if !live(expiresAt, s.now()) {
		return nil, storage.ErrNotFound
	}
	inv := make(map[string]int)
	if err := json.Unmarshal([]byte(items), &inv); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	return inv, nil
}

func (s *Store) PutInventory(ctx context.Context, id string, inv map[string]int, ttl time.Duration) error {
	items, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	now := s.now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO inventories (player_id, items, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET items = excluded.items, expires_at = excluded.expires_at`,
		id, string(items), expiryFrom(now, ttl))
	if err != nil {
		return fmt.Errorf("put inventory: %w", err)
	}
	return nil
}

func (s *Store) ReserveName(ctx context.Context, name, playerID string, ttl time.Duration) error {
	now := s.now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reserve name: %w", err)
	}
	defer tx.Rollback()

	var holder string
	var expiresAt int64
	err = tx.QueryRowContext(ctx,
		`SELECT player_id, expires_at FROM name_reservations WHERE name = ?`, name).
		Scan(&holder, &expiresAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("reserve name: %w", err)
	default:
		if live(expiresAt, now) && holder != playerID {
			return storage.ErrNameTaken
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO name_reservations (name, player_id, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET player_id = excluded.player_id, expires_at = excluded.expires_at`,
		name, playerID, expiryFrom(now, ttl)); err != nil {
		return fmt.Errorf("reserve name: %w", err)
	}
	return tx.Commit()
}

func (s *Store) ReleaseName(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM name_reservations WHERE name = ?`, name); err != nil {
		return fmt.Errorf("release name: %w", err)
	}
	return nil
}

func (s *Store) IsNameActive(ctx context.Context, name string) (bool, error) {
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT expires_at FROM name_reservations WHERE name = ?`, name).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check name: %w", err)
	}
	return live(expiresAt, s.now()), nil
}

func (s *Store) AppendLeaderboard(ctx context.Context, entry storage.LeaderboardEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leaderboard (player_name, score, recorded_at) VALUES (?, ?, ?)`,
		entry.PlayerName, entry.Score, entry.RecordedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("append leaderboard: %w", err)
	}
	return nil
}

func (s *Store) TopLeaderboard(ctx context.Context, n int) ([]storage.LeaderboardEntry, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_name, score, recorded_at FROM leaderboard
		 ORDER BY score DESC, recorded_at ASC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("top leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []storage.LeaderboardEntry
	for rows.Next() {
		var entry storage.LeaderboardEntry
		var recordedAt int64
		if err := rows.Scan(&entry.PlayerName, &entry.Score, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		entry.RecordedAt = time.UnixMilli(recordedAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) GetPortGoods(ctx context.Context, portID string) ([]world.PortGood, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT port_id, good_id, price, stock, updated_at FROM port_goods
		 WHERE port_id = ? ORDER BY good_id ASC`, portID)
	if err != nil {
		return nil, fmt.Errorf("get port goods: %w", err)
	}
	defer rows.Close()

	var result []world.PortGood
	for rows.Next() {
		var row world.PortGood
		var updatedAt int64
		if err := rows.Scan(&row.PortID, &row.GoodID, &row.Price, &row.Stock, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan port good: %w", err)
		}
		row.UpdatedAt = time.UnixMilli(updatedAt)
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *Store) PutPortGood(ctx context.Context, row world.PortGood) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO port_goods (port_id, good_id, price, stock, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(port_id, good_id) DO UPDATE SET
			price = excluded.price, stock = excluded.stock, updated_at = excluded.updated_at`,
		row.PortID, row.GoodID, row.Price, row.Stock, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put port good: %w", err)
	}
	return nil
}

// AdjustStock applies a conditional delta. The WHERE clause carries the
// stock floor so the row is only touched when the adjustment cannot drive
// stock negative; a zero row count distinguishes overselling from a missing
// row.
func (s *Store) AdjustStock(ctx context.Context, portID, goodID string, delta int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE port_goods SET stock = stock + ?, updated_at = ?
		 WHERE port_id = ? AND good_id = ? AND stock + ? >= 0`,
		delta, s.now().UnixMilli(), portID, goodID, delta)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if affected == 0 {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM port_goods WHERE port_id = ? AND good_id = ?`, portID, goodID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}
		return storage.ErrInsufficientStock
	}
	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}
