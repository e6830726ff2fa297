package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"corsairs/server/internal/storage"
	"corsairs/server/internal/telemetry"
	"corsairs/server/internal/world"
	"corsairs/server/logging"
	combatlog "corsairs/server/logging/combat"
	economylog "corsairs/server/logging/economy"
	lifecyclelog "corsairs/server/logging/lifecycle"
)

const (
	tickMetricKey          = "sim_tick_total"
	hitMetricKey           = "sim_projectile_hit_total"
	tradeRejectMetricKey   = "sim_trade_reject_total"
	tradeCompleteMetricKey = "sim_trade_complete_total"
)

const (
	minNameLength = 3
	maxNameLength = 24
)

// Config tunes the engine's queue and persistence behaviour.
type Config struct {
	CommandCapacity int
	RecordTTL       time.Duration
}

// DefaultConfig returns the production engine tunables.
func DefaultConfig() Config {
	return Config{
		CommandCapacity: 1024,
		RecordTTL:       24 * time.Hour,
	}
}

// NoticeKind discriminates engine-originated broadcast notices.
type NoticeKind string

const (
	NoticePlayerRemoved NoticeKind = "playerRemoved"
	NoticeGameEnd       NoticeKind = "gameEnd"
)

// Notice is an out-of-band event the hub relays to sessions between
// snapshots: a ship leaving the world, or a session's own game ending.
type Notice struct {
	Kind   NoticeKind `json:"kind"`
	ShipID string     `json:"shipId"`
	Name   string     `json:"name,omitempty"`
	Score  int        `json:"score,omitempty"`
	Reason string     `json:"reason,omitempty"`
}

// StepResult summarises one tick for the caller's telemetry.
type StepResult struct {
	Tick     uint64
	Commands int
	Hits     int
	Expired  int
}

// JoinResult is the successful outcome of a join request.
type JoinResult struct {
	Ship      world.Ship
	SessionID string
}

// ResumeResult is the successful outcome of a resume request.
type ResumeResult struct {
	Ship      world.Ship
	SessionID string
}

// TradeResult reports the post-trade ship economy state.
type TradeResult struct {
	Gold      int            `json:"gold"`
	CargoUsed int            `json:"cargoUsed"`
	Price     int            `json:"price"`
	Inventory map[string]int `json:"inventory"`
}

// Engine is the single writer of the world model. One mutex serializes tick
// steps and synchronous session operations; movement and fire intents are
// staged through the ring buffer and drained at tick start.
type Engine struct {
	mu       sync.Mutex
	world    *world.World
	store    storage.Store
	buffer   *CommandBuffer
	schedule schedule

	clock   logging.Clock
	events  logging.Publisher
	metrics *logging.Metrics
	logger  telemetry.Logger

	cfg     Config
	tick    uint64
	notices []Notice
}

// New constructs an engine around an existing world. The first market pulse
// is scheduled one interval out.
func New(w *world.World, store storage.Store, deps Deps, cfg Config) *Engine {
	if cfg.CommandCapacity <= 0 {
		cfg.CommandCapacity = DefaultConfig().CommandCapacity
	}
	if cfg.RecordTTL <= 0 {
		cfg.RecordTTL = DefaultConfig().RecordTTL
	}
	clock := deps.Clock
	if clock == nil {
		clock = logging.SystemClock{}
	}
	events := deps.Events
	if events == nil {
		events = logging.NopPublisher()
	}

	e := &Engine{
		world:   w,
		store:   store,
		buffer:  NewCommandBuffer(cfg.CommandCapacity, telemetry.WrapMetrics(deps.Metrics)),
		clock:   clock,
		events:  events,
		metrics: deps.Metrics,
		logger:  telemetry.WrapLogger(deps.Logger),
		cfg:     cfg,
	}
	e.schedule.push(clock.Now().Add(w.Config().MarketInterval), eventMarketPulse, "")
	return e
}

// Submit stages an asynchronous command for the next tick. It never blocks;
// a full buffer drops the command.
func (e *Engine) Submit(cmd Command) bool {
	return e.buffer.Push(cmd)
}

// Pending reports the number of staged commands.
func (e *Engine) Pending() int {
	return e.buffer.Len()
}

// Step advances the simulation by dt seconds. It drains staged commands,
// fires due timers, integrates movement, and resolves projectile collisions.
func (e *Engine) Step(now time.Time, dt float64) StepResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tick++
	ctx := context.Background()

	// Timers fire before input so a fire intent arriving after its reload
	// deadline is not gated for an extra tick.
	for _, event := range e.schedule.popDue(now) {
		e.runEventLocked(ctx, event, now)
	}

	commands := e.buffer.Drain()
	for _, cmd := range commands {
		e.applyCommandLocked(ctx, cmd, now)
	}

	e.world.IntegrateMovement(dt)

	reports := e.world.AdvanceProjectiles(dt)
	for _, report := range reports {
		e.recordHitLocked(ctx, report, now)
	}

	expired := e.world.ExpireProjectiles(now)

	if e.metrics != nil {
		e.metrics.TelemetryAdd(tickMetricKey, 1)
		if len(reports) > 0 {
			e.metrics.TelemetryAdd(hitMetricKey, uint64(len(reports)))
		}
	}
	return StepResult{Tick: e.tick, Commands: len(commands), Hits: len(reports), Expired: expired}
}

func (e *Engine) applyCommandLocked(ctx context.Context, cmd Command, now time.Time) {
	switch cmd.Type {
	case CommandInput:
		if cmd.Input == nil {
			return
		}
		ship, ok := e.world.Ship(cmd.ShipID)
		if !ok || !ship.Alive() {
			// Sunk and dead ships drop input silently.
			return
		}
		ship.LastSeenAt = now
		e.world.SetIntent(cmd.ShipID, cmd.Input.Heading, cmd.Input.Speed, cmd.Input.DirX, cmd.Input.DirZ)
		if cmd.Input.Fire {
			e.fireLocked(ctx, ship, now)
		}
	case CommandHeartbeat:
		if ship, ok := e.world.Ship(cmd.ShipID); ok {
			ship.LastSeenAt = now
		}
	default:
		// Unknown staged commands are a programming error upstream; log and drop.
		e.logger.Printf("[sim] dropping unknown command type %q from %s", cmd.Type, cmd.ShipID)
	}
}

func (e *Engine) fireLocked(ctx context.Context, ship *world.Ship, now time.Time) {
	if !ship.CanFire {
		return
	}
	class, ok := e.world.ShipClassDef(ship.Class)
	if !ok {
		return
	}
	balls := e.world.SpawnVolley(ship, now)
	if len(balls) == 0 {
		return
	}
	e.schedule.push(now.Add(class.ReloadTime), eventReloadReady, ship.ID)
	combatlog.VolleyFired(ctx, e.events, e.tick, logging.ShipRef(ship.ID), combatlog.VolleyFiredPayload{
		Cannons:    len(balls),
		BaseDamage: class.CannonDamage,
		Heading:    ship.Heading,
	})
}

func (e *Engine) runEventLocked(ctx context.Context, event scheduledEvent, now time.Time) {
	switch event.kind {
	case eventReloadReady:
		if ship, ok := e.world.Ship(event.shipID); ok {
			ship.CanFire = true
		}
	case eventGraceExpired:
		ship, ok := e.world.Ship(event.shipID)
		if !ok || ship.Presence != world.PresenceDisconnected {
			return
		}
		e.markDeadLocked(ctx, ship, "graceExpired", now)
	case eventRemovalDue:
		ship, ok := e.world.Ship(event.shipID)
		if !ok || ship.Presence != world.PresenceDead {
			return
		}
		e.world.RemoveShip(ship.ID)
		e.schedule.cancelShip(ship.ID)
		if err := e.store.DeletePlayer(ctx, ship.ID); err != nil {
			e.logger.Printf("[sim] delete player %s: %v", ship.ID, err)
		}
		lifecyclelog.Removed(ctx, e.events, e.tick, logging.ShipRef(ship.ID))
	case eventMarketPulse:
		e.marketPulseLocked(ctx, now)
		e.schedule.push(now.Add(e.world.Config().MarketInterval), eventMarketPulse, "")
	}
}

func (e *Engine) marketPulseLocked(ctx context.Context, now time.Time) {
	repriced, restocked, changed := e.world.MarketStep(now)
	for _, row := range changed {
		if err := e.store.PutPortGood(ctx, row); err != nil {
			e.logger.Printf("[sim] persist market row %s/%s: %v", row.PortID, row.GoodID, err)
		}
	}
	economylog.MarketTick(ctx, e.events, e.tick, economylog.MarketTickPayload{
		Repriced:  repriced,
		Restocked: restocked,
	})
}

func (e *Engine) recordHitLocked(ctx context.Context, report world.HitReport, now time.Time) {
	armor := 0.0
	if target, ok := e.world.Ship(report.TargetID); ok {
		if class, ok := e.world.ShipClassDef(target.Class); ok {
			armor = class.ArmorPercent
		}
	}
	combatlog.Hit(ctx, e.events, e.tick,
		logging.ShipRef(report.OwnerID), logging.ShipRef(report.TargetID),
		combatlog.HitPayload{
			BaseDamage:    report.BaseDamage,
			AppliedDamage: report.Applied,
			ArmorPercent:  armor,
			TargetHull:    report.TargetHull,
		})
	if !report.Sunk {
		return
	}
	target, ok := e.world.Ship(report.TargetID)
	if !ok {
		return
	}
	combatlog.Sunk(ctx, e.events, e.tick,
		logging.ShipRef(report.OwnerID), logging.ShipRef(report.TargetID),
		combatlog.SunkPayload{Score: target.Gold})
	e.markDeadLocked(ctx, target, "sunk", now)
}

// markDeadLocked performs the one-time end-of-life effects: leaderboard
// append, name release, removal scheduling, and broadcast notices.
func (e *Engine) markDeadLocked(ctx context.Context, ship *world.Ship, reason string, now time.Time) {
	if ship.Presence == world.PresenceDead || ship.Presence == world.PresenceRemoved {
		return
	}
	ship.Presence = world.PresenceDead
	ship.Speed = 0

	entry := storage.LeaderboardEntry{PlayerName: ship.Name, Score: ship.Gold, RecordedAt: now}
	if err := e.store.AppendLeaderboard(ctx, entry); err != nil {
		e.logger.Printf("[sim] leaderboard append for %s: %v", ship.ID, err)
	}
	if err := e.store.ReleaseName(ctx, ship.Name); err != nil {
		e.logger.Printf("[sim] release name %q: %v", ship.Name, err)
	}

	e.schedule.cancelShipKind(ship.ID, eventReloadReady)
	e.schedule.cancelShipKind(ship.ID, eventGraceExpired)
	e.schedule.push(now.Add(e.world.Config().RemovalDelay), eventRemovalDue, ship.ID)

	e.notices = append(e.notices,
		Notice{Kind: NoticeGameEnd, ShipID: ship.ID, Score: ship.Gold, Reason: reason},
		Notice{Kind: NoticePlayerRemoved, ShipID: ship.ID, Name: ship.Name},
	)
	lifecyclelog.Dead(ctx, e.events, e.tick, logging.ShipRef(ship.ID), lifecyclelog.DeadPayload{
		Name:   ship.Name,
		Score:  ship.Gold,
		Reason: reason,
	})
}

// Join registers a new ship. The display name must be unused among active
// players and the class must exist in the catalog.
func (e *Engine) Join(ctx context.Context, name, classID string) (JoinResult, *Reject) {
	if n := len([]rune(name)); n < minNameLength || n > maxNameLength {
		return JoinResult{}, validationReject(CodeNameLength,
			fmt.Sprintf("name must be %d-%d characters", minNameLength, maxNameLength))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()

	if _, ok := e.world.ShipClassDef(classID); !ok {
		return JoinResult{}, validationReject(CodeUnknownClass, fmt.Sprintf("unknown ship class %q", classID))
	}
	if e.world.NameActive(name) {
		return JoinResult{}, conflictReject(CodeNameTaken, "name already in use")
	}

	id := uuid.NewString()
	if err := e.store.ReserveName(ctx, name, id, e.nameTTL()); err != nil {
		if errors.Is(err, storage.ErrNameTaken) {
			return JoinResult{}, conflictReject(CodeNameTaken, "name already in use")
		}
		e.logger.Printf("[sim] reserve name %q: %v", name, err)
		return JoinResult{}, stateReject(CodeStorageFailure, "storage temporarily unavailable")
	}

	ship, err := e.world.AddShip(id, uuid.NewString(), name, classID, now)
	if err != nil {
		_ = e.store.ReleaseName(ctx, name)
		return JoinResult{}, validationReject(CodeUnknownClass, err.Error())
	}
	e.persistShipLocked(ctx, ship, now)

	lifecyclelog.Joined(ctx, e.events, e.tick, logging.ShipRef(ship.ID), lifecyclelog.JoinedPayload{
		Name:      name,
		ShipClass: classID,
	})
	return JoinResult{Ship: e.shipCopyLocked(ship), SessionID: ship.SessionID}, nil
}

// Resume re-attaches a session to an existing ship. It succeeds only while
// the ship is Connected or inside its grace window; a removed identity is
// rejected explicitly so the client knows to register anew. After a server
// restart the ship is rebuilt from storage. A non-empty name that differs
// from the current one is a rename request and must not collide with another
// active player.
func (e *Engine) Resume(ctx context.Context, playerID, name string) (ResumeResult, *Reject) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()

	ship, ok := e.world.Ship(playerID)
	if !ok {
		restored, reject := e.restoreShipLocked(ctx, playerID, now)
		if reject != nil {
			return ResumeResult{}, reject
		}
		ship = restored
	}

	switch ship.Presence {
	case world.PresenceDead, world.PresenceRemoved:
		return ResumeResult{}, conflictReject(CodePlayerRemoved, "player already removed; register anew")
	}

	if name != "" && name != ship.Name {
		if reject := e.renameLocked(ctx, ship, name); reject != nil {
			return ResumeResult{}, reject
		}
	}

	e.schedule.cancelShipKind(ship.ID, eventGraceExpired)
	ship.Presence = world.PresenceConnected
	ship.SessionID = uuid.NewString()
	ship.LastSeenAt = now

	if err := e.store.ReserveName(ctx, ship.Name, ship.ID, e.nameTTL()); err != nil && !errors.Is(err, storage.ErrNameTaken) {
		e.logger.Printf("[sim] refresh name %q: %v", ship.Name, err)
	}
	lifecyclelog.Resumed(ctx, e.events, e.tick, logging.ShipRef(ship.ID))
	return ResumeResult{Ship: e.shipCopyLocked(ship), SessionID: ship.SessionID}, nil
}

// renameLocked moves the ship to a new display name, swapping the storage
// reservation so the old name frees up for other players.
func (e *Engine) renameLocked(ctx context.Context, ship *world.Ship, name string) *Reject {
	if n := len([]rune(name)); n < minNameLength || n > maxNameLength {
		return validationReject(CodeNameLength,
			fmt.Sprintf("name must be %d-%d characters", minNameLength, maxNameLength))
	}
	if e.world.NameActive(name) {
		return conflictReject(CodeNameTaken, "name already in use")
	}
	if err := e.store.ReserveName(ctx, name, ship.ID, e.nameTTL()); err != nil {
		if errors.Is(err, storage.ErrNameTaken) {
			return conflictReject(CodeNameTaken, "name already in use")
		}
		e.logger.Printf("[sim] reserve name %q: %v", name, err)
		return stateReject(CodeStorageFailure, "storage temporarily unavailable")
	}
	if err := e.store.ReleaseName(ctx, ship.Name); err != nil {
		e.logger.Printf("[sim] release name %q: %v", ship.Name, err)
	}
	ship.Name = name
	return nil
}

// restoreShipLocked rebuilds a ship from its persisted record, used when a
// resume arrives after a server restart.
func (e *Engine) restoreShipLocked(ctx context.Context, playerID string, now time.Time) (*world.Ship, *Reject) {
	rec, err := e.store.GetPlayer(ctx, playerID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, conflictReject(CodePlayerRemoved, "player already removed; register anew")
	}
	if err != nil {
		e.logger.Printf("[sim] load player %s: %v", playerID, err)
		return nil, stateReject(CodeStorageFailure, "storage temporarily unavailable")
	}

	ship, err := e.world.AddShip(rec.ID, "", rec.Name, rec.Class, now)
	if err != nil {
		return nil, conflictReject(CodePlayerRemoved, "player record is no longer valid")
	}
	ship.X, ship.Z = rec.X, rec.Z
	ship.Heading = rec.Heading
	ship.Hull = rec.Hull
	ship.Gold = rec.Gold
	ship.CargoUsed = rec.CargoUsed
	if ship.Hull <= 0 {
		ship.Hull = 0
		ship.Sunk = true
	}
	if inv, err := e.store.GetInventory(ctx, playerID); err == nil {
		for goodID, qty := range inv {
			ship.Inventory.Add(goodID, qty)
		}
	}
	return ship, nil
}

// MarkDisconnected demotes a session to its grace period. Safe to call more
// than once; only the first call starts the timer.
func (e *Engine) MarkDisconnected(ctx context.Context, shipID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ship, ok := e.world.Ship(shipID)
	if !ok || ship.Presence != world.PresenceConnected {
		return
	}
	now := e.clock.Now()
	ship.Presence = world.PresenceDisconnected
	ship.Speed = 0
	ship.LastSeenAt = now
	e.schedule.push(now.Add(e.world.Config().GraceWindow), eventGraceExpired, ship.ID)
	e.persistShipLocked(ctx, ship, now)
	// Long-lived sessions outlast the join-time reservation TTL, so the name
	// is re-reserved here to cover the full grace and removal window.
	if err := e.store.ReserveName(ctx, ship.Name, ship.ID, e.nameTTL()); err != nil && !errors.Is(err, storage.ErrNameTaken) {
		e.logger.Printf("[sim] refresh name %q: %v", ship.Name, err)
	}
	lifecyclelog.Disconnected(ctx, e.events, e.tick, logging.ShipRef(ship.ID))
}

// Trade executes a buy or sell against a port. Validation, the storage stock
// reservation, and the in-memory commit happen under the engine lock so a
// failure leaves no partial mutation.
func (e *Engine) Trade(ctx context.Context, shipID, portID, goodID string, qty int, action world.TradeAction) (TradeResult, *Reject) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()

	plan, err := e.world.PlanTrade(shipID, portID, goodID, qty, action, now)
	if err != nil {
		reject := rejectFromTradeErr(err)
		e.noteTradeRejectLocked(ctx, shipID, portID, goodID, action, reject)
		return TradeResult{}, reject
	}

	delta := -qty
	if action == world.TradeSell {
		delta = qty
	}
	if err := e.adjustStockLocked(ctx, plan, delta); err != nil {
		reject := rejectFromTradeErr(err)
		e.noteTradeRejectLocked(ctx, shipID, portID, goodID, action, reject)
		return TradeResult{}, reject
	}

	plan.Apply(now)
	e.persistShipLocked(ctx, plan.Ship, now)
	if e.metrics != nil {
		e.metrics.TelemetryAdd(tradeCompleteMetricKey, 1)
	}
	economylog.Trade(ctx, e.events, e.tick, logging.ShipRef(shipID), logging.PortRef(portID), economylog.TradePayload{
		Action:   string(action),
		GoodID:   goodID,
		Quantity: qty,
		Price:    plan.Price,
		Gold:     plan.Ship.Gold,
	})
	return TradeResult{
		Gold:      plan.Ship.Gold,
		CargoUsed: plan.Ship.CargoUsed,
		Price:     plan.Price,
		Inventory: plan.Ship.Inventory.Clone(),
	}, nil
}

// adjustStockLocked settles the stock delta against storage, seeding the row
// on first contact with a lazily initialised port good.
func (e *Engine) adjustStockLocked(ctx context.Context, plan *world.TradePlan, delta int) error {
	err := e.store.AdjustStock(ctx, plan.Row.PortID, plan.Row.GoodID, delta)
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if putErr := e.store.PutPortGood(ctx, *plan.Row); putErr != nil {
		return putErr
	}
	return e.store.AdjustStock(ctx, plan.Row.PortID, plan.Row.GoodID, delta)
}

func (e *Engine) noteTradeRejectLocked(ctx context.Context, shipID, portID, goodID string, action world.TradeAction, reject *Reject) {
	if e.metrics != nil {
		e.metrics.TelemetryAdd(tradeRejectMetricKey, 1)
	}
	economylog.TradeRejected(ctx, e.events, e.tick, logging.ShipRef(shipID), logging.PortRef(portID), economylog.TradeRejectedPayload{
		Action: string(action),
		GoodID: goodID,
		Reason: reject.Code,
	})
}

// Scuttle is a voluntary end of voyage: same leaderboard and removal effects
// as death, without a grace period.
func (e *Engine) Scuttle(ctx context.Context, shipID string) *Reject {
	e.mu.Lock()
	defer e.mu.Unlock()

	ship, ok := e.world.Ship(shipID)
	if !ok {
		return conflictReject(CodeUnknownPlayer, "no such player")
	}
	if ship.Presence == world.PresenceDead || ship.Presence == world.PresenceRemoved {
		return conflictReject(CodePlayerRemoved, "player already removed")
	}
	e.markDeadLocked(ctx, ship, "scuttled", e.clock.Now())
	return nil
}

func (e *Engine) persistShipLocked(ctx context.Context, ship *world.Ship, now time.Time) {
	rec := storage.PlayerRecord{
		ID:        ship.ID,
		Name:      ship.Name,
		Class:     ship.Class,
		X:         ship.X,
		Z:         ship.Z,
		Heading:   ship.Heading,
		Hull:      ship.Hull,
		Gold:      ship.Gold,
		CargoUsed: ship.CargoUsed,
		UpdatedAt: now,
	}
	if err := e.store.PutPlayer(ctx, rec, e.cfg.RecordTTL); err != nil {
		e.logger.Printf("[sim] persist player %s: %v", ship.ID, err)
	}
	if err := e.store.PutInventory(ctx, ship.ID, ship.Inventory.Clone(), e.cfg.RecordTTL); err != nil {
		e.logger.Printf("[sim] persist inventory %s: %v", ship.ID, err)
	}
}

func (e *Engine) nameTTL() time.Duration {
	cfg := e.world.Config()
	return cfg.GraceWindow + cfg.RemovalDelay
}

func (e *Engine) shipCopyLocked(ship *world.Ship) world.Ship {
	copied := *ship
	copied.Inventory = ship.Inventory.Clone()
	return copied
}

// Snapshot returns a consistent deep copy of the broadcastable world state.
func (e *Engine) Snapshot() world.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.Snapshot()
}

// DrainNotices returns and clears the pending broadcast notices.
func (e *Engine) DrainNotices() []Notice {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.notices) == 0 {
		return nil
	}
	notices := e.notices
	e.notices = nil
	return notices
}

// Ship returns a copy of one live ship, primarily for handshake responses.
func (e *Engine) Ship(id string) (world.Ship, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ship, ok := e.world.Ship(id)
	if !ok {
		return world.Ship{}, false
	}
	return e.shipCopyLocked(ship), true
}

// Presence reports a ship's lifecycle state without copying the record.
func (e *Engine) Presence(id string) (world.PresenceState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ship, ok := e.world.Ship(id)
	if !ok {
		return world.PresenceRemoved, false
	}
	return ship.Presence, true
}

// Tick reports the current tick counter.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// WorldConfig exposes the static world tunables for handshakes and HTTP reads.
func (e *Engine) WorldConfig() world.Config { return e.world.Config() }

// ShipClasses exposes the hull catalog.
func (e *Engine) ShipClasses() []world.ShipClass {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.ShipClasses()
}

// Ports exposes the port catalog.
func (e *Engine) Ports() []world.Port {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.Ports()
}

// Goods exposes the commodity catalog.
func (e *Engine) Goods() []world.Good {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.Goods()
}

// PortGoods exposes the live market rows for one port.
func (e *Engine) PortGoods(portID string) ([]world.PortGood, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.PortGoods(portID, e.clock.Now())
}

// Leaderboard reads the top-n scores from storage.
func (e *Engine) Leaderboard(ctx context.Context, n int) ([]storage.LeaderboardEntry, error) {
	return e.store.TopLeaderboard(ctx, n)
}
