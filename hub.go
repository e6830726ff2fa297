package server

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"corsairs/server/internal/net/proto"
	"corsairs/server/internal/sim"
	"corsairs/server/internal/storage"
	"corsairs/server/internal/world"
	"corsairs/server/logging"
	networklog "corsairs/server/logging/network"
)

const (
	broadcastMetricKey      = "hub_broadcast_total"
	broadcastBytesMetricKey = "hub_broadcast_bytes_total"
	sendFailModeMetricKey   = "hub_send_failure_total"
)

// Conn is the subset of the websocket connection the hub writes through,
// widened for tests.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// subscriber pairs a session connection with a write mutex so broadcast
// pushes and request/response writes never interleave a frame. It keeps a
// back-reference into the hub so detaching can check it is still the
// registered session for its ship.
type subscriber struct {
	hub    *Hub
	shipID string
	conn   Conn
	mu     sync.Mutex
}

// WriteMessage serializes writes to the underlying connection and applies the
// shared write deadline.
func (s *subscriber) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// HubConfig carries the hub's pacing and infrastructure dependencies.
type HubConfig struct {
	TickInterval    time.Duration
	PublishInterval time.Duration
	Logger          *log.Logger
	Metrics         *logging.Metrics
	Clock           logging.Clock
	Events          logging.Publisher
}

// Hub owns the session registry and drives the engine's tick and publish
// clocks. Snapshots are filtered per viewer by wrapped distance before they
// leave the process.
type Hub struct {
	engine *sim.Engine

	mu          sync.Mutex
	subscribers map[string]*subscriber

	tickInterval    time.Duration
	publishInterval time.Duration
	logger          *log.Logger
	metrics         *logging.Metrics
	clock           logging.Clock
	events          logging.Publisher
}

// NewHub wires a hub around an engine.
func NewHub(engine *sim.Engine, cfg HubConfig) *Hub {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = DefaultPublishInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = logging.SystemClock{}
	}
	events := cfg.Events
	if events == nil {
		events = logging.NopPublisher()
	}
	return &Hub{
		engine:          engine,
		subscribers:     make(map[string]*subscriber),
		tickInterval:    cfg.TickInterval,
		publishInterval: cfg.PublishInterval,
		logger:          logger,
		metrics:         cfg.Metrics,
		clock:           clock,
		events:          events,
	}
}

// Engine exposes the underlying simulation for request/response operations.
func (h *Hub) Engine() *sim.Engine { return h.engine }

// Subscribe attaches a connection to a live ship. An existing connection for
// the same ship is closed first so a reconnect always wins.
func (h *Hub) Subscribe(shipID string, conn Conn) (*subscriber, bool) {
	presence, ok := h.engine.Presence(shipID)
	if !ok || presence == world.PresenceDead || presence == world.PresenceRemoved {
		return nil, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.subscribers[shipID]; ok {
		existing.conn.Close()
	}
	sub := &subscriber{hub: h, shipID: shipID, conn: conn}
	h.subscribers[shipID] = sub
	return sub, true
}

// Disconnect detaches this session and demotes its ship to the grace period.
// A session that a reconnect has already replaced in the registry only closes
// its own connection; the replacement stays attached and the ship stays
// Connected.
func (s *subscriber) Disconnect() {
	h := s.hub
	h.mu.Lock()
	registered := h.subscribers[s.shipID] == s
	if registered {
		delete(h.subscribers, s.shipID)
	}
	h.mu.Unlock()

	s.conn.Close()
	if registered {
		h.engine.MarkDisconnected(context.Background(), s.shipID)
	}
}

// StageCommand stamps and enqueues an asynchronous command for the next tick.
func (h *Hub) StageCommand(shipID string, cmd sim.Command) (bool, string) {
	presence, ok := h.engine.Presence(shipID)
	if !ok || presence == world.PresenceDead || presence == world.PresenceRemoved {
		return false, CommandRejectUnknownActor
	}
	cmd.ShipID = shipID
	cmd.IssuedAt = h.clock.Now()
	if !h.engine.Submit(cmd) {
		return false, CommandRejectQueueFull
	}
	return true, ""
}

// Run drives the simulation tick and the broadcast clock until the context
// is cancelled.
func (h *Hub) Run(ctx context.Context) {
	stepTicker := time.NewTicker(h.tickInterval)
	defer stepTicker.Stop()
	publishTicker := time.NewTicker(h.publishInterval)
	defer publishTicker.Stop()

	last := h.clock.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stepTicker.C:
			now := h.clock.Now()
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = h.tickInterval.Seconds()
			}
			last = now
			h.engine.Step(now, dt)
		case <-publishTicker.C:
			h.publishNotices()
			h.BroadcastSnapshots()
		}
	}
}

// BroadcastSnapshots pushes one interest-filtered snapshot to every session.
// A failed write demotes the session asynchronously so a broken socket never
// stalls the publish clock.
func (h *Hub) BroadcastSnapshots() {
	snapshot := h.engine.Snapshot()
	tick := h.engine.Tick()
	serverTime := h.clock.Now().UnixMilli()
	cfg := h.engine.WorldConfig()

	for shipID, sub := range h.copySubscribers() {
		view, ok := FilterSnapshot(snapshot, shipID, cfg)
		if !ok {
			continue
		}
		data, err := proto.EncodeSnapshot(proto.SnapshotV1{
			Tick:        tick,
			ServerTime:  serverTime,
			Ships:       view.Ships,
			CannonBalls: view.CannonBalls,
		})
		if err != nil {
			h.logger.Printf("failed to marshal snapshot for %s: %v", shipID, err)
			continue
		}
		h.send(shipID, sub, data)
	}
	if h.metrics != nil {
		h.metrics.TelemetryAdd(broadcastMetricKey, 1)
	}
}

// SnapshotFrame builds one interest-filtered snapshot frame for a single
// viewer, used to answer a handshake before the next publish fires.
func (h *Hub) SnapshotFrame(shipID string) ([]byte, bool) {
	view, ok := FilterSnapshot(h.engine.Snapshot(), shipID, h.engine.WorldConfig())
	if !ok {
		return nil, false
	}
	data, err := proto.EncodeSnapshot(proto.SnapshotV1{
		Tick:        h.engine.Tick(),
		ServerTime:  h.clock.Now().UnixMilli(),
		Ships:       view.Ships,
		CannonBalls: view.CannonBalls,
	})
	if err != nil {
		h.logger.Printf("failed to marshal snapshot for %s: %v", shipID, err)
		return nil, false
	}
	return data, true
}

// FilterSnapshot reduces a full snapshot to the viewer's interest radius.
// The viewer is always included; everything else is kept only within the
// wrapped-distance radius, bounding bandwidth to local density.
func FilterSnapshot(snapshot world.Snapshot, viewerID string, cfg world.Config) (world.Snapshot, bool) {
	var viewer *world.Ship
	for i := range snapshot.Ships {
		if snapshot.Ships[i].ID == viewerID {
			viewer = &snapshot.Ships[i]
			break
		}
	}
	if viewer == nil {
		return world.Snapshot{}, false
	}

	ships := make([]world.Ship, 0, len(snapshot.Ships))
	for _, ship := range snapshot.Ships {
		if ship.ID == viewerID {
			ships = append(ships, ship)
			continue
		}
		if world.WrappedDistance(viewer.X, viewer.Z, ship.X, ship.Z, cfg.Width, cfg.Height) <= cfg.InterestRadius {
			ships = append(ships, ship)
		}
	}
	balls := make([]world.CannonBall, 0, len(snapshot.CannonBalls))
	for _, ball := range snapshot.CannonBalls {
		if world.WrappedDistance(viewer.X, viewer.Z, ball.X, ball.Z, cfg.Width, cfg.Height) <= cfg.InterestRadius {
			balls = append(balls, ball)
		}
	}
	return world.Snapshot{Ships: ships, CannonBalls: balls}, true
}

// publishNotices relays engine notices: removals go to everyone, a game end
// only to the session it concerns.
func (h *Hub) publishNotices() {
	notices := h.engine.DrainNotices()
	if len(notices) == 0 {
		return
	}
	subs := h.copySubscribers()

	for _, notice := range notices {
		switch notice.Kind {
		case sim.NoticePlayerRemoved:
			data, err := proto.EncodePlayerRemoved(proto.PlayerRemovedV1{ID: notice.ShipID, Name: notice.Name})
			if err != nil {
				h.logger.Printf("failed to marshal removal notice: %v", err)
				continue
			}
			for shipID, sub := range subs {
				if shipID == notice.ShipID {
					continue
				}
				h.send(shipID, sub, data)
			}
		case sim.NoticeGameEnd:
			sub, ok := subs[notice.ShipID]
			if !ok {
				continue
			}
			data, err := proto.EncodeGameEnd(proto.GameEndV1{Score: notice.Score, Reason: notice.Reason})
			if err != nil {
				h.logger.Printf("failed to marshal game end notice: %v", err)
				continue
			}
			h.send(notice.ShipID, sub, data)
		}
	}
}

func (h *Hub) send(shipID string, sub *subscriber, data []byte) {
	if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
		if h.metrics != nil {
			h.metrics.TelemetryAdd(sendFailModeMetricKey, 1)
		}
		networklog.SendFailed(context.Background(), h.events, h.engine.Tick(),
			logging.ShipRef(shipID), networklog.SendFailedPayload{Error: err.Error()})
		go sub.Disconnect()
		return
	}
	if h.metrics != nil {
		h.metrics.TelemetryAdd(broadcastBytesMetricKey, uint64(len(data)))
	}
}

func (h *Hub) copySubscribers() map[string]*subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	return subs
}

// SessionCount reports the number of attached sessions.
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// SessionDiagnostics summarises one attached session for the diagnostics
// endpoint.
type SessionDiagnostics struct {
	ShipID   string `json:"shipId"`
	Presence string `json:"presence"`
}

// DiagnosticsSnapshot lists the attached sessions and their presence states.
func (h *Hub) DiagnosticsSnapshot() []SessionDiagnostics {
	h.mu.Lock()
	ids := make([]string, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	h.mu.Unlock()
	sort.Strings(ids)

	sessions := make([]SessionDiagnostics, 0, len(ids))
	for _, id := range ids {
		presence, ok := h.engine.Presence(id)
		if !ok {
			presence = world.PresenceRemoved
		}
		sessions = append(sessions, SessionDiagnostics{ShipID: id, Presence: presence.String()})
	}
	return sessions
}

// TelemetrySnapshot exports the metric counters.
func (h *Hub) TelemetrySnapshot() map[string]uint64 {
	if h.metrics == nil {
		return nil
	}
	return h.metrics.Snapshot()
}

// Leaderboard proxies the storage read for the HTTP surface.
func (h *Hub) Leaderboard(ctx context.Context, n int) ([]storage.LeaderboardEntry, error) {
	return h.engine.Leaderboard(ctx, n)
}
