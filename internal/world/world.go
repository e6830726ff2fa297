package world

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// World owns the canonical in-memory game state. It is not goroutine-safe;
// the simulation engine serializes every mutation behind its own lock.
type World struct {
	cfg Config

	classes map[string]ShipClass
	goods   map[string]Good
	ports   map[string]Port

	players     map[string]*Ship
	order       []string
	projectiles []*CannonBall
	market      map[MarketKey]*PortGood

	rng            *rand.Rand
	nextProjectile uint64
}

// New constructs a world with the given tunables and reference catalogs.
// Empty catalog slices fall back to the built-in defaults.
func New(cfg Config, classes []ShipClass, goods []Good, ports []Port, rng *rand.Rand) *World {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if len(classes) == 0 {
		classes = DefaultShipClasses()
	}
	if len(goods) == 0 {
		goods = DefaultGoods()
	}
	if len(ports) == 0 {
		ports = DefaultPorts()
	}

	w := &World{
		cfg:     cfg,
		classes: make(map[string]ShipClass, len(classes)),
		goods:   make(map[string]Good, len(goods)),
		ports:   make(map[string]Port, len(ports)),
		players: make(map[string]*Ship),
		market:  make(map[MarketKey]*PortGood),
		rng:     rng,
	}
	for _, class := range classes {
		w.classes[class.ID] = class
	}
	for _, good := range goods {
		w.goods[good.ID] = good
	}
	for _, port := range ports {
		w.ports[port.ID] = port
	}
	return w
}

func (w *World) Config() Config { return w.cfg }

// ShipClassDef looks up a hull type.
func (w *World) ShipClassDef(id string) (ShipClass, bool) {
	class, ok := w.classes[id]
	return class, ok
}

// ShipClasses lists the hull catalog in a stable order.
func (w *World) ShipClasses() []ShipClass {
	ids := make([]string, 0, len(w.classes))
	for id := range w.classes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	classes := make([]ShipClass, 0, len(ids))
	for _, id := range ids {
		classes = append(classes, w.classes[id])
	}
	return classes
}

// Goods lists the commodity catalog in a stable order.
func (w *World) Goods() []Good {
	ids := make([]string, 0, len(w.goods))
	for id := range w.goods {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	goods := make([]Good, 0, len(ids))
	for _, id := range ids {
		goods = append(goods, w.goods[id])
	}
	return goods
}

// Ports lists the port catalog in a stable order.
func (w *World) Ports() []Port {
	ids := make([]string, 0, len(w.ports))
	for id := range w.ports {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	ports := make([]Port, 0, len(ids))
	for _, id := range ids {
		ports = append(ports, w.ports[id])
	}
	return ports
}

// Port looks up a port by ID.
func (w *World) Port(id string) (Port, bool) {
	port, ok := w.ports[id]
	return port, ok
}

// Good looks up a commodity by ID.
func (w *World) Good(id string) (Good, bool) {
	good, ok := w.goods[id]
	return good, ok
}

// Ship returns the live record for the given ID.
func (w *World) Ship(id string) (*Ship, bool) {
	ship, ok := w.players[id]
	return ship, ok
}

// ShipCount reports the live population, including grace-period ships.
func (w *World) ShipCount() int { return len(w.players) }

// NameActive reports whether a display name is held by any ship that has not
// yet been marked dead.
func (w *World) NameActive(name string) bool {
	for _, ship := range w.players {
		if ship.Name != name {
			continue
		}
		if ship.Presence == PresenceConnected || ship.Presence == PresenceDisconnected {
			return true
		}
	}
	return false
}

// AddShip creates a ship of the given class at a spawn position and registers
// it in the stable iteration order.
func (w *World) AddShip(id, sessionID, name, classID string, now time.Time) (*Ship, error) {
	class, ok := w.classes[classID]
	if !ok {
		return nil, fmt.Errorf("unknown ship class %q", classID)
	}
	if _, exists := w.players[id]; exists {
		return nil, fmt.Errorf("ship %s already exists", id)
	}

	ship := &Ship{
		ID:         id,
		SessionID:  sessionID,
		Name:       name,
		Class:      class.ID,
		X:          Wrap(w.rng.Float64()*w.cfg.Width, w.cfg.Width),
		Z:          Wrap(w.rng.Float64()*w.cfg.Height, w.cfg.Height),
		Heading:    w.rng.Float64() * 360,
		Hull:       class.MaxHull,
		MaxHull:    class.MaxHull,
		Gold:       w.cfg.StartingGold,
		Inventory:  make(Inventory),
		CanFire:    true,
		Presence:   PresenceConnected,
		LastSeenAt: now,
	}
	ship.DirX, ship.DirZ = 0, 1

	w.players[id] = ship
	w.order = append(w.order, id)
	sort.Strings(w.order)
	return ship, nil
}

// RemoveShip deletes a ship record entirely.
func (w *World) RemoveShip(id string) {
	if _, ok := w.players[id]; !ok {
		return
	}
	delete(w.players, id)
	for i, existing := range w.order {
		if existing == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// ShipsInOrder iterates live ships in sorted-ID order so collision resolution
// and broadcasts are deterministic.
func (w *World) ShipsInOrder() []*Ship {
	ships := make([]*Ship, 0, len(w.order))
	for _, id := range w.order {
		if ship, ok := w.players[id]; ok {
			ships = append(ships, ship)
		}
	}
	return ships
}

// Snapshot deep-copies the broadcastable state.
func (w *World) Snapshot() Snapshot {
	ships := make([]Ship, 0, len(w.order))
	for _, id := range w.order {
		if ship, ok := w.players[id]; ok {
			ships = append(ships, ship.snapshot())
		}
	}
	balls := make([]CannonBall, 0, len(w.projectiles))
	for _, ball := range w.projectiles {
		balls = append(balls, *ball)
	}
	return Snapshot{Ships: ships, CannonBalls: balls}
}

// Snapshot is a consistent copy of the world taken under the engine lock.
type Snapshot struct {
	Ships       []Ship
	CannonBalls []CannonBall
}
