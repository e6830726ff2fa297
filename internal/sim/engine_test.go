package sim

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"corsairs/server/internal/storage"
	"corsairs/server/internal/storage/memory"
	"corsairs/server/internal/world"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type testRig struct {
	engine *Engine
	world  *world.World
	store  *memory.Store
	clock  *testClock
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	clock := newTestClock()
	store := memory.New(clock.Now)
	w := world.New(world.DefaultConfig(), nil, nil, nil, rand.New(rand.NewSource(7)))
	engine := New(w, store, Deps{Clock: clock}, Config{})
	return &testRig{engine: engine, world: w, store: store, clock: clock}
}

func (r *testRig) step(dt float64) StepResult {
	return r.engine.Step(r.clock.Now(), dt)
}

func TestJoinValidation(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	if _, reject := rig.engine.Join(ctx, "ab", "sloop"); reject == nil || reject.Code != CodeNameLength {
		t.Fatalf("expected nameLength reject for short name, got %v", reject)
	}
	if _, reject := rig.engine.Join(ctx, "Anne Bonny", "rowboat"); reject == nil || reject.Code != CodeUnknownClass {
		t.Fatalf("expected unknownClass reject, got %v", reject)
	}

	result, reject := rig.engine.Join(ctx, "Anne Bonny", "sloop")
	if reject != nil {
		t.Fatalf("unexpected join reject: %v", reject)
	}
	if result.Ship.ID == "" || result.SessionID == "" {
		t.Fatalf("expected ids on join result, got %+v", result)
	}
	if result.Ship.Gold != world.DefaultConfig().StartingGold {
		t.Fatalf("expected starting gold, got %d", result.Ship.Gold)
	}

	if _, reject := rig.engine.Join(ctx, "Anne Bonny", "sloop"); reject == nil || reject.Code != CodeNameTaken {
		t.Fatalf("expected nameTaken reject for duplicate, got %v", reject)
	}

	if _, err := rig.store.GetPlayer(ctx, result.Ship.ID); err != nil {
		t.Fatalf("expected persisted player record: %v", err)
	}
}

func TestReloadGating(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	result, reject := rig.engine.Join(ctx, "Gunner", "sloop")
	if reject != nil {
		t.Fatalf("join: %v", reject)
	}
	id := result.Ship.ID

	fire := func() {
		if !rig.engine.Submit(Command{ShipID: id, Type: CommandInput, Input: &InputCommand{Fire: true}}) {
			t.Fatalf("submit failed")
		}
	}

	// t=0: a full volley, one ball per cannon.
	fire()
	rig.step(0.1)
	if got := len(rig.engine.Snapshot().CannonBalls); got != 2 {
		t.Fatalf("expected 2 cannonballs after first volley, got %d", got)
	}

	// t=1000ms: still reloading, no new balls.
	rig.clock.Advance(1000 * time.Millisecond)
	fire()
	rig.step(0.1)
	if got := len(rig.engine.Snapshot().CannonBalls); got != 2 {
		t.Fatalf("expected reload gate to hold at t=1000ms, got %d balls", got)
	}

	// t=2100ms: reload complete, a fresh volley spawns.
	rig.clock.Advance(1100 * time.Millisecond)
	fire()
	rig.step(0.1)
	if got := len(rig.engine.Snapshot().CannonBalls); got != 4 {
		t.Fatalf("expected fresh volley at t=2100ms, got %d balls", got)
	}
}

func TestGraceResumePreservesState(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	result, reject := rig.engine.Join(ctx, "Mary Read", "brigantine")
	if reject != nil {
		t.Fatalf("join: %v", reject)
	}
	id := result.Ship.ID
	before, _ := rig.engine.Ship(id)

	rig.engine.MarkDisconnected(ctx, id)
	if presence, _ := rig.engine.Presence(id); presence != world.PresenceDisconnected {
		t.Fatalf("expected disconnected, got %v", presence)
	}

	rig.clock.Advance(300 * time.Second)
	rig.step(0.1)

	resumed, reject := rig.engine.Resume(ctx, id, "")
	if reject != nil {
		t.Fatalf("resume inside grace window: %v", reject)
	}
	if resumed.Ship.Gold != before.Gold || resumed.Ship.X != before.X || resumed.Ship.Z != before.Z {
		t.Fatalf("resume changed ship state: before %+v after %+v", before, resumed.Ship)
	}
	if resumed.SessionID == result.SessionID {
		t.Fatalf("expected a fresh session id on resume")
	}
	if presence, _ := rig.engine.Presence(id); presence != world.PresenceConnected {
		t.Fatalf("expected connected after resume, got %v", presence)
	}
}

func TestResumeRename(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	result, reject := rig.engine.Join(ctx, "Anne Bonny", "sloop")
	if reject != nil {
		t.Fatalf("join: %v", reject)
	}
	id := result.Ship.ID
	rig.engine.MarkDisconnected(ctx, id)

	resumed, reject := rig.engine.Resume(ctx, id, "Calico Jack")
	if reject != nil {
		t.Fatalf("resume with rename: %v", reject)
	}
	if resumed.Ship.Name != "Calico Jack" {
		t.Fatalf("expected renamed ship, got %q", resumed.Ship.Name)
	}

	// The old name frees up for new players.
	if _, reject := rig.engine.Join(ctx, "Anne Bonny", "sloop"); reject != nil {
		t.Fatalf("expected released name to be joinable, got %v", reject)
	}
}

func TestResumeRenameRejectsCollisionAndBadLength(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	result, reject := rig.engine.Join(ctx, "Anne Bonny", "sloop")
	if reject != nil {
		t.Fatalf("join: %v", reject)
	}
	if _, reject := rig.engine.Join(ctx, "Mary Read", "sloop"); reject != nil {
		t.Fatalf("join second: %v", reject)
	}
	id := result.Ship.ID
	rig.engine.MarkDisconnected(ctx, id)

	if _, reject := rig.engine.Resume(ctx, id, "Mary Read"); reject == nil || reject.Code != CodeNameTaken {
		t.Fatalf("expected nameTaken reject, got %v", reject)
	}
	if _, reject := rig.engine.Resume(ctx, id, "jo"); reject == nil || reject.Code != CodeNameLength {
		t.Fatalf("expected nameLength reject, got %v", reject)
	}

	// A failed rename must not consume the grace window or the old name.
	resumed, reject := rig.engine.Resume(ctx, id, "")
	if reject != nil {
		t.Fatalf("resume after failed rename: %v", reject)
	}
	if resumed.Ship.Name != "Anne Bonny" {
		t.Fatalf("expected original name kept, got %q", resumed.Ship.Name)
	}
}

func TestDisconnectRefreshesNameReservation(t *testing.T) {
	clock := newTestClock()
	store := memory.New(clock.Now)
	ctx := context.Background()

	first := New(world.New(world.DefaultConfig(), nil, nil, nil, rand.New(rand.NewSource(7))), store, Deps{Clock: clock}, Config{})
	result, reject := first.Join(ctx, "Anne Bonny", "sloop")
	if reject != nil {
		t.Fatalf("join: %v", reject)
	}

	// A long voyage outlasts the join-time reservation.
	clock.Advance(2 * time.Hour)
	first.MarkDisconnected(ctx, result.Ship.ID)

	// A restarted server inside the grace window must not hand the name out.
	second := New(world.New(world.DefaultConfig(), nil, nil, nil, rand.New(rand.NewSource(9))), store, Deps{Clock: clock}, Config{})
	clock.Advance(60 * time.Second)
	if _, reject := second.Join(ctx, "Anne Bonny", "sloop"); reject == nil || reject.Code != CodeNameTaken {
		t.Fatalf("expected nameTaken inside grace window, got %v", reject)
	}
}

func TestRemovalDropsPendingTimers(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	result, reject := rig.engine.Join(ctx, "Mary Read", "sloop")
	if reject != nil {
		t.Fatalf("join: %v", reject)
	}
	id := result.Ship.ID

	rig.engine.MarkDisconnected(ctx, id)
	rig.clock.Advance(700 * time.Second)
	rig.step(0.1)
	rig.clock.Advance(31 * time.Second)
	rig.step(0.1)

	if _, ok := rig.engine.Presence(id); ok {
		t.Fatalf("expected ship removed")
	}
	for _, event := range rig.engine.schedule.pending {
		if event.shipID == id {
			t.Fatalf("expected no pending timers for removed ship, found kind %d", event.kind)
		}
	}
}

func TestGraceExpiryWritesLeaderboardAndRejectsResume(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	result, reject := rig.engine.Join(ctx, "Mary Read", "brigantine")
	if reject != nil {
		t.Fatalf("join: %v", reject)
	}
	id := result.Ship.ID
	goldAtDeath := result.Ship.Gold

	rig.engine.MarkDisconnected(ctx, id)
	rig.clock.Advance(700 * time.Second)
	rig.step(0.1)

	if presence, _ := rig.engine.Presence(id); presence != world.PresenceDead {
		t.Fatalf("expected dead after grace expiry, got %v", presence)
	}
	if _, reject := rig.engine.Resume(ctx, id, ""); reject == nil || reject.Code != CodePlayerRemoved {
		t.Fatalf("expected playerRemoved reject, got %v", reject)
	}

	top, err := rig.engine.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 1 || top[0].Score != goldAtDeath || top[0].PlayerName != "Mary Read" {
		t.Fatalf("expected one leaderboard entry with score %d, got %+v", goldAtDeath, top)
	}

	// Cleanup delay elapses; the record disappears entirely.
	rig.clock.Advance(31 * time.Second)
	rig.step(0.1)
	if _, ok := rig.engine.Presence(id); ok {
		t.Fatalf("expected ship record removed after cleanup delay")
	}
	if _, err := rig.store.GetPlayer(ctx, id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected persisted record deleted, got %v", err)
	}
	// A grace expiry frees the name for new players.
	if _, reject := rig.engine.Join(ctx, "Mary Read", "sloop"); reject != nil {
		t.Fatalf("expected freed name to be joinable, got %v", reject)
	}
}

func TestResumeAfterRestartRebuildsFromStore(t *testing.T) {
	clock := newTestClock()
	store := memory.New(clock.Now)
	ctx := context.Background()

	first := New(world.New(world.DefaultConfig(), nil, nil, nil, rand.New(rand.NewSource(7))), store, Deps{Clock: clock}, Config{})
	result, reject := first.Join(ctx, "Jack Rackham", "galleon")
	if reject != nil {
		t.Fatalf("join: %v", reject)
	}

	// A fresh engine over the same store stands in for a restarted server.
	second := New(world.New(world.DefaultConfig(), nil, nil, nil, rand.New(rand.NewSource(9))), store, Deps{Clock: clock}, Config{})
	resumed, reject := second.Resume(ctx, result.Ship.ID, "")
	if reject != nil {
		t.Fatalf("resume after restart: %v", reject)
	}
	if resumed.Ship.Name != "Jack Rackham" || resumed.Ship.Class != "galleon" {
		t.Fatalf("restored ship mismatch: %+v", resumed.Ship)
	}
	if resumed.Ship.Gold != result.Ship.Gold || resumed.Ship.X != result.Ship.X {
		t.Fatalf("restored ship lost state: %+v vs %+v", resumed.Ship, result.Ship)
	}

	if _, reject := second.Resume(ctx, "no-such-id", ""); reject == nil || reject.Code != CodePlayerRemoved {
		t.Fatalf("expected playerRemoved for unknown id, got %v", reject)
	}
}

func TestScuttleEndsVoyageImmediately(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	result, reject := rig.engine.Join(ctx, "Edward Teach", "man-o-war")
	if reject != nil {
		t.Fatalf("join: %v", reject)
	}
	id := result.Ship.ID

	if reject := rig.engine.Scuttle(ctx, id); reject != nil {
		t.Fatalf("scuttle: %v", reject)
	}
	if presence, _ := rig.engine.Presence(id); presence != world.PresenceDead {
		t.Fatalf("expected dead after scuttle, got %v", presence)
	}
	if reject := rig.engine.Scuttle(ctx, id); reject == nil || reject.Code != CodePlayerRemoved {
		t.Fatalf("expected second scuttle rejected, got %v", reject)
	}

	notices := rig.engine.DrainNotices()
	var sawEnd, sawRemoved bool
	for _, notice := range notices {
		switch notice.Kind {
		case NoticeGameEnd:
			sawEnd = true
			if notice.Score != result.Ship.Gold || notice.Reason != "scuttled" {
				t.Fatalf("unexpected gameEnd notice: %+v", notice)
			}
		case NoticePlayerRemoved:
			sawRemoved = true
		}
	}
	if !sawEnd || !sawRemoved {
		t.Fatalf("expected gameEnd and playerRemoved notices, got %+v", notices)
	}
	if again := rig.engine.DrainNotices(); again != nil {
		t.Fatalf("expected notices drained once, got %+v", again)
	}

	top, err := rig.engine.Leaderboard(ctx, 1)
	if err != nil || len(top) != 1 {
		t.Fatalf("expected one leaderboard entry, got %v %v", top, err)
	}
}

func tradeRig(t *testing.T) (*testRig, string) {
	t.Helper()
	rig := newTestRig(t)
	ship, err := rig.world.AddShip("p1", "s1", "Trader", "galleon", rig.clock.Now())
	if err != nil {
		t.Fatalf("add ship: %v", err)
	}
	// Park inside Nassau's safe radius.
	ship.X, ship.Z = 2500, 2500
	return rig, ship.ID
}

func TestTradeBuySellRoundTrip(t *testing.T) {
	rig, id := tradeRig(t)
	ctx := context.Background()

	row := world.PortGood{PortID: "nassau", GoodID: "rum", Price: 50, Stock: 10, UpdatedAt: rig.clock.Now()}
	rig.world.RestorePortGood(row)
	if err := rig.store.PutPortGood(ctx, row); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	bought, reject := rig.engine.Trade(ctx, id, "nassau", "rum", 3, world.TradeBuy)
	if reject != nil {
		t.Fatalf("buy: %v", reject)
	}
	if bought.Gold != 350 || bought.CargoUsed != 3 || bought.Inventory["rum"] != 3 {
		t.Fatalf("unexpected buy result: %+v", bought)
	}

	sold, reject := rig.engine.Trade(ctx, id, "nassau", "rum", 2, world.TradeSell)
	if reject != nil {
		t.Fatalf("sell: %v", reject)
	}
	if sold.Gold != 450 || sold.CargoUsed != 1 || sold.Inventory["rum"] != 1 {
		t.Fatalf("unexpected sell result: %+v", sold)
	}

	rows, err := rig.store.GetPortGoods(ctx, "nassau")
	if err != nil || len(rows) != 1 {
		t.Fatalf("store rows: %v %v", rows, err)
	}
	if rows[0].Stock != 9 {
		t.Fatalf("expected store stock 9 after buy 3 sell 2, got %d", rows[0].Stock)
	}
}

func TestTradeRejections(t *testing.T) {
	rig, id := tradeRig(t)
	ctx := context.Background()

	row := world.PortGood{PortID: "nassau", GoodID: "rum", Price: 50, Stock: 5, UpdatedAt: rig.clock.Now()}
	rig.world.RestorePortGood(row)

	cases := []struct {
		name   string
		port   string
		good   string
		qty    int
		action world.TradeAction
		code   string
	}{
		{"unknown port", "atlantis", "rum", 1, world.TradeBuy, CodeUnknownPort},
		{"unknown good", "nassau", "grog", 1, world.TradeBuy, CodeUnknownGood},
		{"zero quantity", "nassau", "rum", 0, world.TradeBuy, CodeInvalidQuantity},
		{"overbuy stock", "nassau", "rum", 6, world.TradeBuy, CodeInsufficientStock},
		{"sell unowned", "nassau", "rum", 1, world.TradeSell, CodeInsufficientGoods},
	}
	for _, tc := range cases {
		if _, reject := rig.engine.Trade(ctx, id, tc.port, tc.good, tc.qty, tc.action); reject == nil || reject.Code != tc.code {
			t.Fatalf("%s: expected code %s, got %v", tc.name, tc.code, reject)
		}
	}

	// Distance check: a ship far from every port cannot trade.
	far, err := rig.world.AddShip("p2", "s2", "Drifter", "sloop", rig.clock.Now())
	if err != nil {
		t.Fatalf("add ship: %v", err)
	}
	far.X, far.Z = 0, 0
	if _, reject := rig.engine.Trade(ctx, far.ID, "nassau", "rum", 1, world.TradeBuy); reject == nil || reject.Code != CodeTooFarFromPort {
		t.Fatalf("expected tooFarFromPort, got %v", reject)
	}

	ship, _ := rig.engine.Ship(id)
	if ship.Gold != world.DefaultConfig().StartingGold || ship.CargoUsed != 0 {
		t.Fatalf("rejected trades must not mutate the ship: %+v", ship)
	}
}

func TestTradeLastUnitExactlyOneWinner(t *testing.T) {
	rig, id := tradeRig(t)
	ctx := context.Background()

	rival, err := rig.world.AddShip("p2", "s2", "Rival", "galleon", rig.clock.Now())
	if err != nil {
		t.Fatalf("add ship: %v", err)
	}
	rival.X, rival.Z = 2500, 2500

	row := world.PortGood{PortID: "nassau", GoodID: "rum", Price: 50, Stock: 1, UpdatedAt: rig.clock.Now()}
	rig.world.RestorePortGood(row)
	if err := rig.store.PutPortGood(ctx, row); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	rejects := make(chan *Reject, 2)
	var start sync.WaitGroup
	start.Add(1)
	for _, buyer := range []string{id, rival.ID} {
		buyer := buyer
		go func() {
			start.Wait()
			_, reject := rig.engine.Trade(ctx, buyer, "nassau", "rum", 1, world.TradeBuy)
			rejects <- reject
		}()
	}
	start.Done()

	succeeded := 0
	for i := 0; i < 2; i++ {
		reject := <-rejects
		if reject == nil {
			succeeded++
		} else if reject.Code != CodeInsufficientStock {
			t.Fatalf("loser should see insufficientStock, got %v", reject)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one winner for the last unit, got %d", succeeded)
	}

	rows, err := rig.store.GetPortGoods(ctx, "nassau")
	if err != nil || len(rows) != 1 || rows[0].Stock != 0 {
		t.Fatalf("expected final stock 0, got %v %v", rows, err)
	}
}

func TestMarketPulseRepricesAndPersists(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	rig.world.RestorePortGood(world.PortGood{PortID: "nassau", GoodID: "rum", Price: 50, Stock: 100, UpdatedAt: rig.clock.Now()})

	rig.clock.Advance(61 * time.Second)
	rig.step(0.1)

	rows, err := rig.store.GetPortGoods(ctx, "nassau")
	if err != nil || len(rows) == 0 {
		t.Fatalf("expected persisted market rows after pulse, got %v %v", rows, err)
	}
	for _, row := range rows {
		if row.GoodID != "rum" {
			continue
		}
		if row.Price < 35 || row.Price > 65 {
			t.Fatalf("rum price %d outside [35,65]", row.Price)
		}
	}

	// The pulse reschedules itself; another interval triggers another pass.
	before := rows[0].UpdatedAt
	rig.clock.Advance(61 * time.Second)
	rig.step(0.1)
	rows, err = rig.store.GetPortGoods(ctx, "nassau")
	if err != nil || len(rows) == 0 {
		t.Fatalf("expected rows after second pulse: %v %v", rows, err)
	}
	if !rows[0].UpdatedAt.After(before) {
		t.Fatalf("expected second pulse to touch the row")
	}
}

func TestSunkShipIgnoresInput(t *testing.T) {
	rig := newTestRig(t)

	ship, err := rig.world.AddShip("p1", "s1", "Victim", "sloop", rig.clock.Now())
	if err != nil {
		t.Fatalf("add ship: %v", err)
	}
	ship.Hull = 0
	ship.Sunk = true

	speed := 5.0
	rig.engine.Submit(Command{ShipID: "p1", Type: CommandInput, Input: &InputCommand{Speed: &speed, Fire: true}})
	rig.step(0.1)

	after, _ := rig.engine.Ship("p1")
	if after.Speed != 0 {
		t.Fatalf("sunk ship accepted movement input: %+v", after)
	}
	if got := len(rig.engine.Snapshot().CannonBalls); got != 0 {
		t.Fatalf("sunk ship fired: %d balls", got)
	}
}
