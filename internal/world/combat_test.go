package world

import (
	"math/rand"
	"testing"
	"time"
)

func newTestWorld(t *testing.T, cfg Config) *World {
	t.Helper()
	return New(cfg, nil, nil, nil, rand.New(rand.NewSource(1)))
}

func combatConfig() Config {
	cfg := DefaultConfig()
	// ReferenceFPS 1 makes per-tick displacement speed*dt, which keeps the
	// collision segments in these tests easy to read.
	cfg.ReferenceFPS = 1
	return cfg
}

func addShipAt(t *testing.T, w *World, id, class string, x, z float64) *Ship {
	t.Helper()
	ship, err := w.AddShip(id, "session-"+id, "name-"+id, class, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("AddShip(%s): %v", id, err)
	}
	ship.X = x
	ship.Z = z
	return ship
}

func TestSpawnVolleyOneBallPerCannon(t *testing.T) {
	w := newTestWorld(t, combatConfig())
	ship := addShipAt(t, w, "p1", "brigantine", 100, 100)

	balls := w.SpawnVolley(ship, time.Unix(10, 0))
	if len(balls) != 4 {
		t.Fatalf("expected 4 cannonballs for a brigantine, got %d", len(balls))
	}
	if ship.CanFire {
		t.Fatalf("expected CanFire to latch false after a volley")
	}
	for _, ball := range balls {
		if ball.OwnerID != "p1" {
			t.Fatalf("unexpected owner %q", ball.OwnerID)
		}
		if ball.Damage != 10 {
			t.Fatalf("unexpected damage %d", ball.Damage)
		}
	}
	if w.ProjectileCount() != 4 {
		t.Fatalf("expected 4 live projectiles, got %d", w.ProjectileCount())
	}
}

func TestAdvanceProjectilesContinuousHit(t *testing.T) {
	w := newTestWorld(t, combatConfig())
	addShipAt(t, w, "attacker", "sloop", 0, 0)
	addShipAt(t, w, "target", "sloop", 500, 500)

	// A ball travelling 40 units in a single tick passes clean through the
	// 20-unit hit sphere; an end-of-tick distance check would miss it.
	w.projectiles = append(w.projectiles, &CannonBall{
		ID: "ball-test", OwnerID: "attacker", Damage: 10,
		X: 480, Z: 500, DirX: 1, DirZ: 0, Speed: 40,
		FiredAt: time.Unix(0, 0),
	})

	reports := w.AdvanceProjectiles(1)
	if len(reports) != 1 {
		t.Fatalf("expected exactly one hit, got %d", len(reports))
	}
	if reports[0].TargetID != "target" {
		t.Fatalf("unexpected target %q", reports[0].TargetID)
	}
	if w.ProjectileCount() != 0 {
		t.Fatalf("expected the ball to be removed on impact")
	}
}

func TestAdvanceProjectilesShortSegmentMisses(t *testing.T) {
	w := newTestWorld(t, combatConfig())
	addShipAt(t, w, "attacker", "sloop", 0, 0)
	addShipAt(t, w, "target", "sloop", 500, 500)

	w.projectiles = append(w.projectiles, &CannonBall{
		ID: "ball-test", OwnerID: "attacker", Damage: 10,
		X: 470, Z: 500, DirX: 1, DirZ: 0, Speed: 5,
		FiredAt: time.Unix(0, 0),
	})

	if reports := w.AdvanceProjectiles(1); len(reports) != 0 {
		t.Fatalf("expected no hit, got %d", len(reports))
	}
	if w.ProjectileCount() != 1 {
		t.Fatalf("expected the ball to survive the tick")
	}
}

func TestAdvanceProjectilesSkipsOwner(t *testing.T) {
	w := newTestWorld(t, combatConfig())
	addShipAt(t, w, "attacker", "sloop", 500, 500)

	w.projectiles = append(w.projectiles, &CannonBall{
		ID: "ball-test", OwnerID: "attacker", Damage: 10,
		X: 480, Z: 500, DirX: 1, DirZ: 0, Speed: 40,
		FiredAt: time.Unix(0, 0),
	})

	if reports := w.AdvanceProjectiles(1); len(reports) != 0 {
		t.Fatalf("a ball must never hit its own ship, got %d hits", len(reports))
	}
}

func TestArmorReducesDamage(t *testing.T) {
	w := newTestWorld(t, combatConfig())
	addShipAt(t, w, "attacker", "sloop", 0, 0)
	// Galleon armor is 20%: 10 base damage applies 8.
	target := addShipAt(t, w, "target", "galleon", 500, 500)

	w.projectiles = append(w.projectiles, &CannonBall{
		ID: "ball-test", OwnerID: "attacker", Damage: 10,
		X: 480, Z: 500, DirX: 1, DirZ: 0, Speed: 40,
		FiredAt: time.Unix(0, 0),
	})

	reports := w.AdvanceProjectiles(1)
	if len(reports) != 1 {
		t.Fatalf("expected one hit, got %d", len(reports))
	}
	if reports[0].Applied != 8 {
		t.Fatalf("expected applied damage 8, got %d", reports[0].Applied)
	}
	if target.Hull != 240-8 {
		t.Fatalf("expected hull %d, got %d", 240-8, target.Hull)
	}
}

func TestHullZeroSetsSunkAndRejectsInput(t *testing.T) {
	w := newTestWorld(t, combatConfig())
	addShipAt(t, w, "attacker", "sloop", 0, 0)
	target := addShipAt(t, w, "target", "sloop", 500, 500)
	target.Hull = 5

	w.projectiles = append(w.projectiles, &CannonBall{
		ID: "ball-test", OwnerID: "attacker", Damage: 10,
		X: 480, Z: 500, DirX: 1, DirZ: 0, Speed: 40,
		FiredAt: time.Unix(0, 0),
	})

	reports := w.AdvanceProjectiles(1)
	if len(reports) != 1 || !reports[0].Sunk {
		t.Fatalf("expected a sinking hit, got %+v", reports)
	}
	if target.Hull != 0 {
		t.Fatalf("hull must clamp to 0, got %d", target.Hull)
	}
	if !target.Sunk {
		t.Fatalf("expected sunk flag")
	}

	speed := 3.0
	if w.SetIntent("target", nil, &speed, nil, nil) {
		t.Fatalf("a sunk ship must reject movement intents")
	}
}

func TestProjectileExpiry(t *testing.T) {
	cfg := combatConfig()
	cfg.ProjectileTTL = 5 * time.Second
	w := newTestWorld(t, cfg)

	w.projectiles = append(w.projectiles, &CannonBall{
		ID: "ball-old", OwnerID: "attacker", X: 100, Z: 100, DirX: 1,
		Speed: 1, FiredAt: time.Unix(0, 0),
	})
	w.projectiles = append(w.projectiles, &CannonBall{
		ID: "ball-new", OwnerID: "attacker", X: 200, Z: 200, DirX: 1,
		Speed: 1, FiredAt: time.Unix(4, 0),
	})

	if expired := w.ExpireProjectiles(time.Unix(6, 0)); expired != 1 {
		t.Fatalf("expected 1 expired ball, got %d", expired)
	}
	if w.ProjectileCount() != 1 {
		t.Fatalf("expected 1 surviving ball, got %d", w.ProjectileCount())
	}
}

func TestHitAcrossSeam(t *testing.T) {
	w := newTestWorld(t, combatConfig())
	addShipAt(t, w, "attacker", "sloop", 0, 0)
	addShipAt(t, w, "target", "sloop", 10, 2500)

	w.projectiles = append(w.projectiles, &CannonBall{
		ID: "ball-test", OwnerID: "attacker", Damage: 10,
		X: 4985, Z: 2500, DirX: 1, DirZ: 0, Speed: 40,
		FiredAt: time.Unix(0, 0),
	})

	if reports := w.AdvanceProjectiles(1); len(reports) != 1 {
		t.Fatalf("expected a wrapped hit across the seam, got %d", len(reports))
	}
}
