package world

import (
	"fmt"
	"math"
	"time"
)

// HitReport describes one cannonball impact resolved during a tick.
type HitReport struct {
	BallID     string
	OwnerID    string
	TargetID   string
	BaseDamage int
	Applied    int
	TargetHull int
	Sunk       bool
}

// SpawnVolley creates one cannonball per cannon, fanned around the ship's
// broadside heading. The reload gate is enforced by the engine; this method
// only records the spawn.
func (w *World) SpawnVolley(ship *Ship, now time.Time) []*CannonBall {
	class, ok := w.classes[ship.Class]
	if !ok || class.CannonCount <= 0 {
		return nil
	}

	balls := make([]*CannonBall, 0, class.CannonCount)
	base := ship.Heading + 90
	for i := 0; i < class.CannonCount; i++ {
		offset := (float64(i) - float64(class.CannonCount-1)/2) * w.cfg.VolleySpreadDeg
		angle := (base + offset) * math.Pi / 180
		w.nextProjectile++
		ball := &CannonBall{
			ID:      fmt.Sprintf("ball-%d", w.nextProjectile),
			OwnerID: ship.ID,
			Damage:  class.CannonDamage,
			X:       ship.X,
			Z:       ship.Z,
			DirX:    math.Sin(angle),
			DirZ:    math.Cos(angle),
			Speed:   w.cfg.ProjectileSpeed,
			FiredAt: now,
		}
		balls = append(balls, ball)
		w.projectiles = append(w.projectiles, ball)
	}
	ship.LastFiredAt = now
	ship.CanFire = false
	return balls
}

// AdvanceProjectiles integrates every cannonball and resolves collisions with
// a continuous segment-sphere test against the pre-move position, so a ball
// whose per-tick displacement exceeds the hit radius cannot tunnel through a
// ship. Each ball hits at most one ship per tick; ships are checked in
// sorted-ID order so resolution is deterministic.
func (w *World) AdvanceProjectiles(dt float64) []HitReport {
	if dt <= 0 || len(w.projectiles) == 0 {
		return nil
	}

	ships := w.ShipsInOrder()
	var reports []HitReport
	survivors := w.projectiles[:0]

	for _, ball := range w.projectiles {
		dx := ball.DirX * ball.Speed * dt * w.cfg.ReferenceFPS
		dz := ball.DirZ * ball.Speed * dt * w.cfg.ReferenceFPS
		prevX, prevZ := ball.X, ball.Z
		ball.X = Wrap(ball.X+dx, w.cfg.Width)
		ball.Z = Wrap(ball.Z+dz, w.cfg.Height)

		hit := false
		for _, ship := range ships {
			if ship.ID == ball.OwnerID || ship.Sunk {
				continue
			}
			if _, ok := SegmentSphereHit(prevX, prevZ, dx, dz, ship.X, ship.Z, w.cfg.HitRadius, w.cfg.Width, w.cfg.Height); !ok {
				continue
			}
			reports = append(reports, w.applyHit(ball, ship))
			hit = true
			break
		}
		if !hit {
			survivors = append(survivors, ball)
		}
	}

	// Clear the tail so removed balls do not linger in the backing array.
	for i := len(survivors); i < len(w.projectiles); i++ {
		w.projectiles[i] = nil
	}
	w.projectiles = survivors
	return reports
}

func (w *World) applyHit(ball *CannonBall, ship *Ship) HitReport {
	armor := 0.0
	if class, ok := w.classes[ship.Class]; ok {
		armor = class.ArmorPercent
	}
	applied := int(math.Round(float64(ball.Damage) * (1 - armor/100)))
	ship.Hull -= applied
	if ship.Hull <= 0 {
		ship.Hull = 0
		ship.Sunk = true
		ship.Speed = 0
	}
	return HitReport{
		BallID:     ball.ID,
		OwnerID:    ball.OwnerID,
		TargetID:   ship.ID,
		BaseDamage: ball.Damage,
		Applied:    applied,
		TargetHull: ship.Hull,
		Sunk:       ship.Sunk,
	}
}

// ExpireProjectiles drops cannonballs older than the configured time-to-live.
func (w *World) ExpireProjectiles(now time.Time) int {
	survivors := w.projectiles[:0]
	for _, ball := range w.projectiles {
		if now.Sub(ball.FiredAt) <= w.cfg.ProjectileTTL {
			survivors = append(survivors, ball)
		}
	}
	expired := len(w.projectiles) - len(survivors)
	for i := len(survivors); i < len(w.projectiles); i++ {
		w.projectiles[i] = nil
	}
	w.projectiles = survivors
	return expired
}

// ProjectileCount reports the number of live cannonballs.
func (w *World) ProjectileCount() int { return len(w.projectiles) }
