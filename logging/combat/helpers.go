package combat

import (
	"context"

	"corsairs/server/logging"
)

const (
	// EventVolleyFired is emitted when a ship fires its broadside.
	EventVolleyFired logging.EventType = "combat.volley_fired"
	// EventHit is emitted when a cannonball strikes a ship.
	EventHit logging.EventType = "combat.hit"
	// EventSunk is emitted when a ship's hull reaches zero.
	EventSunk logging.EventType = "combat.sunk"
)

// VolleyFiredPayload captures the cannonballs spawned by one fire command.
type VolleyFiredPayload struct {
	Cannons    int     `json:"cannons"`
	BaseDamage int     `json:"baseDamage"`
	Heading    float64 `json:"heading"`
}

// HitPayload captures the damage applied to a single target.
type HitPayload struct {
	BaseDamage    int     `json:"baseDamage"`
	AppliedDamage int     `json:"appliedDamage"`
	ArmorPercent  float64 `json:"armorPercent"`
	TargetHull    int     `json:"targetHull"`
}

// SunkPayload describes the fatal blow.
type SunkPayload struct {
	Score int `json:"score"`
}

// VolleyFired publishes a broadside event.
func VolleyFired(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload VolleyFiredPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventVolleyFired,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// Hit publishes a cannonball impact event.
func Hit(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, payload HitPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventHit,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// Sunk publishes a ship-destroyed event.
func Sunk(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, payload SunkPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSunk,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}
