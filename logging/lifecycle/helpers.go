package lifecycle

import (
	"context"

	"corsairs/server/logging"
)

const (
	// EventJoined is emitted when a new ship enters the world.
	EventJoined logging.EventType = "lifecycle.joined"
	// EventDisconnected is emitted when a session drops and the grace timer starts.
	EventDisconnected logging.EventType = "lifecycle.disconnected"
	// EventResumed is emitted when a session re-attaches within the grace window.
	EventResumed logging.EventType = "lifecycle.resumed"
	// EventDead is emitted when the grace window expires or a ship scuttles.
	EventDead logging.EventType = "lifecycle.dead"
	// EventRemoved is emitted when a dead ship's record is deleted.
	EventRemoved logging.EventType = "lifecycle.removed"
)

// JoinedPayload describes a new ship.
type JoinedPayload struct {
	Name      string `json:"name"`
	ShipClass string `json:"shipClass"`
}

// DeadPayload describes the terminal score for a ship.
type DeadPayload struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	event.Category = logging.CategoryLifecycle
	pub.Publish(ctx, event)
}

// Joined publishes a join event.
func Joined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload JoinedPayload) {
	publish(ctx, pub, logging.Event{Type: EventJoined, Tick: tick, Actor: actor, Severity: logging.SeverityInfo, Payload: payload})
}

// Disconnected publishes a grace-timer-start event.
func Disconnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	publish(ctx, pub, logging.Event{Type: EventDisconnected, Tick: tick, Actor: actor, Severity: logging.SeverityInfo})
}

// Resumed publishes a successful session re-attach event.
func Resumed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	publish(ctx, pub, logging.Event{Type: EventResumed, Tick: tick, Actor: actor, Severity: logging.SeverityInfo})
}

// Dead publishes the death of a ship with its leaderboard score.
func Dead(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload DeadPayload) {
	publish(ctx, pub, logging.Event{Type: EventDead, Tick: tick, Actor: actor, Severity: logging.SeverityInfo, Payload: payload})
}

// Removed publishes the final deletion of a ship record.
func Removed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	publish(ctx, pub, logging.Event{Type: EventRemoved, Tick: tick, Actor: actor, Severity: logging.SeverityDebug})
}
