package server

import "time"

const (
	ProtocolVersion = 1
	writeWait       = 10 * time.Second

	// DefaultTickInterval paces the combat simulation; DefaultPublishInterval
	// paces the interest-filtered broadcast. Both are tunables, not contracts.
	DefaultTickInterval    = 100 * time.Millisecond
	DefaultPublishInterval = 100 * time.Millisecond
)

// Reasons reported to sessions when a staged command is refused.
const (
	CommandRejectUnknownActor = "unknown_actor"
	CommandRejectQueueFull    = "queue_full"
	CommandRejectInvalid      = "invalid_command"
)
