package intake

import (
	"time"

	"corsairs/server"
	"corsairs/server/internal/net/proto"
	"corsairs/server/internal/sim"
)

// CommandContext supplies the collaborators StageClientCommand needs. Stage
// hands the finished command to the hub; HasShip answers whether the actor is
// still part of the world.
type CommandContext struct {
	Stage   func(string, sim.Command) (bool, string)
	HasShip func(string) bool
	Now     func() time.Time
}

// StageClientCommand validates an asynchronous client envelope and stages it
// for the next tick. Synchronous requests (join, trade, scuttle) never pass
// through here.
func StageClientCommand(ctx CommandContext, shipID string, msg proto.ClientMessage) (sim.Command, bool, string) {
	var zero sim.Command

	command, ok := proto.ClientCommand(msg)
	if !ok {
		return zero, false, server.CommandRejectInvalid
	}

	switch command.Type {
	case sim.CommandInput:
		if command.Input == nil {
			return zero, false, server.CommandRejectInvalid
		}
	case sim.CommandHeartbeat:
		if command.Heartbeat == nil {
			return zero, false, server.CommandRejectInvalid
		}
	default:
		return zero, false, server.CommandRejectInvalid
	}

	if ctx.HasShip != nil && !ctx.HasShip(shipID) {
		return zero, false, server.CommandRejectUnknownActor
	}

	command.ShipID = shipID
	if ctx.Now != nil {
		command.IssuedAt = ctx.Now()
	} else {
		command.IssuedAt = time.Now()
	}
	if command.Heartbeat != nil {
		command.Heartbeat.ReceivedAt = command.IssuedAt
	}

	if ctx.Stage == nil {
		return zero, false, server.CommandRejectQueueFull
	}
	if ok, reason := ctx.Stage(shipID, command); !ok {
		return zero, false, reason
	}

	return command, true, ""
}
