package sim

import "time"

// CommandType enumerates the staged simulation commands. Request/response
// operations (join, resume, trade, scuttle) are synchronous engine calls and
// never pass through the buffer.
type CommandType string

const (
	CommandInput     CommandType = "Input"
	CommandHeartbeat CommandType = "Heartbeat"
)

// InputCommand carries a movement/fire intent. Nil fields leave the current
// value untouched.
type InputCommand struct {
	Heading *float64 `json:"heading,omitempty"`
	Speed   *float64 `json:"speed,omitempty"`
	DirX    *float64 `json:"dirX,omitempty"`
	DirZ    *float64 `json:"dirZ,omitempty"`
	Fire    bool     `json:"fire,omitempty"`
}

// HeartbeatCommand refreshes connectivity metadata for a ship.
type HeartbeatCommand struct {
	ReceivedAt time.Time `json:"receivedAt"`
}

// Command represents an intent captured for processing on the next tick.
type Command struct {
	ShipID    string            `json:"shipId"`
	Type      CommandType       `json:"type"`
	IssuedAt  time.Time         `json:"issuedAt"`
	Input     *InputCommand     `json:"input,omitempty"`
	Heartbeat *HeartbeatCommand `json:"heartbeat,omitempty"`
}
