package proto

import (
	"encoding/json"
	"fmt"

	"corsairs/server/internal/sim"
	"corsairs/server/internal/world"
)

// Version tracks the wire-protocol revision expected by clients.
const Version = 1

// Client message type identifiers.
const (
	TypeJoin      = "join"
	TypeResume    = "resume"
	TypeInput     = "input"
	TypeTrade     = "trade"
	TypeScuttle   = "scuttle"
	TypeHeartbeat = "heartbeat"
)

// Server message type identifiers.
const (
	TypeWelcome       = "welcome"
	TypeJoined        = "joined"
	TypeResumed       = "resumed"
	TypeSnapshot      = "snapshot"
	TypeTradeResult   = "tradeResult"
	TypePlayerRemoved = "playerRemoved"
	TypeGameEnd       = "gameEnd"
	TypeError         = "error"
)

// ClientMessage captures an inbound websocket message from the client. The
// type discriminant selects which fields are meaningful.
type ClientMessage struct {
	Ver      int      `json:"ver,omitempty"`
	Type     string   `json:"type"`
	Name     string   `json:"name,omitempty"`
	Class    string   `json:"class,omitempty"`
	PlayerID string   `json:"playerId,omitempty"`
	Heading  *float64 `json:"heading,omitempty"`
	Speed    *float64 `json:"speed,omitempty"`
	DirX     *float64 `json:"dirX,omitempty"`
	DirZ     *float64 `json:"dirZ,omitempty"`
	Fire     bool     `json:"fire,omitempty"`
	Port     string   `json:"port,omitempty"`
	Good     string   `json:"good,omitempty"`
	Qty      int      `json:"qty,omitempty"`
	Action   string   `json:"action,omitempty"`
	SentAt   int64    `json:"sentAt,omitempty"`
}

// DecodeClientMessage converts raw websocket payloads into a structured
// message. A missing version field is treated as the current version.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	if msg.Type == "" {
		return msg, fmt.Errorf("missing message type")
	}
	return msg, nil
}

// ClientCommand converts the asynchronous message kinds into a staged
// simulation command. Request/response kinds return false and go through the
// synchronous engine calls instead.
func ClientCommand(msg ClientMessage) (sim.Command, bool) {
	switch msg.Type {
	case TypeInput:
		return sim.Command{
			Type: sim.CommandInput,
			Input: &sim.InputCommand{
				Heading: msg.Heading,
				Speed:   msg.Speed,
				DirX:    msg.DirX,
				DirZ:    msg.DirZ,
				Fire:    msg.Fire,
			},
		}, true
	case TypeHeartbeat:
		return sim.Command{
			Type:      sim.CommandHeartbeat,
			Heartbeat: &sim.HeartbeatCommand{},
		}, true
	default:
		return sim.Command{}, false
	}
}

// WelcomeV1 is the first message on every connection, sent before any
// handshake so the client can validate the catalog and protocol version.
type WelcomeV1 struct {
	Ver         int               `json:"ver"`
	Type        string            `json:"type"`
	World       world.Config      `json:"world"`
	ShipClasses []world.ShipClass `json:"shipClasses"`
	Ports       []world.Port      `json:"ports"`
	Goods       []world.Good      `json:"goods"`
}

// EncodeWelcome renders the handshake payload.
func EncodeWelcome(msg WelcomeV1) ([]byte, error) {
	msg.Ver = Version
	msg.Type = TypeWelcome
	return json.Marshal(msg)
}

// JoinedV1 confirms a successful join with the new identity and a first
// full view of the local world.
type JoinedV1 struct {
	Ver       int        `json:"ver"`
	Type      string     `json:"type"`
	ID        string     `json:"id"`
	SessionID string     `json:"sessionId"`
	Ship      world.Ship `json:"ship"`
	Gold      int        `json:"gold"`
}

// EncodeJoined renders a join confirmation.
func EncodeJoined(msg JoinedV1) ([]byte, error) {
	msg.Ver = Version
	msg.Type = TypeJoined
	return json.Marshal(msg)
}

// ResumedV1 confirms a successful session re-attach.
type ResumedV1 struct {
	Ver       int        `json:"ver"`
	Type      string     `json:"type"`
	ID        string     `json:"id"`
	SessionID string     `json:"sessionId"`
	Ship      world.Ship `json:"ship"`
}

// EncodeResumed renders a resume confirmation.
func EncodeResumed(msg ResumedV1) ([]byte, error) {
	msg.Ver = Version
	msg.Type = TypeResumed
	return json.Marshal(msg)
}

// SnapshotV1 is the interest-filtered periodic state push.
type SnapshotV1 struct {
	Ver         int                `json:"ver"`
	Type        string             `json:"type"`
	Tick        uint64             `json:"t"`
	ServerTime  int64              `json:"serverTime"`
	Ships       []world.Ship       `json:"ships"`
	CannonBalls []world.CannonBall `json:"cannonBalls,omitempty"`
}

// EncodeSnapshot renders a state snapshot payload.
func EncodeSnapshot(msg SnapshotV1) ([]byte, error) {
	msg.Ver = Version
	msg.Type = TypeSnapshot
	return json.Marshal(msg)
}

// TradeResultV1 reports a completed trade's post-state.
type TradeResultV1 struct {
	Ver       int            `json:"ver"`
	Type      string         `json:"type"`
	Action    string         `json:"action"`
	Good      string         `json:"good"`
	Qty       int            `json:"qty"`
	Price     int            `json:"price"`
	Gold      int            `json:"gold"`
	CargoUsed int            `json:"cargoUsed"`
	Inventory map[string]int `json:"inventory"`
}

// EncodeTradeResult renders a successful trade confirmation.
func EncodeTradeResult(msg TradeResultV1) ([]byte, error) {
	msg.Ver = Version
	msg.Type = TypeTradeResult
	return json.Marshal(msg)
}

// PlayerRemovedV1 notifies sessions that a ship has left the world.
type PlayerRemovedV1 struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// EncodePlayerRemoved renders a removal notice.
func EncodePlayerRemoved(msg PlayerRemovedV1) ([]byte, error) {
	msg.Ver = Version
	msg.Type = TypePlayerRemoved
	return json.Marshal(msg)
}

// GameEndV1 tells one session that its own voyage is over.
type GameEndV1 struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Score  int    `json:"score"`
	Reason string `json:"reason,omitempty"`
}

// EncodeGameEnd renders a voyage-over notice.
func EncodeGameEnd(msg GameEndV1) ([]byte, error) {
	msg.Ver = Version
	msg.Type = TypeGameEnd
	return json.Marshal(msg)
}

// ErrorV1 carries a typed rejection across the session boundary.
type ErrorV1 struct {
	Ver     int    `json:"ver"`
	Type    string `json:"type"`
	Class   string `json:"class"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EncodeReject renders a rejection as a wire error message.
func EncodeReject(reject *sim.Reject) ([]byte, error) {
	msg := ErrorV1{
		Ver:     Version,
		Type:    TypeError,
		Class:   string(reject.Class),
		Code:    reject.Code,
		Message: reject.Message,
	}
	return json.Marshal(msg)
}
