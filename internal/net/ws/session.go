package ws

import (
	"context"
	"log"

	"github.com/gorilla/websocket"

	"corsairs/server"
	"corsairs/server/internal/net/intake"
	"corsairs/server/internal/net/proto"
	"corsairs/server/internal/sim"
	"corsairs/server/internal/world"
	"corsairs/server/logging"
	networklog "corsairs/server/logging/network"
)

// subscription is the write surface the hub hands back on Subscribe.
// Disconnect detaches only this session's registration, so a socket closed
// by its own replacement cannot tear the replacement down.
type subscription interface {
	WriteMessage(messageType int, data []byte) error
	Disconnect()
}

// session walks one connection through the welcome, the join or resume
// handshake, and the steady-state read loop. Writes after the handshake go
// through the hub's subscriber so they never interleave with broadcasts.
type session struct {
	hub    *server.Hub
	logger *log.Logger
	events logging.Publisher

	shipID string
	sub    subscription
}

func (s *session) serve(ctx context.Context, conn *websocket.Conn) {
	welcome, err := proto.EncodeWelcome(proto.WelcomeV1{
		World:       s.hub.Engine().WorldConfig(),
		ShipClasses: s.hub.Engine().ShipClasses(),
		Ports:       s.hub.Engine().Ports(),
		Goods:       s.hub.Engine().Goods(),
	})
	if err != nil {
		s.logger.Printf("failed to marshal welcome: %v", err)
		conn.Close()
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, welcome); err != nil {
		conn.Close()
		return
	}

	if !s.handshake(ctx, conn) {
		conn.Close()
		return
	}

	s.readLoop(ctx, conn)
}

// handshake reads until the client establishes an identity. Rejections keep
// the connection open so the client can correct the request.
func (s *session) handshake(ctx context.Context, conn *websocket.Conn) bool {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return false
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			s.noteMalformed(ctx, err)
			if !s.writeRaw(conn, malformedReject(err)) {
				return false
			}
			continue
		}

		switch msg.Type {
		case proto.TypeJoin:
			result, reject := s.hub.Engine().Join(ctx, msg.Name, msg.Class)
			if reject != nil {
				if !s.writeRaw(conn, rejectPayload(reject, s.logger)) {
					return false
				}
				continue
			}
			sub, ok := s.hub.Subscribe(result.Ship.ID, conn)
			if !ok {
				return false
			}
			s.shipID = result.Ship.ID
			s.sub = sub
			data, err := proto.EncodeJoined(proto.JoinedV1{
				ID:        result.Ship.ID,
				SessionID: result.SessionID,
				Ship:      result.Ship,
				Gold:      result.Ship.Gold,
			})
			if err != nil {
				s.logger.Printf("failed to marshal joined for %s: %v", s.shipID, err)
				s.sub.Disconnect()
				return false
			}
			return s.write(data) && s.writeInitialSnapshot()
		case proto.TypeResume:
			result, reject := s.hub.Engine().Resume(ctx, msg.PlayerID, msg.Name)
			if reject != nil {
				if !s.writeRaw(conn, rejectPayload(reject, s.logger)) {
					return false
				}
				continue
			}
			sub, ok := s.hub.Subscribe(result.Ship.ID, conn)
			if !ok {
				return false
			}
			s.shipID = result.Ship.ID
			s.sub = sub
			data, err := proto.EncodeResumed(proto.ResumedV1{
				ID:        result.Ship.ID,
				SessionID: result.SessionID,
				Ship:      result.Ship,
			})
			if err != nil {
				s.logger.Printf("failed to marshal resumed for %s: %v", s.shipID, err)
				s.sub.Disconnect()
				return false
			}
			return s.write(data) && s.writeInitialSnapshot()
		default:
			reject := &sim.Reject{
				Class:   sim.RejectValidation,
				Code:    sim.CodeMalformed,
				Message: "expected join or resume",
			}
			if !s.writeRaw(conn, rejectPayload(reject, s.logger)) {
				return false
			}
		}
	}
}

func (s *session) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.sub.Disconnect()
			return
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			s.noteMalformed(ctx, err)
			if !s.write(malformedReject(err)) {
				return
			}
			continue
		}

		switch msg.Type {
		case proto.TypeInput, proto.TypeHeartbeat:
			_, ok, reason := intake.StageClientCommand(intake.CommandContext{
				Stage:   s.hub.StageCommand,
				HasShip: s.hasShip,
			}, s.shipID, msg)
			if !ok && reason == server.CommandRejectUnknownActor {
				s.logger.Printf("command ignored for unknown ship %s", s.shipID)
			}
		case proto.TypeTrade:
			action := world.TradeAction(msg.Action)
			if action != world.TradeBuy && action != world.TradeSell {
				reject := &sim.Reject{
					Class:   sim.RejectValidation,
					Code:    sim.CodeMalformed,
					Message: "action must be buy or sell",
				}
				if !s.write(rejectPayload(reject, s.logger)) {
					return
				}
				continue
			}
			result, reject := s.hub.Engine().Trade(ctx, s.shipID, msg.Port, msg.Good, msg.Qty, action)
			if reject != nil {
				if !s.write(rejectPayload(reject, s.logger)) {
					return
				}
				continue
			}
			data, err := proto.EncodeTradeResult(proto.TradeResultV1{
				Action:    string(action),
				Good:      msg.Good,
				Qty:       msg.Qty,
				Price:     result.Price,
				Gold:      result.Gold,
				CargoUsed: result.CargoUsed,
				Inventory: result.Inventory,
			})
			if err != nil {
				s.logger.Printf("failed to marshal trade result for %s: %v", s.shipID, err)
				continue
			}
			if !s.write(data) {
				return
			}
		case proto.TypeScuttle:
			// A successful scuttle answers through the notice channel with a
			// gameEnd on the next publish.
			if reject := s.hub.Engine().Scuttle(ctx, s.shipID); reject != nil {
				if !s.write(rejectPayload(reject, s.logger)) {
					return
				}
			}
		default:
			s.logger.Printf("unknown message type %q from %s", msg.Type, s.shipID)
		}
	}
}

func (s *session) hasShip(id string) bool {
	_, ok := s.hub.Engine().Presence(id)
	return ok
}

// writeInitialSnapshot answers the handshake with a first filtered view so
// the client can render before the next publish.
func (s *session) writeInitialSnapshot() bool {
	frame, ok := s.hub.SnapshotFrame(s.shipID)
	if !ok {
		return true
	}
	return s.write(frame)
}

// write sends through the subscriber; a failed write demotes the session.
func (s *session) write(data []byte) bool {
	if data == nil {
		return true
	}
	if err := s.sub.WriteMessage(websocket.TextMessage, data); err != nil {
		s.sub.Disconnect()
		return false
	}
	return true
}

// writeRaw sends on the bare connection before a subscriber exists.
func (s *session) writeRaw(conn *websocket.Conn, data []byte) bool {
	if data == nil {
		return true
	}
	return conn.WriteMessage(websocket.TextMessage, data) == nil
}

func (s *session) noteMalformed(ctx context.Context, err error) {
	networklog.Malformed(ctx, s.events, s.hub.Engine().Tick(), logging.ShipRef(s.shipID),
		networklog.MalformedPayload{Error: err.Error()})
}

func malformedReject(err error) []byte {
	data, encodeErr := proto.EncodeReject(&sim.Reject{
		Class:   sim.RejectValidation,
		Code:    sim.CodeMalformed,
		Message: err.Error(),
	})
	if encodeErr != nil {
		return nil
	}
	return data
}

func rejectPayload(reject *sim.Reject, logger *log.Logger) []byte {
	data, err := proto.EncodeReject(reject)
	if err != nil {
		logger.Printf("failed to marshal reject %s: %v", reject.Code, err)
		return nil
	}
	return data
}
