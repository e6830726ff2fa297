package ws

import (
	"log"
	nethttp "net/http"

	"github.com/gorilla/websocket"

	"corsairs/server"
	"corsairs/server/logging"
)

// HandlerConfig carries the websocket endpoint's dependencies.
type HandlerConfig struct {
	Logger *log.Logger
	Events logging.Publisher
}

// Handler upgrades HTTP requests into game sessions.
type Handler struct {
	hub      *server.Hub
	logger   *log.Logger
	events   logging.Publisher
	upgrader websocket.Upgrader
}

// NewHandler constructs the websocket endpoint for the given hub.
func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	events := cfg.Events
	if events == nil {
		events = logging.NopPublisher()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:      hub,
		logger:   logger,
		events:   events,
		upgrader: upgrader,
	}
}

// Handle upgrades the request and runs the session until the peer goes away.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed: %v", err)
		return
	}

	s := &session{
		hub:    h.hub,
		logger: h.logger,
		events: h.events,
	}
	s.serve(r.Context(), conn)
}
