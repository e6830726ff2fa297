package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"strconv"
	"time"

	"corsairs/server"
	"corsairs/server/internal/net/ws"
	"corsairs/server/logging"
)

// HTTPHandlerConfig carries the HTTP surface's dependencies. ClientDir, when
// set, serves the static client from the mux root.
type HTTPHandlerConfig struct {
	ClientDir string
	Logger    *log.Logger
	Events    logging.Publisher
}

// NewHTTPHandler builds the full HTTP surface: catalog endpoints, the
// leaderboard, health and diagnostics, and the websocket session endpoint.
func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string `json:"status"`
			ServerTime int64  `json:"serverTime"`
			Tick       uint64 `json:"tick"`
			Sessions   any    `json:"sessions"`
			Telemetry  any    `json:"telemetry"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Tick:       hub.Engine().Tick(),
			Sessions:   hub.DiagnosticsSnapshot(),
			Telemetry:  hub.TelemetrySnapshot(),
		}
		writeJSON(w, payload)
	})

	mux.HandleFunc("/api/ship-types", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, hub.Engine().ShipClasses())
	})

	mux.HandleFunc("/api/ports", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, hub.Engine().Ports())
	})

	mux.HandleFunc("/api/goods", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, hub.Engine().Goods())
	})

	mux.HandleFunc("/api/leaderboard", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		n := 10
		if raw := r.URL.Query().Get("n"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				httpError(w, "invalid n", nethttp.StatusBadRequest)
				return
			}
			n = parsed
		}
		entries, err := hub.Leaderboard(r.Context(), n)
		if err != nil {
			logger.Printf("leaderboard read failed: %v", err)
			httpError(w, "leaderboard unavailable", nethttp.StatusServiceUnavailable)
			return
		}
		writeJSON(w, entries)
	})

	wsHandler := ws.NewHandler(hub, ws.HandlerConfig{Logger: logger, Events: cfg.Events})
	mux.HandleFunc("/ws", wsHandler.Handle)

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func writeJSON(w nethttp.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
