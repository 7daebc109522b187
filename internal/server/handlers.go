package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dialspace/dialspace/internal/config"
	"github.com/dialspace/dialspace/internal/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handlers holds references needed by HTTP handlers.
type Handlers struct {
	Cfg       config.Config
	Log       *zap.Logger
	Router    *Router
	Registry  *Registry
	Sessions  *SessionManager
	StartTime time.Time
}

// HealthResponse is the response for GET /api/health.
type HealthResponse struct {
	Status    string  `json:"status"`
	Uptime    string  `json:"uptime"`
	UptimeSec float64 `json:"uptime_seconds"`
	Rooms     int     `json:"rooms"`
	Clients   int     `json:"clients"`
}

// RoomListResponse is the response for GET /api/rooms.
type RoomListResponse struct {
	Rooms []protocol.RoomInfo `json:"rooms"`
}

// Health handles GET /api/health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.StartTime)
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Uptime:    uptime.Round(time.Second).String(),
		UptimeSec: uptime.Seconds(),
		Rooms:     len(h.Registry.Defs()),
		Clients:   h.Sessions.Count(),
	})
}

// ListRooms handles GET /api/rooms.
func (h *Handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RoomListResponse{Rooms: h.Registry.List()})
}

// HandleWS upgrades GET /ws and starts the client pumps.
func (h *Handlers) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn("ws upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	h.Log.Info("client connected", zap.String("remote", r.RemoteAddr))
	NewClient(conn, h.Router, h.Cfg.HeartbeatInterval, h.Log).Run()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
