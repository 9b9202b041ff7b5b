package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/dinnerd/dinnerd/internal/api/middleware"
	"github.com/dinnerd/dinnerd/internal/api/response"
	"github.com/dinnerd/dinnerd/internal/livesync"
	"github.com/dinnerd/dinnerd/internal/menu"
)

type watchFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type watchPayload struct {
	Menu    menu.WeeklyMenu `json:"menu"`
	Version int64           `json:"version"`
}

// watchPeer serializes frame writes; the hub delivery goroutine and the
// snapshot write race otherwise.
type watchPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func (p *watchPeer) writeFrame(frame watchFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// WatchHandler handles GET /menu/watch: a WebSocket feed of the team's
// committed menu states. The client receives a snapshot frame on connect,
// then one update frame per save by any team member.
type WatchHandler struct {
	menus *menu.Service
	hub   *livesync.Hub[livesync.MenuUpdate]
}

// NewWatchHandler creates a new WatchHandler.
func NewWatchHandler(menus *menu.Service, hub *livesync.Hub[livesync.MenuUpdate]) *WatchHandler {
	return &WatchHandler{menus: menus, hub: hub}
}

// ServeHTTP upgrades the connection after resolving the caller's team.
func (h *WatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return
	}
	code, ok := identity.Team()
	if !ok {
		response.Err(w, http.StatusConflict, "PROFILE_INCOMPLETE", "Join a team before watching the menu", requestID)
		return
	}

	websocket.Handler(func(conn *websocket.Conn) {
		h.stream(conn, code)
	}).ServeHTTP(w, r)
}

func (h *WatchHandler) stream(conn *websocket.Conn, inviteCode string) {
	defer func() {
		_ = conn.Close()
	}()

	peer := &watchPeer{encoder: json.NewEncoder(conn)}

	// Subscribe before the snapshot load so a save landing in between is
	// not missed; the coalescing mailbox keeps only the newest state anyway.
	cancel := h.hub.Subscribe(inviteCode, func(u livesync.MenuUpdate) {
		if err := peer.writeFrame(watchFrame{
			Type:    "menu.update",
			Payload: mustJSON(watchPayload{Menu: u.Menu, Version: u.Version}),
		}); err != nil {
			slog.Debug("menu watch write failed", "inviteCode", inviteCode, "error", err)
		}
	})
	defer cancel()

	ctx := conn.Request().Context()
	doc, err := h.menus.Load(ctx, inviteCode)
	if err != nil {
		slog.Error("failed to load menu for watch snapshot", "error", err, "inviteCode", inviteCode)
		_ = peer.writeFrame(watchFrame{Type: "menu.error"})
		return
	}

	if err := peer.writeFrame(watchFrame{
		Type:    "menu.snapshot",
		Payload: mustJSON(watchPayload{Menu: doc.Menu, Version: doc.Version}),
	}); err != nil {
		return
	}

	// Drain client frames until the connection goes away. Anything other
	// than a ping is ignored.
	decoder := json.NewDecoder(conn)
	for {
		var frame watchFrame
		if err := decoder.Decode(&frame); err != nil {
			if err != io.EOF {
				slog.Debug("menu watch read ended", "inviteCode", inviteCode, "error", err)
			}
			return
		}
		if frame.Type == "ping" {
			_ = peer.writeFrame(watchFrame{
				Type:    "pong",
				Payload: mustJSON(map[string]string{"serverTime": time.Now().UTC().Format(time.RFC3339)}),
			})
		}
	}
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal watch frame payload", "error", err)
		return nil
	}
	return b
}
