package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/websocket"

	"github.com/dinnerd/dinnerd/internal/api/middleware"
	"github.com/dinnerd/dinnerd/internal/api/response"
	"github.com/dinnerd/dinnerd/internal/livesync"
	"github.com/dinnerd/dinnerd/internal/message"
)

type boardPayload struct {
	Messages []messageResponse `json:"messages"`
}

// MessageWatchHandler handles GET /messages/watch: a WebSocket feed of the
// team's board. The client receives a snapshot frame on connect, then a
// refreshed board frame per post by any team member.
type MessageWatchHandler struct {
	messages *message.Service
	hub      *livesync.Hub[livesync.MessageUpdate]
}

// NewMessageWatchHandler creates a new MessageWatchHandler.
func NewMessageWatchHandler(messages *message.Service, hub *livesync.Hub[livesync.MessageUpdate]) *MessageWatchHandler {
	return &MessageWatchHandler{messages: messages, hub: hub}
}

// ServeHTTP upgrades the connection after resolving the caller's team.
func (h *MessageWatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return
	}
	code, ok := identity.Team()
	if !ok {
		response.Err(w, http.StatusConflict, "PROFILE_INCOMPLETE", "Join a team before watching the board", requestID)
		return
	}

	websocket.Handler(func(conn *websocket.Conn) {
		h.stream(conn, code)
	}).ServeHTTP(w, r)
}

func (h *MessageWatchHandler) stream(conn *websocket.Conn, inviteCode string) {
	defer func() {
		_ = conn.Close()
	}()

	peer := &watchPeer{encoder: json.NewEncoder(conn)}

	// Subscribe before the snapshot load so a post landing in between is not
	// missed; each update carries the full board view, so coalescing is safe.
	cancel := h.hub.Subscribe(inviteCode, func(u livesync.MessageUpdate) {
		if err := peer.writeFrame(watchFrame{
			Type:    "board.update",
			Payload: mustJSON(boardPayload{Messages: toMessageResponses(u.Messages)}),
		}); err != nil {
			slog.Debug("board watch write failed", "inviteCode", inviteCode, "error", err)
		}
	})
	defer cancel()

	ctx := conn.Request().Context()
	msgs, err := h.messages.Recent(ctx, inviteCode)
	if err != nil {
		slog.Error("failed to load board for watch snapshot", "error", err, "inviteCode", inviteCode)
		_ = peer.writeFrame(watchFrame{Type: "board.error"})
		return
	}

	if err := peer.writeFrame(watchFrame{
		Type:    "board.snapshot",
		Payload: mustJSON(boardPayload{Messages: toMessageResponses(msgs)}),
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
				slog.Debug("board watch read ended", "inviteCode", inviteCode, "error", err)
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
