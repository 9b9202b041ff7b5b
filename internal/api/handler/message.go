package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dinnerd/dinnerd/internal/api/middleware"
	"github.com/dinnerd/dinnerd/internal/api/response"
	"github.com/dinnerd/dinnerd/internal/api/validation"
	"github.com/dinnerd/dinnerd/internal/message"
)

type postMessageRequest struct {
	Body string `json:"body"`
}

type messageResponse struct {
	ID         string `json:"id"`
	Body       string `json:"body"`
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
	CreatedAt  string `json:"createdAt"`
}

type messageListResponse struct {
	Messages     []messageResponse `json:"messages"`
	TeamAssigned bool              `json:"teamAssigned"`
}

func toMessageResponse(m *message.Message) messageResponse {
	return messageResponse{
		ID:         m.ID.String(),
		Body:       m.Body,
		AuthorID:   m.AuthorID.String(),
		AuthorName: m.AuthorName,
		CreatedAt:  m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toMessageResponses(msgs []message.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, toMessageResponse(&msgs[i]))
	}
	return out
}

// MessageHandler handles the team message board endpoints. The board shows
// the newest posts, most recent first.
type MessageHandler struct {
	messages *message.Service
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messages *message.Service) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// List handles GET /messages. Users without a team see an empty board.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return
	}
	code, ok := identity.Team()
	if !ok {
		response.Success(w, http.StatusOK, messageListResponse{
			Messages:     []messageResponse{},
			TeamAssigned: false,
		}, requestID)
		return
	}

	msgs, err := h.messages.Recent(r.Context(), code)
	if err != nil {
		slog.Error("failed to list board messages", "error", err, "inviteCode", code)
		response.Err(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Could not reach the message board, try again", requestID)
		return
	}

	response.Success(w, http.StatusOK, messageListResponse{
		Messages:     toMessageResponses(msgs),
		TeamAssigned: true,
	}, requestID)
}

// Post handles POST /messages.
func (h *MessageHandler) Post(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return
	}
	code, ok := identity.Team()
	if !ok {
		response.Err(w, http.StatusConflict, "PROFILE_INCOMPLETE", "Join a team before posting to the board", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if fieldErrors := validation.ValidatePostMessageRequest(req.Body); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	msg := &message.Message{
		InviteCode: code,
		AuthorID:   identity.UserID,
		AuthorName: identity.UserName,
		Body:       strings.TrimSpace(req.Body),
	}

	if err := h.messages.Post(r.Context(), msg); err != nil {
		slog.Error("failed to post board message", "error", err, "inviteCode", code)
		response.Err(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Could not reach the message board, try again", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toMessageResponse(msg), requestID)
}
