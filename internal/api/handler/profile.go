package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dinnerd/dinnerd/internal/api/middleware"
	"github.com/dinnerd/dinnerd/internal/api/response"
	"github.com/dinnerd/dinnerd/internal/api/validation"
	"github.com/dinnerd/dinnerd/internal/auth"
)

type profileResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	InviteCode  *string `json:"inviteCode"`
	IsSuperuser bool    `json:"isSuperuser"`
}

type setInviteCodeRequest struct {
	InviteCode string `json:"inviteCode"`
}

// ProfileHandler handles the acting user's own profile: reading it and
// joining/leaving a team by adopting an invite code.
type ProfileHandler struct {
	userRepo auth.UserRepository
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(userRepo auth.UserRepository) *ProfileHandler {
	return &ProfileHandler{userRepo: userRepo}
}

// Get handles GET /profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return
	}

	response.Success(w, http.StatusOK, profileResponse{
		ID:          identity.UserID.String(),
		Name:        identity.UserName,
		InviteCode:  identity.InviteCode,
		IsSuperuser: identity.IsSuperuser,
	}, requestID)
}

// SetInviteCode handles PUT /profile/invite-code. Adopting a new code
// switches teams (and drops visibility of the previous team's menu); an
// empty code leaves the current team.
func (h *ProfileHandler) SetInviteCode(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req setInviteCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	code := strings.TrimSpace(req.InviteCode)

	var codePtr *string
	if code != "" {
		if fieldErrors := validation.ValidateInviteCode(code); len(fieldErrors) > 0 {
			response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
			return
		}
		codePtr = &code
	}

	u, err := h.userRepo.SetInviteCode(r.Context(), identity.UserID, codePtr)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to set invite code", "error", err, "userId", identity.UserID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update profile", requestID)
		return
	}

	response.Success(w, http.StatusOK, profileResponse{
		ID:          u.ID.String(),
		Name:        u.Name,
		InviteCode:  u.InviteCode,
		IsSuperuser: u.IsSuperuser,
	}, requestID)
}
