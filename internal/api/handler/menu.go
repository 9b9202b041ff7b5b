package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dinnerd/dinnerd/internal/api/middleware"
	"github.com/dinnerd/dinnerd/internal/api/response"
	"github.com/dinnerd/dinnerd/internal/api/validation"
	"github.com/dinnerd/dinnerd/internal/menu"
	"github.com/dinnerd/dinnerd/internal/recipe"
)

type menuDocResponse struct {
	Menu         menu.WeeklyMenu `json:"menu"`
	Version      int64           `json:"version"`
	UpdatedAt    *string         `json:"updatedAt,omitempty"`
	TeamAssigned bool            `json:"teamAssigned"`
}

type saveMenuRequest struct {
	Menu    menu.WeeklyMenu `json:"menu"`
	Version int64           `json:"version"`
}

type updateSlotRequest struct {
	RecipeIDs []string `json:"recipeIds"`
}

func toMenuDocResponse(doc *menu.Document) menuDocResponse {
	resp := menuDocResponse{
		Menu:         doc.Menu,
		Version:      doc.Version,
		TeamAssigned: true,
	}
	if !doc.UpdatedAt.IsZero() {
		ts := doc.UpdatedAt.UTC().Format(time.RFC3339)
		resp.UpdatedAt = &ts
	}
	return resp
}

// MenuHandler handles the team's shared weekly menu endpoints.
type MenuHandler struct {
	menus   *menu.Service
	recipes recipe.Repository
	now     func() time.Time
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(menus *menu.Service, recipes recipe.Repository) *MenuHandler {
	return &MenuHandler{
		menus:   menus,
		recipes: recipes,
		now:     time.Now,
	}
}

// team resolves the acting user's invite code. Unauthenticated requests get
// a 401; a missing code is reported via ok=false and handled per operation
// (reads serve the default menu, writes are refused).
func (h *MenuHandler) team(w http.ResponseWriter, r *http.Request, requestID string) (code string, ok, authed bool) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return "", false, false
	}
	code, ok = identity.Team()
	return code, ok, true
}

// Get handles GET /menu. Users without a team see the empty default menu.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	code, ok, authed := h.team(w, r, requestID)
	if !authed {
		return
	}
	if !ok {
		response.Success(w, http.StatusOK, menuDocResponse{
			Menu:         menu.Default(),
			Version:      0,
			TeamAssigned: false,
		}, requestID)
		return
	}

	doc, err := h.menus.Load(r.Context(), code)
	if err != nil {
		slog.Error("failed to load weekly menu", "error", err, "inviteCode", code)
		response.Err(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Could not reach the menu store, try again", requestID)
		return
	}

	response.Success(w, http.StatusOK, toMenuDocResponse(doc), requestID)
}

// Save handles PUT /menu: a whole-document save guarded by the version the
// client last read. A stale version yields 409 and the client re-merges.
func (h *MenuHandler) Save(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	code, ok, authed := h.team(w, r, requestID)
	if !authed {
		return
	}
	if !ok {
		response.Err(w, http.StatusConflict, "PROFILE_INCOMPLETE", "Join a team before editing the menu", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req saveMenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}
	if req.Version < 0 {
		response.Err(w, http.StatusBadRequest, "INVALID_VERSION", "version must be >= 0", requestID)
		return
	}
	if fieldErrors := validation.ValidateWeeklyMenu(req.Menu); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	doc, err := h.menus.Save(r.Context(), code, req.Menu, req.Version)
	if err != nil {
		if errors.Is(err, menu.ErrVersionConflict) {
			response.Err(w, http.StatusConflict, "VERSION_CONFLICT", "The menu changed since you loaded it; reload and retry", requestID)
			return
		}
		slog.Error("failed to save weekly menu", "error", err, "inviteCode", code)
		response.Err(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Could not reach the menu store, try again", requestID)
		return
	}

	response.Success(w, http.StatusOK, toMenuDocResponse(doc), requestID)
}

// UpdateSlot handles PATCH /menu/days/{day}/meals/{meal}: replaces one slot
// while preserving every other day and meal.
func (h *MenuHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	code, ok, authed := h.team(w, r, requestID)
	if !authed {
		return
	}
	if !ok {
		response.Err(w, http.StatusConflict, "PROFILE_INCOMPLETE", "Join a team before editing the menu", requestID)
		return
	}

	dayStr := chi.URLParam(r, "day")
	mealStr := chi.URLParam(r, "meal")

	day, err := strconv.Atoi(dayStr)
	if err != nil {
		day = -1
	}
	if fieldErrors := validation.ValidateSlotPath(day, mealStr); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}
	if fieldErrors := validation.ValidateRecipeIDList(req.RecipeIDs); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	doc, err := h.menus.UpdateSlot(r.Context(), code, day, menu.Meal(mealStr), req.RecipeIDs)
	if err != nil {
		if errors.Is(err, menu.ErrVersionConflict) {
			response.Err(w, http.StatusConflict, "VERSION_CONFLICT", "Concurrent edits kept winning; retry the slot update", requestID)
			return
		}
		if errors.Is(err, menu.ErrInvalidSlot) {
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid day or meal", requestID)
			return
		}
		slog.Error("failed to update menu slot", "error", err, "inviteCode", code, "day", day, "meal", mealStr)
		response.Err(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Could not reach the menu store, try again", requestID)
		return
	}

	response.Success(w, http.StatusOK, toMenuDocResponse(doc), requestID)
}

type todayMealEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Known bool   `json:"known"`
}

type todayResponse struct {
	Day          int                         `json:"day"`
	DayName      string                      `json:"dayName"`
	Meals        map[string][]todayMealEntry `json:"meals"`
	TeamAssigned bool                        `json:"teamAssigned"`
}

// Today handles GET /menu/today: the current day's plan with resolved recipe
// names. Monday is index 0. Dangling references render as unknown.
func (h *MenuHandler) Today(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	code, ok, authed := h.team(w, r, requestID)
	if !authed {
		return
	}

	day := mondayIndex(h.now())
	resp := todayResponse{
		Day:          day,
		DayName:      menu.DayNames[day],
		Meals:        make(map[string][]todayMealEntry, len(menu.Meals)),
		TeamAssigned: ok,
	}

	plan := menu.Default()[day]
	if ok {
		doc, err := h.menus.Load(r.Context(), code)
		if err != nil {
			slog.Error("failed to load weekly menu", "error", err, "inviteCode", code)
			response.Err(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Could not reach the menu store, try again", requestID)
			return
		}
		plan = doc.Menu[day]
	}

	catalog, err := h.loadCatalog(w, r, requestID)
	if err != nil {
		return
	}

	for _, meal := range menu.Meals {
		entries := make([]todayMealEntry, 0, len(plan.Slot(meal)))
		for _, id := range plan.Slot(meal) {
			entry := todayMealEntry{ID: id, Name: "unknown"}
			if rec, found := catalog[id]; found {
				entry.Name = rec.Name
				entry.Known = true
			}
			entries = append(entries, entry)
		}
		resp.Meals[string(meal)] = entries
	}

	response.Success(w, http.StatusOK, resp, requestID)
}

func (h *MenuHandler) loadCatalog(w http.ResponseWriter, r *http.Request, requestID string) (menu.Catalog, error) {
	recipes, err := h.recipes.ListAll(r.Context())
	if err != nil {
		slog.Error("failed to list recipes", "error", err)
		response.Err(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Could not reach the recipe catalog, try again", requestID)
		return nil, err
	}
	return menu.IndexCatalog(recipes), nil
}

// mondayIndex converts a wall-clock day to the menu's Monday-first indexing.
func mondayIndex(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 6
	}
	return wd - 1
}
