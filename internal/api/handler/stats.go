package handler

import (
	"log/slog"
	"net/http"

	"github.com/dinnerd/dinnerd/internal/api/middleware"
	"github.com/dinnerd/dinnerd/internal/api/response"
	"github.com/dinnerd/dinnerd/internal/menu"
)

type dailyCaloriesEntry struct {
	Day      int    `json:"day"`
	DayName  string `json:"dayName"`
	Calories int    `json:"calories"`
}

type statsResponse struct {
	TotalCalories     int                  `json:"totalCalories"`
	DailyCalories     []dailyCaloriesEntry `json:"dailyCalories"`
	PeakDay           int                  `json:"peakDay"`
	PeakDayName       string               `json:"peakDayName"`
	UniqueIngredients []string             `json:"uniqueIngredients"`
	TotalIngredients  int                  `json:"totalIngredients"` // shopping list size, duplicates included
	Recipes           []menu.Summary       `json:"recipes"`
	UnknownRecipeIDs  []string             `json:"unknownRecipeIds"`
	TotalSelections   int                  `json:"totalSelections"` // occurrences across all slots
	TeamAssigned      bool                 `json:"teamAssigned"`
}

// StatsHandler handles GET /menu/stats: the weekly menu analysis widgets.
type StatsHandler struct {
	menus *MenuHandler
}

// NewStatsHandler creates a new StatsHandler sharing the menu handler's
// team resolution and catalog loading.
func NewStatsHandler(menus *MenuHandler) *StatsHandler {
	return &StatsHandler{menus: menus}
}

// ServeHTTP computes aggregate statistics over the persisted weekly menu.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	code, ok, authed := h.menus.team(w, r, requestID)
	if !authed {
		return
	}

	m := menu.Default()
	if ok {
		doc, err := h.menus.menus.Load(r.Context(), code)
		if err != nil {
			slog.Error("failed to load weekly menu", "error", err, "inviteCode", code)
			response.Err(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Could not reach the menu store, try again", requestID)
			return
		}
		m = doc.Menu
	}

	catalog, err := h.menus.loadCatalog(w, r, requestID)
	if err != nil {
		return
	}

	stats := menu.Aggregate(m, catalog)

	daily := make([]dailyCaloriesEntry, menu.NumDays)
	for day, cals := range stats.DailyCalories {
		daily[day] = dailyCaloriesEntry{
			Day:      day,
			DayName:  menu.DayNames[day],
			Calories: cals,
		}
	}

	totalSelections := 0
	for _, count := range stats.Occurrences {
		totalSelections += count
	}

	resp := statsResponse{
		TotalCalories:     stats.TotalCalories,
		DailyCalories:     daily,
		PeakDay:           stats.PeakDay,
		PeakDayName:       menu.DayNames[stats.PeakDay],
		UniqueIngredients: emptyIfNil(stats.UniqueIngredients),
		TotalIngredients:  len(stats.ShoppingList),
		Recipes:           stats.Summaries,
		UnknownRecipeIDs:  emptyIfNil(stats.UnknownIDs),
		TotalSelections:   totalSelections,
		TeamAssigned:      ok,
	}
	if resp.Recipes == nil {
		resp.Recipes = []menu.Summary{}
	}

	response.Success(w, http.StatusOK, resp, requestID)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
