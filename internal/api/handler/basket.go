package handler

import (
	"log/slog"
	"net/http"

	"github.com/dinnerd/dinnerd/internal/api/middleware"
	"github.com/dinnerd/dinnerd/internal/api/response"
	"github.com/dinnerd/dinnerd/internal/menu"
)

type basketItem struct {
	Ingredient string `json:"ingredient"`
	Quantity   int    `json:"quantity"` // occurrences in the shopping multiset
}

type basketRecipe struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Occurrences int    `json:"occurrences"`
}

type basketResponse struct {
	// Items is the deduplicated purchasing checklist; quantity carries the
	// multiset count. Checked state is client-side only and resets whenever
	// the list is recomputed.
	Items        []basketItem   `json:"items"`
	Recipes      []basketRecipe `json:"recipes"`
	TeamAssigned bool           `json:"teamAssigned"`
}

// BasketHandler handles GET /menu/basket: the shopping list derived from the
// currently persisted weekly menu.
type BasketHandler struct {
	menus *MenuHandler
}

// NewBasketHandler creates a new BasketHandler.
func NewBasketHandler(menus *MenuHandler) *BasketHandler {
	return &BasketHandler{menus: menus}
}

// ServeHTTP derives the basket view. Exact string matching only: "onion" and
// "Onion" are distinct items.
func (h *BasketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	quantities := make(map[string]int, len(stats.UniqueIngredients))
	for _, ing := range stats.ShoppingList {
		quantities[ing]++
	}

	items := make([]basketItem, 0, len(stats.UniqueIngredients))
	for _, ing := range stats.UniqueIngredients {
		items = append(items, basketItem{Ingredient: ing, Quantity: quantities[ing]})
	}

	recipes := make([]basketRecipe, 0, len(stats.Summaries))
	for _, s := range stats.Summaries {
		recipes = append(recipes, basketRecipe{ID: s.ID, Name: s.Name, Occurrences: s.Occurrences})
	}

	response.Success(w, http.StatusOK, basketResponse{
		Items:        items,
		Recipes:      recipes,
		TeamAssigned: ok,
	}, requestID)
}
