package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinnerd/dinnerd/internal/api/handler"
	"github.com/dinnerd/dinnerd/internal/menu"
	"github.com/dinnerd/dinnerd/internal/recipe"
)

func newMenuHandler(store menu.Store, recipes recipe.Repository, pub menu.Publisher) *handler.MenuHandler {
	if store == nil {
		store = &mockMenuStore{}
	}
	if recipes == nil {
		recipes = &mockRecipeRepo{}
	}
	if pub == nil {
		pub = &mockPublisher{}
	}
	return handler.NewMenuHandler(menu.NewService(store, pub), recipes)
}

// ===== GET /menu =====

func TestMenuGet_Unauthenticated(t *testing.T) {
	t.Parallel()

	h := newMenuHandler(nil, nil, nil)
	req, w := makeChiRequest(http.MethodGet, "/menu", nil, nil)

	h.Get(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))
}

func TestMenuGet_TeamlessServesDefault(t *testing.T) {
	t.Parallel()

	store := &mockMenuStore{
		loadFn: func(_ context.Context, _ string) (*menu.Document, error) {
			t.Fatal("store must not be consulted for teamless users")
			return nil, nil
		},
	}
	h := newMenuHandler(store, nil, nil)

	req, w := makeChiRequest(http.MethodGet, "/menu", nil, nil)
	h.Get(w, withTeam(req, ""))

	assert.Equal(t, http.StatusOK, w.Code)

	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, false, data["teamAssigned"])
	assert.Equal(t, float64(0), data["version"])

	days := data["menu"].([]interface{})
	require.Len(t, days, 7)
	day0 := days[0].(map[string]interface{})
	assert.Empty(t, day0["breakfast"])
}

func TestMenuGet_WithTeam(t *testing.T) {
	t.Parallel()

	stored := menu.Default()
	stored[1].SetSlot(menu.Lunch, []string{"r1"})
	store := &mockMenuStore{
		loadFn: func(_ context.Context, inviteCode string) (*menu.Document, error) {
			assert.Equal(t, "family-42", inviteCode)
			return &menu.Document{
				InviteCode: inviteCode,
				Menu:       stored,
				Version:    7,
				UpdatedAt:  time.Now().UTC(),
			}, nil
		},
	}
	h := newMenuHandler(store, nil, nil)

	req, w := makeChiRequest(http.MethodGet, "/menu", nil, nil)
	h.Get(w, withTeam(req, "family-42"))

	assert.Equal(t, http.StatusOK, w.Code)

	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, true, data["teamAssigned"])
	assert.Equal(t, float64(7), data["version"])
	assert.NotEmpty(t, data["updatedAt"])

	days := data["menu"].([]interface{})
	day1 := days[1].(map[string]interface{})
	assert.Equal(t, []interface{}{"r1"}, day1["lunch"])
}

func TestMenuGet_StoreUnavailable(t *testing.T) {
	t.Parallel()

	store := &mockMenuStore{
		loadFn: func(_ context.Context, _ string) (*menu.Document, error) {
			return nil, errors.New("connection refused")
		},
	}
	h := newMenuHandler(store, nil, nil)

	req, w := makeChiRequest(http.MethodGet, "/menu", nil, nil)
	h.Get(w, withTeam(req, "family-42"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORE_UNAVAILABLE", errorCode(t, w))
}

// ===== PUT /menu =====

func TestMenuSave_Success(t *testing.T) {
	t.Parallel()

	pub := &mockPublisher{}
	h := newMenuHandler(nil, nil, pub)

	m := menu.Default()
	m[0].SetSlot(menu.Breakfast, []string{"r1"})
	body, _ := json.Marshal(map[string]interface{}{
		"menu":    m,
		"version": 3,
	})

	req, w := makeChiRequest(http.MethodPut, "/menu", body, nil)
	h.Save(w, withTeam(req, "family-42"))

	assert.Equal(t, http.StatusOK, w.Code)

	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, float64(4), data["version"])

	// The committed state was pushed to the team's subscribers.
	require.Len(t, pub.published, 1)
	assert.Equal(t, "family-42", pub.published[0].inviteCode)
	assert.Equal(t, int64(4), pub.published[0].version)
}

func TestMenuSave_Teamless(t *testing.T) {
	t.Parallel()

	h := newMenuHandler(nil, nil, nil)

	body, _ := json.Marshal(map[string]interface{}{"menu": menu.Default(), "version": 0})
	req, w := makeChiRequest(http.MethodPut, "/menu", body, nil)
	h.Save(w, withTeam(req, ""))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PROFILE_INCOMPLETE", errorCode(t, w))
}

func TestMenuSave_VersionConflict(t *testing.T) {
	t.Parallel()

	pub := &mockPublisher{}
	store := &mockMenuStore{
		saveFn: func(_ context.Context, _ string, _ menu.WeeklyMenu, _ int64) (*menu.Document, error) {
			return nil, menu.ErrVersionConflict
		},
	}
	h := newMenuHandler(store, nil, pub)

	body, _ := json.Marshal(map[string]interface{}{"menu": menu.Default(), "version": 1})
	req, w := makeChiRequest(http.MethodPut, "/menu", body, nil)
	h.Save(w, withTeam(req, "family-42"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "VERSION_CONFLICT", errorCode(t, w))
	assert.Empty(t, pub.published)
}

func TestMenuSave_InvalidJSON(t *testing.T) {
	t.Parallel()

	h := newMenuHandler(nil, nil, nil)

	req, w := makeChiRequest(http.MethodPut, "/menu", []byte("{invalid"), nil)
	h.Save(w, withTeam(req, "family-42"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_JSON", errorCode(t, w))
}

func TestMenuSave_NegativeVersion(t *testing.T) {
	t.Parallel()

	h := newMenuHandler(nil, nil, nil)

	body, _ := json.Marshal(map[string]interface{}{"menu": menu.Default(), "version": -1})
	req, w := makeChiRequest(http.MethodPut, "/menu", body, nil)
	h.Save(w, withTeam(req, "family-42"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_VERSION", errorCode(t, w))
}

func TestMenuSave_BlankRecipeIDRejected(t *testing.T) {
	t.Parallel()

	pub := &mockPublisher{}
	h := newMenuHandler(nil, nil, pub)

	// A blank entry is rejected on a whole-document save just as the slot
	// update endpoint rejects it.
	m := menu.Default()
	m[3].SetSlot(menu.Lunch, []string{"r1", " "})
	body, _ := json.Marshal(map[string]interface{}{"menu": m, "version": 0})
	req, w := makeChiRequest(http.MethodPut, "/menu", body, nil)
	h.Save(w, withTeam(req, "family-42"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	assert.Empty(t, pub.published)

	env := parseEnvelope(t, w)
	details := env["error"].(map[string]interface{})["details"].([]interface{})
	first := details[0].(map[string]interface{})
	assert.Equal(t, "menu[3].lunch", first["field"])
}

func TestMenuSave_LegacyScalarSlots(t *testing.T) {
	t.Parallel()

	var savedMenu menu.WeeklyMenu
	store := &mockMenuStore{
		saveFn: func(_ context.Context, inviteCode string, m menu.WeeklyMenu, v int64) (*menu.Document, error) {
			savedMenu = m
			return &menu.Document{InviteCode: inviteCode, Menu: m, Version: v + 1}, nil
		},
	}
	h := newMenuHandler(store, nil, nil)

	// Older clients send a bare string per slot.
	body := []byte(`{"menu":[{"breakfast":"r1","lunch":[],"dinner":[]}],"version":0}`)
	req, w := makeChiRequest(http.MethodPut, "/menu", body, nil)
	h.Save(w, withTeam(req, "family-42"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, menu.RecipeIDs{"r1"}, savedMenu[0].Breakfast)
}

// ===== PATCH /menu/days/{day}/meals/{meal} =====

func TestMenuUpdateSlot_Success(t *testing.T) {
	t.Parallel()

	pub := &mockPublisher{}
	h := newMenuHandler(nil, nil, pub)

	body, _ := json.Marshal(map[string]interface{}{"recipeIds": []string{"r1", "r2"}})
	req, w := makeChiRequest(http.MethodPatch, "/menu/days/2/meals/dinner", body, map[string]string{
		"day":  "2",
		"meal": "dinner",
	})
	h.UpdateSlot(w, withTeam(req, "family-42"))

	assert.Equal(t, http.StatusOK, w.Code)

	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	days := data["menu"].([]interface{})
	day2 := days[2].(map[string]interface{})
	assert.Equal(t, []interface{}{"r1", "r2"}, day2["dinner"])

	require.Len(t, pub.published, 1)
}

func TestMenuUpdateSlot_InvalidDay(t *testing.T) {
	t.Parallel()

	h := newMenuHandler(nil, nil, nil)

	body, _ := json.Marshal(map[string]interface{}{"recipeIds": []string{"r1"}})
	req, w := makeChiRequest(http.MethodPatch, "/menu/days/7/meals/lunch", body, map[string]string{
		"day":  "7",
		"meal": "lunch",
	})
	h.UpdateSlot(w, withTeam(req, "family-42"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestMenuUpdateSlot_NonNumericDay(t *testing.T) {
	t.Parallel()

	h := newMenuHandler(nil, nil, nil)

	body, _ := json.Marshal(map[string]interface{}{"recipeIds": []string{}})
	req, w := makeChiRequest(http.MethodPatch, "/menu/days/monday/meals/lunch", body, map[string]string{
		"day":  "monday",
		"meal": "lunch",
	})
	h.UpdateSlot(w, withTeam(req, "family-42"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMenuUpdateSlot_UnknownMeal(t *testing.T) {
	t.Parallel()

	h := newMenuHandler(nil, nil, nil)

	body, _ := json.Marshal(map[string]interface{}{"recipeIds": []string{}})
	req, w := makeChiRequest(http.MethodPatch, "/menu/days/0/meals/brunch", body, map[string]string{
		"day":  "0",
		"meal": "brunch",
	})
	h.UpdateSlot(w, withTeam(req, "family-42"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMenuUpdateSlot_Teamless(t *testing.T) {
	t.Parallel()

	h := newMenuHandler(nil, nil, nil)

	body, _ := json.Marshal(map[string]interface{}{"recipeIds": []string{"r1"}})
	req, w := makeChiRequest(http.MethodPatch, "/menu/days/0/meals/lunch", body, map[string]string{
		"day":  "0",
		"meal": "lunch",
	})
	h.UpdateSlot(w, withTeam(req, ""))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PROFILE_INCOMPLETE", errorCode(t, w))
}

func TestMenuUpdateSlot_ConflictAfterRetries(t *testing.T) {
	t.Parallel()

	store := &mockMenuStore{
		updateSlotFn: func(_ context.Context, _ string, _ int, _ menu.Meal, _ []string) (*menu.Document, error) {
			return nil, menu.ErrVersionConflict
		},
	}
	h := newMenuHandler(store, nil, nil)

	body, _ := json.Marshal(map[string]interface{}{"recipeIds": []string{"r1"}})
	req, w := makeChiRequest(http.MethodPatch, "/menu/days/0/meals/lunch", body, map[string]string{
		"day":  "0",
		"meal": "lunch",
	})
	h.UpdateSlot(w, withTeam(req, "family-42"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "VERSION_CONFLICT", errorCode(t, w))
}

// ===== GET /menu/today =====

func TestMenuToday_ResolvesNames(t *testing.T) {
	t.Parallel()

	rec := recipe.Recipe{ID: uuid.New(), Name: "pancakes", Calories: 300}
	recipes := &mockRecipeRepo{
		listAllFn: func(_ context.Context) ([]recipe.Recipe, error) {
			return []recipe.Recipe{rec}, nil
		},
	}

	// Schedule the same plan on every day so the assertion holds regardless
	// of the wall clock.
	stored := menu.Default()
	for day := 0; day < menu.NumDays; day++ {
		stored[day].SetSlot(menu.Breakfast, []string{rec.ID.String(), "gone-id"})
	}
	store := &mockMenuStore{
		loadFn: func(_ context.Context, inviteCode string) (*menu.Document, error) {
			return &menu.Document{InviteCode: inviteCode, Menu: stored, Version: 1}, nil
		},
	}
	h := newMenuHandler(store, recipes, nil)

	req, w := makeChiRequest(http.MethodGet, "/menu/today", nil, nil)
	h.Today(w, withTeam(req, "family-42"))

	assert.Equal(t, http.StatusOK, w.Code)

	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, true, data["teamAssigned"])

	day := int(data["day"].(float64))
	require.GreaterOrEqual(t, day, 0)
	require.Less(t, day, menu.NumDays)
	assert.Equal(t, menu.DayNames[day], data["dayName"])

	meals := data["meals"].(map[string]interface{})
	breakfast := meals["breakfast"].([]interface{})
	require.Len(t, breakfast, 2)

	first := breakfast[0].(map[string]interface{})
	assert.Equal(t, "pancakes", first["name"])
	assert.Equal(t, true, first["known"])

	second := breakfast[1].(map[string]interface{})
	assert.Equal(t, "unknown", second["name"])
	assert.Equal(t, false, second["known"])
}

func TestMenuToday_TeamlessServesDefault(t *testing.T) {
	t.Parallel()

	h := newMenuHandler(nil, nil, nil)

	req, w := makeChiRequest(http.MethodGet, "/menu/today", nil, nil)
	h.Today(w, withTeam(req, ""))

	assert.Equal(t, http.StatusOK, w.Code)

	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, false, data["teamAssigned"])

	meals := data["meals"].(map[string]interface{})
	require.Len(t, meals, 3)
	for _, mealName := range []string{"breakfast", "lunch", "dinner"} {
		assert.Empty(t, meals[mealName])
	}
}
