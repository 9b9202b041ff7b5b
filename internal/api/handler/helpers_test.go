package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dinnerd/dinnerd/internal/api/middleware"
	"github.com/dinnerd/dinnerd/internal/auth"
	"github.com/dinnerd/dinnerd/internal/menu"
	"github.com/dinnerd/dinnerd/internal/recipe"
)

// --- Request helpers ---

func makeChiRequest(method, path string, body []byte, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, w
}

func withTeam(req *http.Request, inviteCode string) *http.Request {
	identity := &auth.Identity{UserID: uuid.New(), UserName: "alice"}
	if inviteCode != "" {
		identity.InviteCode = &inviteCode
	}
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err, "failed to parse response body")
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := parseEnvelope(t, w)
	errObj, ok := env["error"].(map[string]interface{})
	require.True(t, ok, "expected an error object, got %v", env["error"])
	return errObj["code"].(string)
}

// --- Mock Recipe Repository ---

type mockRecipeRepo struct {
	createFn  func(ctx context.Context, rec *recipe.Recipe) error
	getByIDFn func(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error)
	listAllFn func(ctx context.Context) ([]recipe.Recipe, error)
	updateFn  func(ctx context.Context, id uuid.UUID, fields recipe.UpdateFields) (*recipe.Recipe, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockRecipeRepo) Create(ctx context.Context, rec *recipe.Recipe) error {
	if m.createFn != nil {
		return m.createFn(ctx, rec)
	}
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	return nil
}

func (m *mockRecipeRepo) GetByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, recipe.ErrRecipeNotFound
}

func (m *mockRecipeRepo) ListAll(ctx context.Context) ([]recipe.Recipe, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return []recipe.Recipe{}, nil
}

func (m *mockRecipeRepo) Update(ctx context.Context, id uuid.UUID, fields recipe.UpdateFields) (*recipe.Recipe, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return nil, recipe.ErrRecipeNotFound
}

func (m *mockRecipeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock Menu Store ---

type mockMenuStore struct {
	loadFn       func(ctx context.Context, inviteCode string) (*menu.Document, error)
	saveFn       func(ctx context.Context, inviteCode string, m menu.WeeklyMenu, expectedVersion int64) (*menu.Document, error)
	updateSlotFn func(ctx context.Context, inviteCode string, day int, meal menu.Meal, recipeIDs []string) (*menu.Document, error)
}

func (m *mockMenuStore) Load(ctx context.Context, inviteCode string) (*menu.Document, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, inviteCode)
	}
	return &menu.Document{InviteCode: inviteCode, Menu: menu.Default()}, nil
}

func (m *mockMenuStore) Save(ctx context.Context, inviteCode string, wm menu.WeeklyMenu, expectedVersion int64) (*menu.Document, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, inviteCode, wm, expectedVersion)
	}
	return &menu.Document{InviteCode: inviteCode, Menu: wm, Version: expectedVersion + 1, UpdatedAt: time.Now().UTC()}, nil
}

func (m *mockMenuStore) UpdateSlot(ctx context.Context, inviteCode string, day int, meal menu.Meal, recipeIDs []string) (*menu.Document, error) {
	if m.updateSlotFn != nil {
		return m.updateSlotFn(ctx, inviteCode, day, meal, recipeIDs)
	}
	doc := &menu.Document{InviteCode: inviteCode, Menu: menu.Default(), Version: 1}
	doc.Menu[day].SetSlot(meal, recipeIDs)
	return doc, nil
}

// --- Mock Publisher ---

type publishRecord struct {
	inviteCode string
	version    int64
}

type mockPublisher struct {
	published []publishRecord
}

func (p *mockPublisher) PublishMenu(inviteCode string, _ menu.WeeklyMenu, version int64) {
	p.published = append(p.published, publishRecord{inviteCode: inviteCode, version: version})
}

// --- Mock User Repository ---

type mockUserRepo struct {
	createFn        func(ctx context.Context, u *auth.User) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*auth.User, error)
	findByPrefixFn  func(ctx context.Context, prefix string) ([]auth.User, error)
	listFn          func(ctx context.Context) ([]auth.User, error)
	setInviteCodeFn func(ctx context.Context, id uuid.UUID, inviteCode *string) (*auth.User, error)
	revokeFn        func(ctx context.Context, id uuid.UUID) error
	countAllFn      func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u *auth.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, auth.ErrUserNotFound
}

func (m *mockUserRepo) FindByPrefix(ctx context.Context, prefix string) ([]auth.User, error) {
	if m.findByPrefixFn != nil {
		return m.findByPrefixFn(ctx, prefix)
	}
	return []auth.User{}, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]auth.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []auth.User{}, nil
}

func (m *mockUserRepo) SetInviteCode(ctx context.Context, id uuid.UUID, inviteCode *string) (*auth.User, error) {
	if m.setInviteCodeFn != nil {
		return m.setInviteCodeFn(ctx, id, inviteCode)
	}
	return nil, auth.ErrUserNotFound
}

func (m *mockUserRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	if m.revokeFn != nil {
		return m.revokeFn(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) CountAll(ctx context.Context) (int, error) {
	if m.countAllFn != nil {
		return m.countAllFn(ctx)
	}
	return 0, nil
}
