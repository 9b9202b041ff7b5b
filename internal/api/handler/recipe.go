package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dinnerd/dinnerd/internal/api/middleware"
	"github.com/dinnerd/dinnerd/internal/api/response"
	"github.com/dinnerd/dinnerd/internal/api/validation"
	"github.com/dinnerd/dinnerd/internal/recipe"
)

type createRecipeRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Categories  []string `json:"categories"`
	Calories    *int     `json:"calories"`
}

type updateRecipeRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Ingredients *[]string `json:"ingredients"`
	Categories  *[]string `json:"categories"`
	Calories    *int      `json:"calories"`
}

type recipeResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Categories  []string `json:"categories"`
	Calories    int      `json:"calories"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func toRecipeResponse(r *recipe.Recipe) recipeResponse {
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	categories := r.Categories
	if categories == nil {
		categories = []string{}
	}
	return recipeResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		Ingredients: ingredients,
		Categories:  categories,
		Calories:    r.Calories,
		CreatedAt:   r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   r.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// RecipeHandler handles recipe catalog endpoints.
type RecipeHandler struct {
	repo recipe.Repository
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(repo recipe.Repository) *RecipeHandler {
	return &RecipeHandler{repo: repo}
}

// Create handles POST /recipes.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateRecipeRequest(validation.RecipeRequest{
		Name:        req.Name,
		Description: req.Description,
		Ingredients: req.Ingredients,
		Calories:    req.Calories,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	calories := 0
	if req.Calories != nil {
		calories = *req.Calories
	}

	rec := &recipe.Recipe{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Ingredients: req.Ingredients,
		Categories:  req.Categories,
		Calories:    calories,
	}

	if err := h.repo.Create(r.Context(), rec); err != nil {
		slog.Error("failed to create recipe", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create recipe", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toRecipeResponse(rec), requestID)
}

// List handles GET /recipes.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	recipes, err := h.repo.ListAll(r.Context())
	if err != nil {
		slog.Error("failed to list recipes", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list recipes", requestID)
		return
	}

	items := make([]recipeResponse, 0, len(recipes))
	for i := range recipes {
		items = append(items, toRecipeResponse(&recipes[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// GetByID handles GET /recipes/{id}.
func (h *RecipeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseRecipeID(w, r, requestID)
	if !ok {
		return
	}

	rec, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, recipe.ErrRecipeNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Recipe not found", requestID)
			return
		}
		slog.Error("failed to get recipe", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get recipe", requestID)
		return
	}

	response.Success(w, http.StatusOK, toRecipeResponse(rec), requestID)
}

// Update handles PATCH /recipes/{id}.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseRecipeID(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	var fieldErrors []validation.FieldError
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		fieldErrors = append(fieldErrors, validation.FieldError{Field: "name", Message: "name must not be empty"})
	}
	if req.Calories != nil && *req.Calories < 0 {
		fieldErrors = append(fieldErrors, validation.FieldError{Field: "calories", Message: "calories must be >= 0"})
	}
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	rec, err := h.repo.Update(r.Context(), id, recipe.UpdateFields{
		Name:        req.Name,
		Description: req.Description,
		Ingredients: req.Ingredients,
		Categories:  req.Categories,
		Calories:    req.Calories,
	})
	if err != nil {
		if errors.Is(err, recipe.ErrRecipeNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Recipe not found", requestID)
			return
		}
		slog.Error("failed to update recipe", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update recipe", requestID)
		return
	}

	response.Success(w, http.StatusOK, toRecipeResponse(rec), requestID)
}

// Delete handles DELETE /recipes/{id}. Weekly menus may still reference the
// deleted id; menu views render it as unknown.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseRecipeID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, recipe.ErrRecipeNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Recipe not found", requestID)
			return
		}
		slog.Error("failed to delete recipe", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete recipe", requestID)
		return
	}

	response.NoContent(w)
}

func parseRecipeID(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return uuid.Nil, false
	}
	return id, true
}
