package recipe

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrRecipeNotFound is returned when a recipe record is not found.
var ErrRecipeNotFound = errors.New("recipe not found")

// UpdateFields holds the user-updatable recipe fields. Nil pointers leave
// the stored value untouched.
type UpdateFields struct {
	Name        *string
	Description *string
	Ingredients *[]string
	Categories  *[]string
	Calories    *int
}

// Repository provides CRUD operations on the recipes table. The menu
// aggregation engine consumes it read-only via ListAll/GetByID.
type Repository interface {
	Create(ctx context.Context, r *Recipe) error
	GetByID(ctx context.Context, id uuid.UUID) (*Recipe, error)
	ListAll(ctx context.Context) ([]Recipe, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Recipe, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
