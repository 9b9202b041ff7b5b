package recipe

import (
	"time"

	"github.com/google/uuid"
)

// Recipe represents a row in the recipes table. Identity is immutable,
// content is not: a recipe can change (or disappear) after it has been
// scheduled into a weekly menu.
type Recipe struct {
	ID          uuid.UUID
	Name        string
	Description string
	Ingredients []string // ordered, duplicates permitted
	Categories  []string
	Calories    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
