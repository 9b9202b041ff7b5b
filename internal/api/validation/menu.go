package validation

import (
	"fmt"
	"strings"

	"github.com/dinnerd/dinnerd/internal/menu"
)

// ValidateSlotPath validates the day index and meal name of a slot update.
func ValidateSlotPath(day int, meal string) []FieldError {
	var errs []FieldError

	if day < 0 || day >= menu.NumDays {
		errs = append(errs, FieldError{
			Field:   "day",
			Message: fmt.Sprintf("day must be between 0 (Monday) and %d (Sunday)", menu.NumDays-1),
		})
	}

	if !menu.ValidMeal(menu.Meal(meal)) {
		errs = append(errs, FieldError{
			Field:   "meal",
			Message: `meal must be "breakfast", "lunch" or "dinner"`,
		})
	}

	return errs
}

// ValidateRecipeIDList rejects blank entries in a slot's recipe id list.
func ValidateRecipeIDList(ids []string) []FieldError {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return []FieldError{{Field: "recipeIds", Message: "recipeIds must not contain empty entries"}}
		}
	}
	return nil
}

// ValidateWeeklyMenu applies the slot recipe-id rules to every slot of a
// whole-document save, so full saves and single-slot updates agree on what
// they accept.
func ValidateWeeklyMenu(m menu.WeeklyMenu) []FieldError {
	var errs []FieldError
	for day := range m {
		for _, meal := range menu.Meals {
			for _, id := range m[day].Slot(meal) {
				if strings.TrimSpace(id) == "" {
					errs = append(errs, FieldError{
						Field:   fmt.Sprintf("menu[%d].%s", day, meal),
						Message: "recipe ids must not contain empty entries",
					})
					break
				}
			}
		}
	}
	return errs
}
