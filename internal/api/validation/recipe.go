package validation

import "strings"

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RecipeRequest mirrors the fields needed for recipe validation.
type RecipeRequest struct {
	Name        string
	Description string
	Ingredients []string
	Calories    *int
}

// ValidateRecipeRequest validates the fields of a create/update recipe request.
func ValidateRecipeRequest(req RecipeRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if len(req.Description) > 2000 {
		errs = append(errs, FieldError{Field: "description", Message: "description must be at most 2000 characters"})
	}

	for _, ing := range req.Ingredients {
		if strings.TrimSpace(ing) == "" {
			errs = append(errs, FieldError{Field: "ingredients", Message: "ingredients must not contain empty entries"})
			break
		}
	}

	if req.Calories != nil && *req.Calories < 0 {
		errs = append(errs, FieldError{Field: "calories", Message: "calories must be >= 0"})
	}

	return errs
}
