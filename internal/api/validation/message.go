package validation

import "strings"

// ValidatePostMessageRequest validates a message board post.
func ValidatePostMessageRequest(body string) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(body) == "" {
		errs = append(errs, FieldError{Field: "body", Message: "body is required"})
	} else if len(body) > 2000 {
		errs = append(errs, FieldError{Field: "body", Message: "body must be at most 2000 characters"})
	}

	return errs
}
