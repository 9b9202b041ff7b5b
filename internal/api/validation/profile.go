package validation

import "regexp"

var inviteCodeRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{4,32}$`)

// ValidateInviteCode checks the shape of a team invite code. Codes are
// opaque short strings; an empty code means "leave the current team" and is
// validated separately by the caller.
func ValidateInviteCode(code string) []FieldError {
	if !inviteCodeRegex.MatchString(code) {
		return []FieldError{{
			Field:   "inviteCode",
			Message: "inviteCode must be 4-32 characters of letters, digits, '-' or '_'",
		}}
	}
	return nil
}

// CreateUserRequest mirrors the fields needed for create user validation.
type CreateUserRequest struct {
	Name string
}

// ValidateCreateUserRequest validates the fields of a create user request.
func ValidateCreateUserRequest(req CreateUserRequest) []FieldError {
	var errs []FieldError

	if req.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(req.Name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	return errs
}
