package validation

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SignUpRequest mirrors the fields needed for sign-up validation.
type SignUpRequest struct {
	Email       string
	Password    string
	DisplayName string
}

// ValidateSignUpRequest validates the fields of a sign-up request.
func ValidateSignUpRequest(req SignUpRequest) []FieldError {
	var errs []FieldError

	if req.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	} else if !emailRegex.MatchString(req.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "email must be a valid address"})
	}

	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	} else if len(req.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "password must be at least 8 characters"})
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		errs = append(errs, FieldError{Field: "displayName", Message: "displayName is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "displayName", Message: "displayName must be at most 255 characters"})
	}

	return errs
}

// SignInRequest mirrors the fields needed for sign-in validation.
type SignInRequest struct {
	Email    string
	Password string
}

// ValidateSignInRequest validates the fields of a sign-in request. Only
// presence is checked; format problems surface as failed credentials.
func ValidateSignInRequest(req SignInRequest) []FieldError {
	var errs []FieldError

	if req.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}

	return errs
}
