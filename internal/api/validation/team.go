package validation

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/team"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// CreateTeamRequest mirrors the fields needed for create team validation.
type CreateTeamRequest struct {
	DisplayName string
}

// ValidateCreateTeamRequest validates the fields of a create team request.
func ValidateCreateTeamRequest(req CreateTeamRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		errs = append(errs, FieldError{Field: "displayName", Message: "displayName is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "displayName", Message: "displayName must be at most 255 characters"})
	}

	return errs
}

// UpdateTeamRequest mirrors the fields needed for update team validation.
// Nil fields are not being updated.
type UpdateTeamRequest struct {
	DisplayName *string
	Slug        *string
}

// ValidateUpdateTeamRequest validates the fields of an update team request.
func ValidateUpdateTeamRequest(req UpdateTeamRequest) []FieldError {
	var errs []FieldError

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			errs = append(errs, FieldError{Field: "displayName", Message: "displayName must not be empty"})
		} else if len(name) > 255 {
			errs = append(errs, FieldError{Field: "displayName", Message: "displayName must be at most 255 characters"})
		}
	}

	if req.Slug != nil && !slugRegex.MatchString(*req.Slug) {
		errs = append(errs, FieldError{Field: "slug", Message: "slug must be lowercase alphanumeric with hyphens"})
	}

	return errs
}

// AddMemberRequest mirrors the fields needed for add member validation.
type AddMemberRequest struct {
	Email string
	Role  string
}

// ValidateAddMemberRequest validates the fields of an add member request.
// Role is optional and defaults to member; when present it must be one of
// the closed role set.
func ValidateAddMemberRequest(req AddMemberRequest) []FieldError {
	var errs []FieldError

	if req.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	}

	if req.Role != "" && !team.Role(req.Role).Valid() {
		errs = append(errs, FieldError{Field: "role", Message: `role must be "owner", "admin" or "member"`})
	}

	return errs
}

// SetRoleRequest mirrors the fields needed for role update validation.
type SetRoleRequest struct {
	UserID string
	Role   string
}

// ValidateSetRoleRequest validates the fields of a role update request.
func ValidateSetRoleRequest(req SetRoleRequest) []FieldError {
	var errs []FieldError

	if req.UserID == "" {
		errs = append(errs, FieldError{Field: "userId", Message: "userId is required"})
	} else if _, err := uuid.Parse(req.UserID); err != nil {
		errs = append(errs, FieldError{Field: "userId", Message: "userId must be a valid UUID"})
	}

	if req.Role == "" {
		errs = append(errs, FieldError{Field: "role", Message: "role is required"})
	} else if !team.Role(req.Role).Valid() {
		errs = append(errs, FieldError{Field: "role", Message: `role must be "owner", "admin" or "member"`})
	}

	return errs
}
