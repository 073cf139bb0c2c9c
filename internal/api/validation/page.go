package validation

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/page"
)

var subdomainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// Labels that can never be claimed as page subdomains; they are excluded
// from subdomain dispatch at the edge.
var reservedSubdomains = map[string]bool{
	"www":   true,
	"api":   true,
	"admin": true,
	"app":   true,
}

func validPageStatus(status string) bool {
	switch status {
	case page.StatusDraft, page.StatusPublished, page.StatusArchived:
		return true
	}
	return false
}

func validPageVisibility(visibility string) bool {
	return visibility == page.VisibilityPublic || visibility == page.VisibilityPrivate
}

func validateSubdomainLabel(subdomain string) *FieldError {
	if !subdomainRegex.MatchString(subdomain) {
		return &FieldError{Field: "subdomain", Message: "subdomain must be a valid DNS label: lowercase alphanumeric with hyphens, at most 63 characters"}
	}
	if reservedSubdomains[subdomain] {
		return &FieldError{Field: "subdomain", Message: "subdomain is reserved"}
	}
	return nil
}

// CreatePageRequest mirrors the fields needed for create page validation.
type CreatePageRequest struct {
	TeamID     string
	Subdomain  string
	Title      string
	Status     string
	Visibility string
}

// ValidateCreatePageRequest validates the fields of a create page request.
// Status defaults to draft and visibility to public when empty.
func ValidateCreatePageRequest(req CreatePageRequest) []FieldError {
	var errs []FieldError

	if req.TeamID == "" {
		errs = append(errs, FieldError{Field: "teamId", Message: "teamId is required"})
	} else if _, err := uuid.Parse(req.TeamID); err != nil {
		errs = append(errs, FieldError{Field: "teamId", Message: "teamId must be a valid UUID"})
	}

	if req.Subdomain == "" {
		errs = append(errs, FieldError{Field: "subdomain", Message: "subdomain is required"})
	} else if fieldErr := validateSubdomainLabel(req.Subdomain); fieldErr != nil {
		errs = append(errs, *fieldErr)
	}

	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}

	if req.Status != "" && !validPageStatus(req.Status) {
		errs = append(errs, FieldError{Field: "status", Message: `status must be "draft", "published" or "archived"`})
	}

	if req.Visibility != "" && !validPageVisibility(req.Visibility) {
		errs = append(errs, FieldError{Field: "visibility", Message: `visibility must be "public" or "private"`})
	}

	return errs
}

// UpdatePageRequest mirrors the fields needed for update page validation.
type UpdatePageRequest struct {
	Subdomain  *string
	Title      *string
	Status     *string
	Visibility *string
}

// ValidateUpdatePageRequest validates the fields of an update page request.
func ValidateUpdatePageRequest(req UpdatePageRequest) []FieldError {
	var errs []FieldError

	if req.Subdomain != nil {
		if fieldErr := validateSubdomainLabel(*req.Subdomain); fieldErr != nil {
			errs = append(errs, *fieldErr)
		}
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title must not be empty"})
	}

	if req.Status != nil && !validPageStatus(*req.Status) {
		errs = append(errs, FieldError{Field: "status", Message: `status must be "draft", "published" or "archived"`})
	}

	if req.Visibility != nil && !validPageVisibility(*req.Visibility) {
		errs = append(errs, FieldError{Field: "visibility", Message: `visibility must be "public" or "private"`})
	}

	return errs
}
