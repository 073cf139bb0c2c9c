package validation

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/product"
)

func validProductStatus(status string) bool {
	switch status {
	case product.StatusActive, product.StatusInactive, product.StatusDraft:
		return true
	}
	return false
}

// CreateProductRequest mirrors the fields needed for create product validation.
type CreateProductRequest struct {
	TeamID string
	Name   string
	Price  *float64
	Status string
}

// ValidateCreateProductRequest validates the fields of a create product
// request. Status is optional and defaults to active.
func ValidateCreateProductRequest(req CreateProductRequest) []FieldError {
	var errs []FieldError

	if req.TeamID == "" {
		errs = append(errs, FieldError{Field: "teamId", Message: "teamId is required"})
	} else if _, err := uuid.Parse(req.TeamID); err != nil {
		errs = append(errs, FieldError{Field: "teamId", Message: "teamId must be a valid UUID"})
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if req.Price != nil && *req.Price < 0 {
		errs = append(errs, FieldError{Field: "price", Message: "price must not be negative"})
	}

	if req.Status != "" && !validProductStatus(req.Status) {
		errs = append(errs, FieldError{Field: "status", Message: `status must be "active", "inactive" or "draft"`})
	}

	return errs
}

// UpdateProductRequest mirrors the fields needed for update product validation.
type UpdateProductRequest struct {
	Name   *string
	Price  *float64
	Status *string
}

// ValidateUpdateProductRequest validates the fields of an update product request.
func ValidateUpdateProductRequest(req UpdateProductRequest) []FieldError {
	var errs []FieldError

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name must not be empty"})
	}

	if req.Price != nil && *req.Price < 0 {
		errs = append(errs, FieldError{Field: "price", Message: "price must not be negative"})
	}

	if req.Status != nil && !validProductStatus(*req.Status) {
		errs = append(errs, FieldError{Field: "status", Message: `status must be "active", "inactive" or "draft"`})
	}

	return errs
}
