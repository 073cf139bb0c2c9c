package validation_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api/validation"
)

func floatPtr(f float64) *float64 { return &f }

func TestValidateCreateProductRequest(t *testing.T) {
	assert.Empty(t, validation.ValidateCreateProductRequest(validation.CreateProductRequest{
		TeamID: uuid.NewString(),
		Name:   "Widget",
	}))

	errs := validation.ValidateCreateProductRequest(validation.CreateProductRequest{
		TeamID: "not-a-uuid",
		Name:   "",
		Price:  floatPtr(-1),
		Status: "discontinued",
	})
	assert.ElementsMatch(t, []string{"teamId", "name", "price", "status"}, fieldNames(errs))
}

func TestValidateUpdateProductRequest(t *testing.T) {
	assert.Empty(t, validation.ValidateUpdateProductRequest(validation.UpdateProductRequest{
		Name:   strPtr("Widget v2"),
		Price:  floatPtr(9.99),
		Status: strPtr("inactive"),
	}))

	errs := validation.ValidateUpdateProductRequest(validation.UpdateProductRequest{Price: floatPtr(-0.01)})
	require.Len(t, errs, 1)
	assert.Equal(t, "price", errs[0].Field)
}
