package validation_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api/validation"
)

func TestValidateCreatePageRequest_Valid(t *testing.T) {
	errs := validation.ValidateCreatePageRequest(validation.CreatePageRequest{
		TeamID:    uuid.NewString(),
		Subdomain: "acme",
		Title:     "Welcome",
	})
	assert.Empty(t, errs)
}

func TestValidateCreatePageRequest_SubdomainLabel(t *testing.T) {
	base := validation.CreatePageRequest{
		TeamID: uuid.NewString(),
		Title:  "Welcome",
	}

	for _, good := range []string{"a", "acme", "acme-corp", "a1-b2", strings.Repeat("a", 63)} {
		req := base
		req.Subdomain = good
		assert.Empty(t, validation.ValidateCreatePageRequest(req), "subdomain %q should be accepted", good)
	}

	for _, bad := range []string{"Acme", "-acme", "acme-", "ac me", "acme_corp", strings.Repeat("a", 64)} {
		req := base
		req.Subdomain = bad
		errs := validation.ValidateCreatePageRequest(req)
		require.Len(t, errs, 1, "subdomain %q should be rejected", bad)
		assert.Equal(t, "subdomain", errs[0].Field)
	}
}

func TestValidateCreatePageRequest_ReservedSubdomains(t *testing.T) {
	for _, reserved := range []string{"www", "api", "admin", "app"} {
		errs := validation.ValidateCreatePageRequest(validation.CreatePageRequest{
			TeamID:    uuid.NewString(),
			Subdomain: reserved,
			Title:     "Welcome",
		})
		require.Len(t, errs, 1, "subdomain %q should be reserved", reserved)
		assert.Equal(t, "subdomain", errs[0].Field)
	}
}

func TestValidateCreatePageRequest_Enums(t *testing.T) {
	req := validation.CreatePageRequest{
		TeamID:     uuid.NewString(),
		Subdomain:  "acme",
		Title:      "Welcome",
		Status:     "live",
		Visibility: "hidden",
	}
	errs := validation.ValidateCreatePageRequest(req)
	assert.ElementsMatch(t, []string{"status", "visibility"}, fieldNames(errs))
}

func TestValidateUpdatePageRequest(t *testing.T) {
	assert.Empty(t, validation.ValidateUpdatePageRequest(validation.UpdatePageRequest{
		Subdomain:  strPtr("new-label"),
		Title:      strPtr("New Title"),
		Status:     strPtr("published"),
		Visibility: strPtr("private"),
	}))

	errs := validation.ValidateUpdatePageRequest(validation.UpdatePageRequest{Title: strPtr("  ")})
	require.Len(t, errs, 1)
	assert.Equal(t, "title", errs[0].Field)
}
