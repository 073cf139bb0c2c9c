package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api/handler"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/auth"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/page"
)

type mockPageRepo struct {
	createFn         func(ctx context.Context, p *page.Page) error
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*page.Page, error)
	getBySubdomainFn func(ctx context.Context, subdomain string) (*page.Page, error)
	listByTeamFn     func(ctx context.Context, teamID uuid.UUID) ([]page.Page, error)
	updateFn         func(ctx context.Context, id uuid.UUID, fields page.UpdateFields) (*page.Page, error)
	deleteFn         func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPageRepo) Create(ctx context.Context, p *page.Page) error {
	return m.createFn(ctx, p)
}

func (m *mockPageRepo) GetByID(ctx context.Context, id uuid.UUID) (*page.Page, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockPageRepo) GetBySubdomain(ctx context.Context, subdomain string) (*page.Page, error) {
	return m.getBySubdomainFn(ctx, subdomain)
}

func (m *mockPageRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]page.Page, error) {
	return m.listByTeamFn(ctx, teamID)
}

func (m *mockPageRepo) Update(ctx context.Context, id uuid.UUID, fields page.UpdateFields) (*page.Page, error) {
	return m.updateFn(ctx, id, fields)
}

func (m *mockPageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func noSessionAuthService() *auth.Service {
	sessions := &mockSessionRepo{
		getFn: func(_ context.Context, _ string) (*auth.Session, error) {
			return nil, auth.ErrSessionNotFound
		},
	}
	return auth.NewService(&mockUserRepo{}, sessions, testBcryptCost, time.Hour)
}

// sessionAuthService resolves the token "valid-token" to the given user.
func sessionAuthService(userID uuid.UUID) *auth.Service {
	sessions := &mockSessionRepo{
		getFn: func(_ context.Context, id string) (*auth.Session, error) {
			if id != "valid-token" {
				return nil, auth.ErrSessionNotFound
			}
			return &auth.Session{ID: id, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	users := &mockUserRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*auth.User, error) {
			return &auth.User{ID: id, Email: "member@example.com", DisplayName: "Member"}, nil
		},
	}
	return auth.NewService(users, sessions, testBcryptCost, time.Hour)
}

func publishedPage(teamID uuid.UUID, visibility string) *page.Page {
	content := "<h1>Hello</h1>"
	return &page.Page{
		ID:         uuid.New(),
		TeamID:     teamID,
		Subdomain:  "acme",
		Title:      "Welcome",
		Content:    &content,
		Status:     page.StatusPublished,
		Visibility: visibility,
	}
}

// ===== POST /pages =====

func TestPageCreate_DefaultsDraftPublic(t *testing.T) {
	teamID := uuid.New()
	repo := &mockPageRepo{
		createFn: func(_ context.Context, p *page.Page) error {
			p.ID = uuid.New()
			return nil
		},
	}
	h := handler.NewPageHandler(repo, memberTeamRepo(), noSessionAuthService())

	body := []byte(`{"teamId":"` + teamID.String() + `","subdomain":"Acme","title":"Welcome"}`)
	req, w := makeAuthRequest(http.MethodPost, "/pages", body, nil, testIdentity())
	h.Create(w, req)

	// Mixed case fails DNS-label validation before any normalization runs.
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = []byte(`{"teamId":"` + teamID.String() + `","subdomain":"acme","title":"Welcome"}`)
	req, w = makeAuthRequest(http.MethodPost, "/pages", body, nil, testIdentity())
	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := envelopeData(t, w)
	assert.Equal(t, "draft", data["status"])
	assert.Equal(t, "public", data["visibility"])
	assert.Equal(t, "acme", data["subdomain"])
}

func TestPageRoundTrip_UnsetOptionalFieldsStayAbsent(t *testing.T) {
	teamID := uuid.New()
	var stored *page.Page
	repo := &mockPageRepo{
		createFn: func(_ context.Context, p *page.Page) error {
			p.ID = uuid.New()
			stored = p
			return nil
		},
		getByIDFn: func(_ context.Context, id uuid.UUID) (*page.Page, error) {
			if stored == nil || id != stored.ID {
				return nil, page.ErrPageNotFound
			}
			return stored, nil
		},
	}
	h := handler.NewPageHandler(repo, memberTeamRepo(), noSessionAuthService())

	body := []byte(`{"teamId":"` + teamID.String() + `","subdomain":"acme","title":"Welcome"}`)
	req, w := makeAuthRequest(http.MethodPost, "/pages", body, nil, testIdentity())
	h.Create(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req, w = makeAuthRequest(http.MethodGet, "/pages/"+stored.ID.String(), nil,
		map[string]string{"id": stored.ID.String()}, testIdentity())
	h.Get(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	data := envelopeData(t, w)
	assert.Equal(t, "Welcome", data["title"])
	assert.NotContains(t, data, "content")
	assert.NotContains(t, data, "metaTitle")
	assert.NotContains(t, data, "metaDescription")
}

func TestPageCreate_DuplicateSubdomain(t *testing.T) {
	teamID := uuid.New()
	repo := &mockPageRepo{
		createFn: func(_ context.Context, _ *page.Page) error {
			return page.ErrDuplicateSubdomain
		},
	}
	h := handler.NewPageHandler(repo, memberTeamRepo(), noSessionAuthService())

	body := []byte(`{"teamId":"` + teamID.String() + `","subdomain":"taken","title":"Welcome"}`)
	req, w := makeAuthRequest(http.MethodPost, "/pages", body, nil, testIdentity())
	h.Create(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_SUBDOMAIN", envelopeErrorCode(t, w))
}

func TestPageCreate_ReservedSubdomainRejected(t *testing.T) {
	h := handler.NewPageHandler(&mockPageRepo{}, memberTeamRepo(), noSessionAuthService())

	body := []byte(`{"teamId":"` + uuid.NewString() + `","subdomain":"www","title":"Welcome"}`)
	req, w := makeAuthRequest(http.MethodPost, "/pages", body, nil, testIdentity())
	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", envelopeErrorCode(t, w))
}

// ===== PUT /pages/{id} =====

func TestPageUpdate_AbsentPageIs404BeforeMembership(t *testing.T) {
	membershipChecked := false
	repo := &mockPageRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*page.Page, error) {
			return nil, page.ErrPageNotFound
		},
	}
	teams := &mockTeamRepo{
		isMemberFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			membershipChecked = true
			return false, nil
		},
	}
	h := handler.NewPageHandler(repo, teams, noSessionAuthService())

	id := uuid.NewString()
	body := []byte(`{"title":"New Title"}`)
	req, w := makeAuthRequest(http.MethodPut, "/pages/"+id, body,
		map[string]string{"id": id}, testIdentity())
	h.Update(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, membershipChecked)
}

// ===== GET /subdomain =====

func TestSubdomainResolve_PublicPage(t *testing.T) {
	teamID := uuid.New()
	repo := &mockPageRepo{
		getBySubdomainFn: func(_ context.Context, subdomain string) (*page.Page, error) {
			require.Equal(t, "acme", subdomain)
			return publishedPage(teamID, page.VisibilityPublic), nil
		},
	}
	h := handler.NewPageHandler(repo, memberTeamRepo(), noSessionAuthService())

	req, w := makeChiRequest(http.MethodGet, "/subdomain?subdomain=acme", nil, nil)
	h.Subdomain(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := envelopeData(t, w)
	assert.Equal(t, "Welcome", data["title"])
	assert.Equal(t, "<h1>Hello</h1>", data["content"])
	assert.NotContains(t, data, "teamId", "public payload must not leak the owning team")
	assert.NotContains(t, data, "status")
}

func TestSubdomainResolve_PathParam(t *testing.T) {
	repo := &mockPageRepo{
		getBySubdomainFn: func(_ context.Context, subdomain string) (*page.Page, error) {
			require.Equal(t, "acme", subdomain)
			return publishedPage(uuid.New(), page.VisibilityPublic), nil
		},
	}
	h := handler.NewPageHandler(repo, memberTeamRepo(), noSessionAuthService())

	req, w := makeChiRequest(http.MethodGet, "/subdomain/acme", nil,
		map[string]string{"subdomain": "acme"})
	h.Subdomain(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubdomainResolve_UnpublishedIsAbsent(t *testing.T) {
	// The repository only resolves published pages; drafts read as absent.
	repo := &mockPageRepo{
		getBySubdomainFn: func(_ context.Context, _ string) (*page.Page, error) {
			return nil, page.ErrPageNotFound
		},
	}
	h := handler.NewPageHandler(repo, memberTeamRepo(), noSessionAuthService())

	req, w := makeChiRequest(http.MethodGet, "/subdomain?subdomain=draft-site", nil, nil)
	h.Subdomain(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", envelopeErrorCode(t, w))
}

func TestSubdomainResolve_PrivateWithoutSession(t *testing.T) {
	repo := &mockPageRepo{
		getBySubdomainFn: func(_ context.Context, _ string) (*page.Page, error) {
			return publishedPage(uuid.New(), page.VisibilityPrivate), nil
		},
	}
	h := handler.NewPageHandler(repo, memberTeamRepo(), noSessionAuthService())

	req, w := makeChiRequest(http.MethodGet, "/subdomain?subdomain=acme", nil, nil)
	h.Subdomain(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", envelopeErrorCode(t, w))
}

func TestSubdomainResolve_PrivateNonMember(t *testing.T) {
	userID := uuid.New()
	teamID := uuid.New()
	repo := &mockPageRepo{
		getBySubdomainFn: func(_ context.Context, _ string) (*page.Page, error) {
			return publishedPage(teamID, page.VisibilityPrivate), nil
		},
	}
	teams := &mockTeamRepo{
		isMemberFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return false, nil
		},
	}
	h := handler.NewPageHandler(repo, teams, sessionAuthService(userID))

	req, w := makeChiRequest(http.MethodGet, "/subdomain?subdomain=acme", nil, nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "valid-token"})
	h.Subdomain(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", envelopeErrorCode(t, w))
}

func TestSubdomainResolve_PrivateMember(t *testing.T) {
	userID := uuid.New()
	teamID := uuid.New()
	repo := &mockPageRepo{
		getBySubdomainFn: func(_ context.Context, _ string) (*page.Page, error) {
			return publishedPage(teamID, page.VisibilityPrivate), nil
		},
	}
	teams := &mockTeamRepo{
		isMemberFn: func(_ context.Context, gotTeam, gotUser uuid.UUID) (bool, error) {
			return gotTeam == teamID && gotUser == userID, nil
		},
	}
	h := handler.NewPageHandler(repo, teams, sessionAuthService(userID))

	req, w := makeChiRequest(http.MethodGet, "/subdomain?subdomain=acme", nil, nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "valid-token"})
	h.Subdomain(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome", envelopeData(t, w)["title"])
}

func TestSubdomainResolve_MissingLabel(t *testing.T) {
	h := handler.NewPageHandler(&mockPageRepo{}, memberTeamRepo(), noSessionAuthService())

	req, w := makeChiRequest(http.MethodGet, "/subdomain", nil, nil)
	h.Subdomain(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", envelopeErrorCode(t, w))
}
