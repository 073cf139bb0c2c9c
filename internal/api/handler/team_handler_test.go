package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api/handler"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api/middleware"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/auth"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/team"
)

// --- Request helpers ---

func makeChiRequest(method, path string, body []byte, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, w
}

func makeAuthRequest(method, path string, body []byte, params map[string]string, identity *auth.Identity) (*http.Request, *httptest.ResponseRecorder) {
	req, w := makeChiRequest(method, path, body, params)
	if identity != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), identity))
	}
	return req, w
}

func testIdentity() *auth.Identity {
	return &auth.Identity{
		UserID:      uuid.New(),
		Email:       "caller@example.com",
		DisplayName: "Caller",
	}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func envelopeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decodeEnvelope(t, w)
	apiErr, ok := env["error"].(map[string]interface{})
	require.True(t, ok, "response should carry an error object")
	return apiErr["code"].(string)
}

func envelopeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	env := decodeEnvelope(t, w)
	data, ok := env["data"].(map[string]interface{})
	require.True(t, ok, "response should carry a data object")
	return data
}

// --- Mock repositories ---

type mockTeamRepo struct {
	createFn       func(ctx context.Context, t *team.Team, ownerID uuid.UUID) error
	getByIDFn      func(ctx context.Context, id uuid.UUID) (*team.Team, error)
	getBySlugFn    func(ctx context.Context, slug string) (*team.Team, error)
	listByUserFn   func(ctx context.Context, userID uuid.UUID) ([]team.Team, error)
	updateFn       func(ctx context.Context, id uuid.UUID, fields team.UpdateFields) (*team.Team, error)
	deleteFn       func(ctx context.Context, id uuid.UUID) error
	membersFn      func(ctx context.Context, teamID uuid.UUID) ([]team.Member, error)
	addMemberFn    func(ctx context.Context, m *team.Member) error
	removeMemberFn func(ctx context.Context, teamID, userID uuid.UUID) error
	setRoleFn      func(ctx context.Context, teamID, userID uuid.UUID, role team.Role) error
	isMemberFn     func(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
}

func (m *mockTeamRepo) Create(ctx context.Context, t *team.Team, ownerID uuid.UUID) error {
	return m.createFn(ctx, t, ownerID)
}

func (m *mockTeamRepo) GetByID(ctx context.Context, id uuid.UUID) (*team.Team, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockTeamRepo) GetBySlug(ctx context.Context, slug string) (*team.Team, error) {
	return m.getBySlugFn(ctx, slug)
}

func (m *mockTeamRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]team.Team, error) {
	return m.listByUserFn(ctx, userID)
}

func (m *mockTeamRepo) Update(ctx context.Context, id uuid.UUID, fields team.UpdateFields) (*team.Team, error) {
	return m.updateFn(ctx, id, fields)
}

func (m *mockTeamRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockTeamRepo) Members(ctx context.Context, teamID uuid.UUID) ([]team.Member, error) {
	return m.membersFn(ctx, teamID)
}

func (m *mockTeamRepo) AddMember(ctx context.Context, mem *team.Member) error {
	return m.addMemberFn(ctx, mem)
}

func (m *mockTeamRepo) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	return m.removeMemberFn(ctx, teamID, userID)
}

func (m *mockTeamRepo) SetRole(ctx context.Context, teamID, userID uuid.UUID, role team.Role) error {
	return m.setRoleFn(ctx, teamID, userID, role)
}

func (m *mockTeamRepo) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	return m.isMemberFn(ctx, teamID, userID)
}

type mockUserRepo struct {
	createFn        func(ctx context.Context, u *auth.User) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*auth.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*auth.User, error)
	updateProfileFn func(ctx context.Context, id uuid.UUID, fields auth.ProfileUpdate) (*auth.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u *auth.User) error {
	return m.createFn(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return m.getByEmailFn(ctx, email)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, fields auth.ProfileUpdate) (*auth.User, error) {
	return m.updateProfileFn(ctx, id, fields)
}

type mockSessionRepo struct {
	createFn       func(ctx context.Context, s *auth.Session) error
	getFn          func(ctx context.Context, id string) (*auth.Session, error)
	deleteFn       func(ctx context.Context, id string) error
	deleteByUserFn func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockSessionRepo) Create(ctx context.Context, s *auth.Session) error {
	return m.createFn(ctx, s)
}

func (m *mockSessionRepo) Get(ctx context.Context, id string) (*auth.Session, error) {
	return m.getFn(ctx, id)
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSessionRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return m.deleteByUserFn(ctx, userID)
}

func existingTeam(id uuid.UUID) *team.Team {
	return &team.Team{ID: id, DisplayName: "Acme", Slug: "acme"}
}

// ===== POST /teams =====

func TestTeamCreate_Success(t *testing.T) {
	repo := &mockTeamRepo{
		getBySlugFn: func(_ context.Context, _ string) (*team.Team, error) {
			return nil, team.ErrTeamNotFound
		},
		createFn: func(_ context.Context, tm *team.Team, _ uuid.UUID) error {
			tm.ID = uuid.New()
			return nil
		},
	}
	h := handler.NewTeamHandler(team.NewService(repo), repo, &mockUserRepo{})

	body := []byte(`{"displayName":"Acme Corp"}`)
	req, w := makeAuthRequest(http.MethodPost, "/teams", body, nil, testIdentity())
	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := envelopeData(t, w)
	assert.Equal(t, "Acme Corp", data["displayName"])
	assert.Equal(t, "acme-corp", data["slug"])
}

func TestTeamCreate_MissingDisplayName(t *testing.T) {
	repo := &mockTeamRepo{}
	h := handler.NewTeamHandler(team.NewService(repo), repo, &mockUserRepo{})

	req, w := makeAuthRequest(http.MethodPost, "/teams", []byte(`{}`), nil, testIdentity())
	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", envelopeErrorCode(t, w))
}

// ===== PUT /teams/{id} =====

func TestTeamUpdate_AnyMemberMayUpdate(t *testing.T) {
	teamID := uuid.New()
	repo := &mockTeamRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*team.Team, error) {
			return existingTeam(id), nil
		},
		isMemberFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return true, nil
		},
		updateFn: func(_ context.Context, id uuid.UUID, fields team.UpdateFields) (*team.Team, error) {
			tm := existingTeam(id)
			if fields.DisplayName != nil {
				tm.DisplayName = *fields.DisplayName
			}
			return tm, nil
		},
	}
	h := handler.NewTeamHandler(team.NewService(repo), repo, &mockUserRepo{})

	body := []byte(`{"displayName":"Renamed"}`)
	req, w := makeAuthRequest(http.MethodPut, "/teams/"+teamID.String(), body,
		map[string]string{"id": teamID.String()}, testIdentity())
	h.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", envelopeData(t, w)["displayName"])
}

func TestTeamUpdate_NonMemberForbidden(t *testing.T) {
	teamID := uuid.New()
	repo := &mockTeamRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*team.Team, error) {
			return existingTeam(id), nil
		},
		isMemberFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return false, nil
		},
	}
	h := handler.NewTeamHandler(team.NewService(repo), repo, &mockUserRepo{})

	body := []byte(`{"displayName":"Renamed"}`)
	req, w := makeAuthRequest(http.MethodPut, "/teams/"+teamID.String(), body,
		map[string]string{"id": teamID.String()}, testIdentity())
	h.Update(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", envelopeErrorCode(t, w))
}

func TestTeamUpdate_AbsentTeamIs404EvenForNonMember(t *testing.T) {
	teamID := uuid.New()
	membershipChecked := false
	repo := &mockTeamRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*team.Team, error) {
			return nil, team.ErrTeamNotFound
		},
		isMemberFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			membershipChecked = true
			return false, nil
		},
	}
	h := handler.NewTeamHandler(team.NewService(repo), repo, &mockUserRepo{})

	body := []byte(`{"displayName":"Renamed"}`)
	req, w := makeAuthRequest(http.MethodPut, "/teams/"+teamID.String(), body,
		map[string]string{"id": teamID.String()}, testIdentity())
	h.Update(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", envelopeErrorCode(t, w))
	assert.False(t, membershipChecked, "existence must be decided before membership")
}

func TestTeamUpdate_DuplicateSlug(t *testing.T) {
	teamID := uuid.New()
	repo := &mockTeamRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*team.Team, error) {
			return existingTeam(id), nil
		},
		isMemberFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return true, nil
		},
		updateFn: func(_ context.Context, _ uuid.UUID, _ team.UpdateFields) (*team.Team, error) {
			return nil, team.ErrDuplicateSlug
		},
	}
	h := handler.NewTeamHandler(team.NewService(repo), repo, &mockUserRepo{})

	body := []byte(`{"slug":"taken"}`)
	req, w := makeAuthRequest(http.MethodPut, "/teams/"+teamID.String(), body,
		map[string]string{"id": teamID.String()}, testIdentity())
	h.Update(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_SLUG", envelopeErrorCode(t, w))
}

// ===== DELETE /teams/{id} =====

func TestTeamDelete_Success(t *testing.T) {
	teamID := uuid.New()
	deleted := false
	repo := &mockTeamRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*team.Team, error) {
			return existingTeam(id), nil
		},
		isMemberFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return true, nil
		},
		deleteFn: func(_ context.Context, _ uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	h := handler.NewTeamHandler(team.NewService(repo), repo, &mockUserRepo{})

	req, w := makeAuthRequest(http.MethodDelete, "/teams/"+teamID.String(), nil,
		map[string]string{"id": teamID.String()}, testIdentity())
	h.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, deleted)
}

// ===== POST /teams/{id}/members =====

func TestAddMember_Success(t *testing.T) {
	teamID := uuid.New()
	target := &auth.User{ID: uuid.New(), Email: "bob@example.com", DisplayName: "Bob"}
	repo := &mockTeamRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*team.Team, error) {
			return existingTeam(id), nil
		},
		isMemberFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return true, nil
		},
		addMemberFn: func(_ context.Context, m *team.Member) error {
			m.ID = uuid.New()
			return nil
		},
	}
	users := &mockUserRepo{
		getByEmailFn: func(_ context.Context, _ string) (*auth.User, error) {
			return target, nil
		},
	}
	h := handler.NewTeamHandler(team.NewService(repo), repo, users)

	body := []byte(`{"email":"bob@example.com"}`)
	req, w := makeAuthRequest(http.MethodPost, "/teams/"+teamID.String()+"/members", body,
		map[string]string{"id": teamID.String()}, testIdentity())
	h.AddMember(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := envelopeData(t, w)
	assert.Equal(t, "member", data["role"], "role defaults to member")
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "bob@example.com", user["email"])
	assert.Equal(t, "Bob", user["displayName"])
}

func TestAddMember_UnknownEmail(t *testing.T) {
	teamID := uuid.New()
	repo := &mockTeamRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*team.Team, error) {
			return existingTeam(id), nil
		},
		isMemberFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return true, nil
		},
	}
	users := &mockUserRepo{
		getByEmailFn: func(_ context.Context, _ string) (*auth.User, error) {
			return nil, auth.ErrUserNotFound
		},
	}
	h := handler.NewTeamHandler(team.NewService(repo), repo, users)

	body := []byte(`{"email":"ghost@example.com"}`)
	req, w := makeAuthRequest(http.MethodPost, "/teams/"+teamID.String()+"/members", body,
		map[string]string{"id": teamID.String()}, testIdentity())
	h.AddMember(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", envelopeErrorCode(t, w))
}

func TestAddMember_AlreadyMember(t *testing.T) {
	teamID := uuid.New()
	repo := &mockTeamRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*team.Team, error) {
			return existingTeam(id), nil
		},
		isMemberFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return true, nil
		},
		addMemberFn: func(_ context.Context, _ *team.Member) error {
			return team.ErrAlreadyMember
		},
	}
	users := &mockUserRepo{
		getByEmailFn: func(_ context.Context, _ string) (*auth.User, error) {
			return &auth.User{ID: uuid.New(), Email: "bob@example.com"}, nil
		},
	}
	h := handler.NewTeamHandler(team.NewService(repo), repo, users)

	body := []byte(`{"email":"bob@example.com"}`)
	req, w := makeAuthRequest(http.MethodPost, "/teams/"+teamID.String()+"/members", body,
		map[string]string{"id": teamID.String()}, testIdentity())
	h.AddMember(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_MEMBER", envelopeErrorCode(t, w))
}

func TestAddMember_InvalidRole(t *testing.T) {
	teamID := uuid.New()
	repo := &mockTeamRepo{}
	h := handler.NewTeamHandler(team.NewService(repo), repo, &mockUserRepo{})

	body := []byte(`{"email":"bob@example.com","role":"superadmin"}`)
	req, w := makeAuthRequest(http.MethodPost, "/teams/"+teamID.String()+"/members", body,
		map[string]string{"id": teamID.String()}, testIdentity())
	h.AddMember(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", envelopeErrorCode(t, w))
}

// ===== PUT /teams/{id}/members =====

func TestSetMemberRole_Success(t *testing.T) {
	teamID := uuid.New()
	targetID := uuid.New()
	var gotRole team.Role
	repo := &mockTeamRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*team.Team, error) {
			return existingTeam(id), nil
		},
		isMemberFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return true, nil
		},
		setRoleFn: func(_ context.Context, _, _ uuid.UUID, role team.Role) error {
			gotRole = role
			return nil
		},
	}
	h := handler.NewTeamHandler(team.NewService(repo), repo, &mockUserRepo{})

	body := []byte(`{"userId":"` + targetID.String() + `","role":"admin"}`)
	req, w := makeAuthRequest(http.MethodPut, "/teams/"+teamID.String()+"/members", body,
		map[string]string{"id": teamID.String()}, testIdentity())
	h.SetMemberRole(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, team.RoleAdmin, gotRole)
	assert.Equal(t, true, envelopeData(t, w)["success"])
}

func TestSetMemberRole_TargetNotAMember(t *testing.T) {
	teamID := uuid.New()
	repo := &mockTeamRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*team.Team, error) {
			return existingTeam(id), nil
		},
		isMemberFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return true, nil
		},
		setRoleFn: func(_ context.Context, _, _ uuid.UUID, _ team.Role) error {
			return team.ErrMemberNotFound
		},
	}
	h := handler.NewTeamHandler(team.NewService(repo), repo, &mockUserRepo{})

	body := []byte(`{"userId":"` + uuid.NewString() + `","role":"admin"}`)
	req, w := makeAuthRequest(http.MethodPut, "/teams/"+teamID.String()+"/members", body,
		map[string]string{"id": teamID.String()}, testIdentity())
	h.SetMemberRole(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===== DELETE /teams/{id}/members =====

func TestRemoveMember_Success(t *testing.T) {
	teamID := uuid.New()
	targetID := uuid.New()
	var removed uuid.UUID
	repo := &mockTeamRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*team.Team, error) {
			return existingTeam(id), nil
		},
		isMemberFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return true, nil
		},
		removeMemberFn: func(_ context.Context, _, userID uuid.UUID) error {
			removed = userID
			return nil
		},
	}
	h := handler.NewTeamHandler(team.NewService(repo), repo, &mockUserRepo{})

	req, w := makeAuthRequest(http.MethodDelete,
		"/teams/"+teamID.String()+"/members?userId="+targetID.String(), nil,
		map[string]string{"id": teamID.String()}, testIdentity())
	h.RemoveMember(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, targetID, removed)
}

func TestRemoveMember_MissingUserID(t *testing.T) {
	teamID := uuid.New()
	repo := &mockTeamRepo{}
	h := handler.NewTeamHandler(team.NewService(repo), repo, &mockUserRepo{})

	req, w := makeAuthRequest(http.MethodDelete, "/teams/"+teamID.String()+"/members", nil,
		map[string]string{"id": teamID.String()}, testIdentity())
	h.RemoveMember(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", envelopeErrorCode(t, w))
}
