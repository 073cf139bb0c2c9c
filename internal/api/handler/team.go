package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api/middleware"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api/response"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api/validation"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/auth"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/team"
)

type createTeamRequest struct {
	DisplayName string `json:"displayName"`
}

type updateTeamRequest struct {
	DisplayName *string `json:"displayName"`
	Slug        *string `json:"slug"`
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type setRoleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type teamResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Slug        string `json:"slug"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type memberUserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type memberResponse struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	Role      string             `json:"role"`
	CreatedAt string             `json:"createdAt"`
	User      memberUserResponse `json:"user"`
}

type teamWithMembersResponse struct {
	Team    teamResponse     `json:"team"`
	Members []memberResponse `json:"members"`
}

func toTeamResponse(t *team.Team) teamResponse {
	return teamResponse{
		ID:          t.ID.String(),
		DisplayName: t.DisplayName,
		Slug:        t.Slug,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toMemberResponse(m *team.Member) memberResponse {
	return memberResponse{
		ID:        m.ID.String(),
		UserID:    m.UserID.String(),
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		User: memberUserResponse{
			ID:          m.UserID.String(),
			Email:       m.UserEmail,
			DisplayName: m.UserDisplayName,
		},
	}
}

// TeamHandler handles team and membership endpoints.
type TeamHandler struct {
	service  *team.Service
	repo     team.Repository
	userRepo auth.UserRepository
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(service *team.Service, repo team.Repository, userRepo auth.UserRepository) *TeamHandler {
	return &TeamHandler{
		service:  service,
		repo:     repo,
		userRepo: userRepo,
	}
}

// requireTeamMember loads the team and verifies the acting user's
// membership, writing the appropriate error response when either check
// fails. Existence is checked before membership: an absent team yields 404,
// a present team with a non-member actor yields 403.
func (h *TeamHandler) requireTeamMember(w http.ResponseWriter, r *http.Request, teamID, userID uuid.UUID) bool {
	requestID := middleware.GetRequestID(r.Context())

	if _, err := h.repo.GetByID(r.Context(), teamID); err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return false
		}
		slog.Error("failed to load team", "error", err, "teamId", teamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load team", requestID)
		return false
	}

	ok, err := h.repo.IsMember(r.Context(), teamID, userID)
	if err != nil {
		slog.Error("failed to check team membership", "error", err, "teamId", teamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check membership", requestID)
		return false
	}
	if !ok {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "You are not a member of this team", requestID)
		return false
	}

	return true
}

// Create handles POST /teams. The creator becomes the team's owner.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateTeamRequest(validation.CreateTeamRequest{
		DisplayName: req.DisplayName,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	t, err := h.service.CreateWithOwner(r.Context(), strings.TrimSpace(req.DisplayName), identity.UserID)
	if err != nil {
		slog.Error("failed to create team", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create team", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toTeamResponse(t), requestID)
}

// Get handles GET /teams/{id}. Requires authentication only, not
// membership.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	t, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return
		}
		slog.Error("failed to get team", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get team", requestID)
		return
	}

	members, err := h.repo.Members(r.Context(), id)
	if err != nil {
		slog.Error("failed to list team members", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get team", requestID)
		return
	}

	items := make([]memberResponse, 0, len(members))
	for i := range members {
		items = append(items, toMemberResponse(&members[i]))
	}

	response.Success(w, http.StatusOK, teamWithMembersResponse{
		Team:    toTeamResponse(t),
		Members: items,
	}, requestID)
}

// Update handles PUT /teams/{id}. Gated by membership only; any member may
// update the team regardless of role.
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateUpdateTeamRequest(validation.UpdateTeamRequest{
		DisplayName: req.DisplayName,
		Slug:        req.Slug,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if !h.requireTeamMember(w, r, id, identity.UserID) {
		return
	}

	t, err := h.repo.Update(r.Context(), id, team.UpdateFields{
		DisplayName: req.DisplayName,
		Slug:        req.Slug,
	})
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return
		}
		if errors.Is(err, team.ErrDuplicateSlug) {
			response.Err(w, http.StatusConflict, "DUPLICATE_SLUG", "A team with this slug already exists", requestID)
			return
		}
		slog.Error("failed to update team", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update team", requestID)
		return
	}

	response.Success(w, http.StatusOK, toTeamResponse(t), requestID)
}

// Delete handles DELETE /teams/{id}. Cascades to the team's products,
// pages and memberships.
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	if !h.requireTeamMember(w, r, id, identity.UserID) {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return
		}
		slog.Error("failed to delete team", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete team", requestID)
		return
	}

	response.NoContent(w)
}

// ListMembers handles GET /teams/{id}/members.
func (h *TeamHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	members, err := h.repo.Members(r.Context(), id)
	if err != nil {
		slog.Error("failed to list team members", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list members", requestID)
		return
	}

	items := make([]memberResponse, 0, len(members))
	for i := range members {
		items = append(items, toMemberResponse(&members[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// AddMember handles POST /teams/{id}/members. The invited user is looked
// up by email and must already have an account.
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateAddMemberRequest(validation.AddMemberRequest{
		Email: req.Email,
		Role:  req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if !h.requireTeamMember(w, r, id, identity.UserID) {
		return
	}

	target, err := h.userRepo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "USER_NOT_FOUND", "No user found with this email", requestID)
			return
		}
		slog.Error("failed to look up user by email", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add member", requestID)
		return
	}

	role := team.Role(req.Role)
	if req.Role == "" {
		role = team.RoleMember
	}

	m := &team.Member{
		TeamID: id,
		UserID: target.ID,
		Role:   role,
	}
	if err := h.repo.AddMember(r.Context(), m); err != nil {
		if errors.Is(err, team.ErrAlreadyMember) {
			response.Err(w, http.StatusConflict, "ALREADY_MEMBER", "User is already a member of this team", requestID)
			return
		}
		slog.Error("failed to add team member", "error", err, "teamId", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add member", requestID)
		return
	}

	m.UserEmail = target.Email
	m.UserDisplayName = target.DisplayName
	response.Success(w, http.StatusCreated, toMemberResponse(m), requestID)
}

// SetMemberRole handles PUT /teams/{id}/members. Any member may change any
// other member's role; no caller-role hierarchy is enforced.
func (h *TeamHandler) SetMemberRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateSetRoleRequest(validation.SetRoleRequest{
		UserID: req.UserID,
		Role:   req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if !h.requireTeamMember(w, r, id, identity.UserID) {
		return
	}

	targetID, _ := uuid.Parse(req.UserID)

	if err := h.repo.SetRole(r.Context(), id, targetID, team.Role(req.Role)); err != nil {
		if errors.Is(err, team.ErrMemberNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team member not found", requestID)
			return
		}
		slog.Error("failed to update member role", "error", err, "teamId", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update member role", requestID)
		return
	}

	response.Success(w, http.StatusOK, successResponse{Success: true}, requestID)
}

// RemoveMember handles DELETE /teams/{id}/members?userId=. Idempotent; no
// last-owner protection.
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	userIDStr := r.URL.Query().Get("userId")
	if userIDStr == "" {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "userId query parameter is required", requestID)
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "userId must be a valid UUID", requestID)
		return
	}

	if !h.requireTeamMember(w, r, id, identity.UserID) {
		return
	}

	if err := h.repo.RemoveMember(r.Context(), id, userID); err != nil {
		slog.Error("failed to remove team member", "error", err, "teamId", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove member", requestID)
		return
	}

	response.NoContent(w)
}
