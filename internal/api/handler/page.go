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
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/page"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/team"
)

type createPageRequest struct {
	TeamID          string  `json:"teamId"`
	Subdomain       string  `json:"subdomain"`
	Title           string  `json:"title"`
	Content         *string `json:"content"`
	Status          string  `json:"status"`
	Visibility      string  `json:"visibility"`
	MetaTitle       *string `json:"metaTitle"`
	MetaDescription *string `json:"metaDescription"`
}

type updatePageRequest struct {
	Subdomain       *string `json:"subdomain"`
	Title           *string `json:"title"`
	Content         *string `json:"content"`
	Status          *string `json:"status"`
	Visibility      *string `json:"visibility"`
	MetaTitle       *string `json:"metaTitle"`
	MetaDescription *string `json:"metaDescription"`
}

type pageResponse struct {
	ID              string  `json:"id"`
	TeamID          string  `json:"teamId"`
	Subdomain       string  `json:"subdomain"`
	Title           string  `json:"title"`
	Content         *string `json:"content,omitempty"`
	Status          string  `json:"status"`
	Visibility      string  `json:"visibility"`
	MetaTitle       *string `json:"metaTitle,omitempty"`
	MetaDescription *string `json:"metaDescription,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// publicPageResponse is the subdomain-facing shape. It omits the owning
// team's id and the status field.
type publicPageResponse struct {
	ID              string  `json:"id"`
	Subdomain       string  `json:"subdomain"`
	Title           string  `json:"title"`
	Content         *string `json:"content,omitempty"`
	Visibility      string  `json:"visibility"`
	MetaTitle       *string `json:"metaTitle,omitempty"`
	MetaDescription *string `json:"metaDescription,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func toPageResponse(p *page.Page) pageResponse {
	return pageResponse{
		ID:              p.ID.String(),
		TeamID:          p.TeamID.String(),
		Subdomain:       p.Subdomain,
		Title:           p.Title,
		Content:         p.Content,
		Status:          p.Status,
		Visibility:      p.Visibility,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toPublicPageResponse(p *page.Page) publicPageResponse {
	return publicPageResponse{
		ID:              p.ID.String(),
		Subdomain:       p.Subdomain,
		Title:           p.Title,
		Content:         p.Content,
		Visibility:      p.Visibility,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// PageHandler handles page CRUD endpoints and the public subdomain
// resolution endpoint.
type PageHandler struct {
	repo        page.Repository
	teamRepo    team.Repository
	authService *auth.Service
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(repo page.Repository, teamRepo team.Repository, authService *auth.Service) *PageHandler {
	return &PageHandler{
		repo:        repo,
		teamRepo:    teamRepo,
		authService: authService,
	}
}

// List handles GET /pages?teamId=. Requires authentication only.
func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamIDStr := r.URL.Query().Get("teamId")
	if teamIDStr == "" {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "teamId query parameter is required", requestID)
		return
	}
	teamID, err := uuid.Parse(teamIDStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "teamId must be a valid UUID", requestID)
		return
	}

	pages, err := h.repo.ListByTeam(r.Context(), teamID)
	if err != nil {
		slog.Error("failed to list pages", "error", err, "teamId", teamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list pages", requestID)
		return
	}

	items := make([]pageResponse, 0, len(pages))
	for i := range pages {
		items = append(items, toPageResponse(&pages[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Create handles POST /pages. The acting user must be a member of the
// target team, and the subdomain label must be globally unique.
func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreatePageRequest(validation.CreatePageRequest{
		TeamID:     req.TeamID,
		Subdomain:  req.Subdomain,
		Title:      req.Title,
		Status:     req.Status,
		Visibility: req.Visibility,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	teamID, _ := uuid.Parse(req.TeamID)

	if !h.requireTeamMember(w, r, teamID, identity.UserID) {
		return
	}

	status := req.Status
	if status == "" {
		status = page.StatusDraft
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = page.VisibilityPublic
	}

	p := &page.Page{
		TeamID:          teamID,
		Subdomain:       strings.ToLower(strings.TrimSpace(req.Subdomain)),
		Title:           strings.TrimSpace(req.Title),
		Content:         req.Content,
		Status:          status,
		Visibility:      visibility,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
	}
	if err := h.repo.Create(r.Context(), p); err != nil {
		if errors.Is(err, page.ErrDuplicateSubdomain) {
			response.Err(w, http.StatusConflict, "DUPLICATE_SUBDOMAIN", "This subdomain is already taken", requestID)
			return
		}
		slog.Error("failed to create page", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create page", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toPageResponse(p), requestID)
}

// Get handles GET /pages/{id}. Requires authentication only.
func (h *PageHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, page.ErrPageNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Page not found", requestID)
			return
		}
		slog.Error("failed to get page", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get page", requestID)
		return
	}

	response.Success(w, http.StatusOK, toPageResponse(p), requestID)
}

// Update handles PUT /pages/{id}. The page is loaded before the membership
// check, so an absent page yields 404 regardless of the caller's
// memberships.
func (h *PageHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateUpdatePageRequest(validation.UpdatePageRequest{
		Subdomain:  req.Subdomain,
		Title:      req.Title,
		Status:     req.Status,
		Visibility: req.Visibility,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	existing, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, page.ErrPageNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Page not found", requestID)
			return
		}
		slog.Error("failed to get page", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update page", requestID)
		return
	}

	if !h.requireMembership(w, r, existing.TeamID, identity.UserID) {
		return
	}

	var subdomain *string
	if req.Subdomain != nil {
		s := strings.ToLower(strings.TrimSpace(*req.Subdomain))
		subdomain = &s
	}

	p, err := h.repo.Update(r.Context(), id, page.UpdateFields{
		Subdomain:       subdomain,
		Title:           req.Title,
		Content:         req.Content,
		Status:          req.Status,
		Visibility:      req.Visibility,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
	})
	if err != nil {
		switch {
		case errors.Is(err, page.ErrPageNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Page not found", requestID)
		case errors.Is(err, page.ErrDuplicateSubdomain):
			response.Err(w, http.StatusConflict, "DUPLICATE_SUBDOMAIN", "This subdomain is already taken", requestID)
		default:
			slog.Error("failed to update page", "error", err, "id", id)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update page", requestID)
		}
		return
	}

	response.Success(w, http.StatusOK, toPageResponse(p), requestID)
}

// Delete handles DELETE /pages/{id}. Same load-then-membership order as
// Update.
func (h *PageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	existing, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, page.ErrPageNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Page not found", requestID)
			return
		}
		slog.Error("failed to get page", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete page", requestID)
		return
	}

	if !h.requireMembership(w, r, existing.TeamID, identity.UserID) {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, page.ErrPageNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Page not found", requestID)
			return
		}
		slog.Error("failed to delete page", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete page", requestID)
		return
	}

	response.NoContent(w)
}

// Subdomain handles GET /subdomain and GET /subdomain/{subdomain}: the
// public serving path a tenant page is resolved through. Only published
// pages resolve. Private pages additionally require a valid session whose
// user belongs to the owning team.
func (h *PageHandler) Subdomain(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	label := chi.URLParam(r, "subdomain")
	if label == "" {
		label = r.URL.Query().Get("subdomain")
	}
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "subdomain is required", requestID)
		return
	}

	p, err := h.repo.GetBySubdomain(r.Context(), label)
	if err != nil {
		if errors.Is(err, page.ErrPageNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Page not found", requestID)
			return
		}
		slog.Error("failed to resolve subdomain", "error", err, "subdomain", label)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve subdomain", requestID)
		return
	}

	if p.Visibility == page.VisibilityPrivate {
		token, ok := auth.ReadSessionCookie(r)
		if !ok {
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "This page is private", requestID)
			return
		}
		identity, err := h.authService.Authenticate(r.Context(), token)
		if err != nil {
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "This page is private", requestID)
			return
		}
		member, err := h.teamRepo.IsMember(r.Context(), p.TeamID, identity.UserID)
		if err != nil {
			slog.Error("failed to check team membership", "error", err, "teamId", p.TeamID)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve subdomain", requestID)
			return
		}
		if !member {
			response.Err(w, http.StatusForbidden, "FORBIDDEN", "You do not have access to this page", requestID)
			return
		}
	}

	response.Success(w, http.StatusOK, toPublicPageResponse(p), requestID)
}

func (h *PageHandler) requireTeamMember(w http.ResponseWriter, r *http.Request, teamID, userID uuid.UUID) bool {
	requestID := middleware.GetRequestID(r.Context())

	if _, err := h.teamRepo.GetByID(r.Context(), teamID); err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return false
		}
		slog.Error("failed to load team", "error", err, "teamId", teamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load team", requestID)
		return false
	}

	return h.requireMembership(w, r, teamID, userID)
}

func (h *PageHandler) requireMembership(w http.ResponseWriter, r *http.Request, teamID, userID uuid.UUID) bool {
	requestID := middleware.GetRequestID(r.Context())

	ok, err := h.teamRepo.IsMember(r.Context(), teamID, userID)
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
