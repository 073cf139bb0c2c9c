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
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/product"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/team"
)

type createProductRequest struct {
	TeamID      string   `json:"teamId"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	SKU         *string  `json:"sku"`
	Status      string   `json:"status"`
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	SKU         *string  `json:"sku"`
	Status      *string  `json:"status"`
}

type productResponse struct {
	ID          string   `json:"id"`
	TeamID      string   `json:"teamId"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	SKU         *string  `json:"sku,omitempty"`
	Status      string   `json:"status"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:          p.ID.String(),
		TeamID:      p.TeamID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		SKU:         p.SKU,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ProductHandler handles product CRUD endpoints.
type ProductHandler struct {
	repo     product.Repository
	teamRepo team.Repository
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(repo product.Repository, teamRepo team.Repository) *ProductHandler {
	return &ProductHandler{
		repo:     repo,
		teamRepo: teamRepo,
	}
}

// List handles GET /products?teamId=. Requires authentication only; a
// deleted team's products list as an empty set.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
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

	products, err := h.repo.ListByTeam(r.Context(), teamID)
	if err != nil {
		slog.Error("failed to list products", "error", err, "teamId", teamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list products", requestID)
		return
	}

	items := make([]productResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Create handles POST /products. The acting user must be a member of the
// target team.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateProductRequest(validation.CreateProductRequest{
		TeamID: req.TeamID,
		Name:   req.Name,
		Price:  req.Price,
		Status: req.Status,
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
		status = product.StatusActive
	}

	p := &product.Product{
		TeamID:      teamID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		SKU:         req.SKU,
		Status:      status,
	}
	if err := h.repo.Create(r.Context(), p); err != nil {
		slog.Error("failed to create product", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create product", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toProductResponse(p), requestID)
}

// Get handles GET /products/{id}. Requires authentication only.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Product not found", requestID)
			return
		}
		slog.Error("failed to get product", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get product", requestID)
		return
	}

	response.Success(w, http.StatusOK, toProductResponse(p), requestID)
}

// Update handles PUT /products/{id}. The product is loaded before the
// membership check: an absent product yields 404 regardless of the caller's
// memberships.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateUpdateProductRequest(validation.UpdateProductRequest{
		Name:   req.Name,
		Price:  req.Price,
		Status: req.Status,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	existing, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Product not found", requestID)
			return
		}
		slog.Error("failed to get product", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update product", requestID)
		return
	}

	if !h.requireMembership(w, r, existing.TeamID, identity.UserID) {
		return
	}

	p, err := h.repo.Update(r.Context(), id, product.UpdateFields{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		SKU:         req.SKU,
		Status:      req.Status,
	})
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Product not found", requestID)
			return
		}
		slog.Error("failed to update product", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update product", requestID)
		return
	}

	response.Success(w, http.StatusOK, toProductResponse(p), requestID)
}

// Delete handles DELETE /products/{id}. Same load-then-membership order as
// Update.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	existing, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Product not found", requestID)
			return
		}
		slog.Error("failed to get product", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete product", requestID)
		return
	}

	if !h.requireMembership(w, r, existing.TeamID, identity.UserID) {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Product not found", requestID)
			return
		}
		slog.Error("failed to delete product", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete product", requestID)
		return
	}

	response.NoContent(w)
}

// requireTeamMember verifies the target team exists and the acting user is
// a member. An absent team yields 404, a non-member actor 403.
func (h *ProductHandler) requireTeamMember(w http.ResponseWriter, r *http.Request, teamID, userID uuid.UUID) bool {
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

// requireMembership verifies the acting user's membership in the owning
// team, for operations where the resource itself was already loaded.
func (h *ProductHandler) requireMembership(w http.ResponseWriter, r *http.Request, teamID, userID uuid.UUID) bool {
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
