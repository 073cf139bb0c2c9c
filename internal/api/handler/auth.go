package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api/middleware"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api/response"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api/validation"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/auth"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/team"
)

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

type userResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type meResponse struct {
	User  userResponse   `json:"user"`
	Teams []teamResponse `json:"teams"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// AuthHandler handles sign-up, sign-in, sign-out and current-user endpoints.
type AuthHandler struct {
	authService  *auth.Service
	userRepo     auth.UserRepository
	teamRepo     team.Repository
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service, userRepo auth.UserRepository, teamRepo team.Repository, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		userRepo:     userRepo,
		teamRepo:     teamRepo,
		cookieSecure: cookieSecure,
	}
}

// SignUp handles POST /signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateSignUpRequest(validation.SignUpRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	u, err := h.authService.SignUp(r.Context(), req.Email, req.Password, strings.TrimSpace(req.DisplayName))
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			response.Err(w, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists", requestID)
			return
		}
		slog.Error("failed to sign up user", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toUserResponse(u), requestID)
}

// SignIn handles POST /signin. On success the minted session is bound to
// the session cookie.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateSignInRequest(validation.SignInRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	u, token, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", requestID)
			return
		}
		slog.Error("failed to sign in user", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign in", requestID)
		return
	}

	auth.SetSessionCookie(w, token, h.authService.SessionTTL(), h.cookieSecure)
	response.Success(w, http.StatusOK, toUserResponse(u), requestID)
}

// SignOut handles POST /signout. Always succeeds: the cookie is cleared and
// an absent or already-deleted session is ignored.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if token, ok := auth.ReadSessionCookie(r); ok {
		if err := h.authService.SignOut(r.Context(), token); err != nil {
			slog.Error("failed to delete session", "error", err)
		}
	}

	auth.ClearSessionCookie(w, h.cookieSecure)
	response.Success(w, http.StatusOK, successResponse{Success: true}, requestID)
}

// SignOutAll handles POST /signout/all. Deletes every session the
// authenticated user holds, including the current one, then clears the cookie.
func (h *AuthHandler) SignOutAll(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	if err := h.authService.SignOutAll(r.Context(), identity.UserID); err != nil {
		slog.Error("failed to delete user sessions", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign out", requestID)
		return
	}

	auth.ClearSessionCookie(w, h.cookieSecure)
	response.Success(w, http.StatusOK, successResponse{Success: true}, requestID)
}

// Me handles GET /me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	u, err := h.userRepo.GetByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to load user", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user", requestID)
		return
	}

	teams, err := h.teamRepo.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		slog.Error("failed to list user teams", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user", requestID)
		return
	}

	items := make([]teamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, toTeamResponse(&teams[i]))
	}

	response.Success(w, http.StatusOK, meResponse{
		User:  toUserResponse(u),
		Teams: items,
	}, requestID)
}

// UpdateProfile handles PATCH /me.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.DisplayName != nil && strings.TrimSpace(*req.DisplayName) == "" {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "displayName", Message: "displayName must not be empty"}}, requestID)
		return
	}

	u, err := h.userRepo.UpdateProfile(r.Context(), identity.UserID, auth.ProfileUpdate{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to update profile", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update profile", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(u), requestID)
}
