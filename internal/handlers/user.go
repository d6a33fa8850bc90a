package handlers

import (
	"net/http"

	"pillpal-backend/internal/middleware"
	"pillpal-backend/internal/models"
	"pillpal-backend/internal/services"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// SignInRequest carries an ID token from the external identity provider
type SignInRequest struct {
	IDToken string `json:"id_token"`
}

// MeResponse is the authenticated user with their profile
type MeResponse struct {
	User    *models.User    `json:"user"`
	Profile *models.Profile `json:"profile"`
}

// CreateUser handles POST /api/v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.CreateUser(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "create user")
		return
	}

	respondJSON(w, r, http.StatusCreated, user)
}

// SignIn handles POST /api/v1/auth/oidc
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err, "sign in")
		return
	}

	user, err := h.userService.SignInWithOIDC(r.Context(), req.IDToken)
	if err != nil {
		respondServiceError(w, r, err, "sign in")
		return
	}
	respondJSON(w, r, http.StatusOK, user)
}

// Me handles GET /api/v1/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, "get user")
		return
	}
	profile, err := h.userService.GetProfile(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, "get profile")
		return
	}
	respondJSON(w, r, http.StatusOK, MeResponse{User: user, Profile: profile})
}

// UpdateProfile handles PATCH /api/v1/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err, "update profile")
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err, "update profile")
		return
	}
	respondJSON(w, r, http.StatusOK, profile)
}

// UpdatePushToken handles PUT /api/v1/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	var req services.UpdatePushTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err, "update push token")
		return
	}

	if err := h.userService.UpdatePushToken(r.Context(), middleware.GetUserID(r.Context()), req); err != nil {
		respondServiceError(w, r, err, "update push token")
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}
