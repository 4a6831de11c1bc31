package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/returnpoint/backend/internal/auth/middleware"
	"github.com/returnpoint/backend/internal/models"
	"go.uber.org/zap"
)

// ProfileService is the interface that wraps methods for the caller's own profile.
type ProfileService interface {
	// Method GetProfile retrieves the user with the given ID.
	//
	// If the user does not exist, a NotFound error will be returned together with "nil" value.
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	// Method UpdateProfile applies a partial update of username, email and password.
	//
	// Changing the password requires both "CurrentPassword" and "NewPassword".
	// If nothing changes or a value is invalid or taken, the error will be returned together with "nil" value.
	UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error)
}

// ProfileHandler handles HTTP requests for the authenticated user's profile
type ProfileHandler struct {
	BaseHandler
	service ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(svc ProfileService, logger *zap.Logger, development bool) *ProfileHandler {
	return &ProfileHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger, Development: development},
	}
}

// RegisterRoutes registers profile routes behind authMiddleware
func (h *ProfileHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/auth/profile", h.GetProfile)
		r.Put("/auth/profile", h.UpdateProfile)
	})
}

// GetProfile handles GET /api/auth/profile
// @Summary Get profile
// @Description Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DataResponse{data=models.User}
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/auth/profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "no token provided")
		return
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, DataResponse{Success: true, Data: user})
}

// UpdateProfile handles PUT /api/auth/profile
// @Summary Update profile
// @Description Change username, email or password of the authenticated user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateProfileRequest true "Profile changes"
// @Success 200 {object} DataResponse{data=models.User}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/profile [put]
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "no token provided")
		return
	}

	var req models.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, DataResponse{Success: true, Data: user})
}
