package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/returnpoint/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for registration and login.
type AuthService interface {
	// Method Register creates a new user account with the "user" role and issues a session token.
	//
	// "req" parameter carries username, email and password. The email is normalized to lower case.
	// If a field is missing or invalid, or the username or email is taken, the error will be returned together with "nil" and "" values.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, string, error)
	// Method Login verifies email and password and issues a session token.
	//
	// If the email is unknown or the password does not match, an Unauthorized error will be returned.
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error)
}

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	BaseHandler
	service AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc AuthService, logger *zap.Logger, development bool) *AuthHandler {
	return &AuthHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger, Development: development},
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
}

// Register handles POST /api/auth/register
// @Summary Register a new user
// @Description Create a user account and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	user, token, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, models.AuthResponse{
		Success: true,
		Token:   token,
		User:    user,
	})
}

// Login handles POST /api/auth/login
// @Summary Login
// @Description Authenticate with email and password and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	if req.Email == "" || req.Password == "" {
		h.RespondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.AuthResponse{
		Success: true,
		Token:   token,
		User:    user,
	})
}
