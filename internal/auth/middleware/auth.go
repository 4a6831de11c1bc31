package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/returnpoint/backend/internal/auth/service"
	"github.com/returnpoint/backend/internal/models"
	"go.uber.org/zap"
)

type contextKey string

const userKey contextKey = "user"

// UserLoader resolves the user a token was issued to
type UserLoader interface {
	GetByID(ctx context.Context, userID int) (*models.User, error)
}

// AuthMiddleware validates the session token and loads the current user record.
// The user is re-read on every request so role changes apply without revoking tokens.
func AuthMiddleware(tokenGenerator *service.TokenGenerator, users UserLoader, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				respondUnauthorized(w, "no token provided")
				return
			}

			claims, err := tokenGenerator.ValidateToken(token)
			if err != nil {
				if errors.Is(err, service.ErrTokenExpired) {
					respondUnauthorized(w, "token expired")
					return
				}
				respondUnauthorized(w, "invalid token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if !errors.Is(err, models.ErrNotFound) {
					logger.Error("failed to load token user", zap.Int("userId", claims.UserID), zap.Error(err))
				}
				respondUnauthorized(w, "user not found")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads a bearer token from the Authorization header or the access_token cookie
func extractToken(r *http.Request) string {
	// Expected format: "Bearer <token>"
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}

	return ""
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// GetUser retrieves the authenticated user from context
func GetUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

// GetUserID retrieves the authenticated user ID from context
func GetUserID(ctx context.Context) (int, bool) {
	user, ok := GetUser(ctx)
	if !ok {
		return 0, false
	}
	return user.ID, true
}

// WithUser returns a copy of ctx carrying user, as AuthMiddleware does
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
