package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/returnpoint/backend/internal/models"
)

// Token validation errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the identity carried by a session token
type Claims struct {
	UserID int
	Email  string
	Role   models.Role
}

// TokenGenerator handles JWT session token generation and validation
type TokenGenerator struct {
	secret      string
	tokenExpiry time.Duration
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, tokenExpiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:      secret,
		tokenExpiry: tokenExpiry,
	}
}

// GenerateToken creates a signed session token with userId, email and role in payload
func (tg *TokenGenerator) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": user.ID,
		"email":  user.Email,
		"role":   string(user.Role),
		"exp":    now.Add(tg.tokenExpiry).Unix(),
		"iat":    now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tg.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a session token and returns its claims.
// Expired tokens fail with ErrTokenExpired, every other failure with ErrInvalidToken.
func (tg *TokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tg.secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	// JWT claims decode numbers as float64
	userID, ok := claims["userId"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: userId not found in token", ErrInvalidToken)
	}

	email, _ := claims["email"].(string)

	role, ok := claims["role"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: role not found in token", ErrInvalidToken)
	}

	return &Claims{
		UserID: int(userID),
		Email:  email,
		Role:   models.Role(role),
	}, nil
}
