package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/returnpoint/backend/internal/auth/service"
	"github.com/returnpoint/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user. Its ID and timestamps are set on success.
	//
	// If username or email is already taken, a Conflict error is returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByID retrieves a user by ID.
	//
	// If user with such ID does not exist, a NotFound error will be returned together with "nil" value.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method GetByEmail retrieves a user by email.
	//
	// If user with such email does not exist, a NotFound error will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method ExistsByUsername checks if a user with such username exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Method Update saves username, email and password hash of an existing user.
	//
	// If the new username or email is already taken, a Conflict error is returned.
	Update(ctx context.Context, user *models.User) error
}

// authService implements registration and login
type authService struct {
	userRepo       UserRepository
	tokenGenerator *service.TokenGenerator
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, tokenGenerator *service.TokenGenerator, logger *zap.Logger) *authService {
	return &authService{
		userRepo:       userRepo,
		tokenGenerator: tokenGenerator,
		logger:         logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Accepted password lengths in bytes. bcrypt only hashes the first 72 bytes.
const (
	minPasswordLength = 6
	maxPasswordLength = 72
)

// dummyPasswordHash is compared against when a login email is unknown,
// so both failure paths spend similar time in bcrypt
var dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("returnpoint-dummy-password"), bcrypt.DefaultCost)

// Register creates a new user account and returns it with a session token
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, string, error) {
	user, err := s.createUser(ctx, req, models.RoleUser)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokenGenerator.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user registered", zap.Int("userId", user.ID))
	return user, token, nil
}

// Login verifies credentials and returns the user with a session token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", models.Errorf(models.ErrValidation, "email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(req.Password))
			return nil, "", models.Errorf(models.ErrUnauthorized, "invalid credentials")
		}
		return nil, "", err
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", models.Errorf(models.ErrUnauthorized, "invalid credentials")
	}

	token, err := s.tokenGenerator.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// CreateAdmin creates an admin account unless a user with the email already exists.
// The second result reports whether a new account was created.
func (s *authService) CreateAdmin(ctx context.Context, req *models.RegisterRequest) (*models.User, bool, error) {
	existing, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, err
	}

	user, err := s.createUser(ctx, req, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("admin user created", zap.Int("userId", user.ID), zap.String("username", user.Username))
	return user, true, nil
}

// createUser validates the registration data, checks uniqueness and stores the user
func (s *authService) createUser(ctx context.Context, req *models.RegisterRequest, role models.Role) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)

	if username == "" || email == "" || req.Password == "" {
		return nil, models.Errorf(models.ErrValidation, "username, email and password are required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	if err := checkUniqueness(ctx, s.userRepo, username, email); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// checkUniqueness fails with a Conflict error when username or email is taken.
// Empty values are skipped.
func checkUniqueness(ctx context.Context, repo UserRepository, username, email string) error {
	if email != "" {
		exists, err := repo.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return models.Errorf(models.ErrConflict, "email already exists")
		}
	}

	if username != "" {
		exists, err := repo.ExistsByUsername(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return models.Errorf(models.ErrConflict, "username already exists")
		}
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return models.Errorf(models.ErrValidation, "invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return models.Errorf(models.ErrValidation, "password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return models.Errorf(models.ErrValidation, "password must be at most %d bytes", maxPasswordLength)
	}
	return nil
}
