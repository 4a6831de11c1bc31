package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/returnpoint/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// profileService implements self-service profile reads and updates
type profileService struct {
	userRepo UserRepository
	logger   *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(userRepo UserRepository, logger *zap.Logger) *profileService {
	return &profileService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetProfile returns the user with the given ID
func (s *profileService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile applies a partial profile update.
// Username and email are re-checked for uniqueness only when they change.
// A password change requires the current password.
func (s *profileService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed := false

	if req.NewPassword != "" || req.CurrentPassword != "" {
		if req.NewPassword == "" || req.CurrentPassword == "" {
			return nil, models.Errorf(models.ErrValidation, "currentPassword and newPassword are both required to change the password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return nil, models.Errorf(models.ErrValidation, "current password is incorrect")
		}
		if err := validatePassword(req.NewPassword); err != nil {
			return nil, err
		}
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(passwordHash)
		changed = true
	}

	var newUsername, newEmail string

	if username := strings.TrimSpace(req.Username); username != "" && username != user.Username {
		newUsername = username
	}

	if email := normalizeEmail(req.Email); email != "" && email != user.Email {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		newEmail = email
	}

	if err := checkUniqueness(ctx, s.userRepo, newUsername, newEmail); err != nil {
		return nil, err
	}

	if newUsername != "" {
		user.Username = newUsername
		changed = true
	}
	if newEmail != "" {
		user.Email = newEmail
		changed = true
	}

	if !changed {
		return nil, models.Errorf(models.ErrValidation, "no updates provided")
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", zap.Int("userId", user.ID))
	return user, nil
}
