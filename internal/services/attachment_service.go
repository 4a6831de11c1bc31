package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/returnpoint/backend/internal/imaging"
	"github.com/returnpoint/backend/internal/models"
	"github.com/returnpoint/backend/internal/storage"
	"go.uber.org/zap"
)

// Storage defines the interface for attachment file storage operations
type Storage interface {
	// Save writes the content of r under name, replacing nothing until the write completes
	Save(name string, r io.Reader) error

	// Delete removes a file
	Delete(name string) error
}

// allowedPhotoExtensions lists accepted photo file extensions
var allowedPhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// attachmentService stores item photos and turns them into reference URLs
type attachmentService struct {
	storage           Storage
	baseURL           string
	maxImageDimension int
	logger            *zap.Logger
}

// NewAttachmentService creates a new attachment service.
// References are built as baseURL + "/" + generated name.
// maxImageDimension of 0 disables photo downscaling.
func NewAttachmentService(storage Storage, baseURL string, maxImageDimension int, logger *zap.Logger) *attachmentService {
	return &attachmentService{
		storage:           storage,
		baseURL:           strings.TrimRight(baseURL, "/"),
		maxImageDimension: maxImageDimension,
		logger:            logger,
	}
}

// Store saves an uploaded photo under a generated name keeping its extension
// and returns the reference URL for it
func (s *attachmentService) Store(ctx context.Context, file io.Reader, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedPhotoExtensions[ext] {
		return "", models.Errorf(models.ErrValidation, "photo must be a jpg, jpeg, png, gif or webp image")
	}

	content := file
	if s.maxImageDimension > 0 && (ext == ".jpg" || ext == ".jpeg" || ext == ".png") {
		result, err := imaging.Process(file, s.maxImageDimension)
		if errors.Is(err, imaging.ErrTooManyPixels) {
			return "", models.Wrap(models.ErrValidation, err, "photo dimensions are too large")
		}
		if err != nil {
			return "", models.Wrap(models.ErrValidation, err, "photo could not be processed")
		}
		if result.Resized {
			s.logger.Debug("photo downscaled",
				zap.String("mime", result.MIME),
				zap.Int("bytes", len(result.Data)),
				zap.Int("maxDimension", s.maxImageDimension),
			)
		}
		content = bytes.NewReader(result.Data)
	}

	name := storage.GenerateFileName(ext)
	if err := s.storage.Save(name, content); err != nil {
		s.logger.Error("failed to store photo", zap.String("file", name), zap.Error(err))
		return "", models.Wrap(models.ErrStorage, err, "error uploading file")
	}

	return s.baseURL + "/" + name, nil
}

// Remove deletes the file behind a reference. Failures are logged and reported as false.
func (s *attachmentService) Remove(ctx context.Context, reference string) bool {
	name, ok := s.fileName(reference)
	if !ok {
		s.logger.Warn("photo reference outside upload location", zap.String("reference", reference))
		return false
	}

	if err := s.storage.Delete(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("photo already removed", zap.String("reference", reference))
		} else {
			s.logger.Warn("failed to remove photo", zap.String("reference", reference), zap.Error(err))
		}
		return false
	}

	return true
}

// fileName extracts the stored file name from a reference URL
func (s *attachmentService) fileName(reference string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(reference, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(reference, prefix)
	if name == "" || name != path.Base(name) || name == ".." {
		return "", false
	}
	return name, true
}
