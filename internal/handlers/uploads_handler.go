package handlers

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FileOpener opens stored upload files by name
type FileOpener interface {
	Open(name string) (*os.File, error)
}

// UploadsHandler serves stored item photos
type UploadsHandler struct {
	BaseHandler
	files FileOpener
}

// NewUploadsHandler creates a handler serving files opened through files
func NewUploadsHandler(files FileOpener, logger *zap.Logger) *UploadsHandler {
	return &UploadsHandler{
		BaseHandler: BaseHandler{Logger: logger},
		files:       files,
	}
}

// RegisterRoutes mounts the handler under prefix, e.g. "/uploads"
func (h *UploadsHandler) RegisterRoutes(r chi.Router, prefix string) {
	prefix = strings.TrimRight(prefix, "/")
	r.Get(prefix+"/*", h.ServeFile)
}

// ServeFile serves a single stored file with range support.
// Nested paths, directories and hidden temporary files are reported as not found.
func (h *UploadsHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		h.RespondError(w, http.StatusNotFound, "not found")
		return
	}

	file, err := h.files.Open(name)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			h.Logger.Error("failed to open upload", zap.String("file", name), zap.Error(err))
		}
		h.RespondError(w, http.StatusNotFound, "not found")
		return
	}
	defer file.Close()

	// Get file info for http.ServeContent
	info, err := file.Stat()
	if err != nil {
		h.Logger.Error("failed to get file info", zap.String("file", name), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get file info")
		return
	}
	if info.IsDir() {
		h.RespondError(w, http.StatusNotFound, "not found")
		return
	}

	http.ServeContent(w, r, name, info.ModTime(), file)
}
