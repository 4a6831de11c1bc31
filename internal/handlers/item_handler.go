package handlers

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/returnpoint/backend/internal/auth/middleware"
	"github.com/returnpoint/backend/internal/models"
	"github.com/returnpoint/backend/internal/services"
	"go.uber.org/zap"
)

// multipartMemory is the part of a multipart body kept in memory before spilling to disk
const multipartMemory = 10 << 20

// ItemService is the interface that wraps methods for the item lifecycle.
type ItemService interface {
	// Method Create stores an optional photo and creates an open item reported by "actor".
	//
	// If a required field is missing or invalid, a Validation error will be returned together with "nil" value.
	Create(ctx context.Context, req *models.ItemRequest, photo *services.Upload, actor *models.User) (*models.Item, error)
	// Method List retrieves a page of items matching "filter" together with pagination metadata.
	//
	// Zero page and limit take the defaults. Invalid filters return a Validation error.
	List(ctx context.Context, filter *models.ItemFilter) (*models.ItemListResponse, error)
	// Method GetByID retrieves an item by its ID.
	//
	// If the item does not exist, a NotFound error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Item, error)
	// Method UpdateStatus sets the status of an item.
	//
	// Only the reporter or an admin may change an item, otherwise a Forbidden error will be returned.
	UpdateStatus(ctx context.Context, id int, status string, actor *models.User) (*models.Item, error)
	// Method Update replaces the content of an item and optionally its photo.
	//
	// Please reference UpdateStatus method for more information about authorization errors.
	Update(ctx context.Context, id int, req *models.ItemRequest, photo *services.Upload, actor *models.User) (*models.Item, error)
	// Method Delete removes an item and its photo.
	//
	// Please reference UpdateStatus method for more information about authorization errors.
	Delete(ctx context.Context, id int, actor *models.User) error
	// Method ListMine retrieves all items reported by "actor", newest first.
	ListMine(ctx context.Context, actor *models.User, filter *models.ItemFilter) ([]models.Item, error)
}

// ItemHandler handles HTTP requests for items
type ItemHandler struct {
	BaseHandler
	service ItemService
}

// NewItemHandler creates a new item handler
func NewItemHandler(svc ItemService, logger *zap.Logger, development bool) *ItemHandler {
	return &ItemHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger, Development: development},
	}
}

// RegisterRoutes registers all item handler routes. Reads are public, writes go through authMiddleware.
func (h *ItemHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.List)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/me/items", h.ListMine)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Put("/{id}/status", h.UpdateStatus)
			r.Delete("/{id}", h.Delete)
		})

		r.Get("/{id}", h.GetByID)
	})
}

// parseItemID reads the {id} URL parameter
func parseItemID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, models.Errorf(models.ErrValidation, "invalid item id")
	}
	return id, nil
}

// parseIntParam reads an optional integer query parameter, returning 0 when it is absent
func parseIntParam(r *http.Request, name string) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, models.Errorf(models.ErrValidation, "%s must be an integer", name)
	}
	return parsed, nil
}

// itemWrite is a decoded item write request
type itemWrite struct {
	req   models.ItemRequest
	photo *services.Upload
	file  multipart.File
}

func (iw *itemWrite) close() {
	if iw.file != nil {
		iw.file.Close()
	}
}

// readItemWrite decodes a multipart form with an optional "photo" file, or a JSON body
func readItemWrite(r *http.Request) (*itemWrite, error) {
	iw := &itemWrite{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := decodeJSON(r, &iw.req); err != nil {
			return nil, err
		}
		return iw, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, models.Errorf(models.ErrValidation, "request body too large")
		}
		return nil, models.Errorf(models.ErrValidation, "invalid multipart form")
	}

	iw.req = models.ItemRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Type:        r.FormValue("item_type"),
		TypeAlias:   r.FormValue("type"),
		Location:    r.FormValue("location"),
		Date:        r.FormValue("date"),
		Contact:     r.FormValue("contact_info"),
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return iw, nil
		}
		return nil, models.Errorf(models.ErrValidation, "invalid photo upload")
	}
	iw.file = file
	iw.photo = &services.Upload{File: file, Filename: header.Filename}

	return iw, nil
}

// List handles GET /api/items
// @Summary List items
// @Description Get a page of items filtered by type, status and a search term
// @Tags items
// @Produce json
// @Param type query string false "lost, found or all"
// @Param status query string false "dicari, ditemukan, diclaim or all"
// @Param search query string false "Case-insensitive match on title or description"
// @Param page query int false "Page number, default: 1"
// @Param limit query int false "Page size 1-100, default: 20"
// @Success 200 {object} models.ItemListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/items [get]
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parseIntParam(r, "page")
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}
	limit, err := parseIntParam(r, "limit")
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	query := r.URL.Query()
	// Explicit zeros are invalid; only absent values take the defaults
	if query.Has("page") && page < 1 {
		h.RespondError(w, http.StatusBadRequest, "page must be at least 1")
		return
	}
	if query.Has("limit") && limit < 1 {
		h.RespondError(w, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}

	result, err := h.service.List(r.Context(), &models.ItemFilter{
		Type:   query.Get("type"),
		Status: query.Get("status"),
		Search: query.Get("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// GetByID handles GET /api/items/{id}
// @Summary Get item
// @Tags items
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} models.ItemResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/items/{id} [get]
func (h *ItemHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	item, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.ItemResponse{Success: true, Data: item})
}

// Create handles POST /api/items
// @Summary Create item
// @Description Report a lost or found item. Accepts multipart/form-data with an optional photo, or JSON.
// @Tags items
// @Accept multipart/form-data,json
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param item_type formData string true "lost or found"
// @Param location formData string true "Location"
// @Param date formData string false "YYYY-MM-DD or RFC 3339"
// @Param contact_info formData string false "Contact"
// @Param photo formData file false "Photo (jpg, jpeg, png, gif, webp)"
// @Success 201 {object} models.ItemResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/items [post]
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUser(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "no token provided")
		return
	}

	write, err := readItemWrite(r)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}
	defer write.close()

	item, err := h.service.Create(r.Context(), &write.req, write.photo, actor)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, models.ItemResponse{Success: true, Data: item})
}

// Update handles PUT /api/items/{id}
// @Summary Update item
// @Description Replace the content of an item. Only the reporter or an admin may update it.
// @Tags items
// @Accept multipart/form-data,json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param request body models.ItemRequest true "Item fields"
// @Success 200 {object} models.ItemResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/items/{id} [put]
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUser(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "no token provided")
		return
	}

	id, err := parseItemID(r)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	write, err := readItemWrite(r)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}
	defer write.close()

	item, err := h.service.Update(r.Context(), id, &write.req, write.photo, actor)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.ItemResponse{Success: true, Data: item})
}

// UpdateStatus handles PUT /api/items/{id}/status
// @Summary Update item status
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param request body models.UpdateStatusRequest true "New status"
// @Success 200 {object} models.ItemResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/items/{id}/status [put]
func (h *ItemHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUser(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "no token provided")
		return
	}

	id, err := parseItemID(r)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	var req models.UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	item, err := h.service.UpdateStatus(r.Context(), id, req.Status, actor)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.ItemResponse{Success: true, Data: item})
}

// Delete handles DELETE /api/items/{id}
// @Summary Delete item
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/items/{id} [delete]
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUser(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "no token provided")
		return
	}

	id, err := parseItemID(r)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id, actor); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "item deleted successfully"})
}

// ListMine handles GET /api/items/me/items
// @Summary List my items
// @Description Get all items reported by the authenticated user, newest first
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param type query string false "lost, found or all"
// @Param status query string false "dicari, ditemukan, diclaim or all"
// @Success 200 {object} models.ItemsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/items/me/items [get]
func (h *ItemHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUser(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "no token provided")
		return
	}

	query := r.URL.Query()
	items, err := h.service.ListMine(r.Context(), actor, &models.ItemFilter{
		Type:   query.Get("type"),
		Status: query.Get("status"),
	})
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.ItemsResponse{Success: true, Data: items})
}
