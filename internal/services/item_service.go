package services

import (
	"context"
	"io"
	"math"
	"strings"
	"time"

	"github.com/returnpoint/backend/internal/auth/guard"
	"github.com/returnpoint/backend/internal/models"
	"go.uber.org/zap"
)

// Listing defaults and bounds
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit within an int for any allowed limit
	MaxPage = math.MaxInt / MaxLimit
)

// ItemRepository is the interface that wraps methods for Item table data access
type ItemRepository interface {
	// Method Create inserts a new item into the database.
	//
	// "item" parameter is used to create a new item. Its ID and timestamps are set on success.
	Create(ctx context.Context, item *models.Item) error
	// Method GetByID retrieves an item by ID with its reporter username.
	//
	// If item with such ID does not exist, a NotFound error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Item, error)
	// Method List retrieves a page of items matching the filter and the total number of matches.
	//
	// "filter" parameter is used to filter by type, status and search term and to select the page.
	List(ctx context.Context, filter *models.ItemFilter) ([]models.Item, int, error)
	// Method ListByReporter retrieves all items of a reporter matching the filter's type and status.
	ListByReporter(ctx context.Context, reporterID int, filter *models.ItemFilter) ([]models.Item, error)
	// Method Update saves the content fields and photo of an existing item.
	//
	// If item with such ID does not exist, a NotFound error will be returned.
	Update(ctx context.Context, item *models.Item) error
	// Method UpdateStatus sets the status of an existing item.
	//
	// If item with such ID does not exist, a NotFound error will be returned.
	UpdateStatus(ctx context.Context, id int, status models.ItemStatus) error
	// Method Delete removes an item.
	//
	// If item with such ID does not exist, a NotFound error will be returned.
	Delete(ctx context.Context, id int) error
}

// AttachmentManager is the interface that wraps photo storage methods
type AttachmentManager interface {
	// Method Store saves the photo and returns a reference URL for it.
	Store(ctx context.Context, file io.Reader, filename string) (string, error)
	// Method Remove deletes the photo behind a reference. Failures are logged and reported as false.
	Remove(ctx context.Context, reference string) bool
}

// Upload is an uploaded photo attached to an item write
type Upload struct {
	File     io.Reader
	Filename string
}

// itemService implements the item lifecycle
type itemService struct {
	repo        ItemRepository
	attachments AttachmentManager
	logger      *zap.Logger
}

// NewItemService creates a new item service
func NewItemService(repo ItemRepository, attachments AttachmentManager, logger *zap.Logger) *itemService {
	return &itemService{
		repo:        repo,
		attachments: attachments,
		logger:      logger,
	}
}

// itemFields holds validated content fields of an item write
type itemFields struct {
	itemType    models.ItemType
	title       string
	description string
	location    string
	date        *time.Time
	contact     string
}

// validateItemRequest checks required fields and parses the date
func validateItemRequest(req *models.ItemRequest) (*itemFields, error) {
	if req == nil {
		return nil, models.Errorf(models.ErrValidation, "title, item_type and location are required")
	}

	fields := &itemFields{
		itemType:    models.ItemType(strings.ToLower(strings.TrimSpace(req.ItemType()))),
		title:       strings.TrimSpace(req.Title),
		description: strings.TrimSpace(req.Description),
		location:    strings.TrimSpace(req.Location),
		contact:     strings.TrimSpace(req.Contact),
	}

	if fields.title == "" || fields.itemType == "" || fields.location == "" {
		return nil, models.Errorf(models.ErrValidation, "title, item_type and location are required")
	}
	if !fields.itemType.Valid() {
		return nil, models.Errorf(models.ErrValidation, "item_type must be lost or found")
	}

	date, err := parseItemDate(req.Date)
	if err != nil {
		return nil, err
	}
	fields.date = date

	return fields, nil
}

// parseItemDate accepts an empty value, YYYY-MM-DD or RFC 3339
func parseItemDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, models.Errorf(models.ErrValidation, "date must be YYYY-MM-DD or RFC 3339")
	}
	t = t.UTC()
	return &t, nil
}

// Create stores an optional photo and then inserts the item as open.
// When the insert fails the stored photo is removed.
func (s *itemService) Create(ctx context.Context, req *models.ItemRequest, photo *Upload, actor *models.User) (*models.Item, error) {
	if actor == nil {
		return nil, models.Errorf(models.ErrUnauthorized, "authentication required")
	}

	fields, err := validateItemRequest(req)
	if err != nil {
		return nil, err
	}

	var reference *string
	if photo != nil {
		ref, err := s.attachments.Store(ctx, photo.File, photo.Filename)
		if err != nil {
			return nil, err
		}
		reference = &ref
	}

	item := &models.Item{
		Type:        fields.itemType,
		Title:       fields.title,
		Description: fields.description,
		Location:    fields.location,
		Date:        fields.date,
		Status:      models.StatusOpen,
		Contact:     fields.contact,
		Photo:       reference,
		ReporterID:  actor.ID,
		Reporter:    actor.Username,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if reference != nil {
			s.attachments.Remove(ctx, *reference)
		}
		return nil, err
	}

	s.logger.Info("item created", zap.Int("itemId", item.ID), zap.Int("reporterId", actor.ID))
	return item, nil
}

// normalizeFilter validates type and status filters and fills in page defaults
func normalizeFilter(filter *models.ItemFilter) (*models.ItemFilter, error) {
	normalized := models.ItemFilter{}
	if filter != nil {
		normalized = *filter
	}

	normalized.Type = strings.ToLower(strings.TrimSpace(normalized.Type))
	if normalized.Type == models.FilterAll {
		normalized.Type = ""
	}
	if normalized.Type != "" && !models.ItemType(normalized.Type).Valid() {
		return nil, models.Errorf(models.ErrValidation, "type must be lost, found or all")
	}

	normalized.Status = strings.ToLower(strings.TrimSpace(normalized.Status))
	if normalized.Status == models.FilterAll {
		normalized.Status = ""
	}
	if normalized.Status != "" && !models.ItemStatus(normalized.Status).Valid() {
		return nil, models.Errorf(models.ErrValidation, "status must be dicari, ditemukan, diclaim or all")
	}

	normalized.Search = strings.TrimSpace(normalized.Search)
	return &normalized, nil
}

// List returns a page of items and its pagination metadata.
// Zero page or limit take the defaults.
func (s *itemService) List(ctx context.Context, filter *models.ItemFilter) (*models.ItemListResponse, error) {
	normalized, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	if normalized.Page == 0 {
		normalized.Page = DefaultPage
	}
	if normalized.Limit == 0 {
		normalized.Limit = DefaultLimit
	}
	if normalized.Page < 1 {
		return nil, models.Errorf(models.ErrValidation, "page must be at least 1")
	}
	if normalized.Page > MaxPage {
		return nil, models.Errorf(models.ErrValidation, "page must not exceed %d", MaxPage)
	}
	if normalized.Limit < 1 || normalized.Limit > MaxLimit {
		return nil, models.Errorf(models.ErrValidation, "limit must be between 1 and %d", MaxLimit)
	}

	items, total, err := s.repo.List(ctx, normalized)
	if err != nil {
		return nil, err
	}

	return &models.ItemListResponse{
		Success: true,
		Data:    items,
		Pagination: models.Pagination{
			Total:       total,
			TotalPages:  totalPages(total, normalized.Limit),
			CurrentPage: normalized.Page,
			Limit:       normalized.Limit,
		},
	}, nil
}

// totalPages is ceil(total/limit)
func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// GetByID returns a single item
func (s *itemService) GetByID(ctx context.Context, id int) (*models.Item, error) {
	if id < 1 {
		return nil, models.Errorf(models.ErrValidation, "invalid item id")
	}
	return s.repo.GetByID(ctx, id)
}

// loadForMutation fetches the item and checks the actor may change it
func (s *itemService) loadForMutation(ctx context.Context, id int, actor *models.User) (*models.Item, error) {
	if actor == nil {
		return nil, models.Errorf(models.ErrUnauthorized, "authentication required")
	}

	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !guard.CanMutate(item, actor) {
		s.logger.Debug("item mutation denied", zap.Int("itemId", id), zap.Int("userId", actor.ID))
		return nil, models.Errorf(models.ErrForbidden, "not authorized to modify this item")
	}

	return item, nil
}

// UpdateStatus sets the status of an item owned by the actor, or any item for an admin
func (s *itemService) UpdateStatus(ctx context.Context, id int, status string, actor *models.User) (*models.Item, error) {
	newStatus := models.ItemStatus(strings.ToLower(strings.TrimSpace(status)))
	if !newStatus.Valid() {
		return nil, models.Errorf(models.ErrValidation, "status must be dicari, ditemukan or diclaim")
	}

	item, err := s.loadForMutation(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}

	s.logger.Info("item status updated", zap.Int("itemId", id), zap.String("status", string(newStatus)))
	return s.reload(ctx, item)
}

// Update replaces the content of an item. A new photo is stored before the row update
// and the old one is removed only after it succeeds.
func (s *itemService) Update(ctx context.Context, id int, req *models.ItemRequest, photo *Upload, actor *models.User) (*models.Item, error) {
	item, err := s.loadForMutation(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	fields, err := validateItemRequest(req)
	if err != nil {
		return nil, err
	}

	oldPhoto := item.Photo
	var newPhoto *string
	if photo != nil {
		ref, err := s.attachments.Store(ctx, photo.File, photo.Filename)
		if err != nil {
			return nil, err
		}
		newPhoto = &ref
	}

	item.Type = fields.itemType
	item.Title = fields.title
	item.Description = fields.description
	item.Location = fields.location
	item.Date = fields.date
	item.Contact = fields.contact
	if newPhoto != nil {
		item.Photo = newPhoto
	}

	if err := s.repo.Update(ctx, item); err != nil {
		if newPhoto != nil {
			s.attachments.Remove(ctx, *newPhoto)
		}
		return nil, err
	}

	if newPhoto != nil && oldPhoto != nil {
		s.attachments.Remove(ctx, *oldPhoto)
	}

	s.logger.Info("item updated", zap.Int("itemId", id))
	return s.reload(ctx, item)
}

// reload re-reads an item after a write, falling back to the in-memory copy
func (s *itemService) reload(ctx context.Context, item *models.Item) (*models.Item, error) {
	updated, err := s.repo.GetByID(ctx, item.ID)
	if err != nil {
		s.logger.Warn("failed to reload item", zap.Int("itemId", item.ID), zap.Error(err))
		return item, nil
	}
	return updated, nil
}

// Delete removes the item row and then its photo.
// A photo that cannot be removed is logged and left behind.
func (s *itemService) Delete(ctx context.Context, id int, actor *models.User) error {
	item, err := s.loadForMutation(ctx, id, actor)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if item.Photo != nil {
		s.attachments.Remove(ctx, *item.Photo)
	}

	s.logger.Info("item deleted", zap.Int("itemId", id), zap.Int("userId", actor.ID))
	return nil
}

// ListMine returns the actor's items, newest first
func (s *itemService) ListMine(ctx context.Context, actor *models.User, filter *models.ItemFilter) ([]models.Item, error) {
	if actor == nil {
		return nil, models.Errorf(models.ErrUnauthorized, "authentication required")
	}

	normalized, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	normalized.Search = ""

	return s.repo.ListByReporter(ctx, actor.ID, normalized)
}
