package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/returnpoint/backend/internal/models"
	"go.uber.org/zap"
)

// itemColumns is the select list shared by every item read.
// The reporter username is joined from users so it always reflects the current name.
const itemColumns = `
	i.id, i.item_type, i.title, i.description, i.location, i.item_date, i.status,
	i.contact, i.photo, i.reporter_id, u.username, i.created_at, i.updated_at
`

// itemRepository implements persistent storage for items
type itemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *sql.DB, logger *zap.Logger) *itemRepository {
	return &itemRepository{
		db:     db,
		logger: logger,
	}
}

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem reads one item in itemColumns order
func scanItem(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	var (
		itemType string
		status   string
		date     sql.NullTime
		photo    sql.NullString
	)
	err := row.Scan(
		&item.ID,
		&itemType,
		&item.Title,
		&item.Description,
		&item.Location,
		&date,
		&status,
		&item.Contact,
		&photo,
		&item.ReporterID,
		&item.Reporter,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Type = models.ItemType(itemType)
	item.Status = models.ItemStatus(status)
	if date.Valid {
		d := date.Time
		item.Date = &d
	}
	if photo.Valid {
		p := photo.String
		item.Photo = &p
	}
	return item, nil
}

// Create inserts a new item and sets its ID and timestamps
func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (item_type, title, description, location, item_date, status, contact, photo, reporter_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		string(item.Type),
		item.Title,
		item.Description,
		item.Location,
		item.Date,
		string(item.Status),
		item.Contact,
		item.Photo,
		item.ReporterID,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("failed to create item", zap.Error(err))
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	item.ID = int(id)
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

// GetByID retrieves an item by ID together with its reporter username
func (r *itemRepository) GetByID(ctx context.Context, id int) (*models.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM items i
		JOIN users u ON u.id = i.reporter_id
		WHERE i.id = ?
		LIMIT 1
	`, itemColumns)

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, models.Errorf(models.ErrNotFound, "item not found")
	}
	if err != nil {
		r.logger.Error("failed to get item by id", zap.Error(err), zap.Int("itemId", id))
		return nil, fmt.Errorf("failed to get item by id: %w", err)
	}

	return item, nil
}

// buildItemFilter builds the WHERE clause and its arguments for a filter.
// Listing and counting must share this predicate so totals match the returned pages.
func buildItemFilter(reporterID int, filter *models.ItemFilter) (string, []any) {
	conditions := []string{"1=1"}
	var args []any

	if reporterID > 0 {
		conditions = append(conditions, "i.reporter_id = ?")
		args = append(args, reporterID)
	}
	if filter.Type != "" && filter.Type != models.FilterAll {
		conditions = append(conditions, "i.item_type = ?")
		args = append(args, filter.Type)
	}
	if filter.Status != "" && filter.Status != models.FilterAll {
		conditions = append(conditions, "i.status = ?")
		args = append(args, filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, "(LOWER(i.title) LIKE ? OR LOWER(i.description) LIKE ?)")
		searchValue := "%" + strings.ToLower(search) + "%"
		args = append(args, searchValue, searchValue)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// List returns one page of items matching the filter and the total number of matches
func (r *itemRepository) List(ctx context.Context, filter *models.ItemFilter) ([]models.Item, int, error) {
	whereClause, args := buildItemFilter(0, filter)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM items i %s`, whereClause)

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("failed to count items", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	// Calculate offset
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT %s
		FROM items i
		JOIN users u ON u.id = i.reporter_id
		%s
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT ? OFFSET ?
	`, itemColumns, whereClause)

	pageArgs := append(append([]any{}, args...), filter.Limit, offset)

	items, err := r.queryItems(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ListByReporter returns all items reported by a user, newest first
func (r *itemRepository) ListByReporter(ctx context.Context, reporterID int, filter *models.ItemFilter) ([]models.Item, error) {
	whereClause, args := buildItemFilter(reporterID, filter)

	query := fmt.Sprintf(`
		SELECT %s
		FROM items i
		JOIN users u ON u.id = i.reporter_id
		%s
		ORDER BY i.created_at DESC, i.id DESC
	`, itemColumns, whereClause)

	return r.queryItems(ctx, query, args...)
}

func (r *itemRepository) queryItems(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query items", zap.Error(err))
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			r.logger.Error("failed to scan item", zap.Error(err))
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// Update replaces the editable content of an item
func (r *itemRepository) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET item_type = ?, title = ?, description = ?, location = ?, item_date = ?, contact = ?, photo = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		string(item.Type),
		item.Title,
		item.Description,
		item.Location,
		item.Date,
		item.Contact,
		item.Photo,
		now,
		item.ID,
	)
	if err != nil {
		r.logger.Error("failed to update item", zap.Error(err), zap.Int("itemId", item.ID))
		return fmt.Errorf("failed to update item: %w", err)
	}

	if err := checkAffected(result); err != nil {
		return err
	}

	item.UpdatedAt = now
	return nil
}

// UpdateStatus sets the status of an item
func (r *itemRepository) UpdateStatus(ctx context.Context, id int, status models.ItemStatus) error {
	query := `UPDATE items SET status = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("failed to update item status", zap.Error(err), zap.Int("itemId", id))
		return fmt.Errorf("failed to update item status: %w", err)
	}

	return checkAffected(result)
}

// Delete removes an item row
func (r *itemRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM items WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("failed to delete item", zap.Error(err), zap.Int("itemId", id))
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return checkAffected(result)
}

// checkAffected turns a write that matched no rows into a not found error.
// MySQL reports matched rather than changed rows because the DSN sets clientFoundRows.
func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.Errorf(models.ErrNotFound, "item not found")
	}
	return nil
}
