// Package guard decides whether a user may change an item
package guard

import "github.com/returnpoint/backend/internal/models"

// CanMutate reports whether actor may update, change the status of, or delete item.
// Admins may mutate any item; everyone else only items they reported.
func CanMutate(item *models.Item, actor *models.User) bool {
	if item == nil || actor == nil {
		return false
	}
	return actor.Role == models.RoleAdmin || item.ReporterID == actor.ID
}
