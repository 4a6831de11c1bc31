package guard

import (
	"math/rand"
	"testing"

	"github.com/returnpoint/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanMutate(t *testing.T) {
	item := &models.Item{ID: 1, ReporterID: 10, Reporter: "alice"}

	tests := []struct {
		name     string
		item     *models.Item
		actor    *models.User
		expected bool
	}{
		{
			name:     "owner",
			item:     item,
			actor:    &models.User{ID: 10, Username: "alice", Role: models.RoleUser},
			expected: true,
		},
		{
			name:     "admin who is not the owner",
			item:     item,
			actor:    &models.User{ID: 20, Username: "root", Role: models.RoleAdmin},
			expected: true,
		},
		{
			name:     "other user",
			item:     item,
			actor:    &models.User{ID: 30, Username: "bob", Role: models.RoleUser},
			expected: false,
		},
		{
			name:     "other user who took the owner's old username",
			item:     item,
			actor:    &models.User{ID: 31, Username: "alice", Role: models.RoleUser},
			expected: false,
		},
		{
			name:     "unknown role",
			item:     item,
			actor:    &models.User{ID: 32, Role: models.Role("moderator")},
			expected: false,
		},
		{
			name:     "nil actor",
			item:     item,
			actor:    nil,
			expected: false,
		},
		{
			name:     "nil item",
			item:     nil,
			actor:    &models.User{ID: 10, Role: models.RoleAdmin},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanMutate(tt.item, tt.actor))
		})
	}
}

// TestCanMutate_Property checks the owner-or-admin rule over many generated pairs
func TestCanMutate_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	roles := []models.Role{models.RoleUser, models.RoleAdmin}

	for i := 0; i < 1000; i++ {
		item := &models.Item{ID: i, ReporterID: rng.Intn(5) + 1}
		actor := &models.User{ID: rng.Intn(5) + 1, Role: roles[rng.Intn(len(roles))]}

		expected := actor.Role == models.RoleAdmin || actor.ID == item.ReporterID
		assert.Equal(t, expected, CanMutate(item, actor), "item reporter %d, actor %d (%s)", item.ReporterID, actor.ID, actor.Role)
	}
}
