package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemType_Valid(t *testing.T) {
	assert.True(t, ItemTypeLost.Valid())
	assert.True(t, ItemTypeFound.Valid())
	assert.False(t, ItemType("stolen").Valid())
	assert.False(t, ItemType("").Valid())
	assert.False(t, ItemType("LOST").Valid())
}

func TestItemStatus_Valid(t *testing.T) {
	for _, status := range []ItemStatus{StatusOpen, StatusMatched, StatusClaimed} {
		assert.True(t, status.Valid(), status)
	}
	assert.False(t, ItemStatus("closed").Valid())
	assert.False(t, ItemStatus(FilterAll).Valid())
}

func TestItemRequest_ItemType(t *testing.T) {
	tests := []struct {
		name     string
		request  ItemRequest
		expected string
	}{
		{name: "item_type field", request: ItemRequest{Type: "lost"}, expected: "lost"},
		{name: "type alias", request: ItemRequest{TypeAlias: "found"}, expected: "found"},
		{name: "item_type wins", request: ItemRequest{Type: "lost", TypeAlias: "found"}, expected: "lost"},
		{name: "neither", request: ItemRequest{}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.request.ItemType())
		})
	}
}

func TestUser_IsAdmin(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}

func TestErrors(t *testing.T) {
	t.Run("Errorf", func(t *testing.T) {
		err := Errorf(ErrValidation, "limit must be between 1 and %d", 100)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.False(t, errors.Is(err, ErrNotFound))
		assert.Equal(t, "limit must be between 1 and 100", err.Error())
		assert.Equal(t, "limit must be between 1 and 100", Message(err))
	})

	t.Run("Wrap keeps cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Wrap(ErrStorage, cause, "failed to store photo")
		assert.True(t, errors.Is(err, ErrStorage))
		assert.True(t, errors.Is(err, cause))
		assert.Equal(t, "failed to store photo: disk full", err.Error())
		assert.Equal(t, "failed to store photo", Message(err))
	})

	t.Run("wrapped again", func(t *testing.T) {
		err := fmt.Errorf("update: %w", Errorf(ErrForbidden, "not authorized to modify this item"))
		assert.True(t, errors.Is(err, ErrForbidden))
		assert.Equal(t, "not authorized to modify this item", Message(err))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, "boom", Message(errors.New("boom")))
	})
}
