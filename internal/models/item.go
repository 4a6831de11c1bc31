package models

import (
	"slices"
	"time"
)

// ItemType is the kind of report: something lost or something found
type ItemType string

const (
	ItemTypeLost  ItemType = "lost"
	ItemTypeFound ItemType = "found"
)

// ItemStatus is the lifecycle status of an item
type ItemStatus string

const (
	StatusOpen    ItemStatus = "dicari"    // still searching
	StatusMatched ItemStatus = "ditemukan" // a match was found
	StatusClaimed ItemStatus = "diclaim"   // returned to the owner
)

// FilterAll disables a type or status filter
const FilterAll = "all"

var (
	itemTypes    = []ItemType{ItemTypeLost, ItemTypeFound}
	itemStatuses = []ItemStatus{StatusOpen, StatusMatched, StatusClaimed}
)

// Valid reports whether t is a known item type
func (t ItemType) Valid() bool {
	return slices.Contains(itemTypes, t)
}

// Valid reports whether s is a known item status
func (s ItemStatus) Valid() bool {
	return slices.Contains(itemStatuses, s)
}

// Item represents a lost or found item report
type Item struct {
	ID          int        `json:"id"`
	Type        ItemType   `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Date        *time.Time `json:"date"`
	Status      ItemStatus `json:"status"`
	Contact     string     `json:"contact"`
	Photo       *string    `json:"photo"`
	ReporterID  int        `json:"reporter_id"`
	Reporter    string     `json:"reporter"` // username resolved from reporter_id
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ItemRequest carries the editable fields of an item
type ItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"item_type"`
	TypeAlias   string `json:"type"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Contact     string `json:"contact_info"`
}

// ItemType returns the requested type, accepting "type" when "item_type" is absent
func (r *ItemRequest) ItemType() string {
	if r.Type != "" {
		return r.Type
	}
	return r.TypeAlias
}

// UpdateStatusRequest represents a status change request
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ItemFilter narrows item listings. Empty or "all" Type and Status mean no filter.
type ItemFilter struct {
	Type   string
	Status string
	Search string
	Page   int
	Limit  int
}

// Pagination describes a page of a listing
type Pagination struct {
	Total       int `json:"total"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// ItemListResponse is a paginated page of items
type ItemListResponse struct {
	Success    bool       `json:"success"`
	Data       []Item     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ItemResponse wraps a single item
type ItemResponse struct {
	Success bool  `json:"success"`
	Data    *Item `json:"data"`
}

// ItemsResponse wraps an unpaginated list of items
type ItemsResponse struct {
	Success bool   `json:"success"`
	Data    []Item `json:"data"`
}
