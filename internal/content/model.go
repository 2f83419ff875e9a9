// Package content implements the library content API: filter parsing,
// default-category resolution, entry queries, free-text search with a
// tag-name fallback, like/view counters and the JSON projections served to
// clients.
package content

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a library entry does not exist.
var ErrNotFound = errors.New("library entry not found")

// Entry is a library content entry with whichever relations were requested.
type Entry struct {
	ID               int64
	Title            string
	Slug             string
	DescriptionShort *string
	DescriptionLong  *string
	Type             *string
	TileType         *string
	RichText         *string
	Body             json.RawMessage
	LikeCount        int64
	ViewCount        int64
	Points           *int64
	Duration         *Duration
	Cover            *Media
	Category         *Category
	Subcategories    []Subcategory
	Tags             []Tag
	Author           *Author
	Organization     *Organization
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Duration is the display duration of an entry, e.g. "10 min".
type Duration struct {
	Label   string
	IconURL *string
}

// Media is an uploaded file referenced by an entry.
type Media struct {
	ID              int64
	URL             string
	AlternativeText *string
}

// Category groups entries. A default category means "no filter".
type Category struct {
	ID        int64
	Name      string
	IsDefault bool
}

// Subcategory refines categories. A default subcategory means "no filter".
type Subcategory struct {
	ID        int64
	Name      string
	IsDefault bool
}

// Tag labels entries; Accent is a display hint such as a colour.
type Tag struct {
	ID     int64
	Name   string
	Accent *string
}

// Author wrote an entry.
type Author struct {
	ID        int64
	Name      string
	AvatarURL *string
}

// Organization owns entries and scopes likes.
type Organization struct {
	ID   int64
	Name string
}

// Include selects which relations a query populates.
type Include uint8

const (
	IncludeCover Include = 1 << iota
	IncludeCategory
	IncludeSubcategories
	IncludeTags
	IncludeAuthor
	IncludeOrganization
	IncludeBody // rich text and body blocks
)

const (
	// ListIncludes is what list and search responses need.
	ListIncludes = IncludeCover | IncludeCategory | IncludeSubcategories | IncludeTags
	// DetailIncludes is what the single-entry response needs.
	DetailIncludes = ListIncludes | IncludeAuthor | IncludeOrganization | IncludeBody
)

// Has reports whether every relation in other is included.
func (i Include) Has(other Include) bool {
	return i&other == other
}

// EntryFilter is a conjunction of attribute filters. Nil or empty fields do
// not constrain the result.
type EntryFilter struct {
	CategoryID     *int64
	SubcategoryIDs []int64
	TagIDs         []int64
	OrganizationID *int64
}

// FindOptions describes one fetch of entries.
type FindOptions struct {
	Filter  EntryFilter
	Search  string  // case-insensitive substring over the searchable columns
	IDs     []int64 // restrict to these entry ids when non-empty
	Include Include
}

// Counter names a per-entry counter column.
type Counter string

const (
	LikeCounter Counter = "like_count"
	ViewCounter Counter = "view_count"
)
