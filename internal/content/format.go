package content

import (
	"encoding/json"
	"time"
)

// DurationView is the JSON form of an entry duration.
type DurationView struct {
	Label   string  `json:"label"`
	IconURL *string `json:"iconUrl"`
}

// EntrySummary is the list and search projection of an entry.
type EntrySummary struct {
	ID               int64         `json:"id"`
	Title            string        `json:"title"`
	Slug             string        `json:"slug"`
	DescriptionShort *string       `json:"descriptionShort"`
	DescriptionLong  *string       `json:"descriptionLong"`
	Type             *string       `json:"type"`
	TileType         *string       `json:"tileType"`
	LikeCount        int64         `json:"likeCount"`
	ViewCount        int64         `json:"viewCount"`
	CoverURL         *string       `json:"coverUrl"`
	Duration         *DurationView `json:"duration"`
	Points           *int64        `json:"points"`
	Category         *string       `json:"category"`
	SubCategories    []string      `json:"subCategories"`
	Tags             []string      `json:"tags"`
	LikedByMe        bool          `json:"likedByMe"`
}

// RefView is an {id, name} reference to a related record.
type RefView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TagView is a tag in the detail projection.
type TagView struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Accent *string `json:"accent"`
}

// AuthorView is the author in the detail projection.
type AuthorView struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

// EntryDetail is the single-entry projection.
type EntryDetail struct {
	ID               int64           `json:"id"`
	Title            string          `json:"title"`
	Slug             string          `json:"slug"`
	DescriptionShort *string         `json:"descriptionShort"`
	DescriptionLong  *string         `json:"descriptionLong"`
	Type             *string         `json:"type"`
	TileType         *string         `json:"tileType"`
	RichText         *string         `json:"richText"`
	Body             json.RawMessage `json:"body"`
	LikeCount        int64           `json:"likeCount"`
	ViewCount        int64           `json:"viewCount"`
	CoverURL         *string         `json:"coverUrl"`
	Duration         *DurationView   `json:"duration"`
	Points           *int64          `json:"points"`
	Category         *RefView        `json:"category"`
	SubCategories    []RefView       `json:"subCategories"`
	Tags             []TagView       `json:"tags"`
	Author           *AuthorView     `json:"author"`
	Organization     *RefView        `json:"organization"`
	LikedByMe        bool            `json:"likedByMe"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// FormatSummaries projects entries for list and search responses. liked is
// the set of entry ids the caller has liked; a nil set marks nothing liked.
// The result is never nil.
func FormatSummaries(entries []Entry, liked map[int64]bool) []EntrySummary {
	out := make([]EntrySummary, 0, len(entries))
	for i := range entries {
		out = append(out, FormatSummary(&entries[i], liked[entries[i].ID]))
	}
	return out
}

// FormatSummary projects one entry for list and search responses.
func FormatSummary(e *Entry, likedByMe bool) EntrySummary {
	s := EntrySummary{
		ID:               e.ID,
		Title:            e.Title,
		Slug:             e.Slug,
		DescriptionShort: e.DescriptionShort,
		DescriptionLong:  e.DescriptionLong,
		Type:             e.Type,
		TileType:         e.TileType,
		LikeCount:        e.LikeCount,
		ViewCount:        e.ViewCount,
		CoverURL:         coverURL(e.Cover),
		Duration:         durationView(e.Duration),
		Points:           e.Points,
		SubCategories:    make([]string, 0, len(e.Subcategories)),
		Tags:             make([]string, 0, len(e.Tags)),
		LikedByMe:        likedByMe,
	}
	if e.Category != nil {
		name := e.Category.Name
		s.Category = &name
	}
	for _, sub := range e.Subcategories {
		s.SubCategories = append(s.SubCategories, sub.Name)
	}
	for _, t := range e.Tags {
		s.Tags = append(s.Tags, t.Name)
	}
	return s
}

// FormatDetail projects one entry for the detail response.
func FormatDetail(e *Entry, likedByMe bool) EntryDetail {
	d := EntryDetail{
		ID:               e.ID,
		Title:            e.Title,
		Slug:             e.Slug,
		DescriptionShort: e.DescriptionShort,
		DescriptionLong:  e.DescriptionLong,
		Type:             e.Type,
		TileType:         e.TileType,
		RichText:         e.RichText,
		Body:             e.Body,
		LikeCount:        e.LikeCount,
		ViewCount:        e.ViewCount,
		CoverURL:         coverURL(e.Cover),
		Duration:         durationView(e.Duration),
		Points:           e.Points,
		SubCategories:    make([]RefView, 0, len(e.Subcategories)),
		Tags:             make([]TagView, 0, len(e.Tags)),
		LikedByMe:        likedByMe,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
	if e.Category != nil {
		d.Category = &RefView{ID: e.Category.ID, Name: e.Category.Name}
	}
	for _, sub := range e.Subcategories {
		d.SubCategories = append(d.SubCategories, RefView{ID: sub.ID, Name: sub.Name})
	}
	for _, t := range e.Tags {
		d.Tags = append(d.Tags, TagView{ID: t.ID, Name: t.Name, Accent: t.Accent})
	}
	if e.Author != nil {
		d.Author = &AuthorView{ID: e.Author.ID, Name: e.Author.Name, AvatarURL: e.Author.AvatarURL}
	}
	if e.Organization != nil {
		d.Organization = &RefView{ID: e.Organization.ID, Name: e.Organization.Name}
	}
	return d
}

func coverURL(m *Media) *string {
	if m == nil || m.URL == "" {
		return nil
	}
	url := m.URL
	return &url
}

func durationView(d *Duration) *DurationView {
	if d == nil {
		return nil
	}
	return &DurationView{Label: d.Label, IconURL: d.IconURL}
}
