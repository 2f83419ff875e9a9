// Package seed loads library fixtures from YAML and upserts them into the
// database. Records reference each other by natural key: names, entry slugs,
// media URLs and user emails.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/GyroZepelix/library-cms/internal/validation"
)

// Fixture is the top-level document of a seed file.
type Fixture struct {
	Organizations []Organization `yaml:"organizations" validate:"dive"`
	Categories    []Category     `yaml:"categories" validate:"dive"`
	Subcategories []Subcategory  `yaml:"subcategories" validate:"dive"`
	Tags          []Tag          `yaml:"tags" validate:"dive"`
	Authors       []Author       `yaml:"authors" validate:"dive"`
	Media         []Media        `yaml:"media" validate:"dive"`
	Entries       []Entry        `yaml:"entries" validate:"dive"`
	Users         []User         `yaml:"users" validate:"dive"`
}

type Organization struct {
	Name string `yaml:"name" validate:"required"`
}

type Category struct {
	Name    string `yaml:"name" validate:"required"`
	Default bool   `yaml:"default"`
}

type Subcategory struct {
	Name     string `yaml:"name" validate:"required"`
	Default  bool   `yaml:"default"`
	Category string `yaml:"category"`
}

type Tag struct {
	Name   string  `yaml:"name" validate:"required"`
	Accent *string `yaml:"accent"`
}

type Author struct {
	Name      string  `yaml:"name" validate:"required"`
	AvatarURL *string `yaml:"avatar_url"`
}

type Media struct {
	URL             string  `yaml:"url" validate:"required"`
	AlternativeText *string `yaml:"alternative_text"`
	MimeType        *string `yaml:"mime_type"`
}

type Duration struct {
	Label   string  `yaml:"label" validate:"required"`
	IconURL *string `yaml:"icon_url"`
}

// Entry is a library entry. Relations name records defined elsewhere in the
// same fixture.
type Entry struct {
	Title            string    `yaml:"title" validate:"required"`
	Slug             string    `yaml:"slug" validate:"required"`
	DescriptionShort *string   `yaml:"description_short"`
	DescriptionLong  *string   `yaml:"description_long"`
	Type             *string   `yaml:"type"`
	TileType         *string   `yaml:"tile_type"`
	RichText         *string   `yaml:"rich_text"`
	Body             any       `yaml:"body"`
	Points           *int64    `yaml:"points" validate:"omitempty,gte=0"`
	LikeCount        int64     `yaml:"like_count" validate:"gte=0"`
	ViewCount        int64     `yaml:"view_count" validate:"gte=0"`
	Duration         *Duration `yaml:"duration"`
	Category         string    `yaml:"category"`
	Organization     string    `yaml:"organization"`
	Cover            string    `yaml:"cover"`
	Author           string    `yaml:"author"`
	Tags             []string  `yaml:"tags"`
	Subcategories    []string  `yaml:"subcategories"`
}

// User is a login account. Password is hashed before it is stored.
type User struct {
	Email        string `yaml:"email" validate:"required,email"`
	Password     string `yaml:"password" validate:"required,min=8"`
	Organization string `yaml:"organization"`
}

// LoadFile reads and validates a fixture file.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %q: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading fixture %q: %w", path, err)
	}
	return f, nil
}

// Parse decodes a fixture document. Unknown keys are rejected so typos do not
// silently drop data.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := validation.New().Validate(&f); err != nil {
		return nil, err
	}
	if err := f.checkReferences(); err != nil {
		return nil, err
	}
	return &f, nil
}

// checkReferences verifies natural keys are unique and that every relation
// names a record defined in the fixture.
func (f *Fixture) checkReferences() error {
	orgs, err := keySet("organizations", len(f.Organizations), func(i int) string { return f.Organizations[i].Name })
	if err != nil {
		return err
	}
	categories, err := keySet("categories", len(f.Categories), func(i int) string { return f.Categories[i].Name })
	if err != nil {
		return err
	}
	subcategories, err := keySet("subcategories", len(f.Subcategories), func(i int) string { return f.Subcategories[i].Name })
	if err != nil {
		return err
	}
	tags, err := keySet("tags", len(f.Tags), func(i int) string { return f.Tags[i].Name })
	if err != nil {
		return err
	}
	authors, err := keySet("authors", len(f.Authors), func(i int) string { return f.Authors[i].Name })
	if err != nil {
		return err
	}
	media, err := keySet("media", len(f.Media), func(i int) string { return f.Media[i].URL })
	if err != nil {
		return err
	}
	if _, err := keySet("entries", len(f.Entries), func(i int) string { return f.Entries[i].Slug }); err != nil {
		return err
	}
	if _, err := keySet("users", len(f.Users), func(i int) string { return f.Users[i].Email }); err != nil {
		return err
	}

	for _, s := range f.Subcategories {
		if err := ref(categories, "subcategory "+s.Name, "category", s.Category); err != nil {
			return err
		}
	}
	for _, u := range f.Users {
		if err := ref(orgs, "user "+u.Email, "organization", u.Organization); err != nil {
			return err
		}
	}
	for _, e := range f.Entries {
		owner := "entry " + e.Slug
		for _, check := range []struct {
			keys  map[string]bool
			field string
			name  string
		}{
			{categories, "category", e.Category},
			{orgs, "organization", e.Organization},
			{media, "cover", e.Cover},
			{authors, "author", e.Author},
		} {
			if err := ref(check.keys, owner, check.field, check.name); err != nil {
				return err
			}
		}
		for _, t := range e.Tags {
			if err := ref(tags, owner, "tags", t); err != nil {
				return err
			}
		}
		for _, s := range e.Subcategories {
			if err := ref(subcategories, owner, "subcategories", s); err != nil {
				return err
			}
		}
	}
	return nil
}

func keySet(kind string, n int, key func(int) string) (map[string]bool, error) {
	keys := make(map[string]bool, n)
	for i := range n {
		k := key(i)
		if keys[k] {
			return nil, fmt.Errorf("duplicate %s key %q", kind, k)
		}
		keys[k] = true
	}
	return keys, nil
}

func ref(keys map[string]bool, owner, field, name string) error {
	if name == "" || keys[name] {
		return nil
	}
	return fmt.Errorf("%s: %s %q is not defined in the fixture", owner, field, name)
}
