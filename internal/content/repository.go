package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/GyroZepelix/library-cms/internal/database"
	"github.com/GyroZepelix/library-cms/internal/search"
)

// Repository reads library entries and applies counter updates in PostgreSQL.
type Repository struct {
	db *database.DB
}

// NewRepository creates a new content Repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// FindEntries returns the entries matching opts, ordered by id, with the
// requested relations loaded. Tags and subcategories are fetched in one
// batched query each for the whole result.
func (r *Repository) FindEntries(ctx context.Context, opts FindOptions) ([]Entry, error) {
	sql, args := buildFindQuery(opts)

	rows, err := r.db.Pool().Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("scanning entries: %w", err)
	}

	if err := r.loadManyRelations(ctx, entries, opts.Include); err != nil {
		return nil, err
	}
	return entries, nil
}

// FindEntry returns a single entry by id or ErrNotFound.
func (r *Repository) FindEntry(ctx context.Context, id int64, include Include) (*Entry, error) {
	entries, err := r.FindEntries(ctx, FindOptions{IDs: []int64{id}, Include: include})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return &entries[0], nil
}

// FindCategory returns a category by id or ErrNotFound.
func (r *Repository) FindCategory(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := r.db.Pool().QueryRow(ctx,
		`SELECT id, name, is_default FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.IsDefault)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying category: %w", err)
	}
	return &c, nil
}

// FindSubcategories returns the subcategories among ids that exist.
func (r *Repository) FindSubcategories(ctx context.Context, ids []int64) ([]Subcategory, error) {
	rows, err := r.db.Pool().Query(ctx,
		`SELECT id, name, is_default FROM subcategories WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying subcategories: %w", err)
	}
	subs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Subcategory, error) {
		var s Subcategory
		err := row.Scan(&s.ID, &s.Name, &s.IsDefault)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning subcategories: %w", err)
	}
	return subs, nil
}

// ContentIDsByTagName returns the distinct ids of entries tagged with a tag
// whose name contains query, case-insensitively.
func (r *Repository) ContentIDsByTagName(ctx context.Context, query string) ([]int64, error) {
	rows, err := r.db.Pool().Query(ctx, contentIDsByTagNameQuery, search.ContainsPattern(query))
	if err != nil {
		return nil, fmt.Errorf("querying tagged entries: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scanning tagged entries: %w", err)
	}
	return ids, nil
}

// IncrementCounter adds one to counter on entry id and returns the new
// value. A missing entry yields ErrNotFound and writes nothing.
func (r *Repository) IncrementCounter(ctx context.Context, id int64, counter Counter) (int64, error) {
	sql, err := incrementCounterQuery(counter)
	if err != nil {
		return 0, err
	}

	var value int64
	err = r.db.Pool().QueryRow(ctx, sql, id).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("incrementing %s: %w", counter, err)
	}
	return value, nil
}

func (r *Repository) loadManyRelations(ctx context.Context, entries []Entry, include Include) error {
	if len(entries) == 0 || !(include.Has(IncludeTags) || include.Has(IncludeSubcategories)) {
		return nil
	}

	ids, index := newEntryIndex(entries)

	if include.Has(IncludeTags) {
		rows, err := r.db.Pool().Query(ctx, tagsByContentQuery, ids)
		if err != nil {
			return fmt.Errorf("querying entry tags: %w", err)
		}
		var contentID int64
		var tag Tag
		_, err = pgx.ForEachRow(rows, []any{&contentID, &tag.ID, &tag.Name, &tag.Accent}, func() error {
			index.addTag(contentID, tag)
			return nil
		})
		if err != nil {
			return fmt.Errorf("scanning entry tags: %w", err)
		}
	}

	if include.Has(IncludeSubcategories) {
		rows, err := r.db.Pool().Query(ctx, subcategoriesByContentQuery, ids)
		if err != nil {
			return fmt.Errorf("querying entry subcategories: %w", err)
		}
		var contentID int64
		var sub Subcategory
		_, err = pgx.ForEachRow(rows, []any{&contentID, &sub.ID, &sub.Name, &sub.IsDefault}, func() error {
			index.addSubcategory(contentID, sub)
			return nil
		})
		if err != nil {
			return fmt.Errorf("scanning entry subcategories: %w", err)
		}
	}

	return nil
}

// scanEntry scans one row in the layout produced by buildFindQuery.
func scanEntry(row pgx.CollectableRow) (Entry, error) {
	var (
		e                        Entry
		durationLabel, iconURL   *string
		body                     []byte
		coverID                  *int64
		coverURL, coverAlt       *string
		categoryID               *int64
		categoryName             *string
		categoryDefault          *bool
		authorID                 *int64
		authorName, authorAvatar *string
		orgID                    *int64
		orgName                  *string
		createdAt, updatedAt     time.Time
	)

	err := row.Scan(
		&e.ID, &e.Title, &e.Slug, &e.DescriptionShort, &e.DescriptionLong,
		&e.Type, &e.TileType, &e.LikeCount, &e.ViewCount,
		&e.Points, &durationLabel, &iconURL, &createdAt, &updatedAt,
		&e.RichText, &body,
		&coverID, &coverURL, &coverAlt,
		&categoryID, &categoryName, &categoryDefault,
		&authorID, &authorName, &authorAvatar,
		&orgID, &orgName,
	)
	if err != nil {
		return Entry{}, err
	}

	e.CreatedAt, e.UpdatedAt = createdAt, updatedAt
	if len(body) > 0 {
		e.Body = body
	}
	if durationLabel != nil && *durationLabel != "" {
		e.Duration = &Duration{Label: *durationLabel, IconURL: iconURL}
	}
	if coverID != nil && coverURL != nil {
		e.Cover = &Media{ID: *coverID, URL: *coverURL, AlternativeText: coverAlt}
	}
	if categoryID != nil && categoryName != nil {
		e.Category = &Category{ID: *categoryID, Name: *categoryName, IsDefault: categoryDefault != nil && *categoryDefault}
	}
	if authorID != nil && authorName != nil {
		e.Author = &Author{ID: *authorID, Name: *authorName, AvatarURL: authorAvatar}
	}
	if orgID != nil && orgName != nil {
		e.Organization = &Organization{ID: *orgID, Name: *orgName}
	}

	return e, nil
}

// entryIndex points at entries by id so batched relation rows can be
// attached in place.
type entryIndex map[int64]*Entry

func newEntryIndex(entries []Entry) ([]int64, entryIndex) {
	ids := make([]int64, len(entries))
	index := make(entryIndex, len(entries))
	for i := range entries {
		ids[i] = entries[i].ID
		index[entries[i].ID] = &entries[i]
	}
	return ids, index
}

func (ix entryIndex) addTag(contentID int64, tag Tag) {
	if e := ix[contentID]; e != nil {
		e.Tags = append(e.Tags, tag)
	}
}

func (ix entryIndex) addSubcategory(contentID int64, sub Subcategory) {
	if e := ix[contentID]; e != nil {
		e.Subcategories = append(e.Subcategories, sub)
	}
}
