package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/GyroZepelix/library-cms/internal/auth"
	"github.com/GyroZepelix/library-cms/internal/database"
)

// Summary counts the records written by Run.
type Summary struct {
	Organizations int
	Categories    int
	Subcategories int
	Tags          int
	Authors       int
	Media         int
	Entries       int
	Users         int
}

// Run upserts every record in f inside one transaction. Re-running the same
// fixture updates records in place; entry relations are replaced with the
// fixture's lists.
func Run(ctx context.Context, db *database.DB, f *Fixture) (Summary, error) {
	var sum Summary

	err := db.WithTx(ctx, func(tx pgx.Tx) error {
		s := &seeder{tx: tx, ids: map[string]map[string]int64{}}

		steps := []struct {
			name  string
			count *int
			run   func(context.Context) (int, error)
		}{
			{"organizations", &sum.Organizations, func(ctx context.Context) (int, error) { return s.organizations(ctx, f.Organizations) }},
			{"categories", &sum.Categories, func(ctx context.Context) (int, error) { return s.categories(ctx, f.Categories) }},
			{"subcategories", &sum.Subcategories, func(ctx context.Context) (int, error) { return s.subcategories(ctx, f.Subcategories) }},
			{"tags", &sum.Tags, func(ctx context.Context) (int, error) { return s.tags(ctx, f.Tags) }},
			{"authors", &sum.Authors, func(ctx context.Context) (int, error) { return s.authors(ctx, f.Authors) }},
			{"media", &sum.Media, func(ctx context.Context) (int, error) { return s.media(ctx, f.Media) }},
			{"entries", &sum.Entries, func(ctx context.Context) (int, error) { return s.entries(ctx, f.Entries) }},
			{"users", &sum.Users, func(ctx context.Context) (int, error) { return s.users(ctx, f.Users) }},
		}

		for _, step := range steps {
			n, err := step.run(ctx)
			if err != nil {
				return fmt.Errorf("seeding %s: %w", step.name, err)
			}
			*step.count = n
			slog.Debug("seeded records", "kind", step.name, "count", n)
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}

type seeder struct {
	tx  pgx.Tx
	ids map[string]map[string]int64 // kind -> natural key -> id
}

func (s *seeder) remember(kind, key string, id int64) {
	if s.ids[kind] == nil {
		s.ids[kind] = map[string]int64{}
	}
	s.ids[kind][key] = id
}

// lookup resolves an optional reference; an empty key is a NULL relation.
func (s *seeder) lookup(kind, key string) *int64 {
	if key == "" {
		return nil
	}
	if id, ok := s.ids[kind][key]; ok {
		return &id
	}
	return nil
}

func (s *seeder) upsert(ctx context.Context, kind, key, sql string, args ...any) error {
	var id int64
	if err := s.tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return fmt.Errorf("upserting %q: %w", key, err)
	}
	s.remember(kind, key, id)
	return nil
}

func (s *seeder) organizations(ctx context.Context, orgs []Organization) (int, error) {
	for _, o := range orgs {
		err := s.upsert(ctx, "organization", o.Name,
			`INSERT INTO organizations (name) VALUES ($1)
			 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id`, o.Name)
		if err != nil {
			return 0, err
		}
	}
	return len(orgs), nil
}

func (s *seeder) categories(ctx context.Context, cats []Category) (int, error) {
	for _, c := range cats {
		err := s.upsert(ctx, "category", c.Name,
			`INSERT INTO categories (name, is_default) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET is_default = EXCLUDED.is_default RETURNING id`,
			c.Name, c.Default)
		if err != nil {
			return 0, err
		}
	}
	return len(cats), nil
}

func (s *seeder) subcategories(ctx context.Context, subs []Subcategory) (int, error) {
	for _, sc := range subs {
		err := s.upsert(ctx, "subcategory", sc.Name,
			`INSERT INTO subcategories (name, is_default, category_id) VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO UPDATE SET is_default = EXCLUDED.is_default, category_id = EXCLUDED.category_id
			 RETURNING id`,
			sc.Name, sc.Default, s.lookup("category", sc.Category))
		if err != nil {
			return 0, err
		}
	}
	return len(subs), nil
}

func (s *seeder) tags(ctx context.Context, tags []Tag) (int, error) {
	for _, t := range tags {
		err := s.upsert(ctx, "tag", t.Name,
			`INSERT INTO tags (name, accent) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET accent = EXCLUDED.accent RETURNING id`,
			t.Name, t.Accent)
		if err != nil {
			return 0, err
		}
	}
	return len(tags), nil
}

func (s *seeder) authors(ctx context.Context, authors []Author) (int, error) {
	for _, a := range authors {
		err := s.upsert(ctx, "author", a.Name,
			`INSERT INTO authors (name, avatar_url) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET avatar_url = EXCLUDED.avatar_url RETURNING id`,
			a.Name, a.AvatarURL)
		if err != nil {
			return 0, err
		}
	}
	return len(authors), nil
}

func (s *seeder) media(ctx context.Context, media []Media) (int, error) {
	for _, m := range media {
		err := s.upsert(ctx, "media", m.URL,
			`INSERT INTO media (url, alternative_text, mime_type) VALUES ($1, $2, $3)
			 ON CONFLICT (url) DO UPDATE SET alternative_text = EXCLUDED.alternative_text, mime_type = EXCLUDED.mime_type
			 RETURNING id`,
			m.URL, m.AlternativeText, m.MimeType)
		if err != nil {
			return 0, err
		}
	}
	return len(media), nil
}

func (s *seeder) entries(ctx context.Context, entries []Entry) (int, error) {
	for _, e := range entries {
		body, err := entryBody(e.Body)
		if err != nil {
			return 0, fmt.Errorf("entry %q: %w", e.Slug, err)
		}

		var durationLabel, durationIcon *string
		if e.Duration != nil {
			durationLabel, durationIcon = &e.Duration.Label, e.Duration.IconURL
		}

		err = s.upsert(ctx, "entry", e.Slug,
			`INSERT INTO library_contents (
				title, slug, description_short, description_long, type, tile_type, rich_text, body,
				like_count, view_count, points, duration_label, duration_icon_url,
				category_id, organization_id, cover_id, author_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			 ON CONFLICT (slug) DO UPDATE SET
				title = EXCLUDED.title,
				description_short = EXCLUDED.description_short,
				description_long = EXCLUDED.description_long,
				type = EXCLUDED.type,
				tile_type = EXCLUDED.tile_type,
				rich_text = EXCLUDED.rich_text,
				body = EXCLUDED.body,
				points = EXCLUDED.points,
				duration_label = EXCLUDED.duration_label,
				duration_icon_url = EXCLUDED.duration_icon_url,
				category_id = EXCLUDED.category_id,
				organization_id = EXCLUDED.organization_id,
				cover_id = EXCLUDED.cover_id,
				author_id = EXCLUDED.author_id,
				updated_at = now()
			 RETURNING id`,
			e.Title, e.Slug, e.DescriptionShort, e.DescriptionLong, e.Type, e.TileType, e.RichText, body,
			e.LikeCount, e.ViewCount, e.Points, durationLabel, durationIcon,
			s.lookup("category", e.Category), s.lookup("organization", e.Organization),
			s.lookup("media", e.Cover), s.lookup("author", e.Author))
		if err != nil {
			return 0, err
		}

		contentID := s.ids["entry"][e.Slug]
		if err := s.replaceLinks(ctx, "library_content_tags", "tag_id", contentID, s.resolveAll("tag", e.Tags)); err != nil {
			return 0, fmt.Errorf("entry %q tags: %w", e.Slug, err)
		}
		if err := s.replaceLinks(ctx, "library_content_subcategories", "subcategory_id", contentID, s.resolveAll("subcategory", e.Subcategories)); err != nil {
			return 0, fmt.Errorf("entry %q subcategories: %w", e.Slug, err)
		}
	}
	return len(entries), nil
}

func (s *seeder) resolveAll(kind string, keys []string) []int64 {
	ids := make([]int64, 0, len(keys))
	for _, k := range keys {
		if id := s.lookup(kind, k); id != nil {
			ids = append(ids, *id)
		}
	}
	return ids
}

// replaceLinks sets the rows of a join table for one entry. table and column
// are package constants, never user input.
func (s *seeder) replaceLinks(ctx context.Context, table, column string, contentID int64, ids []int64) error {
	if _, err := s.tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE content_id = $1`, table), contentID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := s.tx.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (content_id, %s) SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`, table, column),
		contentID, ids)
	return err
}

func (s *seeder) users(ctx context.Context, users []User) (int, error) {
	for _, u := range users {
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return 0, fmt.Errorf("hashing password for %q: %w", u.Email, err)
		}
		err = s.upsert(ctx, "user", u.Email,
			`INSERT INTO users (email, password_hash, organization_id) VALUES (lower($1), $2, $3)
			 ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, organization_id = EXCLUDED.organization_id
			 RETURNING id`,
			u.Email, hash, s.lookup("organization", u.Organization))
		if err != nil {
			return 0, err
		}
	}
	return len(users), nil
}

// entryBody encodes the YAML body blocks as JSON for the JSONB column.
func entryBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding body: %w", err)
	}
	return data, nil
}
