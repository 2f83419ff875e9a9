package content

import (
	"fmt"
	"strings"

	"github.com/GyroZepelix/library-cms/internal/search"
)

// searchColumns are the entry columns matched by free-text search.
var searchColumns = []string{
	"e.title",
	"e.slug",
	"e.description_short",
	"e.description_long",
	"e.tile_type",
	"e.type",
	"e.rich_text",
}

// baseColumns are always projected. The relation columns that follow keep a
// fixed position and are selected as typed NULLs when not included, so one
// scan layout serves every Include combination.
const baseColumns = `e.id, e.title, e.slug, e.description_short, e.description_long,
	e.type, e.tile_type, COALESCE(e.like_count, 0), COALESCE(e.view_count, 0),
	e.points, e.duration_label, e.duration_icon_url, e.created_at, e.updated_at`

type relation struct {
	include Include
	columns string
	nulls   string
	join    string
}

var singleRelations = []relation{
	{
		include: IncludeBody,
		columns: "e.rich_text, e.body",
		nulls:   "NULL::text, NULL::jsonb",
	},
	{
		include: IncludeCover,
		columns: "cv.id, cv.url, cv.alternative_text",
		nulls:   "NULL::bigint, NULL::text, NULL::text",
		join:    "LEFT JOIN media cv ON cv.id = e.cover_id",
	},
	{
		include: IncludeCategory,
		columns: "c.id, c.name, c.is_default",
		nulls:   "NULL::bigint, NULL::text, NULL::boolean",
		join:    "LEFT JOIN categories c ON c.id = e.category_id",
	},
	{
		include: IncludeAuthor,
		columns: "a.id, a.name, a.avatar_url",
		nulls:   "NULL::bigint, NULL::text, NULL::text",
		join:    "LEFT JOIN authors a ON a.id = e.author_id",
	},
	{
		include: IncludeOrganization,
		columns: "o.id, o.name",
		nulls:   "NULL::bigint, NULL::text",
		join:    "LEFT JOIN organizations o ON o.id = e.organization_id",
	},
}

// buildFindQuery builds a parameterised SELECT for opts. Filters are ANDed;
// results are ordered by id ascending.
func buildFindQuery(opts FindOptions) (string, []any) {
	cols := []string{baseColumns}
	var joins []string
	for _, rel := range singleRelations {
		if opts.Include.Has(rel.include) {
			cols = append(cols, rel.columns)
			if rel.join != "" {
				joins = append(joins, rel.join)
			}
		} else {
			cols = append(cols, rel.nulls)
		}
	}

	where, args := buildFindWhere(opts)

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(" FROM library_contents e")
	for _, j := range joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	b.WriteString(" ORDER BY e.id ASC")

	return b.String(), args
}

// buildFindWhere returns the WHERE body (without the keyword) and its args.
func buildFindWhere(opts FindOptions) (string, []any) {
	var conditions []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	f := opts.Filter
	if f.CategoryID != nil {
		conditions = append(conditions, "e.category_id = "+next(*f.CategoryID))
	}
	if len(f.SubcategoryIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM library_content_subcategories lcs WHERE lcs.content_id = e.id AND lcs.subcategory_id = ANY(%s))",
			next(f.SubcategoryIDs)))
	}
	if len(f.TagIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM library_content_tags lct WHERE lct.content_id = e.id AND lct.tag_id = ANY(%s))",
			next(f.TagIDs)))
	}
	if f.OrganizationID != nil {
		conditions = append(conditions, "e.organization_id = "+next(*f.OrganizationID))
	}
	if len(opts.IDs) > 0 {
		conditions = append(conditions, "e.id = ANY("+next(opts.IDs)+")")
	}
	if clause, searchArgs := search.BuildContainsClause(opts.Search, searchColumns, len(args)+1); clause != "" {
		conditions = append(conditions, clause)
		args = append(args, searchArgs...)
	}

	return strings.Join(conditions, " AND "), args
}

const tagsByContentQuery = `SELECT lct.content_id, t.id, t.name, t.accent
	FROM library_content_tags lct
	JOIN tags t ON t.id = lct.tag_id
	WHERE lct.content_id = ANY($1)
	ORDER BY lct.content_id, t.name, t.id`

const subcategoriesByContentQuery = `SELECT lcs.content_id, s.id, s.name, s.is_default
	FROM library_content_subcategories lcs
	JOIN subcategories s ON s.id = lcs.subcategory_id
	WHERE lcs.content_id = ANY($1)
	ORDER BY lcs.content_id, s.name, s.id`

// contentIDsByTagNameQuery collects the ids of entries carrying a tag whose
// name contains the search text.
const contentIDsByTagNameQuery = `SELECT DISTINCT lct.content_id
	FROM library_content_tags lct
	JOIN tags t ON t.id = lct.tag_id
	WHERE t.name ILIKE $1
	ORDER BY lct.content_id`

// incrementCounterQuery returns the atomic increment statement for counter.
func incrementCounterQuery(counter Counter) (string, error) {
	switch counter {
	case LikeCounter, ViewCounter:
	default:
		return "", fmt.Errorf("unknown counter %q", counter)
	}
	col := string(counter)
	return fmt.Sprintf(
		"UPDATE library_contents SET %[1]s = COALESCE(%[1]s, 0) + 1 WHERE id = $1 RETURNING %[1]s", col), nil
}
