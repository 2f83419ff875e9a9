package content

import (
	"context"
	"errors"
	"fmt"
)

// CategoryLookup fetches categories and subcategories by id.
type CategoryLookup interface {
	FindCategory(ctx context.Context, id int64) (*Category, error)
	FindSubcategories(ctx context.Context, ids []int64) ([]Subcategory, error)
}

// Resolver turns requested category/subcategory ids into effective filters.
// Default categories and subcategories mean "match everything", so they
// resolve to no filter at all.
type Resolver struct {
	lookup CategoryLookup
}

// NewResolver creates a Resolver.
func NewResolver(lookup CategoryLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// ResolveCategory returns the category id to filter on, or nil when id is
// absent, unknown or a default category.
func (r *Resolver) ResolveCategory(ctx context.Context, id *int64) (*int64, error) {
	if id == nil {
		return nil, nil
	}

	cat, err := r.lookup.FindCategory(ctx, *id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving category %d: %w", *id, err)
	}
	if cat.IsDefault {
		return nil, nil
	}

	resolved := cat.ID
	return &resolved, nil
}

// ResolveSubcategories returns the subcategory ids to filter on. Unknown ids
// are dropped; a default subcategory anywhere in the request drops the whole
// filter. Nil means no filter.
func (r *Resolver) ResolveSubcategories(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	subs, err := r.lookup.FindSubcategories(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving subcategories: %w", err)
	}

	var resolved []int64
	for _, s := range subs {
		if s.IsDefault {
			return nil, nil
		}
		resolved = append(resolved, s.ID)
	}

	return resolved, nil
}

// Resolve builds the effective EntryFilter for a request. Tag and
// organization ids pass through unchanged.
func (r *Resolver) Resolve(ctx context.Context, p ListParams) (EntryFilter, error) {
	category, err := r.ResolveCategory(ctx, p.CategoryID)
	if err != nil {
		return EntryFilter{}, err
	}

	subcategories, err := r.ResolveSubcategories(ctx, p.SubcategoryIDs)
	if err != nil {
		return EntryFilter{}, err
	}

	return EntryFilter{
		CategoryID:     category,
		SubcategoryIDs: subcategories,
		TagIDs:         p.TagIDs,
		OrganizationID: p.OrganizationID,
	}, nil
}
