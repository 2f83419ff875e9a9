package content

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/GyroZepelix/library-cms/internal/activity"
)

// fakeStore is an in-memory Store that applies the same filter semantics as
// the SQL built by buildFindQuery.
type fakeStore struct {
	mu            sync.Mutex
	entries       []Entry
	categories    map[int64]Category
	subcategories map[int64]Subcategory
	findCalls     []FindOptions
	tagLookups    int
	increments    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories:    map[int64]Category{},
		subcategories: map[int64]Subcategory{},
	}
}

func (f *fakeStore) FindCategory(_ context.Context, id int64) (*Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (f *fakeStore) FindSubcategories(_ context.Context, ids []int64) ([]Subcategory, error) {
	var out []Subcategory
	for _, id := range ids {
		if s, ok := f.subcategories[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) FindEntries(_ context.Context, opts FindOptions) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls = append(f.findCalls, opts)

	var out []Entry
	for _, e := range f.entries {
		if matchesFilter(e, opts) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b Entry) int { return int(a.ID - b.ID) })
	return out, nil
}

func (f *fakeStore) FindEntry(ctx context.Context, id int64, include Include) (*Entry, error) {
	entries, _ := f.FindEntries(ctx, FindOptions{IDs: []int64{id}, Include: include})
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return &entries[0], nil
}

func (f *fakeStore) ContentIDsByTagName(_ context.Context, query string) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagLookups++

	var ids []int64
	for _, e := range f.entries {
		for _, t := range e.Tags {
			if containsFold(t.Name, query) {
				ids = append(ids, e.ID)
				break
			}
		}
	}
	return ids, nil
}

func (f *fakeStore) IncrementCounter(_ context.Context, id int64, counter Counter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.entries {
		if f.entries[i].ID != id {
			continue
		}
		f.increments++
		if counter == LikeCounter {
			f.entries[i].LikeCount++
			return f.entries[i].LikeCount, nil
		}
		f.entries[i].ViewCount++
		return f.entries[i].ViewCount, nil
	}
	return 0, ErrNotFound
}

func matchesFilter(e Entry, opts FindOptions) bool {
	flt := opts.Filter
	if flt.CategoryID != nil && (e.Category == nil || e.Category.ID != *flt.CategoryID) {
		return false
	}
	if len(flt.SubcategoryIDs) > 0 && !slices.ContainsFunc(e.Subcategories, func(s Subcategory) bool {
		return slices.Contains(flt.SubcategoryIDs, s.ID)
	}) {
		return false
	}
	if len(flt.TagIDs) > 0 && !slices.ContainsFunc(e.Tags, func(t Tag) bool {
		return slices.Contains(flt.TagIDs, t.ID)
	}) {
		return false
	}
	if flt.OrganizationID != nil && (e.Organization == nil || e.Organization.ID != *flt.OrganizationID) {
		return false
	}
	if len(opts.IDs) > 0 && !slices.Contains(opts.IDs, e.ID) {
		return false
	}
	if opts.Search != "" {
		fields := []*string{&e.Title, &e.Slug, e.DescriptionShort, e.DescriptionLong, e.TileType, e.Type, e.RichText}
		if !slices.ContainsFunc(fields, func(s *string) bool { return s != nil && containsFold(*s, opts.Search) }) {
			return false
		}
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

type fakeLikes struct {
	liked map[int64][]int64
	calls int
}

func (f *fakeLikes) LikedContentIDs(_ context.Context, userID int64) ([]int64, error) {
	f.calls++
	return f.liked[userID], nil
}

type recordingActivity struct {
	events []activity.Event
}

func (r *recordingActivity) Log(_ context.Context, event activity.Event) {
	r.events = append(r.events, event)
}

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }
