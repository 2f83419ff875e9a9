package content

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/GyroZepelix/library-cms/internal/activity"
	"github.com/GyroZepelix/library-cms/internal/search"
	"github.com/GyroZepelix/library-cms/internal/validation"
)

// Store is the persistence interface used by Service.
type Store interface {
	CategoryLookup
	FindEntries(ctx context.Context, opts FindOptions) ([]Entry, error)
	FindEntry(ctx context.Context, id int64, include Include) (*Entry, error)
	ContentIDsByTagName(ctx context.Context, query string) ([]int64, error)
	IncrementCounter(ctx context.Context, id int64, counter Counter) (int64, error)
}

// LikedSource reports which entries a user has liked.
type LikedSource interface {
	LikedContentIDs(ctx context.Context, userID int64) ([]int64, error)
}

// ActivityLogger records counter activity.
type ActivityLogger interface {
	Log(ctx context.Context, event activity.Event)
}

// ListParams are the requested, unresolved attribute filters.
type ListParams struct {
	CategoryID     *int64
	SubcategoryIDs []int64
	TagIDs         []int64
	OrganizationID *int64
}

// Service implements listing, search, detail and counter operations on
// library entries.
type Service struct {
	store    Store
	resolver *Resolver
	likes    LikedSource
	activity ActivityLogger
}

// NewService creates a content Service. likes and activity may be nil.
func NewService(store Store, likes LikedSource, activity ActivityLogger) *Service {
	return &Service{
		store:    store,
		resolver: NewResolver(store),
		likes:    likes,
		activity: activity,
	}
}

// List returns the entries matching p. viewerID is the caller's user id, or
// zero for anonymous callers.
func (s *Service) List(ctx context.Context, p ListParams, viewerID int64) ([]EntrySummary, error) {
	filter, err := s.resolver.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.FindEntries(ctx, FindOptions{Filter: filter, Include: ListIncludes})
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	liked, err := s.likedSet(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return FormatSummaries(entries, liked), nil
}

// Search returns entries whose searchable text contains query, subject to
// the attribute filters in p. When nothing matches directly, entries tagged
// with a tag whose name contains query are returned instead.
func (s *Service) Search(ctx context.Context, query string, p ListParams, viewerID int64) ([]EntrySummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validation.NewError("query", "is required")
	}
	if utf8.RuneCountInString(query) > search.MaxQueryLength {
		return nil, validation.NewError("query", fmt.Sprintf("must be at most %d characters", search.MaxQueryLength))
	}

	filter, err := s.resolver.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	entries, err := s.searchEntries(ctx, query, filter)
	if err != nil {
		return nil, err
	}

	liked, err := s.likedSet(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return FormatSummaries(entries, liked), nil
}

func (s *Service) searchEntries(ctx context.Context, query string, filter EntryFilter) ([]Entry, error) {
	entries, err := s.store.FindEntries(ctx, FindOptions{Filter: filter, Search: query, Include: ListIncludes})
	if err != nil {
		return nil, fmt.Errorf("searching entries: %w", err)
	}
	if len(entries) > 0 {
		return entries, nil
	}

	ids, err := s.store.ContentIDsByTagName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("searching tags: %w", err)
	}
	if len(ids) == 0 {
		return []Entry{}, nil
	}

	entries, err = s.store.FindEntries(ctx, FindOptions{Filter: filter, IDs: ids, Include: ListIncludes})
	if err != nil {
		return nil, fmt.Errorf("fetching tagged entries: %w", err)
	}
	return entries, nil
}

// Get returns one entry with its full detail projection.
func (s *Service) Get(ctx context.Context, id int64, viewerID int64) (*EntryDetail, error) {
	entry, err := s.store.FindEntry(ctx, id, DetailIncludes)
	if err != nil {
		return nil, err
	}

	liked, err := s.likedSet(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	detail := FormatDetail(entry, liked[entry.ID])
	return &detail, nil
}

// IncrementLikeCount adds one to the entry's like counter without any
// per-user bookkeeping and returns the new value.
func (s *Service) IncrementLikeCount(ctx context.Context, id int64, actorID int64) (int64, error) {
	return s.increment(ctx, id, actorID, LikeCounter, activity.ActionIncrementLike)
}

// IncrementViewCount adds one to the entry's view counter and returns the
// new value.
func (s *Service) IncrementViewCount(ctx context.Context, id int64, actorID int64) (int64, error) {
	return s.increment(ctx, id, actorID, ViewCounter, activity.ActionIncrementView)
}

func (s *Service) increment(ctx context.Context, id, actorID int64, counter Counter, action string) (int64, error) {
	value, err := s.store.IncrementCounter(ctx, id, counter)
	if err != nil {
		return 0, err
	}

	if s.activity != nil {
		s.activity.Log(ctx, activity.Event{
			Action:    action,
			ActorID:   actorID,
			ContentID: id,
			Payload:   map[string]any{string(counter): value},
		})
	}
	return value, nil
}

// likedSet returns the ids of entries liked by viewerID. Anonymous viewers
// get an empty set.
func (s *Service) likedSet(ctx context.Context, viewerID int64) (map[int64]bool, error) {
	if viewerID == 0 || s.likes == nil {
		return map[int64]bool{}, nil
	}

	ids, err := s.likes.LikedContentIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("loading liked entries: %w", err)
	}

	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
