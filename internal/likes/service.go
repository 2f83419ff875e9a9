package likes

import (
	"context"
	"errors"
	"fmt"

	"github.com/GyroZepelix/library-cms/internal/activity"
)

// ErrUnauthenticated is returned when no caller identity is available.
var ErrUnauthenticated = errors.New("caller identity required")

// Store is the persistence interface used by Service.
type Store interface {
	Like(ctx context.Context, target Target) (*Like, int64, error)
	Unlike(ctx context.Context, target Target) (int64, error)
	LikedContentIDs(ctx context.Context, userID int64) ([]int64, error)
}

// ActivityLogger records like activity.
type ActivityLogger interface {
	Log(ctx context.Context, event activity.Event)
}

// Service implements guarded likes: at most one like per user, entry and
// organization, with the entry's like counter moved in step.
type Service struct {
	store    Store
	activity ActivityLogger
}

// NewService creates a likes Service. activity may be nil.
func NewService(store Store, activity ActivityLogger) *Service {
	return &Service{store: store, activity: activity}
}

// Like records a like for target and returns it with the entry's new like
// count.
func (s *Service) Like(ctx context.Context, target Target) (*Like, int64, error) {
	if target.UserID == 0 {
		return nil, 0, ErrUnauthenticated
	}

	like, count, err := s.store.Like(ctx, target)
	if err != nil {
		return nil, 0, err
	}

	s.logEvent(ctx, activity.ActionLike, target, count)
	return like, count, nil
}

// Unlike removes the like for target and returns the entry's new like count.
func (s *Service) Unlike(ctx context.Context, target Target) (int64, error) {
	if target.UserID == 0 {
		return 0, ErrUnauthenticated
	}

	count, err := s.store.Unlike(ctx, target)
	if err != nil {
		return 0, err
	}

	s.logEvent(ctx, activity.ActionUnlike, target, count)
	return count, nil
}

// LikedContentIDs returns the ids of entries userID has liked. Anonymous
// callers have liked nothing.
func (s *Service) LikedContentIDs(ctx context.Context, userID int64) ([]int64, error) {
	if userID == 0 {
		return []int64{}, nil
	}
	ids, err := s.store.LikedContentIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing likes: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

func (s *Service) logEvent(ctx context.Context, action string, target Target, count int64) {
	if s.activity == nil {
		return
	}
	s.activity.Log(ctx, activity.Event{
		Action:         action,
		ActorID:        target.UserID,
		ContentID:      target.ContentID,
		OrganizationID: target.OrganizationID,
		Payload:        map[string]any{"like_count": count},
	})
}
