package activity

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// eventChannelSize is the buffer size for the async event channel. When it
// is full, events are dropped with a warning.
const eventChannelSize = 256

// Actions recorded by the library API.
const (
	ActionLike          = "content.like"
	ActionUnlike        = "content.unlike"
	ActionIncrementLike = "content.increment_like"
	ActionIncrementView = "content.increment_view"
)

// Event is a single activity record.
type Event struct {
	ID             uuid.UUID      // assigned by Log when zero
	Action         string         // one of the Action* constants
	ActorID        int64          // user id, 0 for anonymous
	ContentID      int64          // affected library entry
	OrganizationID *int64         // organization scope of a like, if any
	Payload        map[string]any // additional context, e.g. the new counter value
	CreatedAt      time.Time      // assigned by Log when zero
}

// Store persists and lists events.
type Store interface {
	Insert(ctx context.Context, event Event) error
	List(ctx context.Context, filters Filters, page, perPage int) ([]*Entry, int, error)
}

// Service records activity asynchronously. Events are sent to a buffered
// channel and written by a background goroutine, so recording never blocks
// or fails an API request.
type Service struct {
	store        Store
	eventCh      chan Event
	done         chan struct{}
	closeOnce    sync.Once
	droppedCount atomic.Uint64
}

// NewService creates an activity Service. Call Start to begin processing
// events and Shutdown to drain and stop.
func NewService(store Store) *Service {
	return &Service{
		store:   store,
		eventCh: make(chan Event, eventChannelSize),
		done:    make(chan struct{}),
	}
}

// Log queues an event for persistence without blocking. Nil receivers are
// allowed so callers can run without an activity log.
func (s *Service) Log(_ context.Context, event Event) {
	if s == nil {
		return
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	select {
	case s.eventCh <- event:
	default:
		dropped := s.droppedCount.Add(1)
		slog.Warn("activity channel full, dropping event",
			"event_id", event.ID,
			"action", event.Action,
			"actor_id", event.ActorID,
			"content_id", event.ContentID,
			"total_dropped", dropped,
		)
	}
}

// Start launches the background writer. Must be called once.
func (s *Service) Start() {
	go s.processEvents()
}

// Shutdown closes the event channel and waits for the writer to drain it.
// If ctx expires first a warning is logged, but Shutdown still waits so no
// write races with pool shutdown.
func (s *Service) Shutdown(ctx context.Context) {
	s.closeOnce.Do(func() { close(s.eventCh) })

	select {
	case <-s.done:
		slog.Info("activity service shutdown complete")
	case <-ctx.Done():
		slog.Warn("activity service shutdown timeout, still waiting for drain")
		<-s.done
	}
}

func (s *Service) processEvents() {
	defer close(s.done)

	for event := range s.eventCh {
		s.writeEvent(event)
	}
}

// writeEvent persists one event; failures are logged, never propagated.
func (s *Service) writeEvent(event Event) {
	// The request context is usually gone by now.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.Insert(ctx, event); err != nil {
		slog.Error("failed to write activity event",
			"event_id", event.ID,
			"action", event.Action,
			"actor_id", event.ActorID,
			"content_id", event.ContentID,
			"error", err,
		)
	}
}

// DroppedCount returns the number of events dropped since start.
func (s *Service) DroppedCount() uint64 {
	return s.droppedCount.Load()
}

// List returns a page of events matching filters, newest first, along with
// the total match count.
func (s *Service) List(ctx context.Context, filters Filters, page, perPage int) ([]*Entry, int, error) {
	return s.store.List(ctx, filters, page, perPage)
}
