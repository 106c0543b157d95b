package posts

import (
	"log/slog"
	"sync"
)

// EventType identifies a feed event.
type EventType string

const (
	EventCreated EventType = "post.created"
	EventUpdated EventType = "post.updated"
	EventDeleted EventType = "post.deleted"
)

// Event is a post lifecycle notification fanned out to live subscribers.
// For deletions only the ID is guaranteed to be populated.
type Event struct {
	Type EventType
	Post Post
}

const defaultFeedBuffer = 64

// Feed is an in-process fan-out of post events to WebSocket subscribers.
// It is intentionally minimal: persistence lives behind Store; the feed is
// best-effort and drops events for subscribers that fall behind rather than
// blocking writers.
type Feed struct {
	log *slog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

// NewFeed constructs a Feed instance.
func NewFeed(log *slog.Logger) *Feed {
	if log == nil {
		log = slog.Default()
	}
	return &Feed{
		log:  log,
		subs: make(map[int]chan Event),
	}
}

// Subscribe registers a new subscriber and returns its event channel plus a
// cancel function. Cancel is idempotent and closes the channel.
func (f *Feed) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, defaultFeedBuffer)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber without blocking.
func (f *Feed) Publish(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, ch := range f.subs {
		select {
		case ch <- ev:
		default:
			// Slow consumer; drop rather than stall the request path.
			f.log.Warn("posts.feed.drop", "subscriber", id, "event", string(ev.Type))
		}
	}
}

// Subscribers returns the current subscriber count.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
