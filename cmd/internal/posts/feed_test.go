package posts

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestFeedFanOut(t *testing.T) {
	t.Parallel()

	f := NewFeed(slog.New(slog.NewTextHandler(io.Discard, nil)))

	ch1, cancel1 := f.Subscribe()
	ch2, cancel2 := f.Subscribe()
	defer cancel2()

	if got := f.Subscribers(); got != 2 {
		t.Fatalf("Subscribers = %d, want 2", got)
	}

	f.Publish(Event{Type: EventCreated, Post: Post{ID: "01POST"}})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != EventCreated || ev.Post.ID != "01POST" {
				t.Fatalf("unexpected event: %+v", ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event")
		}
	}

	cancel1()
	cancel1() // idempotent

	if got := f.Subscribers(); got != 1 {
		t.Fatalf("Subscribers after cancel = %d, want 1", got)
	}

	// Cancelled channel is closed.
	if _, ok := <-ch1; ok {
		t.Fatalf("cancelled channel still open")
	}
}

func TestFeedDropsWhenSubscriberFull(t *testing.T) {
	t.Parallel()

	f := NewFeed(slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, cancel := f.Subscribe()
	defer cancel()

	// Publish must never block, even with a saturated subscriber.
	for i := 0; i < defaultFeedBuffer*2; i++ {
		f.Publish(Event{Type: EventUpdated, Post: Post{ID: "01POST"}})
	}
}
