package posts

import (
	"context"
	"fmt"
	"testing"
)

func seedPosts(t *testing.T, st *MemoryStore, n int) []Post {
	t.Helper()
	ctx := context.Background()

	out := make([]Post, 0, n)
	for i := 0; i < n; i++ {
		p, err := st.Create(ctx, CreateInput{
			Title:   fmt.Sprintf("post %d", i),
			Body:    "body",
			Tags:    []string{"t"},
			OwnerID: "01OWNER",
		})
		if err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		out = append(out, p)
	}
	return out
}

func TestMemoryStoreCreateAssignsIncreasingIDs(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	created := seedPosts(t, st, 5)

	for i := 1; i < len(created); i++ {
		if created[i].ID <= created[i-1].ID {
			t.Fatalf("ids not increasing: %q then %q", created[i-1].ID, created[i].ID)
		}
	}
}

func TestMemoryStoreListPagination(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	created := seedPosts(t, st, 25)
	ctx := context.Background()

	page1, err := st.List(ctx, ListInput{Page: 1})
	if err != nil {
		t.Fatalf("List(page 1): %v", err)
	}
	if len(page1.Posts) != 10 || page1.Total != 25 {
		t.Fatalf("page 1: got %d posts, total %d", len(page1.Posts), page1.Total)
	}
	// Most recently created first.
	if page1.Posts[0].ID != created[24].ID {
		t.Fatalf("page 1 head = %q, want %q", page1.Posts[0].ID, created[24].ID)
	}
	for i := 1; i < len(page1.Posts); i++ {
		if page1.Posts[i].ID >= page1.Posts[i-1].ID {
			t.Fatalf("page 1 not descending at %d", i)
		}
	}

	page3, err := st.List(ctx, ListInput{Page: 3})
	if err != nil {
		t.Fatalf("List(page 3): %v", err)
	}
	if len(page3.Posts) != 5 {
		t.Fatalf("page 3: got %d posts, want 5", len(page3.Posts))
	}
	if page3.Posts[len(page3.Posts)-1].ID != created[0].ID {
		t.Fatalf("page 3 tail = %q, want oldest %q", page3.Posts[len(page3.Posts)-1].ID, created[0].ID)
	}

	if got := page3.LastPage(DefaultPageSize); got != 3 {
		t.Fatalf("LastPage = %d, want 3", got)
	}

	page4, err := st.List(ctx, ListInput{Page: 4})
	if err != nil {
		t.Fatalf("List(page 4): %v", err)
	}
	if len(page4.Posts) != 0 {
		t.Fatalf("page 4: got %d posts, want 0", len(page4.Posts))
	}
}

func TestMemoryStoreListRejectsBadPage(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	ctx := context.Background()

	for _, page := range []int{0, -1} {
		if _, err := st.List(ctx, ListInput{Page: page}); !IsInvalidInput(err) {
			t.Fatalf("List(page=%d) err = %v, want invalid input", page, err)
		}
	}
}

func TestMemoryStorePartialUpdate(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	ctx := context.Background()

	p, err := st.Create(ctx, CreateInput{
		Title:   "original title",
		Body:    "original body",
		Tags:    []string{"a", "b", "a"},
		OwnerID: "01OWNER",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "new title"
	updated, err := st.Update(ctx, p.ID, UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "new title" {
		t.Fatalf("Title = %q", updated.Title)
	}
	if updated.Body != "original body" {
		t.Fatalf("Body changed: %q", updated.Body)
	}
	if len(updated.Tags) != 3 || updated.Tags[0] != "a" || updated.Tags[2] != "a" {
		t.Fatalf("Tags changed: %v", updated.Tags)
	}
	if updated.OwnerID != "01OWNER" {
		t.Fatalf("OwnerID changed: %q", updated.OwnerID)
	}

	// The returned state is the stored state.
	got, err := st.GetByID(ctx, p.ID)
	if err != nil || got.Title != "new title" {
		t.Fatalf("GetByID after update = (%+v, %v)", got, err)
	}
}

func TestMemoryStoreUpdateMissing(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	title := "x"
	if _, err := st.Update(context.Background(), "01MISSING", UpdateInput{Title: &title}); !IsNotFound(err) {
		t.Fatalf("Update(missing) err = %v, want not found", err)
	}
}

func TestMemoryStoreDeleteIdempotent(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	ctx := context.Background()

	p, err := st.Create(ctx, CreateInput{Title: "t", Body: "b", OwnerID: "01OWNER"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := st.Delete(ctx, p.ID); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if _, err := st.GetByID(ctx, p.ID); !IsNotFound(err) {
		t.Fatalf("GetByID after delete err = %v, want not found", err)
	}
	// Second delete of the same id is a repository-level no-op.
	if err := st.Delete(ctx, p.ID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestMemoryStoreTagsCopied(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	ctx := context.Background()

	tags := []string{"a", "b"}
	p, err := st.Create(ctx, CreateInput{Title: "t", Body: "b", Tags: tags, OwnerID: "01OWNER"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tags[0] = "mutated"
	got, err := st.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Tags[0] != "a" {
		t.Fatalf("stored tags alias caller slice: %v", got.Tags)
	}
}
