package posts

import (
	"context"
	"strings"
	"sync"
	"time"

	"quill/cmd/identity/ids"
)

// MemoryStore is the dev fallback when no database is configured.
// Posts are kept in creation order; monotonic ULIDs make that order identical
// to id order, so listings walk the slice backwards.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]Post
	order []string // ids in creation order
}

// NewMemoryStore constructs an in-memory Store implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]Post),
	}
}

// Close closes the store (noop for in-memory).
func (s *MemoryStore) Close() error { return nil }

// Create assigns a new monotonic id and persists the post.
func (s *MemoryStore) Create(ctx context.Context, in CreateInput) (Post, error) {
	const op = "posts.Create"

	if err := ctx.Err(); err != nil {
		return Post{}, err
	}
	if strings.TrimSpace(in.OwnerID) == "" {
		return Post{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing owner"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ids.NewULID(now)
	if err != nil {
		return Post{}, err
	}

	p := Post{
		ID:        id,
		Title:     in.Title,
		Body:      in.Body,
		Tags:      append([]string(nil), in.Tags...),
		OwnerID:   in.OwnerID,
		CreatedAt: now,
	}

	s.mu.Lock()
	s.byID[id] = p
	s.order = append(s.order, id)
	s.mu.Unlock()

	return p, nil
}

// GetByID returns the post or NotFoundError.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (Post, error) {
	const op = "posts.GetByID"

	if err := ctx.Err(); err != nil {
		return Post{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return Post{}, NotFoundError{Op: op, ID: id}
	}
	return p, nil
}

// List returns one page ordered by id descending plus the total count.
func (s *MemoryStore) List(ctx context.Context, in ListInput) (ListResult, error) {
	const op = "posts.List"

	if err := ctx.Err(); err != nil {
		return ListResult{}, err
	}
	if in.Page < 1 {
		return ListResult{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "page must be >= 1"}
	}

	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	skip := (in.Page - 1) * pageSize

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := int64(len(s.order))

	// Walk backwards: newest first.
	start := len(s.order) - 1 - skip
	out := make([]Post, 0, pageSize)
	for i := start; i >= 0 && len(out) < pageSize; i-- {
		out = append(out, s.byID[s.order[i]])
	}

	return ListResult{Posts: out, Total: total}, nil
}

// Update merges the supplied fields into the stored post and returns the
// merged state; absent ids yield NotFoundError.
func (s *MemoryStore) Update(ctx context.Context, id string, in UpdateInput) (Post, error) {
	const op = "posts.Update"

	if err := ctx.Err(); err != nil {
		return Post{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return Post{}, NotFoundError{Op: op, ID: id}
	}

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Body != nil {
		p.Body = *in.Body
	}
	if in.Tags != nil {
		p.Tags = append([]string(nil), (*in.Tags)...)
	}

	s.byID[id] = p
	return p, nil
}

// Delete removes the post if present; absent ids are a no-op.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return nil
	}
	delete(s.byID, id)

	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
