package posts

import (
	"context"
	"time"
)

// DefaultPageSize is the fixed page size used by listings.
const DefaultPageSize = 10

// Post is the stored post representation.
// OwnerID is set exactly once at creation and never mutates. IDs are
// monotonic ULIDs, so descending id order is descending creation order.
type Post struct {
	ID      string
	Title   string
	Body    string
	Tags    []string // order preserved as submitted; duplicates permitted
	OwnerID string

	CreatedAt time.Time
}

// CreateInput describes a post creation request.
type CreateInput struct {
	Title   string
	Body    string
	Tags    []string
	OwnerID string
	Now     time.Time
}

// UpdateInput is a partial update: nil fields are left unchanged.
// A non-nil empty Tags slice replaces the tags with an empty sequence.
type UpdateInput struct {
	Title *string
	Body  *string
	Tags  *[]string
}

// ListInput selects a 1-based page of fixed size.
type ListInput struct {
	Page     int
	PageSize int // defaults to DefaultPageSize when <= 0
}

// ListResult is one page of posts plus the total count for pagination.
type ListResult struct {
	Posts []Post
	Total int64
}

// LastPage returns the total number of pages for the result's page size.
func (r ListResult) LastPage(pageSize int) int64 {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return (r.Total + int64(pageSize) - 1) / int64(pageSize)
}

// Store is the post persistence boundary.
//
// Listing is ordered by id descending (most recently created first); this is
// the sole ordering contract. Delete is idempotent at this layer; surfacing
// not-found for deletes is the pipeline's job, which looks the post up first.
type Store interface {
	Create(ctx context.Context, in CreateInput) (Post, error)
	GetByID(ctx context.Context, id string) (Post, error)
	List(ctx context.Context, in ListInput) (ListResult, error)
	Update(ctx context.Context, id string, in UpdateInput) (Post, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
