package posts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quill/cmd/identity/ids"
)

// PostgresStore implements post persistence over PostgreSQL.
//
// Design notes:
// - The pgx pool is owned by the caller; this store must NOT close it.
// - Tags are stored as text[], preserving submitted order and duplicates.
// - Partial updates use COALESCE so unsupplied fields keep their stored value
//   in a single atomic statement (last writer wins, per the storage model).
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var postsIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the posts store (default "quill").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("posts: empty schema")
		}
		if !postsIdentRe.MatchString(schema) {
			return fmt.Errorf("posts: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "quill",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("posts: nil pool")
	}
	return st, nil
}

// Close is a no-op; the pool is owned by the caller.
func (s *PostgresStore) Close() error { return nil }

func (s *PostgresStore) table() string {
	return pgx.Identifier{s.schema, "posts"}.Sanitize()
}

// Create assigns a new monotonic id and inserts the post row.
func (s *PostgresStore) Create(ctx context.Context, in CreateInput) (Post, error) {
	const op = "posts.Create"

	if s == nil || s.pool == nil {
		return Post{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
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

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.table()+` (id, title, body, tags, owner_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, in.Title, in.Body, tags, in.OwnerID, now,
	)
	if err != nil {
		return Post{}, err
	}

	return Post{
		ID:        id,
		Title:     in.Title,
		Body:      in.Body,
		Tags:      append([]string(nil), tags...),
		OwnerID:   in.OwnerID,
		CreatedAt: now,
	}, nil
}

// GetByID returns the post or NotFoundError.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (Post, error) {
	const op = "posts.GetByID"

	if s == nil || s.pool == nil {
		return Post{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}

	var p Post
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, body, tags, owner_id, created_at
		   FROM `+s.table()+`
		  WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Title, &p.Body, &p.Tags, &p.OwnerID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, NotFoundError{Op: op, ID: id}
		}
		return Post{}, err
	}
	return p, nil
}

// List returns one page ordered by id descending plus the total count.
func (s *PostgresStore) List(ctx context.Context, in ListInput) (ListResult, error) {
	const op = "posts.List"

	if s == nil || s.pool == nil {
		return ListResult{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if in.Page < 1 {
		return ListResult{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "page must be >= 1"}
	}

	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	skip := (in.Page - 1) * pageSize

	rows, err := s.pool.Query(ctx,
		`SELECT id, title, body, tags, owner_id, created_at
		   FROM `+s.table()+`
		  ORDER BY id DESC
		  LIMIT $1 OFFSET $2`,
		pageSize, skip,
	)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	out := make([]Post, 0, pageSize)
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.Tags, &p.OwnerID, &p.CreatedAt); err != nil {
			return ListResult{}, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, err
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+s.table()).Scan(&total); err != nil {
		return ListResult{}, err
	}

	return ListResult{Posts: out, Total: total}, nil
}

// Update merges the supplied fields atomically and returns the merged row.
func (s *PostgresStore) Update(ctx context.Context, id string, in UpdateInput) (Post, error) {
	const op = "posts.Update"

	if s == nil || s.pool == nil {
		return Post{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}

	var tags any
	if in.Tags != nil {
		t := *in.Tags
		if t == nil {
			t = []string{}
		}
		tags = t
	}

	var p Post
	err := s.pool.QueryRow(ctx,
		`UPDATE `+s.table()+`
		    SET title = COALESCE($2, title),
		        body  = COALESCE($3, body),
		        tags  = COALESCE($4, tags)
		  WHERE id = $1
		  RETURNING id, title, body, tags, owner_id, created_at`,
		id, in.Title, in.Body, tags,
	).Scan(&p.ID, &p.Title, &p.Body, &p.Tags, &p.OwnerID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, NotFoundError{Op: op, ID: id}
		}
		return Post{}, err
	}
	return p, nil
}

// Delete removes the post row if present; absent ids are a no-op.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.pool == nil {
		return OpError{Op: "posts.Delete", Kind: ErrInvalidInput, Msg: "nil store"}
	}

	_, err := s.pool.Exec(ctx, `DELETE FROM `+s.table()+` WHERE id = $1`, id)
	return err
}
