// Package postsapi wires post CRUD and the live feed onto the HTTP mux.
//
// Route classes and their short-circuit order:
//
//   - public reads (list, get): the principal is advisory
//   - authenticated creation: principal required up front
//   - item mutations (update, delete): load by id first, then the ownership
//     guard, then the operation, so a non-owner probing an unknown id sees
//     "not found", never "forbidden"
package postsapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"quill/cmd/identity/ids"
	authapi "quill/cmd/internal/auth/api"
	"quill/cmd/internal/posts"
	"quill/cmd/internal/web"
)

// Handler wires HTTP post endpoints to the post store and feed.
type Handler struct {
	log *slog.Logger
	cfg Config

	store posts.Store
	feed  *posts.Feed
}

// NewHandler constructs a posts Handler. The feed may be nil, disabling the
// live stream fan-out.
func NewHandler(log *slog.Logger, cfg Config, store posts.Store, feed *posts.Feed) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if store == nil {
		return nil, errors.New("posts: nil store")
	}
	return &Handler{
		log:   log,
		cfg:   cfg,
		store: store,
		feed:  feed,
	}, nil
}

// Register wires post routes onto the provided mux. The literal
// /posts/stream pattern takes precedence over /posts/{id}.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("GET /posts", h.handleList)
	mux.HandleFunc("POST /posts", h.handleCreate)
	mux.HandleFunc("GET /posts/stream", h.handleStream)
	mux.HandleFunc("GET /posts/{id}", h.handleGet)
	mux.HandleFunc("PATCH /posts/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /posts/{id}", h.handleDelete)
}

// ---- handlers ----

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			web.WriteError(w, http.StatusBadRequest, "INVALID_PAGE", "page must be a positive integer")
			return
		}
		page = n
	}

	res, err := h.store.List(r.Context(), posts.ListInput{Page: page, PageSize: posts.DefaultPageSize})
	if err != nil {
		if posts.IsInvalidInput(err) {
			web.WriteError(w, http.StatusBadRequest, "INVALID_PAGE", "page must be a positive integer")
			return
		}
		h.log.Error("posts.list.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	out := make([]postResponse, 0, len(res.Posts))
	for _, p := range res.Posts {
		out = append(out, toPostResponse(p))
	}

	w.Header().Set("Last-page", strconv.FormatInt(res.LastPage(posts.DefaultPageSize), 10))
	web.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !ids.IsValid(id) {
		web.WriteError(w, http.StatusBadRequest, "INVALID_ID", "malformed post id")
		return
	}

	p, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "posts.get.fail")
		return
	}
	web.WriteJSON(w, http.StatusOK, toPostResponse(p))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := authapi.PrincipalFrom(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "NOT_LOGGED_IN", "not logged in")
		return
	}

	var req createRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if errs := validateCreate(req); len(errs) > 0 {
		web.WriteValidation(w, errs)
		return
	}

	p, err := h.store.Create(r.Context(), posts.CreateInput{
		Title:   req.Title,
		Body:    req.Body,
		Tags:    *req.Tags,
		OwnerID: principal,
		Now:     time.Now().UTC(),
	})
	if err != nil {
		h.writeStoreError(w, err, "posts.create.fail")
		return
	}

	h.publish(posts.Event{Type: posts.EventCreated, Post: p})
	web.WriteJSON(w, http.StatusOK, toPostResponse(p))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadAndAuthorize(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	updated, err := h.store.Update(r.Context(), p.ID, posts.UpdateInput{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		h.writeStoreError(w, err, "posts.update.fail")
		return
	}

	h.publish(posts.Event{Type: posts.EventUpdated, Post: updated})
	web.WriteJSON(w, http.StatusOK, toPostResponse(updated))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadAndAuthorize(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), p.ID); err != nil {
		h.writeStoreError(w, err, "posts.delete.fail")
		return
	}

	h.publish(posts.Event{Type: posts.EventDeleted, Post: posts.Post{ID: p.ID}})
	w.WriteHeader(http.StatusNoContent)
}

// ---- pipeline stages ----

// loadAndAuthorize runs the item-mutation prefix: id format check, load
// (not-found wins over forbidden), then the ownership guard. On failure the
// response has been written and ok is false.
func (h *Handler) loadAndAuthorize(w http.ResponseWriter, r *http.Request) (posts.Post, bool) {
	id := r.PathValue("id")
	if !ids.IsValid(id) {
		web.WriteError(w, http.StatusBadRequest, "INVALID_ID", "malformed post id")
		return posts.Post{}, false
	}

	p, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "posts.load.fail")
		return posts.Post{}, false
	}

	principal, _ := authapi.PrincipalFrom(r.Context())
	if err := posts.AuthorizeOwner(principal, p.OwnerID); err != nil {
		switch {
		case errors.Is(err, posts.ErrNotLoggedIn):
			web.WriteError(w, http.StatusUnauthorized, "NOT_LOGGED_IN", "not logged in")
		case errors.Is(err, posts.ErrForbidden):
			web.WriteError(w, http.StatusForbidden, "FORBIDDEN", "not the owner of this post")
		default:
			h.log.Error("posts.guard.fail", "err", err)
			web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
		return posts.Post{}, false
	}

	return p, true
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error, event string) {
	switch {
	case posts.IsNotFound(err):
		web.WriteError(w, http.StatusNotFound, "NOT_FOUND", "post not found")
	case posts.IsInvalidInput(err):
		web.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid input")
	default:
		h.log.Error(event, "err", err)
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func (h *Handler) publish(ev posts.Event) {
	if h.feed == nil {
		return
	}
	h.feed.Publish(ev)
}

func validateCreate(req createRequest) []web.FieldError {
	var errs []web.FieldError
	if req.Title == "" {
		errs = append(errs, web.FieldError{Field: "title", Message: "is required"})
	}
	if req.Body == "" {
		errs = append(errs, web.FieldError{Field: "body", Message: "is required"})
	}
	if req.Tags == nil {
		errs = append(errs, web.FieldError{Field: "tags", Message: "is required"})
	}
	return errs
}
