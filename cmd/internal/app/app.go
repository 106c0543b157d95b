// Package app wires the Quill server runtime: config, logging, stores, HTTP
// routes, and the live post feed.
//
// It is intentionally small and deterministic so behavior stays predictable
// across the in-memory dev mode and the Postgres-backed production mode.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"quill/cmd/identity"
	authapi "quill/cmd/internal/auth/api"
	"quill/cmd/internal/auth/session"
	"quill/cmd/internal/posts"
	postsapi "quill/cmd/internal/posts/api"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a small app-level lifecycle abstraction.
// It exists to allow DB-backed resources to be closed gracefully.
type Store interface {
	Close(ctx context.Context) error
}

// App is the Quill server runtime: it owns the HTTP server wiring and the
// store/feed dependencies behind it.
type App struct {
	cfg Config
	log Logger

	store Store

	dbPool    *pgxpool.Pool
	dbEnabled bool

	metrics *Metrics
	feed    *posts.Feed

	auth      *authapi.Handler
	postsHTTP *postsapi.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	st, accounts, postStore, dbPool, dbEnabled, err := newStores(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	tokens, err := session.NewManager(sessCfg)
	if err != nil {
		return nil, err
	}
	if tokens.Ephemeral() {
		// Tokens signed with an ephemeral key do not survive restarts.
		log.Warn("auth.token.ephemeral_key",
			"hint", "set QUILL_TOKEN_SECRET_KEY_HEX for stable sessions",
			"public_key", tokens.PublicKeyHex(),
		)
	}

	authHandler, err := authapi.NewHandler(log, authapi.LoadConfigFromEnv(), accounts, tokens)
	if err != nil {
		return nil, err
	}

	feed := posts.NewFeed(log)

	postsCfg, err := postsapi.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	postsHandler, err := postsapi.NewHandler(log, postsCfg, postStore, feed)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		store:     st,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		metrics:   NewMetrics(),
		feed:      feed,
		auth:      authHandler,
		postsHTTP: postsHandler,
	}, nil
}

// handler assembles the full middleware stack around the route mux.
// Principal resolution runs inside metrics/logging so those observe the
// request exactly as the handlers do.
func (a *App) handler() http.Handler {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.metrics, a.auth, a.postsHTTP)

	var handler http.Handler = a.auth.WithPrincipal(mux)
	if a.cfg.MetricsEnabled {
		handler = a.metrics.WithMetrics(handler)
	}
	return WithRequestLogging(handler, a.log)
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler(),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.store.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStores decides between Postgres-backed persistence and the in-memory dev
// stores. Both account and post stores always come from the same backend.
func newStores(ctx context.Context, cfg Config, log Logger) (Store, identity.Store, posts.Store, *pgxpool.Pool, bool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return nopStore{}, identity.NewMemoryStore(), posts.NewMemoryStore(), nil, false, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, nil, false, err
	}

	log.Info("db.enabled.postgres_store")

	// Ownership model: the app owns the pool lifecycle; the stores' Close
	// methods are no-ops.
	accounts, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, nil, false, err
	}
	postStore, err := posts.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, nil, false, err
	}

	return dbStore{pool: pool}, accounts, postStore, pool, true, nil
}

// nopStore is used for in-memory store mode.
type nopStore struct{}

func (nopStore) Close(_ context.Context) error { return nil }

type dbStore struct {
	pool *pgxpool.Pool
}

func (s dbStore) Close(_ context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
