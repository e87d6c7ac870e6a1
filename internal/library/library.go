// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library is the client facade: every read and write goes through
// here, gated on connectivity. Online, calls hit the remote API and the
// cache tracks the server; offline, they are served from the cache and
// mutations land in the pending-operation log for later replay.
// Implements: prd005-library-facade (R1-R4), prd006-sync-engine (R1-R6);
//
//	docs/ARCHITECTURE § Library Facade, § Synchronization Engine.
package library

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pdiddy/article-library/internal/cache"
	"github.com/pdiddy/article-library/internal/connectivity"
	"github.com/pdiddy/article-library/internal/remote"
	"github.com/pdiddy/article-library/pkg/types"
)

// ErrNotFound reports a lookup or mutation that matched no article.
var ErrNotFound = errors.New("article not found")

// Library binds the remote client, the local cache and the connectivity
// monitor into one offline-first surface.
type Library struct {
	remote  *remote.Client
	cache   *cache.Store
	monitor *connectivity.Monitor
	log     *zap.Logger

	syncing atomic.Bool
}

// New assembles a Library from already-built parts. Callers own the
// monitor's lifecycle (Start/Stop); Open wires the standard hooks.
func New(rc *remote.Client, store *cache.Store, mon *connectivity.Monitor, log *zap.Logger) *Library {
	if log == nil {
		log = zap.NewNop()
	}
	return &Library{remote: rc, cache: store, monitor: mon, log: log}
}

// Open builds the full client from config: remote client, cache store and
// connectivity monitor, with the offline hook seeding the cache and the
// recovery hook draining the pending log. The caller starts the monitor
// when it wants polling and must Close the Library when done.
func Open(cfg types.LibraryConfig, log *zap.Logger) (*Library, error) {
	if log == nil {
		log = zap.NewNop()
	}

	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		return nil, err
	}

	rc := remote.NewClient(cfg.Remote)
	mon := connectivity.NewMonitor(cfg.Connectivity, rc, log)
	lib := New(rc, store, mon, log)

	mon.OnOffline(func() {
		if err := store.SeedIfEmpty(); err != nil {
			log.Warn("seeding offline cache failed", zap.Error(err))
		}
	})
	mon.OnRecovery(func() {
		go func() {
			if _, err := lib.SyncPending(context.Background()); err != nil && !errors.Is(err, ErrSyncInFlight) {
				log.Warn("sync after recovery failed", zap.Error(err))
			}
		}()
	})

	return lib, nil
}

// Close releases the cache's backing database and stops the monitor.
func (l *Library) Close() error {
	l.monitor.Stop()
	return l.cache.Close()
}

// Monitor exposes the connectivity monitor for lifecycle control and
// status surfaces.
func (l *Library) Monitor() *connectivity.Monitor { return l.monitor }

// Cache exposes the local store for status and export surfaces.
func (l *Library) Cache() *cache.Store { return l.cache }

// Status is a point-in-time view for the status command and endpoint.
type Status struct {
	Connectivity connectivity.State `json:"connectivity"`
	Offline      bool               `json:"offline"`
	Cached       int                `json:"cached_articles"`
	Pending      int                `json:"pending_operations"`
}

// Status reports connectivity plus cache and log sizes.
func (l *Library) Status() Status {
	state := l.monitor.Snapshot()
	return Status{
		Connectivity: state,
		Offline:      state.Offline(),
		Cached:       l.cache.Len(),
		Pending:      l.cache.PendingCount(),
	}
}

// Articles returns the full collection: the remote list while online
// (mirrored into the cache), the cached snapshot otherwise.
func (l *Library) Articles(ctx context.Context) ([]types.Article, error) {
	if l.monitor.Offline() {
		return l.cache.Articles(), nil
	}
	list, err := l.remote.All(ctx)
	if err != nil {
		l.degrade("fetching articles", err)
		return l.cache.Articles(), nil
	}
	l.mirror(list)
	return list, nil
}

// Search runs the remote search while online and the local substring
// search as fallback.
func (l *Library) Search(ctx context.Context, query string) ([]types.Article, error) {
	if l.monitor.Offline() {
		return l.cache.Search(query), nil
	}
	list, err := l.remote.Search(ctx, query)
	if err != nil {
		l.degrade("remote search", err)
		return l.cache.Search(query), nil
	}
	return list, nil
}

// SortedBy returns the collection ordered by field, remote while online.
func (l *Library) SortedBy(ctx context.Context, field, order string) ([]types.Article, error) {
	if l.monitor.Offline() {
		return l.cache.SortedBy(field, order), nil
	}
	list, err := l.remote.Sorted(ctx, field, order)
	if err != nil {
		l.degrade("remote sort", err)
		return l.cache.SortedBy(field, order), nil
	}
	return list, nil
}

// ByYear filters the collection by publication year.
func (l *Library) ByYear(ctx context.Context, year int) ([]types.Article, error) {
	if l.monitor.Offline() {
		return l.cache.ByYear(year), nil
	}
	list, err := l.remote.ByYear(ctx, year)
	if err != nil {
		l.degrade("remote year filter", err)
		return l.cache.ByYear(year), nil
	}
	return list, nil
}

// ByIndex fetches a single article by its server-assigned index.
func (l *Library) ByIndex(ctx context.Context, index int) (types.Article, error) {
	if l.monitor.Offline() {
		return l.cacheByIndex(index)
	}
	article, err := l.remote.ByIndex(ctx, index)
	if err != nil {
		if isTransport(err) {
			l.degrade("fetching article", err)
			return l.cacheByIndex(index)
		}
		return types.Article{}, err
	}
	return article, nil
}

// Add creates an article. Online it is posted to the server (which assigns
// the index) and the cache refreshed; offline it lands in the cache with a
// temporary id and a pending ADD.
func (l *Library) Add(ctx context.Context, payload types.ArticlePayload) (types.Article, error) {
	if l.monitor.Offline() {
		return l.cache.Add(articleFrom(payload))
	}
	created, err := l.remote.Add(ctx, payload)
	if err != nil {
		if isTransport(err) {
			l.degrade("adding article", err)
			return l.cache.Add(articleFrom(payload))
		}
		return types.Article{}, err
	}
	l.refresh(ctx)
	return created, nil
}

// Update merges payload into the article identified by id.
func (l *Library) Update(ctx context.Context, id string, payload types.ArticlePayload) (types.Article, error) {
	if l.monitor.Offline() {
		return l.cacheUpdate(id, payload)
	}
	updated, err := l.remote.Update(ctx, id, payload)
	if err != nil {
		if isTransport(err) {
			l.degrade("updating article", err)
			return l.cacheUpdate(id, payload)
		}
		return types.Article{}, err
	}
	l.refresh(ctx)
	return updated, nil
}

// Delete removes the article identified by id.
func (l *Library) Delete(ctx context.Context, id string) error {
	if l.monitor.Offline() {
		return l.cacheDelete(id)
	}
	if err := l.remote.Delete(ctx, id); err != nil {
		if isTransport(err) {
			l.degrade("deleting article", err)
			return l.cacheDelete(id)
		}
		return err
	}
	l.refresh(ctx)
	return nil
}

func (l *Library) cacheByIndex(index int) (types.Article, error) {
	article, ok := l.cache.ByIndex(index)
	if !ok {
		return types.Article{}, ErrNotFound
	}
	return article, nil
}

func (l *Library) cacheUpdate(id string, payload types.ArticlePayload) (types.Article, error) {
	updated, found, err := l.cache.Update(id, payload)
	if err != nil {
		return types.Article{}, err
	}
	if !found {
		return types.Article{}, ErrNotFound
	}
	return updated, nil
}

func (l *Library) cacheDelete(id string) error {
	removed, err := l.cache.Delete(id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// degrade records an observed transport failure as server unavailability.
// API-level errors (the server answered) leave connectivity alone.
func (l *Library) degrade(action string, err error) {
	l.log.Warn(action+" failed, falling back to cache", zap.Error(err))
	if isTransport(err) {
		l.monitor.SetServerAvailable(false)
	}
}

// mirror replaces the cached collection with a fresh server snapshot.
func (l *Library) mirror(list []types.Article) {
	if err := l.cache.ReplaceAll(list); err != nil {
		l.log.Warn("mirroring server state failed", zap.Error(err))
	}
}

// refresh is the best-effort re-fetch after an online mutation.
func (l *Library) refresh(ctx context.Context) {
	list, err := l.remote.All(ctx)
	if err != nil {
		l.log.Warn("refreshing cache after mutation failed", zap.Error(err))
		return
	}
	l.mirror(list)
}

func isTransport(err error) bool {
	var apiErr *remote.APIError
	return !errors.As(err, &apiErr)
}

func articleFrom(p types.ArticlePayload) types.Article {
	var a types.Article
	p.ApplyTo(&a)
	return a
}
