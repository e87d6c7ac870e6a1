// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/article-library/internal/cache"
	"github.com/pdiddy/article-library/internal/connectivity"
	"github.com/pdiddy/article-library/internal/remote"
	"github.com/pdiddy/article-library/pkg/types"
)

func TestSyncSkipsWhileOffline(t *testing.T) {
	backend := newFakeBackend(t, nil)
	lib, store, mon := newTestLibrary(t, backend)
	mon.SetServerAvailable(false)

	_, err := lib.Add(context.Background(), payload("Offline Paper", "Ada"))
	require.NoError(t, err)

	summary, err := lib.SyncPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SyncIdle, summary.State)
	assert.Equal(t, 1, store.PendingCount())
	assert.Zero(t, backend.callCount("GET /all_articles"))
}

func TestSyncFastPathMirrorsBaseline(t *testing.T) {
	backend := newFakeBackend(t, []types.Article{
		serverArticle("Paper A", "Ada", 1),
		serverArticle("Paper B", "Bob", 2),
	})
	lib, store, _ := newTestLibrary(t, backend)

	summary, err := lib.SyncPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SyncCommitted, summary.State)
	assert.Zero(t, summary.Total)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 1, backend.callCount("GET /all_articles"))
}

func TestSyncIsIdempotentWithEmptyLog(t *testing.T) {
	backend := newFakeBackend(t, []types.Article{
		serverArticle("Paper A", "Ada", 1),
	})
	lib, store, _ := newTestLibrary(t, backend)

	_, err := lib.SyncPending(context.Background())
	require.NoError(t, err)
	first := store.Articles()

	_, err = lib.SyncPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, store.Articles())
}

func TestSyncEndToEnd(t *testing.T) {
	backend := newFakeBackend(t, nil)
	lib, store, mon := newTestLibrary(t, backend)

	mon.SetServerAvailable(false)
	created, err := lib.Add(context.Background(), payload("Paper A", "Ada"))
	require.NoError(t, err)
	require.True(t, created.IsTemp())
	require.Equal(t, 1, store.PendingCount())

	mon.SetServerAvailable(true)
	summary, err := lib.SyncPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SyncCommitted, summary.State)
	assert.Equal(t, 1, summary.Replayed)
	assert.Equal(t, 1, backend.callCount("POST /add_article"))
	assert.Zero(t, store.PendingCount())

	// The cache ends the pass as a pure mirror of server state: the
	// temporary record is gone, replaced by the server-assigned one.
	final := store.Articles()
	require.Len(t, final, 1)
	assert.Equal(t, "Paper A", final[0].Title)
	assert.Equal(t, 100, final[0].Index)
	assert.False(t, final[0].IsTemp())
}

func TestSyncReplaysReaddOfMirroredRecordAsUpdate(t *testing.T) {
	backend := newFakeBackend(t, []types.Article{
		serverArticle("Paper A", "Ada", 5),
	})
	lib, store, mon := newTestLibrary(t, backend)

	// Mirror the baseline while online, then re-add the same logical
	// article offline. The mirrored record has no client id, so the
	// pending UPDATE must address it by server index.
	_, err := lib.Articles(context.Background())
	require.NoError(t, err)

	mon.SetServerAvailable(false)
	_, err = lib.Add(context.Background(), payload("paper a", "ADA"))
	require.NoError(t, err)

	mon.SetServerAvailable(true)
	summary, err := lib.SyncPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SyncCommitted, summary.State)
	assert.Equal(t, 1, summary.Replayed)
	assert.Zero(t, summary.Failed)
	assert.Zero(t, summary.Skipped)
	assert.Equal(t, []string{"5"}, backend.updates)
	assert.Zero(t, backend.callCount("POST /add_article"))
	assert.Zero(t, store.PendingCount())
}

func TestSyncSuppressesDuplicateAdds(t *testing.T) {
	// The server independently created the same logical article, with
	// different casing, while the client was offline.
	backend := newFakeBackend(t, []types.Article{
		serverArticle("OFFLINE CACHING", "ada lovelace", 1),
	})
	lib, store, mon := newTestLibrary(t, backend)

	mon.SetServerAvailable(false)
	_, err := lib.Add(context.Background(), payload("Offline Caching", "Ada Lovelace"))
	require.NoError(t, err)

	mon.SetServerAvailable(true)
	summary, err := lib.SyncPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SyncCommitted, summary.State)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Replayed)
	assert.Zero(t, backend.callCount("POST /add_article"))

	final := store.Articles()
	require.Len(t, final, 1)
	assert.Equal(t, 1, final[0].Index)
}

func TestSyncSkipsTempTargets(t *testing.T) {
	backend := newFakeBackend(t, nil)
	lib, store, mon := newTestLibrary(t, backend)
	mon.SetServerAvailable(false)

	first, err := lib.Add(context.Background(), payload("Paper A", "Ada"))
	require.NoError(t, err)
	_, err = lib.Update(context.Background(), first.ID, payload("Paper A revised", "Ada"))
	require.NoError(t, err)

	second, err := lib.Add(context.Background(), payload("Paper B", "Bob"))
	require.NoError(t, err)
	require.NoError(t, lib.Delete(context.Background(), second.ID))

	require.Equal(t, 4, store.PendingCount())

	mon.SetServerAvailable(true)
	summary, err := lib.SyncPending(context.Background())
	require.NoError(t, err)

	// Both ADDs replay; the UPDATE and DELETE target ids that never
	// existed remotely and must not generate calls.
	assert.Equal(t, 2, summary.Replayed)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 2, backend.callCount("POST /add_article"))
	assert.Zero(t, backend.callCount("PUT"))
	assert.Zero(t, backend.callCount("DELETE"))
}

func TestSyncBaselineFailurePreservesLog(t *testing.T) {
	backend := newFakeBackend(t, nil)
	backend.failList = true
	lib, store, mon := newTestLibrary(t, backend)

	mon.SetServerAvailable(false)
	_, err := lib.Add(context.Background(), payload("Paper A", "Ada"))
	require.NoError(t, err)
	before := store.Pending()

	mon.SetServerAvailable(true)
	summary, err := lib.SyncPending(context.Background())
	require.Error(t, err)
	assert.Equal(t, SyncAborted, summary.State)
	assert.Equal(t, before, store.Pending())
	assert.Zero(t, backend.callCount("POST"))
}

func TestSyncClearsLogDespiteReplayFailures(t *testing.T) {
	backend := newFakeBackend(t, nil)
	backend.failAdd = true
	lib, store, mon := newTestLibrary(t, backend)

	mon.SetServerAvailable(false)
	_, err := lib.Add(context.Background(), payload("Paper A", "Ada"))
	require.NoError(t, err)

	mon.SetServerAvailable(true)
	summary, err := lib.SyncPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SyncCommitted, summary.State)
	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, store.PendingCount())
}

func TestSyncReplaysInTimestampOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	// Create the schema, then persist operations whose insertion order
	// disagrees with their timestamps.
	store, err := cache.NewStore(types.CacheConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	for _, row := range []struct {
		id string
		ts int64
	}{
		{"30", 3},
		{"10", 1},
		{"20", 2},
	} {
		_, err := db.Exec(
			`INSERT INTO pending_operations (op_type, target_id, payload, ts) VALUES ('DELETE', ?, NULL, ?)`,
			row.id, row.ts)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	store, err = cache.NewStore(types.CacheConfig{Path: path})
	require.NoError(t, err)
	defer store.Close()

	backend := newFakeBackend(t, nil)
	rc := remote.NewClient(types.RemoteConfig{BaseURL: backend.server.URL, Token: "test-token"})
	mon := connectivity.NewMonitor(types.ConnectivityConfig{
		PingInterval:  time.Hour,
		HealthTimeout: time.Second,
	}, rc, zap.NewNop())
	lib := New(rc, store, mon, zap.NewNop())

	summary, err := lib.SyncPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Replayed)
	assert.Equal(t, []string{"10", "20", "30"}, backend.deletes)
}

func TestSyncRejectsReentrantTrigger(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)

	backend := newFakeBackend(t, nil)
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/all_articles" {
			select {
			case entered <- struct{}{}:
			default:
			}
			<-release
		}
		backend.handle(w, r)
	}))
	defer slow.Close()

	store, err := cache.NewStore(types.CacheConfig{})
	require.NoError(t, err)
	rc := remote.NewClient(types.RemoteConfig{BaseURL: slow.URL, Token: "test-token"})
	mon := connectivity.NewMonitor(types.ConnectivityConfig{
		PingInterval:  time.Hour,
		HealthTimeout: time.Second,
	}, rc, zap.NewNop())
	lib := New(rc, store, mon, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := lib.SyncPending(context.Background())
		done <- err
	}()

	<-entered
	_, err = lib.SyncPending(context.Background())
	assert.ErrorIs(t, err, ErrSyncInFlight)

	close(release)
	require.NoError(t, <-done)
}
