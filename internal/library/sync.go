// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/pdiddy/article-library/pkg/types"
)

// ErrSyncInFlight reports a sync trigger while a pass is already running.
// Connectivity flapping fires rapid recovery events; only one pass may be
// in flight at a time.
var ErrSyncInFlight = errors.New("sync pass already in flight")

// SyncState names the phase a sync pass ended in.
type SyncState string

const (
	SyncIdle             SyncState = "idle"
	SyncFetchingBaseline SyncState = "fetching_baseline"
	SyncReplaying        SyncState = "replaying"
	SyncRefetching       SyncState = "refetching"
	SyncCommitted        SyncState = "committed"
	SyncAborted          SyncState = "aborted"
)

// SyncSummary reports the outcome of one sync pass.
type SyncSummary struct {
	State    SyncState `json:"state"`
	Total    int       `json:"total"`
	Replayed int       `json:"replayed"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
}

// SyncPending runs one full sync pass: fetch the remote baseline, replay
// the pending-operation log against it in timestamp order, clear the log,
// then re-fetch and mirror the server's post-replay state into the cache.
//
// The baseline fetch is the only fatal step: its failure aborts the pass
// with the log untouched so the next trigger retries. Individual replay
// failures are logged and skipped, and the log is cleared regardless, so
// delivery is at-most-once.
func (l *Library) SyncPending(ctx context.Context) (SyncSummary, error) {
	if !l.syncing.CompareAndSwap(false, true) {
		return SyncSummary{State: SyncIdle}, ErrSyncInFlight
	}
	defer l.syncing.Store(false)

	if l.monitor.Offline() {
		l.log.Debug("sync skipped while offline")
		return SyncSummary{State: SyncIdle}, nil
	}

	summary := SyncSummary{State: SyncFetchingBaseline}

	baseline, err := l.remote.All(ctx)
	if err != nil {
		summary.State = SyncAborted
		l.degrade("sync baseline fetch", err)
		return summary, fmt.Errorf("fetching sync baseline: %w", err)
	}

	pending := l.cache.Pending()
	summary.Total = len(pending)
	if len(pending) == 0 {
		l.mirror(baseline)
		summary.State = SyncCommitted
		return summary, nil
	}

	duplicates := l.duplicateTempIDs(baseline)

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Timestamp < pending[j].Timestamp
	})

	summary.State = SyncReplaying
	for _, op := range pending {
		switch l.replay(ctx, op, duplicates) {
		case replayOK:
			summary.Replayed++
		case replaySkipped:
			summary.Skipped++
		case replayFailed:
			summary.Failed++
		}
	}

	if err := l.cache.ClearPending(); err != nil {
		l.log.Warn("clearing pending log failed", zap.Error(err))
	}

	summary.State = SyncRefetching
	final, err := l.remote.All(ctx)
	if err != nil {
		summary.State = SyncAborted
		l.degrade("sync refetch", err)
		return summary, fmt.Errorf("refetching after replay: %w", err)
	}

	l.mirror(final)
	summary.State = SyncCommitted
	l.log.Info("sync pass committed",
		zap.Int("total", summary.Total),
		zap.Int("replayed", summary.Replayed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

type replayOutcome int

const (
	replayOK replayOutcome = iota
	replaySkipped
	replayFailed
)

// replay submits one pending operation to the server. Skips never reach
// the network: duplicate ADDs the server already has, and UPDATE/DELETE
// targets that only ever existed locally.
func (l *Library) replay(ctx context.Context, op types.PendingOperation, duplicates map[string]bool) replayOutcome {
	switch op.Type {
	case types.OpAdd:
		if duplicates[op.ID] {
			l.log.Debug("skipping duplicate add", zap.String("id", op.ID))
			return replaySkipped
		}
		if op.Article == nil {
			l.log.Warn("add operation without payload", zap.String("id", op.ID))
			return replayFailed
		}
		if _, err := l.remote.Add(ctx, *op.Article); err != nil {
			l.log.Warn("replaying add failed", zap.String("id", op.ID), zap.Error(err))
			return replayFailed
		}
	case types.OpUpdate:
		if types.HasTempID(op.ID) {
			return replaySkipped
		}
		if op.Article == nil {
			l.log.Warn("update operation without payload", zap.String("id", op.ID))
			return replayFailed
		}
		if _, err := l.remote.Update(ctx, op.ID, *op.Article); err != nil {
			l.log.Warn("replaying update failed", zap.String("id", op.ID), zap.Error(err))
			return replayFailed
		}
	case types.OpDelete:
		if types.HasTempID(op.ID) {
			return replaySkipped
		}
		if err := l.remote.Delete(ctx, op.ID); err != nil {
			l.log.Warn("replaying delete failed", zap.String("id", op.ID), zap.Error(err))
			return replayFailed
		}
	default:
		l.log.Warn("unknown pending operation type", zap.String("type", string(op.Type)))
		return replayFailed
	}
	return replayOK
}

// duplicateTempIDs collects ids of never-synced local articles whose
// (title, authors) key already exists in the remote baseline, typically
// because the same logical article was created server-side while the
// client was offline. Their ADD operations must not be replayed.
func (l *Library) duplicateTempIDs(baseline []types.Article) map[string]bool {
	remoteKeys := make(map[string]bool, len(baseline))
	for _, a := range baseline {
		remoteKeys[a.Key()] = true
	}

	duplicates := make(map[string]bool)
	for _, a := range l.cache.Articles() {
		if a.IsTemp() && remoteKeys[a.Key()] {
			duplicates[a.ID] = true
		}
	}
	return duplicates
}
