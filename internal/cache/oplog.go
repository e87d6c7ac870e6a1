// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"time"

	"github.com/pdiddy/article-library/pkg/types"
)

// Pending returns a snapshot of the pending-operation log in insertion
// order. Timestamps are strictly increasing, so insertion order and
// ascending-timestamp order coincide.
func (s *Store) Pending() []types.PendingOperation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.PendingOperation, len(s.pending))
	copy(out, s.pending)
	return out
}

// PendingCount returns the number of recorded offline mutations.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// ClearPending empties the log. Called once a sync pass finishes its
// replay loop, whether or not individual operations succeeded.
func (s *Store) ClearPending() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
	return s.persistClearPending()
}

// recordOperation appends a pending operation. Callers hold s.mu. The
// timestamp is wall-clock milliseconds bumped to stay strictly above the
// previous entry, so two mutations within one millisecond still replay in
// the order they happened.
func (s *Store) recordOperation(typ types.OperationType, id string, payload *types.ArticlePayload) error {
	ts := time.Now().UnixMilli()
	if ts <= s.lastTS {
		ts = s.lastTS + 1
	}
	s.lastTS = ts

	op := types.PendingOperation{Type: typ, ID: id, Article: payload, Timestamp: ts}
	s.pending = append(s.pending, op)
	return s.persistOperation(op)
}
