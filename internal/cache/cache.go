// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache is the local article store and pending-operation log: an
// in-process mirror of the remote collection that keeps working when the
// backend is unreachable, optionally persisted to SQLite.
// Implements: prd002-offline-cache (R1-R5);
//
//	docs/ARCHITECTURE § Offline Cache.
package cache

import (
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/article-library/pkg/types"
)

// Store holds the cached article collection and the pending-operation log.
// All access goes through its methods; snapshots returned to callers are
// copies. A single mutex serializes mutations, so the dedup invariant
// (no two records with the same (title, authors) key) holds after every
// call.
type Store struct {
	mu       sync.Mutex
	articles []types.Article
	pending  []types.PendingOperation
	lastTS   int64
	seeded   bool
	seedable bool
	db       *sql.DB
}

// NewStore opens the cache. With a non-empty cfg.Path the backing SQLite
// database is opened (created on first use) and previously persisted
// articles and pending operations are loaded; an empty path yields a
// memory-only store.
func NewStore(cfg types.CacheConfig) (*Store, error) {
	s := &Store{seedable: cfg.Seed}

	if cfg.Path == "" {
		return s, nil
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	s.db = db

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	if err := s.loadState(); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading cache state: %w", err)
	}
	return s, nil
}

// Close releases the backing database, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Articles returns a snapshot of the collection. Callers must not assume
// mutations to the returned slice affect the store.
func (s *Store) Articles() []types.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.articles)
}

// Len returns the number of cached articles.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.articles)
}

// ReplaceAll swaps the whole collection for list, deduplicated by the
// (title, authors) key with the last occurrence winning, so freshly
// fetched server data replaces stale same-key entries that appear earlier
// in the input. No pending operation is recorded: bulk replacement is how a sync
// pass commits server state, not a user edit.
func (s *Store) ReplaceAll(list []types.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.articles = dedupeByKey(list)
	return s.persistArticles()
}

// Add inserts an article. A missing ID receives a fresh temporary one and
// a missing index receives max(existing)+1. Adding a record whose
// (title, authors) key already exists overwrites the existing record in
// place and logs a pending UPDATE instead of an ADD, so the same logical
// article added twice offline never duplicates. The stored article is
// returned.
func (s *Store) Add(article types.Article) (types.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if article.ID == "" {
		article.ID = types.NewTempID()
	}
	if article.Index <= 0 {
		article.Index = s.maxIndex() + 1
	}

	key := article.Key()
	for i := range s.articles {
		if s.articles[i].Key() == key {
			// Same logical article: keep the existing identity, take the
			// incoming editable fields.
			article.ID = s.articles[i].ID
			article.Index = s.articles[i].Index
			s.articles[i] = article
			payload := article.Payload()
			// Mirrored records have no client id; their replayable identity
			// is the server index rendered as a string, matching matchesID.
			opID := article.ID
			if opID == "" {
				opID = strconv.Itoa(article.Index)
			}
			if err := s.recordOperation(types.OpUpdate, opID, &payload); err != nil {
				return types.Article{}, err
			}
			return article, s.persistArticles()
		}
	}

	s.articles = append(s.articles, article)
	payload := article.Payload()
	if err := s.recordOperation(types.OpAdd, article.ID, &payload); err != nil {
		return types.Article{}, err
	}
	return article, s.persistArticles()
}

// Update merges payload into the record matching id and logs a pending
// UPDATE carrying the merged result. An unknown id is a no-op reported via
// the bool return.
func (s *Store) Update(id string, payload types.ArticlePayload) (types.Article, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.articles {
		if matchesID(s.articles[i], id) {
			payload.ApplyTo(&s.articles[i])
			merged := s.articles[i].Payload()
			if err := s.recordOperation(types.OpUpdate, id, &merged); err != nil {
				return types.Article{}, false, err
			}
			return s.articles[i], true, s.persistArticles()
		}
	}
	return types.Article{}, false, nil
}

// Delete removes the record matching id. A pending DELETE is logged only
// when a record was actually removed.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.articles {
		if matchesID(s.articles[i], id) {
			s.articles = append(s.articles[:i], s.articles[i+1:]...)
			if err := s.recordOperation(types.OpDelete, id, nil); err != nil {
				return false, err
			}
			return true, s.persistArticles()
		}
	}
	return false, nil
}

// SeedIfEmpty populates an empty cache with the sample articles the first
// time the client goes offline, so offline mode is never a blank page.
// Seeding happens at most once per cache and only when enabled in config.
func (s *Store) SeedIfEmpty() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seedable || s.seeded {
		return nil
	}
	if len(s.articles) == 0 {
		s.articles = snapshot(sampleArticles)
		if err := s.persistArticles(); err != nil {
			return err
		}
	}
	s.seeded = true
	return s.persistSeeded()
}

// matchesID resolves both identity forms: the client-assigned id string
// (temporary records) and the server-assigned index rendered as a string
// (persisted records).
func matchesID(a types.Article, id string) bool {
	if id == "" {
		return false
	}
	if a.ID == id {
		return true
	}
	return strconv.Itoa(a.Index) == id
}

func (s *Store) maxIndex() int {
	max := 0
	for _, a := range s.articles {
		if a.Index > max {
			max = a.Index
		}
	}
	return max
}

// dedupeByKey removes same-key duplicates keeping the last occurrence's
// value at the first occurrence's position.
func dedupeByKey(list []types.Article) []types.Article {
	seen := make(map[string]int, len(list))
	out := make([]types.Article, 0, len(list))
	for _, a := range list {
		if i, ok := seen[a.Key()]; ok {
			out[i] = a
			continue
		}
		seen[a.Key()] = len(out)
		out = append(out, a)
	}
	return out
}

func snapshot(list []types.Article) []types.Article {
	out := make([]types.Article, len(list))
	copy(out, list)
	return out
}
