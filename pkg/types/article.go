// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the article-library client.
// Implements: prd001-article-model (Article, ArticlePayload);
//
//	prd002-offline-cache (PendingOperation);
//	See docs/ARCHITECTURE § Data Model.
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempIDPrefix marks client-assigned identities for articles created while
// offline. A record whose ID carries this prefix has never been persisted
// remotely; the server discards it during sync in favor of its own index.
const TempIDPrefix = "temp-"

// Coordinates is a 2-D point used by the visualization layer. It is carried
// opaquely: the client never computes or validates it.
type Coordinates struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Article is the core bibliographic record, matching the remote API's JSON
// shape. Index is the server-assigned stable identity once persisted; ID is
// a client-assigned temporary identity present only for not-yet-synced
// records.
type Article struct {
	Authors     string      `json:"authors" yaml:"authors"`
	Title       string      `json:"title" yaml:"title"`
	Journal     string      `json:"journal" yaml:"journal"`
	Abstract    string      `json:"abstract" yaml:"abstract"`
	Year        int         `json:"year" yaml:"year"`
	Citations   int         `json:"citations" yaml:"citations"`
	Coordinates Coordinates `json:"coordinates" yaml:"coordinates"`
	Embedding   []float64   `json:"embedding,omitempty" yaml:"embedding,omitempty"`
	Index       int         `json:"index" yaml:"index"`
	ID          string      `json:"id,omitempty" yaml:"id,omitempty"`
}

// Key returns the case-insensitive (title, authors) dedup key. Two records
// with the same key are the same logical article regardless of ID or Index.
func (a Article) Key() string {
	return strings.ToLower(a.Title) + "|" + strings.ToLower(a.Authors)
}

// IsTemp reports whether the article carries a client-assigned temporary ID.
func (a Article) IsTemp() bool {
	return HasTempID(a.ID)
}

// Payload returns the user-editable subset of the article, suitable for a
// POST/PUT body or a pending-operation record.
func (a Article) Payload() ArticlePayload {
	return ArticlePayload{
		Title:     a.Title,
		Authors:   a.Authors,
		Journal:   a.Journal,
		Abstract:  a.Abstract,
		Year:      a.Year,
		Citations: a.Citations,
	}
}

// HasTempID reports whether id is a client-assigned temporary identity.
func HasTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// NewTempID returns a fresh temporary identity: temp-<unix-ms>-<random>.
// The timestamp keeps IDs roughly ordered; the random suffix makes
// collisions within one millisecond impossible in practice.
func NewTempID() string {
	return fmt.Sprintf("%s%d-%s", TempIDPrefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}

// ArticlePayload is the user-editable subset of an Article: the fields a
// caller may set on add or update. Coordinates, Embedding, Index, and ID are
// owned by the server or the cache and never travel in a payload.
type ArticlePayload struct {
	Title     string `json:"title" yaml:"title"`
	Authors   string `json:"authors" yaml:"authors"`
	Journal   string `json:"journal" yaml:"journal"`
	Abstract  string `json:"abstract" yaml:"abstract"`
	Year      int    `json:"year" yaml:"year"`
	Citations int    `json:"citations" yaml:"citations"`
}

// Key returns the same dedup key as Article.Key.
func (p ArticlePayload) Key() string {
	return strings.ToLower(p.Title) + "|" + strings.ToLower(p.Authors)
}

// ApplyTo merges the payload's fields into a, leaving server-owned fields
// untouched.
func (p ArticlePayload) ApplyTo(a *Article) {
	a.Title = p.Title
	a.Authors = p.Authors
	a.Journal = p.Journal
	a.Abstract = p.Abstract
	a.Year = p.Year
	a.Citations = p.Citations
}
