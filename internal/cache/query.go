// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"sort"
	"strings"

	"github.com/pdiddy/article-library/pkg/types"
)

// Search returns articles whose title, abstract, authors, or journal
// contains query, case-insensitively. Store order is preserved.
func (s *Store) Search(query string) []types.Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	var out []types.Article
	for _, a := range s.articles {
		if strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strings.ToLower(a.Abstract), q) ||
			strings.Contains(strings.ToLower(a.Authors), q) ||
			strings.Contains(strings.ToLower(a.Journal), q) {
			out = append(out, a)
		}
	}
	return out
}

// ByYear returns the articles published in year, in store order.
func (s *Store) ByYear(year int) []types.Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []types.Article
	for _, a := range s.articles {
		if a.Year == year {
			out = append(out, a)
		}
	}
	return out
}

// ByIndex returns the article with the given server-assigned index.
func (s *Store) ByIndex(index int) (types.Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.articles {
		if a.Index == index {
			return a, true
		}
	}
	return types.Article{}, false
}

// SortedBy returns a copy of the collection sorted by field. String fields
// compare lexically, numeric fields numerically; order "desc" flips the
// comparator. An unknown field returns the collection unsorted.
func (s *Store) SortedBy(field, order string) []types.Article {
	s.mu.Lock()
	out := snapshot(s.articles)
	s.mu.Unlock()

	cmp := comparatorFor(field)
	if cmp == nil {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if order == "desc" {
			return c > 0
		}
		return c < 0
	})
	return out
}

// comparatorFor maps a sort field to a three-way comparison, or nil for
// unknown fields.
func comparatorFor(field string) func(a, b types.Article) int {
	switch field {
	case "title":
		return func(a, b types.Article) int { return strings.Compare(a.Title, b.Title) }
	case "authors":
		return func(a, b types.Article) int { return strings.Compare(a.Authors, b.Authors) }
	case "journal":
		return func(a, b types.Article) int { return strings.Compare(a.Journal, b.Journal) }
	case "abstract":
		return func(a, b types.Article) int { return strings.Compare(a.Abstract, b.Abstract) }
	case "year":
		return func(a, b types.Article) int { return a.Year - b.Year }
	case "citations":
		return func(a, b types.Article) int { return a.Citations - b.Citations }
	case "index":
		return func(a, b types.Article) int { return a.Index - b.Index }
	default:
		return nil
	}
}
