// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import "github.com/pdiddy/article-library/pkg/types"

// sampleArticles seed an empty cache when the client first goes offline.
// They are ordinary records with non-temporary IDs, so sync treats them
// like any other already-persisted article.
var sampleArticles = []types.Article{
	{
		Authors:     "John Smith, Jane Doe",
		Title:       "Introduction to Offline First Applications",
		Journal:     "Web Development Journal",
		Abstract:    "This paper introduces the concept of offline-first applications and discusses various strategies for implementing offline support in web applications.",
		Year:        2023,
		Citations:   45,
		Coordinates: types.Coordinates{X: 0.1, Y: 0.2},
		Index:       1,
		ID:          "sample-1",
	},
	{
		Authors:     "Alice Johnson, Bob Brown",
		Title:       "Local Storage Techniques for Web Applications",
		Journal:     "Modern JavaScript Monthly",
		Abstract:    "An overview of different storage mechanisms available in modern browsers, with focus on IndexedDB and localStorage API.",
		Year:        2022,
		Citations:   32,
		Coordinates: types.Coordinates{X: 0.3, Y: 0.4},
		Index:       2,
		ID:          "sample-2",
	},
	{
		Authors:     "David Williams, Sarah Miller",
		Title:       "Service Workers: The Key to Offline Web Applications",
		Journal:     "Progressive Web App Digest",
		Abstract:    "This paper explores how Service Workers can be utilized to create fully functional offline experiences in web applications.",
		Year:        2021,
		Citations:   78,
		Coordinates: types.Coordinates{X: 0.5, Y: 0.6},
		Index:       3,
		ID:          "sample-3",
	},
}
