// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/article-library/pkg/types"
)

func testClient(ts *httptest.Server) *Client {
	return &Client{
		BaseURL:   ts.URL,
		Token:     "tk_test",
		UserAgent: "article-library/test",
		HTTP:      ts.Client(),
	}
}

func TestNewClientBoundsRequestsByDefault(t *testing.T) {
	c := NewClient(types.RemoteConfig{BaseURL: "http://localhost:8000"})
	if c.HTTP.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.HTTP.Timeout, DefaultTimeout)
	}

	cfg := types.RemoteConfig{BaseURL: "http://localhost:8000"}
	cfg.Timeout = 2 * time.Second
	if got := NewClient(cfg).HTTP.Timeout; got != 2*time.Second {
		t.Errorf("Timeout = %v, want %v", got, 2*time.Second)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"no content", http.StatusNoContent, false},
		{"server error", http.StatusInternalServerError, true},
		{"not found", http.StatusNotFound, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("path = %q, want /health", r.URL.Path)
				}
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			err := testClient(ts).Health(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Health() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHealthTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	ts.Close() // connection refused from here on

	c := testClient(ts)
	c.HTTP = &http.Client{Timeout: time.Second}
	if err := c.Health(context.Background()); err == nil {
		t.Fatal("Health() against a closed server should fail")
	}
}

func TestAllSendsAuthAndDecodes(t *testing.T) {
	want := []types.Article{
		{Title: "Paper A", Authors: "X", Index: 1},
		{Title: "Paper B", Authors: "Y", Index: 2},
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/all_articles" {
			t.Errorf("path = %q, want /all_articles", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tk_test" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		json.NewEncoder(w).Encode(want)
	}))
	defer ts.Close()

	got, err := testClient(ts).All(context.Background())
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Paper A" || got[1].Index != 2 {
		t.Errorf("All() = %+v, want %+v", got, want)
	}
}

func TestAddPostsPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/add_article" {
			t.Errorf("got %s %s, want POST /add_article", r.Method, r.URL.Path)
		}
		var p types.ArticlePayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatalf("decoding payload: %v", err)
		}
		if p.Title != "New Paper" || p.Citations != 7 {
			t.Errorf("payload = %+v", p)
		}
		json.NewEncoder(w).Encode(types.Article{Title: p.Title, Authors: p.Authors, Index: 42})
	}))
	defer ts.Close()

	created, err := testClient(ts).Add(context.Background(), types.ArticlePayload{
		Title: "New Paper", Authors: "Z", Citations: 7,
	})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if created.Index != 42 {
		t.Errorf("created.Index = %d, want server-assigned 42", created.Index)
	}
}

func TestUpdateAndDeleteTargetID(t *testing.T) {
	var gotMethod, gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		json.NewEncoder(w).Encode(types.Article{Index: 5})
	}))
	defer ts.Close()

	c := testClient(ts)
	if _, err := c.Update(context.Background(), "5", types.ArticlePayload{Title: "T"}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/articles/5" {
		t.Errorf("got %s %s, want PUT /articles/5", gotMethod, gotPath)
	}

	if err := c.Delete(context.Background(), "5"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/articles/5" {
		t.Errorf("got %s %s, want DELETE /articles/5", gotMethod, gotPath)
	}
}

func TestReadVariantsEncodeParams(t *testing.T) {
	var gotURL string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.Write([]byte("[]"))
	}))
	defer ts.Close()

	c := testClient(ts)
	ctx := context.Background()

	if _, err := c.Search(ctx, "offline first"); err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if gotURL != "/search?query=offline+first" {
		t.Errorf("search URL = %q", gotURL)
	}

	if _, err := c.Sorted(ctx, "citations", "desc"); err != nil {
		t.Fatalf("Sorted() error: %v", err)
	}
	if gotURL != "/sorted_articles?order=desc&sort_by=citations" {
		t.Errorf("sorted URL = %q", gotURL)
	}

	if _, err := c.ByYear(ctx, 2023); err != nil {
		t.Fatalf("ByYear() error: %v", err)
	}
	if gotURL != "/articles_by_year?year=2023" {
		t.Errorf("by-year URL = %q", gotURL)
	}
}

func TestAPIErrorExtractsDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": "year must be positive"}`))
	}))
	defer ts.Close()

	_, err := testClient(ts).Add(context.Background(), types.ArticlePayload{Title: "Bad"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want 422", apiErr.Status)
	}
	if apiErr.Message != "year must be positive" {
		t.Errorf("Message = %q, want detail text", apiErr.Message)
	}
}

func TestAPIErrorRawBodyFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer ts.Close()

	_, err := testClient(ts).All(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Message != "upstream unavailable" {
		t.Errorf("Message = %q, want raw body", apiErr.Message)
	}
}
