// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package remote is the HTTP client for the article-collection API.
// Implements: prd003-remote-api (R1-R4);
//
//	docs/ARCHITECTURE § Remote API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/article-library/internal/httputil"
	"github.com/pdiddy/article-library/pkg/types"
)

// APIError is a non-2xx response from the remote API. The body's "detail"
// field, when present, becomes the message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote API: HTTP %d: %s", e.Status, e.Message)
}

// Client talks to the remote article-collection API. A zero Token disables
// the Authorization header.
type Client struct {
	BaseURL   string
	Token     string
	UserAgent string
	HTTP      *http.Client
}

// DefaultTimeout bounds a request when the config leaves the timeout
// unset. A sync pass replays one call at a time, so an unbounded request
// would stall the whole pass.
const DefaultTimeout = 30 * time.Second

// NewClient builds a Client from config. The HTTP client carries the
// configured request timeout, which also bounds each replay call during a
// sync pass.
func NewClient(cfg types.RemoteConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:   cfg.BaseURL,
		Token:     cfg.Token,
		UserAgent: cfg.UserAgent,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

// Health probes GET /health. Any 2xx means healthy; everything else,
// including transport failures, is an error. The caller bounds the probe
// with its context.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer httputil.DrainClose(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: "health check failed"}
	}
	return nil
}

// All fetches the full remote collection.
func (c *Client) All(ctx context.Context) ([]types.Article, error) {
	var articles []types.Article
	if err := c.getJSON(ctx, "/all_articles", &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// Add submits a new article. The server assigns the permanent index.
func (c *Client) Add(ctx context.Context, payload types.ArticlePayload) (types.Article, error) {
	var created types.Article
	if err := c.writeJSON(ctx, http.MethodPost, "/add_article", payload, &created); err != nil {
		return types.Article{}, err
	}
	return created, nil
}

// Update replaces the user-editable fields of the article identified by id.
func (c *Client) Update(ctx context.Context, id string, payload types.ArticlePayload) (types.Article, error) {
	var updated types.Article
	path := "/articles/" + url.PathEscape(id)
	if err := c.writeJSON(ctx, http.MethodPut, path, payload, &updated); err != nil {
		return types.Article{}, err
	}
	return updated, nil
}

// Delete removes the article identified by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	path := "/articles/" + url.PathEscape(id)
	return c.writeJSON(ctx, http.MethodDelete, path, nil, nil)
}

// Search runs a server-side substring search.
func (c *Client) Search(ctx context.Context, query string) ([]types.Article, error) {
	var articles []types.Article
	path := "/search?query=" + url.QueryEscape(query)
	if err := c.getJSON(ctx, path, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// Sorted fetches the collection sorted server-side by field and order.
func (c *Client) Sorted(ctx context.Context, field, order string) ([]types.Article, error) {
	var articles []types.Article
	params := url.Values{"sort_by": {field}, "order": {order}}
	if err := c.getJSON(ctx, "/sorted_articles?"+params.Encode(), &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// ByYear fetches the articles published in year.
func (c *Client) ByYear(ctx context.Context, year int) ([]types.Article, error) {
	var articles []types.Article
	path := "/articles_by_year?year=" + strconv.Itoa(year)
	if err := c.getJSON(ctx, path, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// ByIndex fetches a single article by its server-assigned index.
func (c *Client) ByIndex(ctx context.Context, index int) (types.Article, error) {
	var article types.Article
	if err := c.getJSON(ctx, "/article/"+strconv.Itoa(index), &article); err != nil {
		return types.Article{}, err
	}
	return article, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(ctx, req, out)
}

func (c *Client) writeJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s response: %w", req.URL.Path, err)
	}
	return nil
}

// readAPIError turns an error response into an APIError, preferring the
// body's "detail" field over the raw text.
func readAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	message := string(data)

	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &detail); err == nil && detail.Detail != "" {
		message = detail.Detail
	}

	return &APIError{Status: resp.StatusCode, Message: message}
}
