// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "article-library/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RemoteConfig holds settings for the remote article-collection API.
type RemoteConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the root of the remote API (e.g. "http://localhost:8000").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Token is an optional bearer token sent with every request. Usually
	// loaded from .secrets/library-token rather than the config file.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// CacheConfig holds settings for the local article cache.
type CacheConfig struct {
	// Path is the SQLite database file backing the cache. Empty means
	// memory-only: state does not survive the process.
	Path string `json:"path" yaml:"path"`

	// Seed controls whether an empty cache is seeded with sample articles
	// when the client goes offline (default true).
	Seed bool `json:"seed" yaml:"seed"`
}

// ConnectivityConfig holds settings for the connectivity monitor.
type ConnectivityConfig struct {
	// PingInterval is the period between health checks (default 10s).
	PingInterval time.Duration `json:"ping_interval" yaml:"ping_interval"`

	// HealthTimeout bounds a single health request (default 5s). Expiry
	// counts as server-unavailable.
	HealthTimeout time.Duration `json:"health_timeout" yaml:"health_timeout"`
}

// ServeConfig holds settings for the local API surface.
type ServeConfig struct {
	// Listen is the address the local server binds (default "127.0.0.1:8600").
	Listen string `json:"listen" yaml:"listen"`
}

// LibraryConfig groups all component configurations for the client.
type LibraryConfig struct {
	Remote       RemoteConfig       `json:"remote" yaml:"remote"`
	Cache        CacheConfig        `json:"cache" yaml:"cache"`
	Connectivity ConnectivityConfig `json:"connectivity" yaml:"connectivity"`
	Serve        ServeConfig        `json:"serve" yaml:"serve"`
}
