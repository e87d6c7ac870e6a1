// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package connectivity tracks whether the client should operate in offline
// mode, combining network reachability with periodic backend health checks.
// Implements: prd004-connectivity (R1-R3);
//
//	docs/ARCHITECTURE § Connectivity Monitor.
package connectivity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pdiddy/article-library/pkg/types"
)

// Prober performs a single backend health check. remote.Client implements
// it; tests substitute their own.
type Prober interface {
	Health(ctx context.Context) error
}

// State is a point-in-time snapshot of connectivity.
type State struct {
	Online          bool      `json:"online"`
	ServerAvailable bool      `json:"server_available"`
	LastChecked     time.Time `json:"last_checked"`
}

// Offline is the single predicate the rest of the client gates on.
func (s State) Offline() bool {
	return !s.Online || !s.ServerAvailable
}

const (
	defaultPingInterval  = 10 * time.Second
	defaultHealthTimeout = 5 * time.Second
)

// Monitor owns the connectivity state. It starts optimistic (online,
// server available) and is updated by explicit signals and by the periodic
// health check. Transition hooks run outside the lock: onOffline when the
// predicate flips to offline (used to seed the cache), onRecovery when the
// server becomes reachable again (used to trigger a sync pass).
type Monitor struct {
	prober  Prober
	timeout time.Duration
	log     *zap.Logger

	interval  time.Duration
	scheduler *cron.Cron

	onOffline  func()
	onRecovery func()

	mu              sync.Mutex
	online          bool
	serverAvailable bool
	lastChecked     time.Time
}

// NewMonitor builds a Monitor. Zero durations in cfg fall back to the
// 10 s ping interval and 5 s health timeout.
func NewMonitor(cfg types.ConnectivityConfig, prober Prober, log *zap.Logger) *Monitor {
	interval := cfg.PingInterval
	if interval <= 0 {
		interval = defaultPingInterval
	}
	timeout := cfg.HealthTimeout
	if timeout <= 0 {
		timeout = defaultHealthTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Monitor{
		prober:          prober,
		timeout:         timeout,
		log:             log,
		interval:        interval,
		online:          true,
		serverAvailable: true,
	}
}

// OnOffline registers the hook invoked when the offline predicate flips
// true. Must be called before Start.
func (m *Monitor) OnOffline(fn func()) { m.onOffline = fn }

// OnRecovery registers the hook invoked when the server becomes reachable
// again while the network is up. Must be called before Start.
func (m *Monitor) OnRecovery(fn func()) { m.onRecovery = fn }

// SetOnline records a network reachability signal. Regaining the network
// triggers an immediate out-of-band health check, since the scheduled one
// may be seconds away.
func (m *Monitor) SetOnline(status bool) {
	m.mu.Lock()
	wasOffline := m.offlineLocked()
	m.online = status
	nowOffline := m.offlineLocked()
	m.mu.Unlock()

	m.log.Info("network reachability changed", zap.Bool("online", status))
	switch {
	case !wasOffline && nowOffline:
		m.fireOffline()
	case wasOffline && !nowOffline:
		// The server stayed available through the blip, so no health
		// flip will signal recovery.
		m.log.Info("network restored, leaving offline mode")
		if m.onRecovery != nil {
			m.onRecovery()
		}
	}
	if status {
		go m.Check(context.Background())
	}
}

// SetServerAvailable records a health-check outcome (or an observed
// transport failure from a regular API call).
func (m *Monitor) SetServerAvailable(status bool) {
	m.mu.Lock()
	wasOffline := m.offlineLocked()
	m.serverAvailable = status
	m.lastChecked = time.Now()
	nowOffline := m.offlineLocked()
	m.mu.Unlock()

	switch {
	case !wasOffline && nowOffline:
		m.log.Warn("server unavailable, entering offline mode")
		m.fireOffline()
	case wasOffline && !nowOffline:
		m.log.Info("server reachable again, leaving offline mode")
		if m.onRecovery != nil {
			m.onRecovery()
		}
	}
}

// Check performs one bounded health probe and folds the outcome into the
// state. It never returns an error: a timeout, a transport failure and a
// non-2xx response all mean the same thing, the server is unavailable.
func (m *Monitor) Check(ctx context.Context) {
	m.mu.Lock()
	online := m.online
	m.mu.Unlock()

	if !online {
		m.SetServerAvailable(false)
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.prober.Health(probeCtx)
	if err != nil {
		m.log.Debug("health check failed", zap.Error(err))
	}
	m.SetServerAvailable(err == nil)
}

// Offline reports whether the client should serve from the local cache.
func (m *Monitor) Offline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offlineLocked()
}

// Snapshot returns the current state for status surfaces.
func (m *Monitor) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		Online:          m.online,
		ServerAvailable: m.serverAvailable,
		LastChecked:     m.lastChecked,
	}
}

// Start schedules the recurring health check and runs one immediately.
func (m *Monitor) Start() error {
	m.scheduler = cron.New()
	spec := fmt.Sprintf("@every %s", m.interval)
	if _, err := m.scheduler.AddFunc(spec, func() {
		m.Check(context.Background())
	}); err != nil {
		return fmt.Errorf("scheduling health check: %w", err)
	}
	m.scheduler.Start()
	go m.Check(context.Background())

	m.log.Info("connectivity monitor started", zap.Duration("interval", m.interval))
	return nil
}

// Stop halts the recurring health check. In-flight checks finish on their
// own.
func (m *Monitor) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
}

func (m *Monitor) offlineLocked() bool {
	return !m.online || !m.serverAvailable
}

func (m *Monitor) fireOffline() {
	if m.onOffline != nil {
		m.onOffline()
	}
}
