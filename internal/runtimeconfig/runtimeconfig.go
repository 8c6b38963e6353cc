// Package runtimeconfig holds the process-wide configuration snapshot that
// the control client writes and everyone else reads (spec.md §4.6). There
// is exactly one committed snapshot, one writer, and many readers; readers
// on the hot event path must never block.
package runtimeconfig

import (
	"net/netip"
	"sync"
	"time"

	"netconnd/internal/connection"
	"netconnd/internal/netaddr"
)

// FilterAction is what a Filter does to a matching Connection.
type FilterAction uint8

const (
	Ignore FilterAction = iota
	Include
)

// Filter is one entry of an upstream-pushed RuntimeFilteringConfiguration.
type Filter struct {
	CIDR     netip.Prefix
	PortLow  uint16
	PortHigh uint16
	Action   FilterAction
}

func (f Filter) matchesPort(port uint16) bool {
	if f.PortLow == 0 && f.PortHigh == 0 {
		return true // an all-zero range means "any port"
	}
	return port >= f.PortLow && port <= f.PortHigh
}

func (f Filter) matchesAddr(addr netaddr.Address) bool {
	if !f.CIDR.IsValid() {
		return true
	}
	ip, ok := toNetipAddr(addr)
	if !ok {
		return false
	}
	return f.CIDR.Contains(ip)
}

func toNetipAddr(a netaddr.Address) (netip.Addr, bool) {
	switch a.Family {
	case netaddr.FamilyIPv4:
		return netip.AddrFrom4([4]byte{byte(a.Lo >> 24), byte(a.Lo >> 16), byte(a.Lo >> 8), byte(a.Lo)}), true
	case netaddr.FamilyIPv6:
		var b [16]byte
		for i := 0; i < 8; i++ {
			b[i] = byte(a.Hi >> (8 * (7 - i)))
		}
		for i := 0; i < 8; i++ {
			b[8+i] = byte(a.Lo >> (8 * (7 - i)))
		}
		return netip.AddrFrom16(b), true
	default:
		return netip.Addr{}, false
	}
}

// Config is one committed snapshot pushed by the upstream sensor.
type Config struct {
	ClusterID string
	Filters   []Filter
}

// Matches reports whether conn is "of interest": true unless an Ignore
// filter matches either endpoint of the connection. Include filters are
// informational overrides for future use and never exclude a connection.
func (c Config) Matches(conn connection.Connection) bool {
	for _, f := range c.Filters {
		if f.Action != Ignore {
			continue
		}
		if matchesEndpoint(f, conn.Local) || matchesEndpoint(f, conn.Remote) {
			return false
		}
	}
	return true
}

func matchesEndpoint(f Filter, ep netaddr.Endpoint) bool {
	return f.matchesAddr(ep.Addr) && f.matchesPort(ep.Port)
}

// RuntimeConfig is the process-wide singleton: a single-cell holder with
// copy-on-write publish plus a one-shot latch for the first-init wait,
// exactly the strategy spec.md §9 calls for.
type RuntimeConfig struct {
	mu          sync.Mutex
	cond        *sync.Cond
	current     *Config
	initialized bool
}

func New() *RuntimeConfig {
	rc := &RuntimeConfig{}
	rc.cond = sync.NewCond(&rc.mu)
	return rc
}

// Update atomically replaces the snapshot, sets the latch, and wakes all
// waiters. Safe to call only from the control client (single writer).
func (rc *RuntimeConfig) Update(cfg Config) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	cp := cfg
	cp.Filters = append([]Filter(nil), cfg.Filters...)
	rc.current = &cp
	rc.initialized = true
	rc.cond.Broadcast()
}

// Current is a non-blocking read of the latest snapshot. It is empty
// (ok == false) until the first Update.
func (rc *RuntimeConfig) Current() (Config, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.current == nil {
		return Config{}, false
	}
	return *rc.current, true
}

// WaitUntilInitialized blocks until the latch is set, up to timeout.
// Returns true if initialized, false on timeout (timeout <= 0 means "don't
// block at all", matching the property that WaitUntilInitialized(0) must
// return false iff Update has never been called).
func (rc *RuntimeConfig) WaitUntilInitialized(timeout time.Duration) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.initialized {
		return true
	}
	if timeout <= 0 {
		return false
	}

	deadline := time.Now().Add(timeout)
	timer := time.AfterFunc(timeout, func() {
		rc.mu.Lock()
		rc.cond.Broadcast()
		rc.mu.Unlock()
	})
	defer timer.Stop()

	for !rc.initialized && time.Now().Before(deadline) {
		rc.cond.Wait()
	}
	return rc.initialized
}

// MatchesOrDefault returns cfg.Matches for the current snapshot, or "accept
// all" (true) if no snapshot has been committed yet — the relevance filter
// on the hot path must never block waiting for the first Update.
func (rc *RuntimeConfig) MatchesOrDefault(conn connection.Connection) bool {
	cfg, ok := rc.Current()
	if !ok {
		return true
	}
	return cfg.Matches(conn)
}
