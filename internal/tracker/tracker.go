// Package tracker implements the ConnectionTracker (spec.md §4.3): the
// single source of truth for the set of currently-open connections. Its
// MustRegister shape and its "reset the label vectors, then rebuild
// from the current snapshot" metric-publishing style are both taken
// directly from the teacher's ConntrackCollector in
// internal/collector/conntrack.go — only the aggregation key changed, from
// a conntrack 5-tuple to a Connection.
package tracker

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"netconnd/internal/connection"
)

type entry struct {
	firstSeenTS  int64
	lastSeenTS   int64
	openCount    int64
	pendingClosed bool
	closedAtTS   int64
}

// Tracker is the ConnectionTracker. All state is guarded by one mutex; the
// mutex is held only across map mutation, never across I/O (spec.md §5).
type Tracker struct {
	mu      sync.Mutex
	entries map[connection.Connection]*entry

	activeGauge *prometheus.GaugeVec
	eventTotal  *prometheus.CounterVec
}

func New() *Tracker {
	return &Tracker{
		entries: make(map[connection.Connection]*entry),
		activeGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netconnd_active_connections",
			Help: "Currently open connections, counted per container, protocol and role.",
		}, []string{"container_id", "proto", "role"}),
		eventTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netconnd_tracker_events_total",
			Help: "Deltas applied to the connection tracker, by kind.",
		}, []string{"kind"}),
	}
}

// MustRegister registers the tracker's metrics into reg, mirroring the
// teacher's ConntrackCollector.MustRegister.
func (t *Tracker) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(t.activeGauge, t.eventTotal)
}

// UpdateConnection applies one delta (spec.md §4.3). Removes for unknown
// connections are tolerated as no-ops: the tracker may have started
// mid-session, or the Add may have been filtered upstream.
func (t *Tracker) UpdateConnection(conn connection.Connection, tsMicros int64, isAdd bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entries[conn]
	if e == nil {
		if !isAdd {
			t.eventTotal.WithLabelValues("remove_unknown").Inc()
			return
		}
		e = &entry{firstSeenTS: tsMicros}
		t.entries[conn] = e
	}

	if isAdd {
		e.openCount++
		e.pendingClosed = false
		if tsMicros > e.lastSeenTS {
			e.lastSeenTS = tsMicros
		}
		t.eventTotal.WithLabelValues("add").Inc()
		return
	}

	if e.openCount > 0 {
		e.openCount--
		if tsMicros > e.lastSeenTS {
			e.lastSeenTS = tsMicros
		}
		if e.openCount == 0 {
			e.pendingClosed = true
			e.closedAtTS = tsMicros
		}
		t.eventTotal.WithLabelValues("remove").Inc()
	} else {
		t.eventTotal.WithLabelValues("remove_unknown").Inc()
	}
}

// Snapshot returns the currently-active set plus anything pending-closed
// since the previous snapshot, and evicts each pending-closed entry as it
// reports it, so it appears in exactly one snapshot (the one-cycle
// afterglow retention, spec.md §4.3). It also republishes the
// active-connection gauge, the same way the teacher's applySnapshot resets
// and rebuilds its GaugeVecs on every refresh.
func (t *Tracker) Snapshot() []connection.Connection {
	out, _ := t.snapshot()
	return out
}

// snapshot is Snapshot that also returns which of the returned connections
// were pending-closed (and are now evicted).
func (t *Tracker) snapshot() ([]connection.Connection, map[connection.Connection]struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]connection.Connection, 0, len(t.entries))
	closed := make(map[connection.Connection]struct{})
	t.activeGauge.Reset()

	for conn, e := range t.entries {
		if e.openCount > 0 {
			out = append(out, conn)
			t.activeGauge.WithLabelValues(conn.ContainerID, conn.Proto.String(), conn.Role.String()).Inc()
			continue
		}
		if e.pendingClosed {
			out = append(out, conn)
			closed[conn] = struct{}{}
			delete(t.entries, conn)
		}
	}

	return out, closed
}

// DiffSince computes the set difference between prev and the tracker's
// current Snapshot. A connection in prev that this snapshot reports as
// pending-closed is also returned as removed, so a close is reported in the
// first diff after it; a pending-closed connection absent from prev is
// returned as added and drops out as removed in the following diff.
func (t *Tracker) DiffSince(prev []connection.Connection) (added, removed []connection.Connection) {
	cur, closed := t.snapshot()
	added, removed = diff(prev, cur)
	for _, c := range prev {
		if _, ok := closed[c]; ok {
			removed = append(removed, c)
		}
	}
	return added, removed
}

func diff(prev, cur []connection.Connection) (added, removed []connection.Connection) {
	prevSet := make(map[connection.Connection]struct{}, len(prev))
	for _, c := range prev {
		prevSet[c] = struct{}{}
	}
	curSet := make(map[connection.Connection]struct{}, len(cur))
	for _, c := range cur {
		curSet[c] = struct{}{}
	}

	for _, c := range cur {
		if _, ok := prevSet[c]; !ok {
			added = append(added, c)
		}
	}
	for _, c := range prev {
		if _, ok := curSet[c]; !ok {
			removed = append(removed, c)
		}
	}
	return added, removed
}

// LastSeenTS returns the last timestamp applied to conn's entry (0 if
// unknown), letting tests assert the monotonic last_seen_ts contract
// without reaching into the unexported entry type.
func (t *Tracker) LastSeenTS(conn connection.Connection) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[conn]
	if !ok {
		return 0, false
	}
	return e.lastSeenTS, true
}

// OpenCount returns the current open_count for conn (0 if unknown).
func (t *Tracker) OpenCount(conn connection.Connection) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[conn]
	if !ok {
		return 0
	}
	return e.openCount
}
