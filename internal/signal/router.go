// Package signal implements the event demultiplexer: it classifies each
// raw event and dispatches it to every registered handler whose filter
// declares interest in that event type (spec.md §4.1).
package signal

import (
	"context"
	"sync"
	"sync/atomic"

	"netconnd/internal/events"
	"netconnd/internal/logging"
)

// Result is a handler's verdict on a single event.
type Result uint8

const (
	Processed Result = iota
	Ignored
	Error
)

func (r Result) String() string {
	switch r {
	case Processed:
		return "processed"
	case Ignored:
		return "ignored"
	default:
		return "error"
	}
}

// Handler is the capability set every concrete signal handler implements
// (NetworkSignalHandler, SelfCheckProcessHandler, SelfCheckNetworkHandler).
// It mirrors the polymorphic SignalHandler design note in spec.md §9 as a
// Go interface rather than a class hierarchy.
type Handler interface {
	Name() string
	RelevantEvents() map[string]struct{}
	HandleSignal(ctx context.Context, ev events.Event) Result
	Stop()
}

type handlerStats struct {
	processed uint64
	ignored   uint64
	errors    uint64
}

func (s *handlerStats) record(r Result) {
	switch r {
	case Processed:
		atomic.AddUint64(&s.processed, 1)
	case Ignored:
		atomic.AddUint64(&s.ignored, 1)
	default:
		atomic.AddUint64(&s.errors, 1)
	}
}

// Counts is a point-in-time read of a handler's result counters.
type Counts struct {
	Processed, Ignored, Errors uint64
}

// Router is the EventRouter: it precomputes, per event type, which
// registered handlers care about it, so the hot dispatch path is a map
// lookup plus a slice walk in registration order — no per-handler filter
// check on events nobody asked for.
type Router struct {
	log *logging.Logger

	mu       sync.RWMutex
	handlers []Handler
	byType   map[string][]Handler
	stats    map[string]*handlerStats
}

func NewRouter(log *logging.Logger) *Router {
	return &Router{
		log:    log,
		byType: make(map[string][]Handler),
		stats:  make(map[string]*handlerStats),
	}
}

// Register adds a handler and folds its filter into the global filter.
// Registration order is preserved as dispatch order for a given event type.
func (r *Router) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers = append(r.handlers, h)
	r.stats[h.Name()] = &handlerStats{}
	for evType := range h.RelevantEvents() {
		r.byType[evType] = append(r.byType[evType], h)
	}
}

// Dispatch routes a single event to every handler that declared interest in
// its type. Events outside the global filter are dropped before any
// handler is consulted.
func (r *Router) Dispatch(ctx context.Context, ev events.Event) {
	r.mu.RLock()
	targets := r.byType[ev.Type]
	r.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	for _, h := range targets {
		res := h.HandleSignal(ctx, ev)
		r.mu.RLock()
		st := r.stats[h.Name()]
		r.mu.RUnlock()
		if st != nil {
			st.record(res)
		}
		if res == Error {
			r.log.Warn("handler reported error", "handler", h.Name(), "event", ev.Type)
		}
	}
}

// Stats returns a snapshot of per-handler result counts, for observability.
func (r *Router) Stats() map[string]Counts {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Counts, len(r.stats))
	for name, st := range r.stats {
		out[name] = Counts{
			Processed: atomic.LoadUint64(&st.processed),
			Ignored:   atomic.LoadUint64(&st.ignored),
			Errors:    atomic.LoadUint64(&st.errors),
		}
	}
	return out
}

// Stop calls Stop on every registered handler, in registration order.
func (r *Router) Stop() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.handlers {
		h.Stop()
	}
}
