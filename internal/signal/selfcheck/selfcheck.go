// Package selfcheck implements the SelfCheckHandler pair (spec.md §4.4): a
// process handler watching for the synthetic self-check process, and a
// network handler watching for its socket activity. Both confirm the
// pipeline is delivering events before the collector declares itself
// healthy.
package selfcheck

import (
	"context"
	"sync/atomic"
	"time"

	"netconnd/internal/events"
	"netconnd/internal/signal"
)

// Identity is the configured self-check process identity. Either signal
// alone is sufficient — the disjunction is deliberate (spec.md §4.4): PID
// namespacing can obscure comm, so the exe path is accepted on its own.
type Identity struct {
	Comm string
	Exe  string
}

func (id Identity) matches(th events.ThreadInfo) bool {
	return (id.Comm != "" && th.Comm == id.Comm) || (id.Exe != "" && th.Exe == id.Exe)
}

// State is the per-handler start time / timeout / observed latch.
type State struct {
	start    time.Time
	timeout  time.Duration
	observed atomic.Bool
}

func newState(timeout time.Duration) *State {
	return &State{start: time.Now(), timeout: timeout}
}

// HasTimedOut reports whether now is past start+timeout. It does not look
// at Observed; callers combine the two.
func (s *State) HasTimedOut() bool {
	return time.Now().After(s.start.Add(s.timeout))
}

// Observed reports whether the handler has seen its event yet.
func (s *State) Observed() bool {
	return s.observed.Load()
}

const DefaultTimeout = 5 * time.Second

// ProcessHandler watches execve< for the self-check process.
type ProcessHandler struct {
	id    Identity
	state *State
}

func NewProcessHandler(id Identity, timeout time.Duration) *ProcessHandler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ProcessHandler{id: id, state: newState(timeout)}
}

func (h *ProcessHandler) Name() string { return "self-check-process" }

func (h *ProcessHandler) RelevantEvents() map[string]struct{} {
	return map[string]struct{}{"execve<": {}}
}

func (h *ProcessHandler) Stop() {}

func (h *ProcessHandler) State() *State { return h.state }

func (h *ProcessHandler) HandleSignal(ctx context.Context, ev events.Event) signal.Result {
	if ev.Type != "execve<" {
		return signal.Ignored
	}
	if !h.id.matches(ev.Thread) {
		return signal.Ignored
	}
	if h.state.observed.CompareAndSwap(false, true) {
		return signal.Processed
	}
	return signal.Processed
}

// NetworkHandler watches socket-lifecycle events for the self-check's own
// network activity.
type NetworkHandler struct {
	id    Identity
	state *State
}

func NewNetworkHandler(id Identity, timeout time.Duration) *NetworkHandler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &NetworkHandler{id: id, state: newState(timeout)}
}

func (h *NetworkHandler) Name() string { return "self-check-network" }

func (h *NetworkHandler) RelevantEvents() map[string]struct{} {
	return map[string]struct{}{
		"close<":      {},
		"shutdown<":   {},
		"connect<":    {},
		"accept<":     {},
		"getsockopt<": {},
	}
}

func (h *NetworkHandler) Stop() {}

func (h *NetworkHandler) State() *State { return h.state }

func (h *NetworkHandler) HandleSignal(ctx context.Context, ev events.Event) signal.Result {
	if !h.id.matches(ev.Thread) {
		return signal.Ignored
	}
	h.state.observed.CompareAndSwap(false, true)
	return signal.Processed
}
