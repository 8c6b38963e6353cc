package signal

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"netconnd/internal/events"
	"netconnd/internal/logging"
)

type stubHandler struct {
	name    string
	types   map[string]struct{}
	results []Result
	calls   int
}

func (h *stubHandler) Name() string                          { return h.name }
func (h *stubHandler) RelevantEvents() map[string]struct{}   { return h.types }
func (h *stubHandler) Stop()                                 { h.calls = -1 }
func (h *stubHandler) HandleSignal(ctx context.Context, ev events.Event) Result {
	h.calls++
	return h.results[0]
}

func discardLogger() *logging.Logger {
	return logging.New(io.Discard, logging.Debug, logging.Logfmt)
}

func TestRouter_DispatchesOnlyToInterestedHandlers(t *testing.T) {
	r := NewRouter(discardLogger())
	a := &stubHandler{name: "a", types: map[string]struct{}{"accept<": {}}, results: []Result{Processed}}
	b := &stubHandler{name: "b", types: map[string]struct{}{"execve<": {}}, results: []Result{Processed}}
	r.Register(a)
	r.Register(b)

	r.Dispatch(context.Background(), events.Event{Type: "accept<"})

	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls)
}

func TestRouter_DropsEventsNoHandlerWantsWithoutCallingAnyone(t *testing.T) {
	r := NewRouter(discardLogger())
	a := &stubHandler{name: "a", types: map[string]struct{}{"accept<": {}}, results: []Result{Processed}}
	r.Register(a)

	r.Dispatch(context.Background(), events.Event{Type: "close<"})

	assert.Equal(t, 0, a.calls)
}

func TestRouter_TracksPerHandlerStats(t *testing.T) {
	r := NewRouter(discardLogger())
	a := &stubHandler{name: "a", types: map[string]struct{}{"accept<": {}}, results: []Result{Ignored}}
	r.Register(a)

	r.Dispatch(context.Background(), events.Event{Type: "accept<"})

	stats := r.Stats()
	assert.EqualValues(t, 1, stats["a"].Ignored)
	assert.EqualValues(t, 0, stats["a"].Processed)
}

func TestRouter_StopCallsEveryHandler(t *testing.T) {
	r := NewRouter(discardLogger())
	a := &stubHandler{name: "a", types: map[string]struct{}{}, results: []Result{Processed}}
	r.Register(a)

	r.Stop()

	assert.Equal(t, -1, a.calls)
}
