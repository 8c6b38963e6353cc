package network

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"netconnd/internal/connection"
	"netconnd/internal/events"
	"netconnd/internal/logging"
	"netconnd/internal/netaddr"
	"netconnd/internal/runtimeconfig"
	"netconnd/internal/signal"
	"netconnd/internal/tracker"
)

func newHandler() (*Handler, *tracker.Tracker) {
	log := logging.New(io.Discard, logging.Debug, logging.Logfmt)
	tr := tracker.New()
	rc := runtimeconfig.New()
	return New(log, tr, rc), tr
}

func baseEvent(evType string) events.Event {
	ret := int64(0)
	return events.Event{
		Type:             evType,
		TimestampMicros:  1,
		HasSyscallReturn: true,
		SyscallReturn:    ret,
		HasFD:            true,
		FD: events.FDInfo{
			Kind:    events.FDIPv4Sock,
			Role:    connection.RoleServer,
			Proto:   connection.ProtoTCP,
			SrcIP:   netaddr.FromIPv4(10, 0, 0, 1),
			SrcPort: 8080,
			DstIP:   netaddr.FromIPv4(10, 0, 0, 2),
			DstPort: 51000,
		},
		Thread: events.ThreadInfo{ContainerID: "c1", HasContainerID: true},
	}
}

func TestHandleSignal_AcceptedConnectionUpdatesTracker(t *testing.T) {
	h, tr := newHandler()

	res := h.HandleSignal(context.Background(), baseEvent("accept<"))

	assert.Equal(t, signal.Processed, res)
	assert.Equal(t, 1, len(tr.Snapshot()))
}

func TestHandleSignal_IgnoresEventsOutsideItsFilter(t *testing.T) {
	h, _ := newHandler()
	res := h.HandleSignal(context.Background(), baseEvent("execve<"))
	assert.Equal(t, signal.Ignored, res)
}

func TestHandleSignal_IgnoresNegativeSyscallReturn(t *testing.T) {
	h, tr := newHandler()
	ev := baseEvent("connect<")
	ev.SyscallReturn = -1

	res := h.HandleSignal(context.Background(), ev)

	assert.Equal(t, signal.Ignored, res)
	assert.Empty(t, tr.Snapshot())
}

func TestHandleSignal_IgnoresEventsWithoutContainerID(t *testing.T) {
	h, _ := newHandler()
	ev := baseEvent("accept<")
	ev.Thread.HasContainerID = false

	assert.Equal(t, signal.Ignored, h.HandleSignal(context.Background(), ev))
}

func TestHandleSignal_ClientRoleOrientsLocalAsClientEndpoint(t *testing.T) {
	h, tr := newHandler()
	ev := baseEvent("connect<")
	ev.FD.Role = connection.RoleClient

	h.HandleSignal(context.Background(), ev)

	snap := tr.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, connection.RoleClient, snap[0].Role)
	assert.Equal(t, ev.FD.SrcPort, snap[0].Local.Port)
	assert.Equal(t, ev.FD.DstPort, snap[0].Remote.Port)
}

func TestHandleSignal_CloseEmitsRemoveDelta(t *testing.T) {
	h, tr := newHandler()
	accept := baseEvent("accept<")
	h.HandleSignal(context.Background(), accept)

	closeEvent := baseEvent("close<")
	res := h.HandleSignal(context.Background(), closeEvent)

	assert.Equal(t, signal.Processed, res)
	assert.Len(t, tr.Snapshot(), 1, "the closed connection stays reportable for exactly one snapshot")
	assert.Empty(t, tr.Snapshot(), "the matching close< must bring open_count back to zero and evict the entry after that snapshot")
}
