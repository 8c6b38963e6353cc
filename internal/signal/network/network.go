// Package network implements the NetworkSignalHandler (spec.md §4.2): it
// turns socket-lifecycle events into ConnectionDeltas and forwards them to
// the ConnectionTracker.
package network

import (
	"context"

	"netconnd/internal/connection"
	"netconnd/internal/events"
	"netconnd/internal/logging"
	"netconnd/internal/netaddr"
	"netconnd/internal/ports"
	"netconnd/internal/runtimeconfig"
	"netconnd/internal/signal"
	"netconnd/internal/tracker"
)

var deltaKindByEventType = map[string]connection.DeltaKind{
	"connect<":  connection.Add,
	"accept<":   connection.Add,
	"close<":    connection.Remove,
	"shutdown<": connection.Remove,
}

// Handler is the NetworkSignalHandler.
type Handler struct {
	log     *logging.Logger
	tracker *tracker.Tracker
	rcfg    *runtimeconfig.RuntimeConfig
}

func New(log *logging.Logger, t *tracker.Tracker, rcfg *runtimeconfig.RuntimeConfig) *Handler {
	return &Handler{log: log.With("handler", "network"), tracker: t, rcfg: rcfg}
}

func (h *Handler) Name() string { return "network" }

func (h *Handler) RelevantEvents() map[string]struct{} {
	return map[string]struct{}{
		"connect<":  {},
		"accept<":   {},
		"close<":    {},
		"shutdown<": {},
	}
}

func (h *Handler) Stop() {}

// HandleSignal implements the extraction pipeline of spec.md §4.2. Every
// extraction failure is Ignored, never Error — Error is reserved for a
// dispatcher-internal invariant violation.
func (h *Handler) HandleSignal(ctx context.Context, ev events.Event) signal.Result {
	kind, ok := deltaKindByEventType[ev.Type]
	if !ok {
		return signal.Ignored
	}

	if !ev.HasSyscallReturn || ev.SyscallReturn < 0 {
		return signal.Ignored
	}

	if !ev.HasFD {
		return signal.Ignored
	}
	fd := ev.FD

	if fd.Role != connection.RoleServer && fd.Role != connection.RoleClient {
		return signal.Ignored
	}

	if fd.Proto != connection.ProtoTCP && fd.Proto != connection.ProtoUDP {
		return signal.Ignored
	}

	if fd.Kind != events.FDIPv4Sock && fd.Kind != events.FDIPv6Sock {
		return signal.Ignored
	}

	if !ev.Thread.HasContainerID || ev.Thread.ContainerID == "" {
		return signal.Ignored
	}

	client := netaddr.Endpoint{Addr: fd.SrcIP, Port: fd.SrcPort}
	server := netaddr.Endpoint{Addr: fd.DstIP, Port: fd.DstPort}

	conn := connection.Connection{
		ContainerID: ev.Thread.ContainerID,
		Proto:       fd.Proto,
		Role:        fd.Role,
	}
	if fd.Role == connection.RoleServer {
		conn.Local, conn.Remote = server, client
	} else {
		conn.Local, conn.Remote = client, server
	}

	if !conn.Valid() {
		return signal.Ignored
	}

	if !h.rcfg.MatchesOrDefault(conn) {
		return signal.Ignored
	}

	h.tracker.UpdateConnection(conn, ev.TimestampMicros, kind == connection.Add)
	h.log.Debug("connection delta", "conn", conn.String(), "kind", kind.String(), "l7_guess", ports.L7Name(server.Port))
	return signal.Processed
}
