package reporter

import (
	"time"

	"netconnd/internal/connection"
	"netconnd/internal/rpc"
)

// sender is the narrow slice of control.Client this package depends on —
// narrow on purpose so reporter tests don't need a real dial target.
type sender interface {
	Send(rpc.Envelope) error
}

// GRPCReporter pushes diffs and self-check results as outbound Envelopes on
// the control client's active session stream.
type GRPCReporter struct {
	send sender
}

func NewGRPCReporter(send sender) *GRPCReporter {
	return &GRPCReporter{send: send}
}

func (r *GRPCReporter) PushDiff(added, removed []connection.Connection, wallTime time.Time) error {
	return r.send.Send(rpc.Envelope{
		Kind: rpc.KindConnectionUpdate,
		ConnectionUpdate: &rpc.ConnectionUpdate{
			Added:    rpc.ToConnectionWireAll(added),
			Removed:  rpc.ToConnectionWireAll(removed),
			WallTime: wallTime.UnixMicro(),
		},
	})
}

func (r *GRPCReporter) PushSelfCheckResult(observed bool, component string) error {
	return r.send.Send(rpc.Envelope{
		Kind: rpc.KindSelfCheckResult,
		SelfCheckResult: &rpc.SelfCheckResult{
			Observed:  observed,
			Component: component,
		},
	})
}
