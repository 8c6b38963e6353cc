package events

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// wireEvent is the JSON-lines shape accepted by JSONLSource. It exists
// because Event's FD/Thread fields use unexported-friendly zero values that
// don't round-trip cleanly through JSON on their own (e.g. netaddr.Address
// is two uint64s, not a string) — the wire shape is deliberately simple and
// string-based, matching how an actual probe driver would hand off a
// human-readable event tape in development.
type wireEvent struct {
	Type            string `json:"type"`
	TimestampMicros int64  `json:"ts_micros"`

	FDKind  string `json:"fd_kind,omitempty"`
	FDRole  string `json:"fd_role,omitempty"`
	FDProto string `json:"fd_proto,omitempty"`
	SrcIP   string `json:"src_ip,omitempty"`
	SrcPort uint16 `json:"src_port,omitempty"`
	DstIP   string `json:"dst_ip,omitempty"`
	DstPort uint16 `json:"dst_port,omitempty"`

	SyscallReturn    *int64 `json:"syscall_return,omitempty"`

	PID         int    `json:"pid,omitempty"`
	Comm        string `json:"comm,omitempty"`
	Exe         string `json:"exe,omitempty"`
	ContainerID string `json:"container_id,omitempty"`
}

// JSONLSource reads events from a newline-delimited JSON tape. It is the
// reference EventSource used by tests and by the daemon when no real probe
// is attached (stdin, or the file named by --events.tape) — the
// same role the teacher's procfs.FS plays for a custom --path.procfs
// pointed at a fixture directory.
type JSONLSource struct {
	scanner *bufio.Scanner
}

func NewJSONLSource(r io.Reader) *JSONLSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &JSONLSource{scanner: sc}
}

func (s *JSONLSource) Next(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}

	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var w wireEvent
		if err := json.Unmarshal(line, &w); err != nil {
			return Event{}, fmt.Errorf("parse event line: %w", err)
		}
		return w.toEvent(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, ErrEndOfStream
}

func (w wireEvent) toEvent() Event {
	ev := Event{
		Type:            w.Type,
		TimestampMicros: w.TimestampMicros,
		Thread: ThreadInfo{
			PID:  w.PID,
			Comm: w.Comm,
			Exe:  w.Exe,
		},
	}
	if w.ContainerID != "" {
		ev.Thread.ContainerID = w.ContainerID
		ev.Thread.HasContainerID = true
	}
	if w.SyscallReturn != nil {
		ev.HasSyscallReturn = true
		ev.SyscallReturn = *w.SyscallReturn
	}
	if w.FDKind != "" {
		ev.HasFD = true
		ev.FD = parseFD(w)
	}
	return ev
}
