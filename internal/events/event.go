// Package events defines the raw syscall event shape delivered by the
// kernel probe (EventSource, spec.md §6) and the contract the rest of the
// pipeline consumes it through. The probe itself is out of scope — it is an
// external collaborator named by contract only.
package events

import (
	"context"
	"io"

	"netconnd/internal/connection"
	"netconnd/internal/netaddr"
)

// FDKind is the socket family of the file descriptor an event refers to.
type FDKind uint8

const (
	FDUnknown FDKind = iota
	FDIPv4Sock
	FDIPv6Sock
	FDOther
)

// FDInfo is the per-event file-descriptor context the probe attaches to
// connect/accept/close/shutdown/getsockopt events.
type FDInfo struct {
	Kind  FDKind
	Role  connection.Role
	Proto connection.L4Proto

	// Source/destination as reported by the kernel sockinfo. Orientation
	// into client/server endpoints is the signal handler's job (spec.md
	// §4.2 step 5), not the probe's.
	SrcIP   netaddr.Address
	SrcPort uint16
	DstIP   netaddr.Address
	DstPort uint16
}

// ThreadInfo is the per-event process/thread context.
type ThreadInfo struct {
	PID            int
	Comm           string
	Exe            string
	ContainerID    string
	HasContainerID bool
}

// Event is a single record off the EventSource.
type Event struct {
	Type            string // e.g. "connect<", "accept<", "close<", "execve<"
	TimestampMicros int64

	HasFD bool
	FD    FDInfo

	SyscallReturn      int64
	HasSyscallReturn   bool

	Thread ThreadInfo
}

// EventSource is the contract the kernel probe fulfills: a blocking pull of
// the next ordered event. Implementations must preserve the probe's
// arrival order — the tracker's correctness depends on it (spec.md §5).
type EventSource interface {
	Next(ctx context.Context) (Event, error) // io.EOF signals end of stream
}

// ErrEndOfStream is returned by an EventSource once it is permanently
// exhausted (mirrors io.EOF so callers can use errors.Is(err, io.EOF)).
var ErrEndOfStream = io.EOF
