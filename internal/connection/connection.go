// Package connection defines the canonical Connection record and the delta
// type the rest of the pipeline moves around.
package connection

import (
	"fmt"

	"netconnd/internal/netaddr"
)

// L4Proto enumerates the transport protocols the tracker understands.
// Anything else observed on the wire is dropped before it reaches here.
type L4Proto uint8

const (
	ProtoUnknown L4Proto = iota
	ProtoTCP
	ProtoUDP
)

func (p L4Proto) String() string {
	switch p {
	case ProtoTCP:
		return "tcp"
	case ProtoUDP:
		return "udp"
	default:
		return "unknown"
	}
}

// Role describes which side of the socket the event was observed from.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleServer
	RoleClient
)

func (r Role) String() string {
	switch r {
	case RoleServer:
		return "server"
	case RoleClient:
		return "client"
	default:
		return "unknown"
	}
}

// Connection is the 5-tuple-plus-role-plus-identity record the tracker
// coalesces events into. Two connections that differ only by Role are
// distinct entries (spec.md §3) — a host can legitimately be both client
// and server on the same tuple (e.g. a loopback echo).
type Connection struct {
	ContainerID string
	Local       netaddr.Endpoint
	Remote      netaddr.Endpoint
	Proto       L4Proto
	Role        Role
}

func (c Connection) String() string {
	return fmt.Sprintf("%s[%s %s->%s %s]", c.ContainerID, c.Proto, c.Local, c.Remote, c.Role)
}

// Valid reports the two invariants from spec.md §3 that gate whether a
// Connection may ever be constructed: non-empty container id and a known
// protocol. Role/orientation invariants are enforced by the caller that
// builds the Connection (NetworkSignalHandler), not here.
func (c Connection) Valid() bool {
	return c.ContainerID != "" && c.Proto != ProtoUnknown
}

// DeltaKind is whether a ConnectionDelta opens or closes a socket.
type DeltaKind uint8

const (
	Add DeltaKind = iota
	Remove
)

func (k DeltaKind) String() string {
	if k == Add {
		return "add"
	}
	return "remove"
}

// Delta is a single Add/Remove observation against the tracker.
type Delta struct {
	Conn            Connection
	TimestampMicros int64
	Kind            DeltaKind
}
