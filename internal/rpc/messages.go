// Package rpc carries the upstream duplex-stream message kinds named in
// spec.md §6. The wire codec itself is explicitly out of scope there
// ("specified only at the level of logical message kinds"), so this
// package defines the logical Go shapes and a minimal JSON gRPC codec to
// carry them, instead of generating protobuf stubs for a protocol spec.md
// never pins down.
package rpc

// Kind discriminates an Envelope's payload. Kinds the core doesn't
// recognize are forward-compatible no-ops (spec.md §6).
type Kind string

const (
	KindRuntimeFilteringConfiguration Kind = "RuntimeFilteringConfiguration"
	KindRuntimeFiltersAck             Kind = "RuntimeFiltersAck"
	KindConnectionUpdate              Kind = "ConnectionUpdate"
	KindSelfCheckResult               Kind = "SelfCheckResult"
)

// Envelope is one message on the duplex stream.
type Envelope struct {
	Kind Kind `json:"kind"`

	FilteringConfiguration *FilteringConfiguration `json:"filtering_configuration,omitempty"`
	FiltersAck              *FiltersAck              `json:"filters_ack,omitempty"`
	ConnectionUpdate         *ConnectionUpdate        `json:"connection_update,omitempty"`
	SelfCheckResult          *SelfCheckResult         `json:"self_check_result,omitempty"`
}

// FilterWire is the wire form of a single filter rule.
type FilterWire struct {
	CIDR     string `json:"cidr"`
	PortLow  uint16 `json:"port_low"`
	PortHigh uint16 `json:"port_high"`
	Action   string `json:"action"` // "ignore" | "include"
}

// FilteringConfiguration is the inbound RuntimeFilteringConfiguration.
type FilteringConfiguration struct {
	ClusterID string       `json:"cluster_id"`
	Filters   []FilterWire `json:"filters"`
}

// FiltersAck is the outbound acknowledgement.
type FiltersAck struct{}

// ConnectionWire is the wire form of a Connection for ConnectionUpdate.
type ConnectionWire struct {
	ContainerID string `json:"container_id"`
	LocalAddr   string `json:"local_addr"`
	LocalPort   uint16 `json:"local_port"`
	RemoteAddr  string `json:"remote_addr"`
	RemotePort  uint16 `json:"remote_port"`
	Proto       string `json:"proto"`
	Role        string `json:"role"`
}

// ConnectionUpdate is the outbound periodic diff push.
type ConnectionUpdate struct {
	Added    []ConnectionWire `json:"added"`
	Removed  []ConnectionWire `json:"removed"`
	WallTime int64            `json:"wall_time_unix_micros"`
}

// SelfCheckResult is the outbound self-check outcome push.
type SelfCheckResult struct {
	Observed  bool   `json:"observed"`
	Component string `json:"component"` // "process" | "network"
}
