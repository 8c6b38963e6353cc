package rpc

import (
	"net/netip"

	"netconnd/internal/connection"
	"netconnd/internal/runtimeconfig"
)

// ToConfig converts the wire FilteringConfiguration into the runtimeconfig
// snapshot shape. Malformed CIDRs are dropped rather than rejecting the
// whole update — one bad rule from upstream shouldn't disable filtering
// entirely.
func ToConfig(fc FilteringConfiguration) runtimeconfig.Config {
	cfg := runtimeconfig.Config{ClusterID: fc.ClusterID}
	for _, fw := range fc.Filters {
		f := runtimeconfig.Filter{PortLow: fw.PortLow, PortHigh: fw.PortHigh}
		if fw.Action == "include" {
			f.Action = runtimeconfig.Include
		} else {
			f.Action = runtimeconfig.Ignore
		}
		if fw.CIDR != "" {
			prefix, err := netip.ParsePrefix(fw.CIDR)
			if err != nil {
				continue
			}
			f.CIDR = prefix
		}
		cfg.Filters = append(cfg.Filters, f)
	}
	return cfg
}

// ToConnectionWire converts a Connection to its wire form for
// ConnectionUpdate.
func ToConnectionWire(c connection.Connection) ConnectionWire {
	return ConnectionWire{
		ContainerID: c.ContainerID,
		LocalAddr:   c.Local.Addr.String(),
		LocalPort:   c.Local.Port,
		RemoteAddr:  c.Remote.Addr.String(),
		RemotePort:  c.Remote.Port,
		Proto:       c.Proto.String(),
		Role:        c.Role.String(),
	}
}

// ToConnectionWireAll converts a slice of Connections.
func ToConnectionWireAll(cs []connection.Connection) []ConnectionWire {
	out := make([]ConnectionWire, 0, len(cs))
	for _, c := range cs {
		out = append(out, ToConnectionWire(c))
	}
	return out
}
