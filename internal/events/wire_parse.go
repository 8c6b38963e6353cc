package events

import (
	"net"

	"netconnd/internal/connection"
	"netconnd/internal/netaddr"
)

func parseFD(w wireEvent) FDInfo {
	fd := FDInfo{
		SrcPort: w.SrcPort,
		DstPort: w.DstPort,
	}

	switch w.FDKind {
	case "ipv4":
		fd.Kind = FDIPv4Sock
	case "ipv6":
		fd.Kind = FDIPv6Sock
	default:
		fd.Kind = FDOther
	}

	switch w.FDRole {
	case "server":
		fd.Role = connection.RoleServer
	case "client":
		fd.Role = connection.RoleClient
	default:
		fd.Role = connection.RoleUnknown
	}

	switch w.FDProto {
	case "tcp":
		fd.Proto = connection.ProtoTCP
	case "udp":
		fd.Proto = connection.ProtoUDP
	default:
		fd.Proto = connection.ProtoUnknown
	}

	family := netaddr.FamilyIPv4
	if fd.Kind == FDIPv6Sock {
		family = netaddr.FamilyIPv6
	}

	if ip := net.ParseIP(w.SrcIP); ip != nil {
		if a, ok := netaddr.FromNetIP(family, ip); ok {
			fd.SrcIP = a
		}
	}
	if ip := net.ParseIP(w.DstIP); ip != nil {
		if a, ok := netaddr.FromNetIP(family, ip); ok {
			fd.DstIP = a
		}
	}

	return fd
}
