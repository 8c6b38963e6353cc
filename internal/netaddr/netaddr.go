// Package netaddr holds the immutable address/endpoint primitives shared by
// the event pipeline. Addresses are bit-exact: equality and map-key use rely
// on plain struct comparison, the same way the teacher package used a
// comparable `key` struct for its GaugeVec label tuples.
package netaddr

import (
	"fmt"
	"net"
)

// Family discriminates the bit width stored in Address.
type Family uint8

const (
	FamilyUnknown Family = iota
	FamilyIPv4
	FamilyIPv6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

// Address is an immutable IPv4 or IPv6 value. IPv4 addresses are stored in
// the low 32 bits of Hi/Lo (Hi always zero); IPv6 addresses use the full
// 128 bits across Hi/Lo. This keeps Address comparable (usable as a map
// key) without allocating a byte slice per event, unlike net.IP.
type Address struct {
	Family Family
	Hi     uint64
	Lo     uint64
}

// FromIPv4 builds an Address from four octets in network order.
func FromIPv4(a, b, c, d byte) Address {
	v := uint64(a)<<24 | uint64(b)<<16 | uint64(c)<<8 | uint64(d)
	return Address{Family: FamilyIPv4, Lo: v}
}

// FromIPv6 builds an Address from sixteen octets in network order.
// IPv6 addresses with an embedded IPv4 form (e.g. ::ffff:10.0.0.1) are kept
// as IPv6 — the family tag is the source of truth, not the bit pattern.
func FromIPv6(b [16]byte) Address {
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(b[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(b[i])
	}
	return Address{Family: FamilyIPv6, Hi: hi, Lo: lo}
}

// FromNetIP converts a net.IP into an Address of the given family, which
// the caller decides up front; the byte length of ip does not choose it.
// With FamilyIPv6 a 4-in-6 mapped address stays IPv6 and is NOT collapsed to
// IPv4. ok is false if ip cannot be expressed in that family.
func FromNetIP(family Family, ip net.IP) (Address, bool) {
	switch family {
	case FamilyIPv4:
		v4 := ip.To4()
		if v4 == nil {
			return Address{}, false
		}
		return FromIPv4(v4[0], v4[1], v4[2], v4[3]), true
	case FamilyIPv6:
		v6 := ip.To16()
		if v6 == nil {
			return Address{}, false
		}
		var b [16]byte
		copy(b[:], v6)
		return FromIPv6(b), true
	default:
		return Address{}, false
	}
}

// String renders the address for logs/metrics labels.
func (a Address) String() string {
	switch a.Family {
	case FamilyIPv4:
		return fmt.Sprintf("%d.%d.%d.%d", byte(a.Lo>>24), byte(a.Lo>>16), byte(a.Lo>>8), byte(a.Lo))
	case FamilyIPv6:
		ip := make(net.IP, 16)
		for i := 0; i < 8; i++ {
			ip[i] = byte(a.Hi >> (8 * (7 - i)))
		}
		for i := 0; i < 8; i++ {
			ip[8+i] = byte(a.Lo >> (8 * (7 - i)))
		}
		return ip.String()
	default:
		return "?"
	}
}

// Endpoint pairs an Address with a port. Port 0 ("unspecified") is a valid,
// distinct value and is never normalized away.
type Endpoint struct {
	Addr Address
	Port uint16
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Addr, e.Port)
}
