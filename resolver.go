package tftp

import (
	"fmt"
	"net"
	"strconv"
)

// isNumericLiteral reports whether host is already a numeric IPv4 or IPv6
// address rather than a name requiring DNS resolution. The Facade uses this
// to decide whether IPv6→IPv4 failover is applicable (SPEC_FULL.md §4.3:
// no failover is attempted for a literal address).
func isNumericLiteral(host string) bool {
	return net.ParseIP(host) != nil
}

// resolveEndpoint resolves hostname to a UDP socket address in the
// requested family. family must be IPv4 or IPv6; Unspec is a programmer
// error resolved by the Facade's connection-attempt loop before calling in.
func resolveEndpoint(hostname string, port uint16, family AddressFamily) (*net.UDPAddr, error) {
	network, err := udpNetwork(family)
	if err != nil {
		return nil, err
	}
	addr, err := net.ResolveUDPAddr(network, net.JoinHostPort(hostname, strconv.Itoa(int(port))))
	if err != nil {
		return nil, newErr(KindInvalidProtoFamily, err)
	}
	return addr, nil
}

func udpNetwork(family AddressFamily) (string, error) {
	switch family {
	case IPv4:
		return "udp4", nil
	case IPv6:
		return "udp6", nil
	default:
		return "", newErr(KindInvalidProtoFamily, fmt.Errorf("family %s cannot be resolved directly, pick IPv4 or IPv6", family))
	}
}
