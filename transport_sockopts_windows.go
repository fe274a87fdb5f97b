//go:build windows

package tftp

import (
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// applySocketOptions tunes conn on a best-effort basis. SO_REUSEADDR is not
// applied on Windows: the x/sys/unix constants this package uses on other
// platforms don't exist there, and net.ListenUDP's Windows behavior already
// differs enough that silently requesting it would be misleading.
func applySocketOptions(conn *net.UDPConn, family AddressFamily, opts SocketOptions) {
	if opts.ReadBufferBytes > 0 {
		if err := conn.SetReadBuffer(opts.ReadBufferBytes); err != nil {
			logger.Warnf("[TRANSPORT] SetReadBuffer(%d) failed: %v", opts.ReadBufferBytes, err)
		}
	}

	if opts.TTL > 0 {
		switch family {
		case IPv6:
			p := ipv6.NewPacketConn(conn)
			if err := p.SetHopLimit(opts.TTL); err != nil {
				logger.Warnf("[TRANSPORT] SetHopLimit(%d) failed: %v", opts.TTL, err)
			}
		default:
			p := ipv4.NewPacketConn(conn)
			if err := p.SetTTL(opts.TTL); err != nil {
				logger.Warnf("[TRANSPORT] SetTTL(%d) failed: %v", opts.TTL, err)
			}
		}
	}

	if opts.ReuseAddr {
		logger.Warnf("[TRANSPORT] SO_REUSEADDR requested but not supported on this platform")
	}
}
