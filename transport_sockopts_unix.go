//go:build !windows

package tftp

import (
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
	"golang.org/x/sys/unix"
)

// applySocketOptions tunes conn on a best-effort basis. Every failure is
// logged at Warn and otherwise ignored: none of these options affect
// correctness, only resource usage and outgoing TTL/hop-limit.
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
		raw, err := conn.SyscallConn()
		if err != nil {
			logger.Warnf("[TRANSPORT] SyscallConn failed, cannot set SO_REUSEADDR: %v", err)
			return
		}
		ctrlErr := raw.Control(func(fd uintptr) {
			if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
				logger.Warnf("[TRANSPORT] SO_REUSEADDR failed: %v", err)
			}
		})
		if ctrlErr != nil {
			logger.Warnf("[TRANSPORT] Control failed, cannot set SO_REUSEADDR: %v", ctrlErr)
		}
	}
}
