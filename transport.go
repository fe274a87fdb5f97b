package tftp

import (
	"net"
	"time"
)

// SocketOptions are best-effort socket tuning knobs applied when opening a
// transport. A zero value disables all of them; none of these are required
// for a transfer to succeed, and failures to apply them are logged and
// otherwise ignored.
type SocketOptions struct {
	// ReadBufferBytes sets the kernel receive buffer size, when non-zero.
	ReadBufferBytes int
	// TTL sets the IPv4 TTL / IPv6 hop limit on outgoing packets, when
	// non-zero.
	TTL int
	// ReuseAddr requests SO_REUSEADDR on platforms where it is supported.
	ReuseAddr bool
}

// transport is the thin adapter over a UDP socket named in SPEC_FULL.md
// §4.2. It owns the pinned server address and the TID-latch flag.
type transport struct {
	conn       *net.UDPConn
	family     AddressFamily
	serverAddr *net.UDPAddr
	tidLatched bool
	closed     bool
}

// openTransport resolves hostname in family, binds an ephemeral local UDP
// socket of the matching family and applies opts on a best-effort basis. It
// reports whether hostname was already a numeric literal, which the Facade
// uses to gate IPv6→IPv4 failover.
func openTransport(hostname string, port uint16, family AddressFamily, opts SocketOptions) (*transport, bool, error) {
	literal := isNumericLiteral(hostname)

	addr, err := resolveEndpoint(hostname, port, family)
	if err != nil {
		return nil, literal, err
	}

	network, _ := udpNetwork(family)
	conn, err := net.ListenUDP(network, nil)
	if err != nil {
		return nil, literal, newErr(KindNoSock, err)
	}

	applySocketOptions(conn, family, opts)

	t := &transport{
		conn:       conn,
		family:     family,
		serverAddr: addr,
	}
	logger.Debugf("[TRANSPORT] opened %s socket, server=%s literal=%v", network, addr, literal)
	return t, literal, nil
}

// send transmits b to the currently pinned server address.
func (t *transport) send(b []byte) error {
	_, err := t.conn.WriteToUDP(b, t.serverAddr)
	if err != nil {
		return newErr(KindTx, err)
	}
	return nil
}

// recvResult is the outcome of one recv call.
type recvResult struct {
	n        int
	addr     *net.UDPAddr
	fromPeer bool
}

// recv waits up to timeout for one datagram. On the first successful
// receive of a session it latches the server's TID by rewriting the pinned
// address's port (never its IP) to the datagram's source port. Subsequent
// datagrams whose source does not match the pinned address are reported via
// fromPeer=false, per SPEC_FULL.md §9 design note 2 (RFC 1350 full-TID
// verification) so the Engine can reject them with ERR(UNKNOWN_ID) instead
// of acting on them.
func (t *transport) recv(buf []byte, timeout time.Duration) (recvResult, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return recvResult{}, newErr(KindRx, err)
	}
	n, addr, err := t.conn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return recvResult{}, newErr(KindRxTimeout, err)
		}
		return recvResult{}, newErr(KindRx, err)
	}

	if !t.tidLatched {
		t.serverAddr.Port = addr.Port
		t.tidLatched = true
		logger.Debugf("[TRANSPORT] latched server TID, port=%d", addr.Port)
		return recvResult{n: n, addr: addr, fromPeer: true}, nil
	}

	fromPeer := addr.IP.Equal(t.serverAddr.IP) && addr.Port == t.serverAddr.Port
	return recvResult{n: n, addr: addr, fromPeer: fromPeer}, nil
}

// sendTo transmits b to an arbitrary address, used for ERR(UNKNOWN_ID)
// replies to a source that isn't the latched peer.
func (t *transport) sendTo(b []byte, addr *net.UDPAddr) error {
	_, err := t.conn.WriteToUDP(b, addr)
	if err != nil {
		return newErr(KindTx, err)
	}
	return nil
}

// close is idempotent.
func (t *transport) close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}
