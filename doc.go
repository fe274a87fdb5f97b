// Package tftp is a pure golang implementation of an RFC 1350 TFTP client.
//
// It implements the read (RRQ) and write (WRQ) request flows, the DATA/ACK
// lockstep exchange, transfer-ID rebinding and timeout-driven retransmission.
// Server mode, mail mode and the RFC 2347/2348/2349 option extensions are
// not implemented.
package tftp
