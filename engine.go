package tftp

import (
	log "github.com/sirupsen/logrus"
)

// runEngine drives sess through the DATA/ACK (or ACK/DATA) lockstep exchange
// until it reaches S_DONE or a terminal error, per SPEC_FULL.md §4.5. The
// caller (Client.Get/Put) owns sess.t and sess.f and is responsible for
// closing them on every exit path; runEngine never closes them itself.
func runEngine(sess *session) error {
	entry := logger.WithField("session", sess.id.String())
	buf := make([]byte, MaxPacketLen)

	for sess.state != stateDone {
		result, err := sess.t.recv(buf, sess.rx)
		if err != nil {
			if KindOf(err) == KindRxTimeout {
				if sess.lastSentLen > 0 && sess.retryCount < maxTxRetry {
					entry.Warnf("[ENGINE][RX] timeout, retransmitting (retry %d/%d)", sess.retryCount+1, maxTxRetry)
					if sendErr := sess.t.send(sess.lastSent[:sess.lastSentLen]); sendErr != nil {
						return sendErr
					}
					sess.retryCount++
					sess.mx.observeRetransmit()
					continue
				}
				entry.Errorf("[ENGINE][RX] retry budget exhausted, terminating")
				return err
			}
			entry.Errorf("[ENGINE][RX] receive failed: %v", err)
			return err
		}

		if !result.fromPeer {
			entry.Warnf("[ENGINE][RX] datagram from unexpected source %s, rejecting", result.addr)
			_ = sess.t.sendTo(encodeErr(ErrUnknownTransfer, "unexpected transfer ID"), result.addr)
			continue
		}

		pkt := buf[:result.n]
		opcode, err := decodeOpcode(pkt)
		if err != nil {
			entry.Errorf("[ENGINE][RX] malformed packet: %v", err)
			return err
		}
		sess.mx.observeReceived(opcode)

		if opcode == OpERROR {
			code, msg, _ := decodeErr(pkt)
			entry.Warnf("[ENGINE][RX] server ERR %d: %s", code, msg)
			return newErr(KindErrPktRx, nil)
		}

		switch sess.state {
		case stateGet:
			if opcode != OpDATA {
				entry.Errorf("[ENGINE][RX] unexpected opcode %s in %s", opcode, sess.state)
				sendIllegalOp(sess)
				return newErr(KindInvalidOpcodeRx, nil)
			}
			if err := handleGetData(sess, entry, pkt); err != nil {
				return err
			}

		case statePut, statePutLast:
			if opcode != OpACK {
				entry.Errorf("[ENGINE][RX] unexpected opcode %s in %s", opcode, sess.state)
				sendIllegalOp(sess)
				return newErr(KindInvalidOpcodeRx, nil)
			}
			if err := handlePutAck(sess, entry, pkt); err != nil {
				return err
			}

		default:
			return newErr(KindInvalidState, nil)
		}
	}

	return nil
}

func sendIllegalOp(sess *session) {
	_ = sess.t.send(encodeErr(ErrIllegalOperation, "illegal TFTP operation"))
	sess.mx.observeSent(OpERROR)
}

// handleGetData applies the block-number check and, on a match, writes the
// payload, ACKs it and advances the state per SPEC_FULL.md §4.5 step 4/5
// (GET branch). A mismatched block is silently discarded: this is the
// anti-Sorcerer's-Apprentice rule, so no ACK is sent and the retry counter
// is left untouched.
func handleGetData(sess *session, entry *log.Entry, pkt []byte) error {
	block, err := decodeBlock(pkt)
	if err != nil {
		return err
	}
	if block != sess.expectedBlock {
		entry.Debugf("[ENGINE][RX] DATA block %d != expected %d, discarding", block, sess.expectedBlock)
		sess.mx.observeBlockMismatch()
		return nil
	}

	payload, err := decodeDataPayload(pkt)
	if err != nil {
		return err
	}

	n, err := sess.f.write(payload)
	if err != nil || n != len(payload) {
		entry.Errorf("[ENGINE][TX] local write failed: %v", err)
		_ = sess.t.send(encodeErr(ErrNotDefined, "File write error"))
		sess.mx.observeSent(OpERROR)
		return newErr(KindFileWr, err)
	}

	ack := encodeAck(block)
	if err := sess.t.send(ack); err != nil {
		return err
	}
	sess.mx.observeSent(OpACK)
	sess.recordSent(ack)

	if len(payload) < MaxDataLen {
		entry.Debugf("[ENGINE] GET complete at block %d (%d bytes)", block, len(payload))
		sess.state = stateDone
		return nil
	}
	sess.expectedBlock++
	return nil
}

// handlePutAck applies the block-number check and, on a match, reads and
// sends the next block (or completes, from S_PUT_LAST) per SPEC_FULL.md
// §4.5 step 4/5 (PUT branch).
func handlePutAck(sess *session, entry *log.Entry, pkt []byte) error {
	block, err := decodeBlock(pkt)
	if err != nil {
		return err
	}
	if block != sess.lastSentBlock {
		entry.Debugf("[ENGINE][RX] ACK block %d != last sent %d, discarding", block, sess.lastSentBlock)
		sess.mx.observeBlockMismatch()
		return nil
	}

	if sess.state == statePutLast {
		entry.Debugf("[ENGINE] PUT complete at block %d", block)
		sess.state = stateDone
		return nil
	}

	readBuf := make([]byte, MaxDataLen)
	n, ok := sess.f.read(readBuf)
	if !ok {
		entry.Errorf("[ENGINE][TX] local read failed")
		_ = sess.t.send(encodeErr(ErrNotDefined, "File read error"))
		sess.mx.observeSent(OpERROR)
		return newErr(KindFileRd, nil)
	}

	sess.lastSentBlock++
	data, err := encodeData(sess.lastSentBlock, readBuf[:n])
	if err != nil {
		return err
	}
	if err := sess.t.send(data); err != nil {
		return err
	}
	sess.mx.observeSent(OpDATA)
	sess.recordSent(data)

	if n < MaxDataLen {
		sess.state = statePutLast
	}
	return nil
}
