package tftp

import (
	"time"

	"github.com/rs/xid"
)

// direction is the transfer direction a Session was created for.
type direction uint8

const (
	dirGet direction = iota
	dirPut
)

func (d direction) String() string {
	if d == dirPut {
		return "put"
	}
	return "get"
}

// state is the Transfer Engine's tagged state, see SPEC_FULL.md §4.5.
type state uint8

const (
	stateGet state = iota
	statePut
	statePutLast
	stateDone
)

func (s state) String() string {
	switch s {
	case stateGet:
		return "S_GET"
	case statePut:
		return "S_PUT"
	case statePutLast:
		return "S_PUT_LAST"
	case stateDone:
		return "S_DONE"
	default:
		return "S_UNKNOWN"
	}
}

// maxTxRetry is the retransmission ceiling per outstanding response
// (SPEC_FULL.md §4.5, constant MAX_TX_RETRY).
const maxTxRetry = 3

// session is the per-transfer state named in SPEC_FULL.md §3. Exactly one
// exists per Client at a time, enforced by the Client's serialization lock.
type session struct {
	id xid.ID

	dir        direction
	localPath  string
	remotePath string
	mode       TransferMode

	lastSent    []byte
	lastSentLen int

	lastSentBlock uint16 // PUT: last DATA block number sent
	expectedBlock uint16 // GET: next DATA block number expected

	retryCount int
	state      state

	t  *transport
	f  *file
	rx time.Duration
	mx *Collector
}

func newSession(dir direction, localPath, remotePath string, mode TransferMode, t *transport, f *file, rx time.Duration, mx *Collector) *session {
	s := &session{
		id:         xid.New(),
		dir:        dir,
		localPath:  localPath,
		remotePath: remotePath,
		mode:       mode,
		t:          t,
		f:          f,
		rx:         rx,
		mx:         mx,
	}
	if dir == dirGet {
		s.state = stateGet
		s.expectedBlock = 1
	} else {
		s.state = statePut
		s.lastSentBlock = 0
	}
	return s
}

// recordSent remembers b as the last packet sent, for timeout-triggered
// retransmission, and resets the retry counter: every successful
// advancement resets it, only a timeout-triggered retransmit increments it.
func (s *session) recordSent(b []byte) {
	s.lastSent = b
	s.lastSentLen = len(b)
	s.retryCount = 0
}
