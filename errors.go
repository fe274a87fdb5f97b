package tftp

import (
	"errors"
	"fmt"
)

// Kind is the flat error taxonomy surfaced by the client, conveyed
// out-of-band from the usual Go error interface via [Error.Kind].
type Kind uint8

const (
	KindNone Kind = iota
	KindLock
	KindFaultInit
	KindMemAlloc
	KindCfgInvalid
	KindNullPtr
	KindInvalidMode
	KindInvalidOpcode
	KindNoSock
	KindInvalidProtoFamily
	KindRx
	KindRxTimeout
	KindTx
	KindErrPktRx
	KindInvalidOpcodeRx
	KindInvalidState
	KindFileOpen
	KindFileRd
	KindFileWr
)

var kindDescriptions = map[Kind]string{
	KindNone:               "success",
	KindLock:               "serialization lock unavailable",
	KindFaultInit:          "initialization failure",
	KindMemAlloc:           "resource allocation failure",
	KindCfgInvalid:         "malformed configuration",
	KindNullPtr:            "required argument missing",
	KindInvalidMode:        "invalid transfer mode",
	KindInvalidOpcode:      "invalid opcode requested locally",
	KindNoSock:             "socket setup failed",
	KindInvalidProtoFamily: "unsupported or unresolvable address family",
	KindRx:                 "receive fault",
	KindRxTimeout:          "receive inactivity timeout",
	KindTx:                 "send fault",
	KindErrPktRx:           "peer sent an ERROR packet",
	KindInvalidOpcodeRx:    "peer sent an unexpected opcode",
	KindInvalidState:       "internal state inconsistency",
	KindFileOpen:           "local file could not be opened",
	KindFileRd:             "local file read error",
	KindFileWr:             "local file write error",
}

func (k Kind) String() string {
	if s, ok := kindDescriptions[k]; ok {
		return s
	}
	return "unknown error kind"
}

// Error wraps a [Kind] and an optional underlying cause. It implements the
// standard error interface so it composes with errors.Is/errors.As/errors.Unwrap.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tftp: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("tftp: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// newErr builds an *Error, wrapping cause when non-nil.
func newErr(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

// KindOf extracts the Kind carried by err, or KindNone if err is nil and
// KindInvalidState if err does not carry one.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInvalidState
}
