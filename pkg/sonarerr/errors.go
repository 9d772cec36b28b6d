package sonarerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide how to react.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindCanceled
	KindParse
	KindStatus
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindCanceled:
		return "canceled"
	case KindParse:
		return "parse"
	case KindStatus:
		return "status"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error captures contextual information for pipeline failures.
type Error struct {
	Op   string
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E constructs an Error with the provided context.
func E(op string, kind Kind, msg string, err error) error {
	return &Error{Op: op, Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
