package transport

import (
	"errors"
	"fmt"
)

// FailureKind classifies a transport failure. Retry logic treats every
// kind identically; the classification exists for logging and for
// user-facing messages.
type FailureKind string

const (
	// Link covers connect and disconnect failures and dropped links.
	Link FailureKind = "link"
	// Timeout covers operations that exceeded the transport's own deadline.
	Timeout FailureKind = "timeout"
	// Command covers writes the peripheral did not acknowledge.
	Command FailureKind = "command"
)

// Error represents any transport-level failure.
type Error struct {
	Kind FailureKind
	Msg  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is allows errors.Is to compare Error values by kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Predefined sentinel errors, one per failure kind.
var (
	ErrLink    = &Error{Kind: Link}
	ErrTimeout = &Error{Kind: Timeout}
	ErrCommand = &Error{Kind: Command}
)

// IsFailureKind reports whether err is a transport Error of the given kind.
func IsFailureKind(err error, kind FailureKind) bool {
	var terr *Error
	if errors.As(err, &terr) {
		return terr.Kind == kind
	}
	return false
}
