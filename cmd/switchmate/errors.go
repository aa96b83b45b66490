package main

import (
	"errors"

	"github.com/srg/switchmate/pkg/transport"
)

// FormatUserError converts internal errors into concise user-facing text.
func FormatUserError(err error) string {
	switch {
	case errors.Is(err, transport.ErrTimeout):
		return "operation timed out - is the switch in range?"
	case errors.Is(err, transport.ErrLink):
		return "could not reach the switch - is Bluetooth turned on?"
	case errors.Is(err, transport.ErrCommand):
		return "the switch rejected the command"
	}
	return err.Error()
}
