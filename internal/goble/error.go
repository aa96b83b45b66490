package goble

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/srg/switchmate/pkg/transport"
)

// normalizeError maps go-ble and context errors into the transport failure
// taxonomy. Matching is partly string-based because go-ble reports many
// conditions as plain errors; the default bucket is a link failure, which
// the retry logic treats the same as every other kind.
func normalizeError(err error) error {
	if err == nil {
		return nil
	}

	var terr *transport.Error
	if errors.As(err, &terr) {
		return err
	}

	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", transport.ErrTimeout, err)
	case containsIgnoreCase(msg, "timed out"), containsIgnoreCase(msg, "timeout"):
		return fmt.Errorf("%w: %v", transport.ErrTimeout, err)
	case containsIgnoreCase(msg, "request failed"), containsIgnoreCase(msg, "write response"):
		return fmt.Errorf("%w: %v", transport.ErrCommand, err)
	default:
		return fmt.Errorf("%w: %v", transport.ErrLink, err)
	}
}

// containsIgnoreCase checks the substring case-insensitively.
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
