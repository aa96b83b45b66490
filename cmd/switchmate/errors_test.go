package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srg/switchmate/pkg/transport"
)

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "timeout",
			err:  fmt.Errorf("turn on Switchmate: %w", transport.ErrTimeout),
			want: "operation timed out - is the switch in range?",
		},
		{
			name: "link failure",
			err:  fmt.Errorf("connect: %w", transport.ErrLink),
			want: "could not reach the switch - is Bluetooth turned on?",
		},
		{
			name: "unacknowledged command",
			err:  fmt.Errorf("write command: %w", transport.ErrCommand),
			want: "the switch rejected the command",
		},
		{
			name: "other errors pass through",
			err:  errors.New("device address is required"),
			want: "device address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUserError(tt.err))
		})
	}
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "v1.2.3", formatVersion("1.2.3"))
	assert.Equal(t, "dev", formatVersion("dev"))
	assert.Equal(t, "", formatVersion(""))
}
