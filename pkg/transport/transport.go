// Package transport defines the BLE link abstraction consumed by device
// sessions, together with the unified failure taxonomy shared by every
// implementation.
package transport

import "context"

// Transport abstracts the BLE link to a single peripheral. Implementations
// are not required to be safe for concurrent use; callers serialize access
// through the connection gate.
type Transport interface {
	// Connect establishes a link to the peripheral at address.
	Connect(ctx context.Context, address string) error

	// Disconnect tears down the link. Safe to call when no link is up.
	Disconnect(ctx context.Context) error

	// Connected reports whether the link is currently live.
	Connected() bool

	// ReadCharacteristic reads the value of the characteristic at the
	// given GATT value handle.
	ReadCharacteristic(ctx context.Context, handle uint16) ([]byte, error)

	// WriteCharacteristic writes data to the characteristic at the given
	// GATT value handle. When withResponse is set the write waits for the
	// peripheral's acknowledgement.
	WriteCharacteristic(ctx context.Context, handle uint16, data []byte, withResponse bool) error
}
