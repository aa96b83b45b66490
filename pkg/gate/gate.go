// Package gate provides the connection gate that serializes BLE transport
// operations across every device session in the process.
//
// The underlying radio stack supports a single in-flight GATT operation at
// a time, so every transport call (connect, disconnect, read, write) must
// hold the gate for its duration. The gate is constructed once and handed
// to each session explicitly rather than hidden behind a package global;
// ownership stays visible that way.
package gate

import "sync"

// Gate is the mutual-exclusion handle shared by all sessions that talk to
// the same radio stack.
type Gate struct {
	mu sync.Mutex
}

// New creates a gate. One per process is the expected usage.
func New() *Gate {
	return &Gate{}
}

// Lock acquires the gate, blocking until no other transport operation is
// in flight.
func (g *Gate) Lock() {
	g.mu.Lock()
}

// Unlock releases the gate.
func (g *Gate) Unlock() {
	g.mu.Unlock()
}
