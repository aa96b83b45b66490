// Package testutils provides test doubles shared by the package tests.
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/srg/switchmate/pkg/transport"
)

// Call records one operation observed by the fake transport.
type Call struct {
	Op     string // "connect", "disconnect", "read", "write"
	Handle uint16
	Data   []byte
	Ack    bool
}

// FakeTransport is a scriptable transport.Transport. Error queues are
// consumed one entry per operation of the matching kind; a nil entry or an
// exhausted queue means success. Reads return the payload scripted for the
// requested handle.
type FakeTransport struct {
	// Payloads returned by reads, keyed by value handle. A missing entry
	// reads as an empty payload.
	Payloads map[uint16][]byte

	// Scripted failures, consumed front to back.
	ConnectErrs    []error
	DisconnectErrs []error
	ReadErrs       []error
	WriteErrs      []error

	// OpDelay is slept inside every operation, widening the window the
	// overlap detector watches.
	OpDelay time.Duration

	mu        sync.Mutex
	connected bool
	calls     []Call
	inFlight  int
	overlap   bool
}

// NewFakeTransport creates a fake with no scripted failures.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{Payloads: make(map[uint16][]byte)}
}

var _ transport.Transport = (*FakeTransport)(nil)

func (f *FakeTransport) begin(c Call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.inFlight++
	if f.inFlight > 1 {
		f.overlap = true
	}
	delay := f.OpDelay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
}

func (f *FakeTransport) end() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func popErr(q *[]error) error {
	if len(*q) == 0 {
		return nil
	}
	err := (*q)[0]
	*q = (*q)[1:]
	return err
}

// Connect implements transport.Transport.
func (f *FakeTransport) Connect(_ context.Context, _ string) error {
	f.begin(Call{Op: "connect"})
	defer f.end()

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := popErr(&f.ConnectErrs); err != nil {
		return err
	}
	f.connected = true
	return nil
}

// Disconnect implements transport.Transport. The fake drops the link even
// when a scripted teardown failure is returned.
func (f *FakeTransport) Disconnect(_ context.Context) error {
	f.begin(Call{Op: "disconnect"})
	defer f.end()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return popErr(&f.DisconnectErrs)
}

// Connected implements transport.Transport.
func (f *FakeTransport) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// ReadCharacteristic implements transport.Transport.
func (f *FakeTransport) ReadCharacteristic(_ context.Context, handle uint16) ([]byte, error) {
	f.begin(Call{Op: "read", Handle: handle})
	defer f.end()

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return nil, &transport.Error{Kind: transport.Link, Msg: "not connected"}
	}
	if err := popErr(&f.ReadErrs); err != nil {
		return nil, err
	}
	return f.Payloads[handle], nil
}

// WriteCharacteristic implements transport.Transport.
func (f *FakeTransport) WriteCharacteristic(_ context.Context, handle uint16, data []byte, ack bool) error {
	f.begin(Call{Op: "write", Handle: handle, Data: append([]byte(nil), data...), Ack: ack})
	defer f.end()

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return &transport.Error{Kind: transport.Link, Msg: "not connected"}
	}
	return popErr(&f.WriteErrs)
}

// DropLink simulates the peripheral vanishing without a disconnect call.
func (f *FakeTransport) DropLink() {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
}

// Calls returns a copy of every recorded operation, in order.
func (f *FakeTransport) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsOf returns the recorded operations of one kind, in order.
func (f *FakeTransport) CallsOf(op string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Overlapped reports whether two operations were ever in flight at once.
func (f *FakeTransport) Overlapped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlap
}
