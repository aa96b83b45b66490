// Package switchmate drives one Switchmate BLE toggle switch: it resolves
// the writable command handle, keeps a connection alive and exposes
// on/off/state-read operations with automatic reconnect and a single-retry
// policy.
package switchmate

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/srg/switchmate/pkg/gate"
	"github.com/srg/switchmate/pkg/transport"
)

// Raw markers written to and read from the command characteristic.
var (
	onKey  = []byte{0x01}
	offKey = []byte{0x00}
)

const (
	// modelHandle is the fixed characteristic holding the device-model
	// identifier string.
	modelHandle = 21

	// brightModel is the identifier reported by the "Bright" hardware
	// variant, which exposes its command characteristic at a different
	// offset than the original model.
	brightModel = "Bright"

	brightCommandHandle   uint16 = 47
	originalCommandHandle uint16 = 45
)

// State is the connection state of a session.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session owns the full lifecycle of one physical switch. All transport
// operations serialize on the shared connection gate, so sessions for
// different switches never interleave mid-operation.
//
// The command handle is resolved once per session, on the first successful
// connect, and trusted for the session's lifetime. It is a property of the
// hardware model, not of a particular connection, so reconnects reuse it.
type Session struct {
	address   string
	flipOnOff bool
	transport transport.Transport
	gate      *gate.Gate
	logger    *logrus.Logger

	mu        sync.Mutex
	state     State
	handle    uint16 // command characteristic value handle, 0 until probed
	on        bool
	available bool
}

// NewSession creates a session for the switch at address. flipOnOff inverts
// the logical meaning of the raw on/off markers for devices wired backwards.
// The gate must be the one shared by every session in the process.
func NewSession(address string, flipOnOff bool, tr transport.Transport, g *gate.Gate, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	return &Session{
		address:   address,
		flipOnOff: flipOnOff,
		transport: tr,
		gate:      g,
		logger:    logger,
	}
}

// Address returns the hardware address the session was created with.
func (s *Session) Address() string {
	return s.address
}

// UniqueID returns a stable identifier derived from the hardware address
// with separator characters removed.
func (s *Session) UniqueID() string {
	return strings.NewReplacer(":", "", "-", "").Replace(s.address)
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAvailable reports whether the last communication attempt succeeded.
func (s *Session) IsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

// IsOn returns the last synchronized logical on/off state. Call Update to
// refresh it from hardware.
func (s *Session) IsOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

// CommandHandle returns the resolved command characteristic handle, or 0
// if no connect has resolved it yet.
func (s *Session) CommandHandle() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// Connect establishes the link and, on first use, probes the device model
// to resolve the command handle. Any prior link, live or stale, is torn
// down first so repeated calls never leak a dangling connection. The gate
// is held across connect plus probe as one atomic unit.
//
// Connect does not touch the availability flag; only the communicate path
// does that.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	prior := s.state != Disconnected
	s.state = Connecting
	s.mu.Unlock()

	// A probe failure leaves the session Disconnected with the link still
	// up; the transport has the final word on whether a teardown is due.
	if prior || s.transport.Connected() {
		// Teardown failures are non-fatal; the reconnect proceeds
		// regardless.
		_ = s.Disconnect(ctx)
		s.setState(Connecting)
	}

	s.logger.WithField("address", s.address).Debug("Connecting")

	s.gate.Lock()
	defer s.gate.Unlock()

	if err := s.transport.Connect(ctx, s.address); err != nil {
		s.setState(Disconnected)
		s.logger.WithError(err).Error("Failed to connect to Switchmate")
		return fmt.Errorf("connect %s: %w", s.address, err)
	}

	if s.CommandHandle() == 0 {
		model, err := s.transport.ReadCharacteristic(ctx, modelHandle)
		if err != nil {
			s.setState(Disconnected)
			s.logger.WithError(err).Error("Failed to probe Switchmate model")
			return fmt.Errorf("probe model: %w", err)
		}
		handle := originalCommandHandle
		if string(model) == brightModel {
			handle = brightCommandHandle
		}
		s.mu.Lock()
		s.handle = handle
		s.mu.Unlock()
		s.logger.WithFields(logrus.Fields{
			"model":  string(model),
			"handle": handle,
		}).Debug("Resolved command handle")
	}

	s.setState(Connected)
	return nil
}

// Disconnect tears down the link. Failures are logged and returned but are
// non-fatal; the session is considered disconnected either way.
func (s *Session) Disconnect(ctx context.Context) error {
	s.logger.WithField("address", s.address).Debug("Disconnecting")

	s.gate.Lock()
	err := s.transport.Disconnect(ctx)
	s.gate.Unlock()

	s.setState(Disconnected)

	if err != nil {
		s.logger.WithError(err).Error("Failed to disconnect from Switchmate")
		return fmt.Errorf("disconnect %s: %w", s.address, err)
	}
	return nil
}

// Update refreshes the cached on/off state from hardware.
func (s *Session) Update(ctx context.Context) error {
	return s.communicate(ctx, nil, true)
}

// TurnOn switches the device logically on, honouring the polarity flip.
func (s *Session) TurnOn(ctx context.Context) error {
	return s.communicate(ctx, s.onMarker(), true)
}

// TurnOff switches the device logically off, honouring the polarity flip.
func (s *Session) TurnOff(ctx context.Context) error {
	return s.communicate(ctx, s.offMarker(), true)
}

// Toggle refreshes the state from hardware and switches to the opposite.
func (s *Session) Toggle(ctx context.Context) error {
	if err := s.Update(ctx); err != nil {
		return err
	}
	if s.IsOn() {
		return s.TurnOff(ctx)
	}
	return s.TurnOn(ctx)
}

// communicate is the single choke point for every read and write. key
// selects a command write; nil refreshes the cached on/off state. With
// retry set the whole connect-and-transfer sequence runs at most twice,
// back to back, before giving up.
//
// Success sets the availability flag; exhausting the retry budget clears
// it and leaves the cached state untouched.
func (s *Session) communicate(ctx context.Context, key []byte, retry bool) error {
	attempts := 1
	if retry {
		attempts = 2
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr != nil {
			s.logger.WithError(lastErr).Debug("Retrying after transport failure")
		}
		if lastErr = s.exchange(ctx, key); lastErr == nil {
			s.setAvailable(true)
			return nil
		}
	}

	s.logger.WithError(lastErr).Error("Cannot communicate with Switchmate")
	s.setAvailable(false)
	return lastErr
}

// exchange performs one connect-if-needed plus one gate-scoped transfer.
func (s *Session) exchange(ctx context.Context, key []byte) error {
	if !s.linkUp() {
		if err := s.Connect(ctx); err != nil {
			return err
		}
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	handle := s.CommandHandle()

	if len(key) > 0 {
		s.logger.WithField("key", fmt.Sprintf("%x", key)).Debug("Sending key")
		if err := s.transport.WriteCharacteristic(ctx, handle, key, true); err != nil {
			return fmt.Errorf("write command: %w", err)
		}
		return nil
	}

	s.logger.Debug("Updating Switchmate state")
	payload, err := s.transport.ReadCharacteristic(ctx, handle)
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}

	s.mu.Lock()
	s.on = bytes.Equal(payload, s.onMarker())
	s.mu.Unlock()
	return nil
}

// linkUp reports whether the session believes it has a live link. The
// transport has the final word: a link that dropped since the last
// operation reads as down even while the session state is Connected.
func (s *Session) linkUp() bool {
	return s.State() == Connected && s.transport.Connected()
}

// onMarker returns the raw byte sequence meaning logical "on" for this
// device, honouring the polarity flip.
func (s *Session) onMarker() []byte {
	if s.flipOnOff {
		return offKey
	}
	return onKey
}

func (s *Session) offMarker() []byte {
	if s.flipOnOff {
		return onKey
	}
	return offKey
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) setAvailable(v bool) {
	s.mu.Lock()
	s.available = v
	s.mu.Unlock()
}
