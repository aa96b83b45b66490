// Package goble implements the BLE transport on top of go-ble/ble.
package goble

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/darwin"
	"github.com/sirupsen/logrus"

	"github.com/srg/switchmate/pkg/transport"
)

// DefaultConnectTimeout bounds the dial phase of Connect when no timeout
// is configured.
const DefaultConnectTimeout = 30 * time.Second

// DeviceFactory creates ble.Device instances (can be overridden in tests).
var DeviceFactory = func() (ble.Device, error) {
	return darwin.NewDevice()
}

// Transport drives one peripheral over go-ble. Concurrent use is
// serialized by the caller through the connection gate; the internal
// mutex only protects the connection snapshot.
type Transport struct {
	logger         *logrus.Logger
	connectTimeout time.Duration

	mu        sync.RWMutex
	client    ble.Client
	chars     map[uint16]*ble.Characteristic
	connected bool
}

// NewTransport creates a transport. A nil logger and a non-positive
// timeout fall back to sane defaults.
func NewTransport(logger *logrus.Logger, connectTimeout time.Duration) *Transport {
	if logger == nil {
		logger = logrus.New()
	}
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	return &Transport{
		logger:         logger,
		connectTimeout: connectTimeout,
	}
}

var _ transport.Transport = (*Transport)(nil)

// Connect implements transport.Transport. It dials the peripheral,
// discovers its GATT profile and indexes every characteristic by value
// handle for later reads and writes.
func (t *Transport) Connect(ctx context.Context, address string) error {
	if strings.TrimSpace(address) == "" {
		return &transport.Error{Kind: transport.Link, Msg: "device address is empty"}
	}

	dev, err := DeviceFactory()
	if err != nil {
		t.logger.WithError(err).Error("Failed to create BLE device")
		return normalizeError(fmt.Errorf("create BLE device: %w", err))
	}
	ble.SetDefaultDevice(dev)

	t.logger.WithFields(logrus.Fields{
		"address": address,
		"timeout": t.connectTimeout,
	}).Info("Connecting to BLE device...")

	connCtx, cancel := context.WithTimeout(ctx, t.connectTimeout)
	defer cancel()

	client, err := ble.Dial(connCtx, ble.NewAddr(address))
	if err != nil {
		t.logger.WithFields(logrus.Fields{
			"address": address,
			"error":   err,
		}).Error("Failed to dial BLE device")
		return normalizeError(fmt.Errorf("dial %s: %w", address, err))
	}

	profile, err := client.DiscoverProfile(true)
	if err != nil {
		t.logger.WithError(err).Error("Failed to discover profile")
		if cancelErr := client.CancelConnection(); cancelErr != nil {
			t.logger.WithField("cancel_error", cancelErr).Warn("Failed to cancel connection after discovery failure")
		}
		return normalizeError(fmt.Errorf("discover profile: %w", err))
	}

	chars := make(map[uint16]*ble.Characteristic)
	for _, svc := range profile.Services {
		for _, char := range svc.Characteristics {
			chars[char.VHandle] = char
		}
	}

	t.mu.Lock()
	t.client = client
	t.chars = chars
	t.connected = true
	t.mu.Unlock()

	t.logger.WithFields(logrus.Fields{
		"address":         address,
		"characteristics": len(chars),
	}).Info("BLE device connected successfully")
	return nil
}

// Disconnect implements transport.Transport. The transport is considered
// disconnected even when the teardown itself fails.
func (t *Transport) Disconnect(ctx context.Context) error {
	t.mu.Lock()
	client := t.client
	t.client = nil
	t.chars = nil
	t.connected = false
	t.mu.Unlock()

	if client == nil {
		t.logger.Debug("Disconnect called but already disconnected")
		return nil
	}

	if err := client.CancelConnection(); err != nil {
		t.logger.WithError(err).Warn("BLE device disconnected with errors")
		return normalizeError(err)
	}
	t.logger.Info("BLE device disconnected successfully")
	return nil
}

// Connected implements transport.Transport. A link the stack has silently
// dropped reads as down via the client's Disconnected channel.
func (t *Transport) Connected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.client == nil || !t.connected {
		return false
	}
	select {
	case <-t.client.Disconnected():
		return false
	default:
		return true
	}
}

// characteristic snapshots the client and resolves the characteristic at
// the given value handle. Peripherals occasionally omit attributes from
// discovery; those are addressed directly by handle.
func (t *Transport) characteristic(handle uint16) (ble.Client, *ble.Characteristic, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.client == nil || !t.connected {
		return nil, nil, &transport.Error{Kind: transport.Link, Msg: "not connected"}
	}

	char, ok := t.chars[handle]
	if !ok {
		char = &ble.Characteristic{Handle: handle - 1, VHandle: handle, EndHandle: handle}
	}
	return t.client, char, nil
}

// ReadCharacteristic implements transport.Transport.
func (t *Transport) ReadCharacteristic(ctx context.Context, handle uint16) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, normalizeError(err)
	}

	client, char, err := t.characteristic(handle)
	if err != nil {
		return nil, err
	}

	t.logger.WithField("handle", handle).Debug("Reading characteristic")
	payload, err := client.ReadCharacteristic(char)
	if err != nil {
		return nil, normalizeError(fmt.Errorf("read handle %d: %w", handle, err))
	}
	return payload, nil
}

// WriteCharacteristic implements transport.Transport.
func (t *Transport) WriteCharacteristic(ctx context.Context, handle uint16, data []byte, withResponse bool) error {
	if err := ctx.Err(); err != nil {
		return normalizeError(err)
	}

	client, char, err := t.characteristic(handle)
	if err != nil {
		return err
	}

	t.logger.WithFields(logrus.Fields{
		"handle": handle,
		"bytes":  len(data),
		"ack":    withResponse,
	}).Debug("Writing characteristic")
	if err := client.WriteCharacteristic(char, data, !withResponse); err != nil {
		return normalizeError(fmt.Errorf("write handle %d: %w", handle, err))
	}
	return nil
}
