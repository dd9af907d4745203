// Package ble defines the transport contract the chlorinator codec expects
// from a BLE stack.
//
// The codec never talks to hardware itself: device discovery, connection
// establishment, MTU negotiation and retry policy all live behind these
// interfaces. Any GATT client that can read, write and subscribe to
// characteristics by UUID can drive a session.
package ble

import (
	"context"
	"fmt"
)

// Conn is an established connection to a device exposing GATT
// characteristics addressed by 128-bit UUID strings.
type Conn interface {
	// ReadCharacteristic reads the current value of a characteristic.
	ReadCharacteristic(ctx context.Context, uuid string) ([]byte, error)
	// WriteCharacteristic writes a value to a characteristic.
	WriteCharacteristic(ctx context.Context, uuid string, data []byte) error
}

// Notifier is implemented by connections that support characteristic
// notifications (the Halo transport does, the eQuilibrium one need not).
type Notifier interface {
	// Subscribe registers onPacket for notifications on a characteristic.
	// Callbacks are delivered in arrival order.
	Subscribe(ctx context.Context, uuid string, onPacket func(data []byte)) (Subscription, error)
}

// Subscription is an active notification registration.
type Subscription interface {
	Unsubscribe() error
	// Done is closed when the subscription ends, either by Unsubscribe or
	// because the device dropped the connection. Some devices end a data
	// dump by disconnecting, so consumers should treat Done as end of
	// stream rather than as an error.
	Done() <-chan struct{}
}

// ConnectionError reports a failure to establish or keep a device
// connection. It is surfaced to the caller untouched; the codec performs no
// retries of its own.
type ConnectionError struct {
	Device string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("ble: connection to %s failed: %v", e.Device, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// CharacteristicIOError reports a failed read, write or subscribe on a
// single characteristic.
type CharacteristicIOError struct {
	UUID string
	Op   string // "read", "write" or "subscribe"
	Err  error
}

func (e *CharacteristicIOError) Error() string {
	return fmt.Sprintf("ble: %s %s failed: %v", e.Op, e.UUID, e.Err)
}

func (e *CharacteristicIOError) Unwrap() error { return e.Err }
