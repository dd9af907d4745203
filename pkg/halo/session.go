package halo

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pbutterworth/gochlorinator/internal/logging"
	"github.com/pbutterworth/gochlorinator/pkg/ble"
	"github.com/pbutterworth/gochlorinator/pkg/crypto"
	"github.com/pbutterworth/gochlorinator/pkg/snapshot"
)

// ErrHandshakeFailed reports that the authentication sequence broke. The
// session is unusable; the caller must reconnect and start over.
var ErrHandshakeFailed = errors.New("halo: handshake failed")

// ErrSessionBusy reports that another session still holds the device.
var ErrSessionBusy = errors.New("halo: session already in progress")

// GatherTimeout bounds how long GatherData waits for the device to finish
// streaming and drop the connection on its own. The Halo hangs its BLE stack
// if the central disconnects first, so we wait it out.
const GatherTimeout = 15 * time.Second

// busyPollInterval is how often a caller waiting on ErrSessionBusy retries.
const busyPollInterval = time.Second

// Session is one authenticated connection to a Halo chlorinator. A Halo
// accepts a single session at a time; the package-level guard makes
// concurrent sessions from this process wait rather than trample each other.
type Session struct {
	conn       ble.Conn
	notifier   ble.Notifier
	accessCode string
	key        []byte
}

// sessions guards against overlapping sessions to the same device from this
// process. Buffered with one token.
var sessions = make(chan struct{}, 1)

// acquireSession takes the single session slot, waiting until it frees up or
// ctx is done.
func acquireSession(ctx context.Context) error {
	for {
		select {
		case sessions <- struct{}{}:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrSessionBusy, ctx.Err())
		default:
		}
		logging.Debug("session busy, waiting")
		select {
		case sessions <- struct{}{}:
			return nil
		case <-time.After(busyPollInterval):
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrSessionBusy, ctx.Err())
		}
	}
}

func releaseSession() {
	select {
	case <-sessions:
	default:
	}
}

// NewSession wraps an established connection. Authenticate must be called
// before any data or action operation.
func NewSession(conn ble.Conn, notifier ble.Notifier, accessCode string) *Session {
	return &Session{conn: conn, notifier: notifier, accessCode: accessCode}
}

// Authenticate performs the handshake: take the session slot, read the
// session key nonce, then derive and write the authentication token.
func (s *Session) Authenticate(ctx context.Context) error {
	if err := acquireSession(ctx); err != nil {
		return err
	}

	key, err := s.conn.ReadCharacteristic(ctx, UUIDSlaveSessionKey)
	if err != nil {
		releaseSession()
		return fmt.Errorf("%w: reading session key: %w", ErrHandshakeFailed, err)
	}
	if len(key) != crypto.SessionKeySize {
		releaseSession()
		return fmt.Errorf("%w: session key is %d bytes, want %d", ErrHandshakeFailed, len(key), crypto.SessionKeySize)
	}
	logging.Debug("got session key", logging.Hex("key", key))

	token, err := crypto.DeriveAuthToken(key, []byte(s.accessCode))
	if err != nil {
		releaseSession()
		return fmt.Errorf("%w: deriving auth token: %w", ErrHandshakeFailed, err)
	}
	if err := s.conn.WriteCharacteristic(ctx, UUIDMasterAuthentication, token); err != nil {
		releaseSession()
		return fmt.Errorf("%w: writing auth token: %w", ErrHandshakeFailed, err)
	}

	s.key = key
	return nil
}

// GatherData subscribes to the notification stream, asks the device to dump
// every record group it supports and merges the resulting records into one
// snapshot. It returns when the device closes the stream or GatherTimeout
// passes, whichever is first; either way the snapshot holds every record
// that made it through, so a timeout still yields a usable partial view.
func (s *Session) GatherData(ctx context.Context) (*snapshot.Snapshot, error) {
	if s.key == nil {
		return nil, fmt.Errorf("%w: session not authenticated", ErrHandshakeFailed)
	}

	demux := NewDemux(s.key, snapshot.New())
	sub, err := s.notifier.Subscribe(ctx, UUIDTxCharacteristic, func(pkt []byte) {
		demux.HandleNotification(pkt)
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		sub.Unsubscribe()
		demux.Close()
	}()

	// The device ends a data dump by dropping the connection; translate
	// that into end of stream so Run returns instead of waiting out the
	// full timeout.
	go func() {
		<-sub.Done()
		demux.Close()
	}()

	// Requests only go out once notifications are flowing, otherwise the
	// burst of records the device answers with is lost.
	for _, group := range catchAllGroups {
		data, err := crypto.EncryptCharacteristic(BuildReadRequest(group), s.key)
		if err != nil {
			return demux.Snapshot(), err
		}
		if err := s.conn.WriteCharacteristic(ctx, UUIDRxCharacteristic, data); err != nil {
			return demux.Snapshot(), err
		}
		logging.Debug("requested record group", zap.Uint16("group", group))
	}

	runCtx, cancel := context.WithTimeout(ctx, GatherTimeout)
	defer cancel()
	if err := demux.Run(runCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			logging.Debug("device did not disconnect before timeout, keeping partial snapshot")
			return demux.Snapshot(), nil
		}
		return demux.Snapshot(), err
	}
	return demux.Snapshot(), nil
}

// writeAction encrypts and writes a marshalled action packet.
func (s *Session) writeAction(ctx context.Context, m encoding.BinaryMarshaler) error {
	if s.key == nil {
		return fmt.Errorf("%w: session not authenticated", ErrHandshakeFailed)
	}
	plain, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	data, err := crypto.EncryptCharacteristic(plain, s.key)
	if err != nil {
		return err
	}
	return s.conn.WriteCharacteristic(ctx, UUIDRxCharacteristic, data)
}

// WriteAction writes a chlorinator app action command.
func (s *Session) WriteAction(ctx context.Context, action Action) error {
	logging.Debug("writing chlorinator action",
		zap.Stringer("action", action.Action),
		zap.Int32("period_minutes", action.PeriodMinutes))
	return s.writeAction(ctx, action)
}

// WriteHeaterAction writes a heater app action command.
func (s *Session) WriteHeaterAction(ctx context.Context, action HeaterAction) error {
	logging.Debug("writing heater action", zap.Stringer("action", action.Action))
	return s.writeAction(ctx, action)
}

// WriteSolarAction writes a solar app action command.
func (s *Session) WriteSolarAction(ctx context.Context, action SolarAction) error {
	logging.Debug("writing solar action", zap.Stringer("action", action.Action))
	return s.writeAction(ctx, action)
}

// WriteLightAction writes a lighting app action command.
func (s *Session) WriteLightAction(ctx context.Context, action LightAction) error {
	logging.Debug("writing light action", zap.Stringer("action", action.Action))
	return s.writeAction(ctx, action)
}

// Close discards the session key and frees the session slot. The session
// cannot be reused.
func (s *Session) Close() {
	if s.key != nil {
		s.key = nil
		releaseSession()
	}
}
