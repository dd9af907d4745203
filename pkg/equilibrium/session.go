package equilibrium

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pbutterworth/gochlorinator/internal/logging"
	"github.com/pbutterworth/gochlorinator/pkg/ble"
	"github.com/pbutterworth/gochlorinator/pkg/crypto"
	"github.com/pbutterworth/gochlorinator/pkg/snapshot"
)

// ErrHandshakeFailed reports that the authentication sequence broke. The
// session is unusable; the caller must reconnect and start over.
var ErrHandshakeFailed = errors.New("equilibrium: handshake failed")

// keepAuthenticatedReads is the characteristic sequence the device expects
// to be read right after authentication. The returned values are discarded;
// skipping these reads gets the session kicked out.
var keepAuthenticatedReads = []string{
	UUIDChlorinatorState,
	UUIDChlorinatorSetup,
	UUIDChlorinatorTimers,
	UUIDChlorinatorSettings,
	UUIDLightingState,
	UUIDLightingSetup,
	UUIDLightingTimers,
}

// Session is one authenticated connection to an eQuilibrium chlorinator.
// The session key lives exactly as long as the session; Close discards it.
type Session struct {
	conn       ble.Conn
	accessCode string
	key        []byte
}

// NewSession wraps an established connection. Authenticate must be called
// before any data or action operation.
func NewSession(conn ble.Conn, accessCode string) *Session {
	return &Session{conn: conn, accessCode: accessCode}
}

// Authenticate performs the handshake: read the session key nonce, derive
// and write the authentication token, then run the fixed keep-authenticated
// read sequence.
func (s *Session) Authenticate(ctx context.Context) error {
	key, err := s.conn.ReadCharacteristic(ctx, UUIDSlaveSessionKey)
	if err != nil {
		return fmt.Errorf("%w: reading session key: %w", ErrHandshakeFailed, err)
	}
	if len(key) != crypto.SessionKeySize {
		return fmt.Errorf("%w: session key is %d bytes, want %d", ErrHandshakeFailed, len(key), crypto.SessionKeySize)
	}
	logging.Debug("got session key", zap.String("key", fmt.Sprintf("%x", key)))

	token, err := crypto.DeriveAuthToken(key, []byte(s.accessCode))
	if err != nil {
		return fmt.Errorf("%w: deriving auth token: %w", ErrHandshakeFailed, err)
	}
	if err := s.conn.WriteCharacteristic(ctx, UUIDMasterAuthentication, token); err != nil {
		return fmt.Errorf("%w: writing auth token: %w", ErrHandshakeFailed, err)
	}

	for _, uuid := range keepAuthenticatedReads {
		if _, err := s.conn.ReadCharacteristic(ctx, uuid); err != nil {
			return fmt.Errorf("%w: keep-authenticated read of %s: %w", ErrHandshakeFailed, uuid, err)
		}
	}

	s.key = key
	return nil
}

// GatherData polls every data characteristic in GatherOrder, decrypts and
// decodes each payload and merges the record fields into one snapshot.
// Transport failures abort the poll; a record that fails to decrypt or
// decode is skipped and reported in the joined error alongside the partial
// snapshot.
func (s *Session) GatherData(ctx context.Context) (*snapshot.Snapshot, error) {
	if s.key == nil {
		return nil, fmt.Errorf("%w: session not authenticated", ErrHandshakeFailed)
	}

	snap := snapshot.New()
	var recordErrs []error
	for _, uuid := range GatherOrder {
		raw, err := s.conn.ReadCharacteristic(ctx, uuid)
		if err != nil {
			return snap, err
		}
		plain, err := crypto.DecryptCharacteristic(raw, s.key)
		if err != nil {
			logging.Warn("undecryptable characteristic",
				zap.String("uuid", uuid), zap.Error(err))
			recordErrs = append(recordErrs, fmt.Errorf("%s: %w", uuid, err))
			continue
		}
		rec, err := Decoders[uuid](plain)
		if err != nil {
			logging.Warn("undecodable characteristic",
				zap.String("uuid", uuid), zap.Error(err))
			recordErrs = append(recordErrs, err)
			continue
		}
		snap.Merge(rec)
	}
	return snap, errors.Join(recordErrs...)
}

// WriteAction encrypts and writes an app action command.
func (s *Session) WriteAction(ctx context.Context, action Action) error {
	if s.key == nil {
		return fmt.Errorf("%w: session not authenticated", ErrHandshakeFailed)
	}

	plain, err := action.MarshalBinary()
	if err != nil {
		return err
	}
	data, err := crypto.EncryptCharacteristic(plain, s.key)
	if err != nil {
		return err
	}
	logging.Debug("writing action",
		zap.Stringer("action", action.Action),
		zap.Int32("period_minutes", action.PeriodMinutes))
	return s.conn.WriteCharacteristic(ctx, UUIDChlorinatorAppAction, data)
}

// Close discards the session key. The session cannot be reused.
func (s *Session) Close() {
	s.key = nil
}
