package emulator

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pbutterworth/gochlorinator/internal/logging"
	"github.com/pbutterworth/gochlorinator/pkg/ble"
	"github.com/pbutterworth/gochlorinator/pkg/crypto"
	"github.com/pbutterworth/gochlorinator/pkg/equilibrium"
)

// Equilibrium is an emulated eQuilibrium chlorinator. It implements
// ble.Conn; wrap it in an equilibrium.Session to talk to it.
type Equilibrium struct {
	mu         sync.Mutex
	key        []byte
	accessCode string
	authed     bool

	mode        equilibrium.Mode
	speed       equilibrium.SpeedLevel
	spaSelected bool
	info        equilibrium.InfoMessage
	ph          float64
	chlorine    equilibrium.ChlorineControlStatus

	phSetpoint  float64
	orpSetpoint uint16

	doseInhibit    equilibrium.AcidDosingInhibitStatus
	doseInhibitMin uint16

	reversals uint16
	cellHours uint32
}

// NewEquilibrium creates an emulated device that accepts accessCode. A fresh
// random session key is drawn per emulator, like a real unit draws one per
// power cycle.
func NewEquilibrium(accessCode string) *Equilibrium {
	key := make([]byte, crypto.SessionKeySize)
	rand.Read(key)
	return &Equilibrium{
		key:         key,
		accessCode:  accessCode,
		mode:        equilibrium.ModeAuto,
		speed:       equilibrium.SpeedLow,
		ph:          7.4,
		chlorine:    equilibrium.ChlorineStatusOk,
		phSetpoint:  7.2,
		orpSetpoint: 650,
		reversals:   42,
		cellHours:   1180,
	}
}

// ReadCharacteristic serves the session key in the clear and every data
// characteristic encrypted, the way the real device does. Characteristics
// the emulator has no record for answer with an encrypted zero packet, like
// a unit with no lighting fitted.
func (e *Equilibrium) ReadCharacteristic(_ context.Context, uuid string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if uuid == equilibrium.UUIDSlaveSessionKey {
		return append([]byte(nil), e.key...), nil
	}

	plain := make([]byte, 20)
	switch uuid {
	case equilibrium.UUIDChlorinatorState:
		e.buildState(plain)
	case equilibrium.UUIDChlorinatorSetup:
		e.buildSetup(plain)
	case equilibrium.UUIDChlorinatorCaps:
		e.buildCapabilities(plain)
	case equilibrium.UUIDChlorinatorTimers:
		e.buildTimers(plain)
	case equilibrium.UUIDChlorinatorStatistics:
		e.buildStatistics(plain)
	case equilibrium.UUIDChlorinatorSettings:
		e.buildSettings(plain)
	}
	return crypto.EncryptCharacteristic(plain, e.key)
}

// WriteCharacteristic accepts the auth token and, once authenticated,
// encrypted app actions.
func (e *Equilibrium) WriteCharacteristic(_ context.Context, uuid string, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch uuid {
	case equilibrium.UUIDMasterAuthentication:
		want, err := crypto.DeriveAuthToken(e.key, []byte(e.accessCode))
		if err != nil {
			return err
		}
		if !bytes.Equal(data, want) {
			return &ble.CharacteristicIOError{UUID: uuid, Op: "write", Err: errors.New("auth token rejected")}
		}
		e.authed = true
		return nil

	case equilibrium.UUIDChlorinatorAppAction:
		if !e.authed {
			return &ble.CharacteristicIOError{UUID: uuid, Op: "write", Err: errors.New("not authenticated")}
		}
		plain, err := crypto.DecryptCharacteristic(data, e.key)
		if err != nil {
			return err
		}
		action, err := equilibrium.DecodeAction(plain)
		if err != nil {
			return err
		}
		e.applyAction(action)
		return nil
	}

	if !e.authed {
		return &ble.CharacteristicIOError{UUID: uuid, Op: "write", Err: errors.New("not authenticated")}
	}
	return nil
}

func (e *Equilibrium) applyAction(action *equilibrium.Action) {
	logging.Debug("emulated equilibrium applying action",
		zap.Stringer("action", action.Action),
		zap.Int32("period_minutes", action.PeriodMinutes))

	switch action.Action {
	case equilibrium.ActionOff:
		e.mode = equilibrium.ModeOff
	case equilibrium.ActionAuto:
		e.mode = equilibrium.ModeAuto
	case equilibrium.ActionManual:
		e.mode = equilibrium.ModeManualOn
	case equilibrium.ActionLow:
		e.speed = equilibrium.SpeedLow
	case equilibrium.ActionMedium:
		e.speed = equilibrium.SpeedMedium
	case equilibrium.ActionHigh:
		e.speed = equilibrium.SpeedHigh
	case equilibrium.ActionPool:
		e.spaSelected = false
	case equilibrium.ActionSpa:
		e.spaSelected = true
	case equilibrium.ActionDismissInfoMessage:
		e.info = equilibrium.InfoNoMessage
	case equilibrium.ActionDisableAcidDosingIndefinitely:
		e.doseInhibit = equilibrium.AcidDosingInhibitedIndefinitely
		e.doseInhibitMin = 0
	case equilibrium.ActionDisableAcidDosingForPeriod:
		e.doseInhibit = equilibrium.AcidDosingInhibitedForPeriod
		e.doseInhibitMin = uint16(action.PeriodMinutes)
	case equilibrium.ActionResetStatistics:
		e.reversals = 0
		e.cellHours = 0
	case equilibrium.ActionTriggerCellReversal:
		e.reversals++
	}
}

func (e *Equilibrium) buildState(buf []byte) {
	buf[0] = byte(e.mode)
	buf[1] = byte(e.speed)
	buf[3] = byte(e.info)

	var flags byte = 0x01 | 0x02 // chemistry current and valid
	if e.spaSelected {
		flags |= 0x04
	}
	if e.mode != equilibrium.ModeOff {
		flags |= 0x10 | 0x20 // pump and cell operating
	}
	buf[5] = flags

	buf[6] = byte(e.ph * 10)
	buf[7] = byte(e.chlorine)

	now := time.Now()
	buf[8] = byte(now.Hour())
	buf[9] = byte(now.Minute())
	buf[10] = byte(now.Second())
}

func (e *Equilibrium) buildSetup(buf []byte) {
	buf[0] = byte(equilibrium.SpeedMedium)
	buf[1] = byte(e.phSetpoint * 10)
	binary.LittleEndian.PutUint16(buf[2:4], e.orpSetpoint)
	buf[4] = 0x02 // timer master present
}

func (e *Equilibrium) buildCapabilities(buf []byte) {
	buf[1] = 10 // manual acid setpoint range
	buf[3] = 8  // manual chlorine setpoint range
	buf[4] = 30 // pH 3.0-10.0
	buf[5] = 100
	buf[6] = 10 // ORP 100-800
	buf[7] = 80
	buf[8] = 2    // pH automatic
	buf[9] = 2    // chlorine automatic
	buf[10] = 0x23 // three-speed pump + AI mode + dosing capable, litres
	buf[11] = 25 // cell size
	buf[12] = 60
	buf[13] = 75 // filter pump 7.5
	buf[14] = 14 // reversal period
	binary.LittleEndian.PutUint16(buf[15:17], 50000)
	binary.LittleEndian.PutUint16(buf[18:20], 3000)
}

func (e *Equilibrium) buildTimers(buf []byte) {
	// One enabled timer, 08:00-18:00 at the current speed; three empty slots.
	speed := e.speed
	if speed == equilibrium.SpeedNotSet {
		speed = equilibrium.SpeedLow
	}
	buf[0] = 8 | 0x20 | byte(speed)<<6
	buf[2] = 18
}

func (e *Equilibrium) buildStatistics(buf []byte) {
	buf[0] = 82 // highest pH 8.2
	buf[1] = 68 // lowest pH 6.8
	binary.LittleEndian.PutUint16(buf[2:4], 740)
	binary.LittleEndian.PutUint16(buf[4:6], 410)
	binary.LittleEndian.PutUint16(buf[6:8], e.reversals)
	binary.LittleEndian.PutUint32(buf[8:12], e.cellHours)
	binary.LittleEndian.PutUint32(buf[12:16], 12)
	buf[16] = 80
}

func (e *Equilibrium) buildSettings(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], e.doseInhibitMin)
	buf[2] = byte(e.doseInhibit)
}
