package equilibrium

import (
	"encoding/binary"
	"fmt"

	"github.com/pbutterworth/gochlorinator/pkg/codec"
)

// Actions is an app action accepted by the chlorinator app-action
// characteristic.
type Actions uint8

const (
	ActionNoAction Actions = iota
	ActionOff
	ActionAuto
	ActionManual
	ActionLow
	ActionMedium
	ActionHigh
	ActionPool
	ActionSpa
	ActionDismissInfoMessage
	ActionDisableAcidDosingIndefinitely
	ActionDisableAcidDosingForPeriod
	ActionResetStatistics
	ActionTriggerCellReversal
)

func (a Actions) valid() bool { return a <= ActionTriggerCellReversal }

func (a Actions) String() string {
	names := [...]string{
		"NoAction", "Off", "Auto", "Manual", "Low", "Medium", "High",
		"Pool", "Spa", "DismissInfoMessage", "DisableAcidDosingIndefinitely",
		"DisableAcidDosingForPeriod", "ResetStatistics", "TriggerCellReversal",
	}
	if int(a) < len(names) {
		return names[a]
	}
	return fmt.Sprintf("Actions(%d)", uint8(a))
}

// actionLen is the fixed app-action packet size before encryption.
const actionLen = 20

// Action is an app action command with its optional period parameter.
// PeriodMinutes is only consulted by the device for
// ActionDisableAcidDosingForPeriod; callers must leave it zero otherwise.
type Action struct {
	Action        Actions
	PeriodMinutes int32
}

// MarshalBinary serializes the action into the fixed 20-byte packet:
// action tag, little-endian signed minutes, zero padding.
func (a Action) MarshalBinary() ([]byte, error) {
	buf := make([]byte, actionLen)
	buf[0] = byte(a.Action)
	binary.LittleEndian.PutUint32(buf[1:5], uint32(a.PeriodMinutes))
	return buf, nil
}

// DecodeAction is the inverse of Action.MarshalBinary. It is used by tests
// and the device emulator; the real device only consumes actions.
func DecodeAction(data []byte) (*Action, error) {
	if len(data) < actionLen {
		return nil, codec.ShortBuffer("ChlorinatorAction", actionLen, len(data))
	}
	action := Actions(data[0])
	if !action.valid() {
		return nil, &codec.UnknownEnumError{Record: "ChlorinatorAction", Field: "Action", Value: int(data[0])}
	}
	return &Action{
		Action:        action,
		PeriodMinutes: int32(binary.LittleEndian.Uint32(data[1:5])),
	}, nil
}
