package halo

import (
	"encoding/binary"
	"fmt"

	"github.com/pbutterworth/gochlorinator/pkg/codec"
)

// HeaterCapabilities is the decoded heater capabilities record (tag 1100).
type HeaterCapabilities struct {
	HeaterEnabled        bool
	FilterPumpThreeSpeed bool
	HeaterPumpThreeSpeed bool
	HeaterPumpInstalled  bool
	HeaterPumpTimer      bool
}

const heaterCapabilitiesLen = 5

// DecodeHeaterCapabilities decodes the heater capabilities record.
func DecodeHeaterCapabilities(data []byte) (*HeaterCapabilities, error) {
	if len(data) < heaterCapabilitiesLen {
		return nil, codec.ShortBuffer("HeaterCapabilities", heaterCapabilitiesLen, len(data))
	}
	return &HeaterCapabilities{
		HeaterEnabled:        data[0] != 0,
		FilterPumpThreeSpeed: data[1] != 0,
		HeaterPumpThreeSpeed: data[2] != 0,
		HeaterPumpInstalled:  data[3] != 0,
		HeaterPumpTimer:      data[4] != 0,
	}, nil
}

// HeaterConfig is the decoded heater configuration record (tag 1101).
type HeaterConfig struct {
	HeaterPumpEnabled  bool
	HeaterMinPumpSpeed SpeedLevel
}

const heaterConfigLen = 2

// DecodeHeaterConfig decodes the heater configuration record.
func DecodeHeaterConfig(data []byte) (*HeaterConfig, error) {
	if len(data) < heaterConfigLen {
		return nil, codec.ShortBuffer("HeaterConfig", heaterConfigLen, len(data))
	}
	speed, ok := speedLevelFromWire(data[1])
	if !ok {
		return nil, &codec.UnknownEnumError{Record: "HeaterConfig", Field: "HeaterMinPumpSpeed", Value: int(data[1])}
	}
	return &HeaterConfig{
		HeaterPumpEnabled:  data[0] != 0,
		HeaterMinPumpSpeed: speed,
	}, nil
}

// HeaterMode is the heater on/off state.
type HeaterMode uint8

const (
	HeaterModeOff HeaterMode = iota
	HeaterModeOn
)

func (m HeaterMode) valid() bool { return m <= HeaterModeOn }

func (m HeaterMode) String() string {
	if m == HeaterModeOff {
		return "Off"
	}
	if m == HeaterModeOn {
		return "On"
	}
	return fmt.Sprintf("HeaterMode(%d)", uint8(m))
}

// HeatPumpMode is the heat pump operating mode.
type HeatPumpMode uint8

const (
	HeatPumpCooling HeatPumpMode = iota
	HeatPumpHeating
	HeatPumpAuto
)

func (m HeatPumpMode) valid() bool { return m <= HeatPumpAuto }

func (m HeatPumpMode) String() string {
	names := [...]string{"Cooling", "Heating", "Auto"}
	if int(m) < len(names) {
		return names[m]
	}
	return fmt.Sprintf("HeatPumpMode(%d)", uint8(m))
}

// HeaterForced says whether the heater has been forced past its timers.
type HeaterForced uint8

const (
	HeaterNotForced HeaterForced = iota
	HeaterForcedOn
	HeaterForcedOff
)

func (f HeaterForced) valid() bool { return f <= HeaterForcedOff }

func (f HeaterForced) String() string {
	names := [...]string{"NotForced", "ForcedOn", "ForcedOff"}
	if int(f) < len(names) {
		return names[f]
	}
	return fmt.Sprintf("HeaterForced(%d)", uint8(f))
}

// Heater status flag bits.
const (
	heaterOn                      = 1 << 0
	heaterPressure                = 1 << 1
	heaterGasValve                = 1 << 2
	heaterFlame                   = 1 << 3
	heaterLockout                 = 1 << 4
	heaterGeneralServiceRequired  = 1 << 5
	heaterIgnitionServiceRequired = 1 << 6
	heaterCoolingAvailable        = 1 << 7
)

// HeaterState is the decoded heater state record (tag 1102).
type HeaterState struct {
	HeaterPumpMode       Mode
	HeaterMode           HeaterMode
	HeaterSetpoint       uint8
	HeatPumpMode         HeatPumpMode
	HeaterForced         HeaterForced
	HeaterForcedTimeHrs  uint8
	HeaterForcedTimeMins uint8
	HeaterWaterTempValid TempValid
	HeaterWaterTemp      float64
	HeaterError          uint8

	HeaterOn                bool
	HeaterPressure          bool
	HeaterGasValve          bool
	HeaterFlame             bool
	HeaterLockout           bool
	GeneralServiceRequired  bool
	IgnitionServiceRequired bool
	CoolingAvailable        bool
}

const heaterStateLen = 12

// DecodeHeaterState decodes the heater state record.
func DecodeHeaterState(data []byte) (*HeaterState, error) {
	if len(data) < heaterStateLen {
		return nil, codec.ShortBuffer("HeaterState", heaterStateLen, len(data))
	}
	pumpMode := Mode(data[1])
	if !pumpMode.valid() {
		return nil, &codec.UnknownEnumError{Record: "HeaterState", Field: "HeaterPumpMode", Value: int(data[1])}
	}
	heaterMode := HeaterMode(data[2])
	if !heaterMode.valid() {
		return nil, &codec.UnknownEnumError{Record: "HeaterState", Field: "HeaterMode", Value: int(data[2])}
	}
	heatPump := HeatPumpMode(data[4])
	if !heatPump.valid() {
		return nil, &codec.UnknownEnumError{Record: "HeaterState", Field: "HeatPumpMode", Value: int(data[4])}
	}
	forced := HeaterForced(data[5])
	if !forced.valid() {
		return nil, &codec.UnknownEnumError{Record: "HeaterState", Field: "HeaterForced", Value: int(data[5])}
	}
	tempValid := TempValid(data[8])
	if !tempValid.valid() {
		return nil, &codec.UnknownEnumError{Record: "HeaterState", Field: "HeaterWaterTempValid", Value: int(data[8])}
	}

	flags := data[0]
	return &HeaterState{
		HeaterPumpMode:       pumpMode,
		HeaterMode:           heaterMode,
		HeaterSetpoint:       data[3],
		HeatPumpMode:         heatPump,
		HeaterForced:         forced,
		HeaterForcedTimeHrs:  data[6],
		HeaterForcedTimeMins: data[7],
		HeaterWaterTempValid: tempValid,
		HeaterWaterTemp:      float64(binary.LittleEndian.Uint16(data[9:11])) / 10,
		HeaterError:          data[11],

		HeaterOn:                flags&heaterOn != 0,
		HeaterPressure:          flags&heaterPressure != 0,
		HeaterGasValve:          flags&heaterGasValve != 0,
		HeaterFlame:             flags&heaterFlame != 0,
		HeaterLockout:           flags&heaterLockout != 0,
		GeneralServiceRequired:  flags&heaterGeneralServiceRequired != 0,
		IgnitionServiceRequired: flags&heaterIgnitionServiceRequired != 0,
		CoolingAvailable:        flags&heaterCoolingAvailable != 0,
	}, nil
}

// HeaterCooldownState is the decoded heater cooldown record (tag 1104).
// Times are in seconds.
type HeaterCooldownState struct {
	CooldownEventOccurred bool
	CooldownState         uint8
	TargetMode            uint8
	RemainingCooldownTime uint16
	TotalCooldownTime     uint16
}

const heaterCooldownStateLen = 8

// DecodeHeaterCooldownState decodes the heater cooldown record.
func DecodeHeaterCooldownState(data []byte) (*HeaterCooldownState, error) {
	if len(data) < heaterCooldownStateLen {
		return nil, codec.ShortBuffer("HeaterCooldownState", heaterCooldownStateLen, len(data))
	}
	return &HeaterCooldownState{
		CooldownEventOccurred: data[0] != 0,
		CooldownState:         data[1],
		TargetMode:            data[3],
		RemainingCooldownTime: binary.LittleEndian.Uint16(data[4:6]),
		TotalCooldownTime:     binary.LittleEndian.Uint16(data[6:8]),
	}, nil
}
