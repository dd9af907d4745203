package equilibrium

import (
	"encoding/binary"
	"time"

	"github.com/pbutterworth/gochlorinator/pkg/codec"
)

// State is the decoded chlorinator state characteristic.
type State struct {
	Mode                  Mode
	PumpSpeed             SpeedLevel
	ActiveTimer           uint8
	InfoMessage           InfoMessage
	PhMeasurement         float64
	ChlorineControlStatus ChlorineControlStatus
	TimeHours             uint8
	TimeMinutes           uint8
	TimeSeconds           uint8

	ChemistryValuesCurrent           bool
	ChemistryValuesValid             bool
	SpaSelection                     bool
	PumpIsPriming                    bool
	PumpIsOperating                  bool
	CellIsOperating                  bool
	UserSettingsHasChanged           bool
	SanitisingUntilNextTimerTomorrow bool
}

const stateLen = 11

// DecodeState decodes the chlorinator state characteristic. Trailing bytes
// beyond the fixed layout are ignored.
func DecodeState(data []byte) (*State, error) {
	if len(data) < stateLen {
		return nil, codec.ShortBuffer("ChlorinatorState", stateLen, len(data))
	}

	mode := Mode(data[0])
	if !mode.valid() {
		return nil, &codec.UnknownEnumError{Record: "ChlorinatorState", Field: "Mode", Value: int(data[0])}
	}
	speed := SpeedLevel(data[1])
	if !speed.valid() {
		return nil, &codec.UnknownEnumError{Record: "ChlorinatorState", Field: "PumpSpeed", Value: int(data[1])}
	}
	info := InfoMessage(data[3])
	if !info.valid() {
		return nil, &codec.UnknownEnumError{Record: "ChlorinatorState", Field: "InfoMessage", Value: int(data[3])}
	}
	chlorine := ChlorineControlStatus(data[7])
	if !chlorine.valid() {
		return nil, &codec.UnknownEnumError{Record: "ChlorinatorState", Field: "ChlorineControlStatus", Value: int(data[7])}
	}

	// data[4] is reserved.
	flags := data[5]
	return &State{
		Mode:                  mode,
		PumpSpeed:             speed,
		ActiveTimer:           data[2],
		InfoMessage:           info,
		PhMeasurement:         float64(data[6]) / 10,
		ChlorineControlStatus: chlorine,
		TimeHours:             data[8],
		TimeMinutes:           data[9],
		TimeSeconds:           data[10],

		ChemistryValuesCurrent:           flags&stateChemistryValuesCurrent != 0,
		ChemistryValuesValid:             flags&stateChemistryValuesValid != 0,
		SpaSelection:                     flags&stateSpaSelection != 0,
		PumpIsPriming:                    flags&statePumpIsPriming != 0,
		PumpIsOperating:                  flags&statePumpIsOperating != 0,
		CellIsOperating:                  flags&stateCellIsOperating != 0,
		UserSettingsHasChanged:           flags&stateUserSettingsHasChanged != 0,
		SanitisingUntilNextTimerTomorrow: flags&stateSanitisingUntilTimerTmrw != 0,
	}, nil
}

// Setup is the decoded chlorinator setup characteristic.
type Setup struct {
	DefaultManualOnSpeed         SpeedLevel
	PhControlSetpoint            float64
	ChlorineControlSetpoint      uint16
	IsNoTimerModel               bool
	IsTimerMasterPresentInSystem bool
}

const setupLen = 5

// DecodeSetup decodes the chlorinator setup characteristic.
func DecodeSetup(data []byte) (*Setup, error) {
	if len(data) < setupLen {
		return nil, codec.ShortBuffer("ChlorinatorSetup", setupLen, len(data))
	}

	speed := SpeedLevel(data[0])
	if !speed.valid() {
		return nil, &codec.UnknownEnumError{Record: "ChlorinatorSetup", Field: "DefaultManualOnSpeed", Value: int(data[0])}
	}
	flags := data[4]
	return &Setup{
		DefaultManualOnSpeed:         speed,
		PhControlSetpoint:            float64(data[1]) / 10,
		ChlorineControlSetpoint:      binary.LittleEndian.Uint16(data[2:4]),
		IsNoTimerModel:               flags&setupNoTimerModel != 0,
		IsTimerMasterPresentInSystem: flags&setupTimerMasterPresent != 0,
	}, nil
}

// Capabilities is the decoded chlorinator capabilities characteristic.
type Capabilities struct {
	MinimumManualAcidSetpoint     uint8
	MaximumManualAcidSetpoint     uint8
	MinimumManualChlorineSetpoint uint8
	MaximumManualChlorineSetpoint uint8
	MinimumPhSetpoint             float64
	MaximumPhSetpoint             float64
	MinimumOrpSetpoint            int
	MaximumOrpSetpoint            int
	PhControlType                 PhControlType
	ChlorineControlType           ChlorineControlType
	CellSize                      uint8
	AcidPumpSize                  uint8
	FilterPumpSize                float64
	ReversalPeriod                uint8
	PoolVolume                    [3]byte // 24-bit volume, raw wire encoding
	SpaVolume                     uint16

	ThreespeedPumpEnabled bool
	AiModeEnabled         bool
	VolumeUnits           VolumeUnits
	LightingEnabled       bool
	DosingCapableUnit     bool
}

const capabilitiesLen = 20

// DecodeCapabilities decodes the chlorinator capabilities characteristic.
// ORP setpoints are transmitted in tens of millivolts and scaled up; pH
// setpoints and the filter pump size are transmitted in tenths.
func DecodeCapabilities(data []byte) (*Capabilities, error) {
	if len(data) < capabilitiesLen {
		return nil, codec.ShortBuffer("ChlorinatorCapabilities", capabilitiesLen, len(data))
	}

	phControl := PhControlType(data[8])
	if !phControl.valid() {
		return nil, &codec.UnknownEnumError{Record: "ChlorinatorCapabilities", Field: "PhControlType", Value: int(data[8])}
	}
	chlorineControl := ChlorineControlType(data[9])
	if !chlorineControl.valid() {
		return nil, &codec.UnknownEnumError{Record: "ChlorinatorCapabilities", Field: "ChlorineControlType", Value: int(data[9])}
	}
	flags := data[10]
	unit := VolumeUnits((flags & capsVolumeUnitMask) >> capsVolumeUnitShift)
	if unit > VolumeImperialGallons {
		return nil, &codec.UnknownEnumError{Record: "ChlorinatorCapabilities", Field: "VolumeUnits", Value: int(unit)}
	}

	caps := &Capabilities{
		MinimumManualAcidSetpoint:     data[0],
		MaximumManualAcidSetpoint:     data[1],
		MinimumManualChlorineSetpoint: data[2],
		MaximumManualChlorineSetpoint: data[3],
		MinimumPhSetpoint:             float64(data[4]) / 10,
		MaximumPhSetpoint:             float64(data[5]) / 10,
		MinimumOrpSetpoint:            int(data[6]) * 10,
		MaximumOrpSetpoint:            int(data[7]) * 10,
		PhControlType:                 phControl,
		ChlorineControlType:           chlorineControl,
		CellSize:                      data[11],
		AcidPumpSize:                  data[12],
		FilterPumpSize:                float64(data[13]) / 10,
		ReversalPeriod:                data[14],
		SpaVolume:                     binary.LittleEndian.Uint16(data[18:20]),

		ThreespeedPumpEnabled: flags&capsThreeSpeedPumpEnabled != 0,
		AiModeEnabled:         flags&capsAiModeEnabled != 0,
		VolumeUnits:           unit,
		LightingEnabled:       flags&capsLightingEnabled != 0,
		DosingCapableUnit:     flags&capsDosingCapableUnit != 0,
	}
	copy(caps.PoolVolume[:], data[15:18])
	return caps, nil
}

// Settings is the decoded chlorinator settings characteristic.
type Settings struct {
	AcidDosingInhibitTimeRemaining uint16
	AcidDosingInhibitStatus        AcidDosingInhibitStatus
}

const settingsLen = 3

// DecodeSettings decodes the chlorinator settings characteristic.
func DecodeSettings(data []byte) (*Settings, error) {
	if len(data) < settingsLen {
		return nil, codec.ShortBuffer("ChlorinatorSettings", settingsLen, len(data))
	}

	status := AcidDosingInhibitStatus(data[2])
	if !status.valid() {
		return nil, &codec.UnknownEnumError{Record: "ChlorinatorSettings", Field: "AcidDosingInhibitStatus", Value: int(data[2])}
	}
	return &Settings{
		AcidDosingInhibitTimeRemaining: binary.LittleEndian.Uint16(data[0:2]),
		AcidDosingInhibitStatus:        status,
	}, nil
}

// Statistics is the decoded chlorinator statistics characteristic.
type Statistics struct {
	HighestPhMeasured      float64
	LowestPhMeasured       float64
	HighestOrpMeasured     uint16
	LowestOrpMeasured      uint16
	CellReversalCount      uint16
	CellRunningTime        time.Duration
	LowSaltCellRunningTime time.Duration
	PreviousDaysCellLoad   uint8
}

const statisticsLen = 17

// DecodeStatistics decodes the chlorinator statistics characteristic.
// Running times arrive as whole hours.
func DecodeStatistics(data []byte) (*Statistics, error) {
	if len(data) < statisticsLen {
		return nil, codec.ShortBuffer("ChlorinatorStatistics", statisticsLen, len(data))
	}

	return &Statistics{
		HighestPhMeasured:      float64(data[0]) / 10,
		LowestPhMeasured:       float64(data[1]) / 10,
		HighestOrpMeasured:     binary.LittleEndian.Uint16(data[2:4]),
		LowestOrpMeasured:      binary.LittleEndian.Uint16(data[4:6]),
		CellReversalCount:      binary.LittleEndian.Uint16(data[6:8]),
		CellRunningTime:        time.Duration(binary.LittleEndian.Uint32(data[8:12])) * time.Hour,
		LowSaltCellRunningTime: time.Duration(binary.LittleEndian.Uint32(data[12:16])) * time.Hour,
		PreviousDaysCellLoad:   data[16],
	}, nil
}

// NumPumpTimers is the number of pump timer slots in the timers record.
const NumPumpTimers = 4

// PumpTimer is one pump timer slot. Start and stop are offsets from
// midnight.
type PumpTimer struct {
	Enabled    bool
	StartTime  time.Duration
	StopTime   time.Duration
	SpeedLevel SpeedLevel
}

// IsInvalid reports whether the timer parameters are unusable. Times past
// 24h are invalid regardless of the enabled flag; the remaining checks only
// apply to enabled timers.
func (t PumpTimer) IsInvalid() bool {
	if t.StartTime > 24*time.Hour || t.StopTime > 24*time.Hour {
		return true
	}
	if !t.Enabled {
		return false
	}
	if t.StartTime >= t.StopTime {
		return true
	}
	return t.SpeedLevel == SpeedNotSet
}

// Timers is the decoded chlorinator timers characteristic: four pump timer
// slots packed contiguously, four bytes each.
type Timers struct {
	PumpTimers [NumPumpTimers]PumpTimer
}

const timerStride = 4

// DecodeTimers decodes the chlorinator timers characteristic. Each slot is
// start-hour/flags, start-minute, stop-hour, stop-minute; the first byte
// packs the start hour (bits 0-4), enabled flag (bit 5) and speed level
// (bits 6-7).
func DecodeTimers(data []byte) (*Timers, error) {
	if len(data) < NumPumpTimers*timerStride {
		return nil, codec.ShortBuffer("ChlorinatorTimers", NumPumpTimers*timerStride, len(data))
	}

	var timers Timers
	for i := 0; i < NumPumpTimers; i++ {
		slot := data[i*timerStride : i*timerStride+timerStride]
		timers.PumpTimers[i] = PumpTimer{
			Enabled: slot[0]&timerEnabledFlag != 0,
			StartTime: time.Duration(slot[0]&timerStartHourMask)*time.Hour +
				time.Duration(slot[1])*time.Minute,
			StopTime: time.Duration(slot[2])*time.Hour +
				time.Duration(slot[3])*time.Minute,
			SpeedLevel: SpeedLevel((slot[0] & timerSpeedLevelMask) >> timerSpeedShift),
		}
	}
	return &timers, nil
}

// DecodeFunc turns a decrypted characteristic payload into a typed record.
type DecodeFunc func(data []byte) (any, error)

// Decoders maps data characteristic UUIDs to their decoders. Iteration for
// a gather cycle uses GatherOrder, not this map.
var Decoders = map[string]DecodeFunc{
	UUIDChlorinatorState:      func(b []byte) (any, error) { return DecodeState(b) },
	UUIDChlorinatorSetup:      func(b []byte) (any, error) { return DecodeSetup(b) },
	UUIDChlorinatorCaps:       func(b []byte) (any, error) { return DecodeCapabilities(b) },
	UUIDChlorinatorTimers:     func(b []byte) (any, error) { return DecodeTimers(b) },
	UUIDChlorinatorStatistics: func(b []byte) (any, error) { return DecodeStatistics(b) },
	UUIDChlorinatorSettings:   func(b []byte) (any, error) { return DecodeSettings(b) },
}

// GatherOrder is the characteristic sequence of one data gathering cycle.
var GatherOrder = []string{
	UUIDChlorinatorState,
	UUIDChlorinatorSetup,
	UUIDChlorinatorCaps,
	UUIDChlorinatorTimers,
	UUIDChlorinatorStatistics,
	UUIDChlorinatorSettings,
}
