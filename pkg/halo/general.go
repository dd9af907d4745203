package halo

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/pbutterworth/gochlorinator/pkg/codec"
)

// TempFlags marks which temperature sensors are supported or displayed.
type TempFlags uint8

const (
	TempBoardTemp TempFlags = 1 << iota
	TempWaterTemp
	TempChloroWater
	TempSolarWater
	TempSolarRoof
	TempHeater
)

// Has reports whether all bits of flag are set.
func (f TempFlags) Has(flag TempFlags) bool { return f&flag == flag }

// Temperature is the decoded temperature record (tag 9). Readings are in
// degrees, already divided out of their tenths-of-degree wire encoding.
// Only the WaterTemp encoding has been verified against a real unit; the
// tenths scaling on the other five sensors is an assumption and may need
// correcting once hardware with those sensors fitted is available.
type Temperature struct {
	IsFahrenheit   bool
	TempSupports   TempFlags
	BoardTemp      float64
	WaterTemp      float64
	ChloroWater    float64
	SolarWater     float64
	WaterTempValid TempValid
	SolarRoof      float64
	Heater         float64
	TempDisplayed  TempFlags
}

const temperatureLen = 16

// DecodeTemperature decodes the temperature record.
func DecodeTemperature(data []byte) (*Temperature, error) {
	if len(data) < temperatureLen {
		return nil, codec.ShortBuffer("Temperature", temperatureLen, len(data))
	}
	tempValid := TempValid(data[10])
	if !tempValid.valid() {
		return nil, &codec.UnknownEnumError{Record: "Temperature", Field: "WaterTempValid", Value: int(data[10])}
	}
	return &Temperature{
		IsFahrenheit: data[0] != 0,
		TempSupports: TempFlags(data[1]),
		// WaterTemp's tenths-of-degree encoding is confirmed; the same
		// scaling on board, chloro, solar and heater is assumed, unverified.
		BoardTemp:      float64(binary.LittleEndian.Uint16(data[2:4])) / 10,
		WaterTemp:      float64(binary.LittleEndian.Uint16(data[4:6])) / 10,
		ChloroWater:    float64(binary.LittleEndian.Uint16(data[6:8])) / 10,
		SolarWater:     float64(binary.LittleEndian.Uint16(data[8:10])) / 10,
		WaterTempValid: tempValid,
		SolarRoof:      float64(binary.LittleEndian.Uint16(data[11:13])) / 10,
		Heater:         float64(binary.LittleEndian.Uint16(data[13:15])) / 10,
		TempDisplayed:  TempFlags(data[15]),
	}, nil
}

// CellModel is the installed cell model.
type CellModel uint8

const (
	CellModel18 CellModel = iota
	CellModel25
	CellModel35
	CellModel45
)

func (c CellModel) valid() bool { return c <= CellModel45 }

func (c CellModel) String() string {
	names := [...]string{"Model_18", "Model_25", "Model_35", "Model_45"}
	if int(c) < len(names) {
		return names[c]
	}
	return fmt.Sprintf("CellModel(%d)", uint8(c))
}

// Settings general flag bits.
const (
	settingsPrePurgeEnabled               = 1 << 0
	settingsPostPurgeEnabled              = 1 << 1
	settingsAcidFlushEnabled              = 1 << 2
	settingsAIEnabled                     = 1 << 3
	settingsAIEnabledReadOnly             = 1 << 4
	settingsDisplayORP                    = 1 << 5
	settingsDosingEnabled                 = 1 << 6
	settingsThreeSpeedPumpEnabled         = 1 << 7
	settingsThreeSpeedPumpEnabledReadOnly = 1 << 8
	settingsPumpProtectEnable             = 1 << 9
	settingsUseTemperatureSensor          = 1 << 10
	settingsEnableCleaningInterlock       = 1 << 11
	settingsDisplayPH                     = 1 << 12
)

// Settings is the decoded settings record (tag 100).
type Settings struct {
	CellModel            CellModel
	ReversalPeriod       uint8
	AIWaterTurns         uint8
	AcidPumpSize         uint8
	FilterPumpSize       uint8
	DefaultManualOnSpeed uint8

	PrePurgeEnabled               bool
	PostPurgeEnabled              bool
	AcidFlushEnabled              bool
	AiModeEnabled                 bool
	DisplayORP                    bool
	IsDosingCapable               bool
	ThreeSpeedPumpEnabled         bool
	ThreeSpeedPumpEnabledReadOnly bool
	EnableCleaningInterlock       bool
}

const settingsLen = 8

// DecodeSettings decodes the settings record. AI mode counts as enabled when
// either the writable or the read-only flag bit is set.
func DecodeSettings(data []byte) (*Settings, error) {
	if len(data) < settingsLen {
		return nil, codec.ShortBuffer("Settings", settingsLen, len(data))
	}
	model := CellModel(data[2])
	if !model.valid() {
		return nil, &codec.UnknownEnumError{Record: "Settings", Field: "CellModel", Value: int(data[2])}
	}
	general := binary.LittleEndian.Uint16(data[0:2])
	return &Settings{
		CellModel:            model,
		ReversalPeriod:       data[3],
		AIWaterTurns:         data[4],
		AcidPumpSize:         data[5],
		FilterPumpSize:       data[6],
		DefaultManualOnSpeed: data[7],

		PrePurgeEnabled:               general&settingsPrePurgeEnabled != 0,
		PostPurgeEnabled:              general&settingsPostPurgeEnabled != 0,
		AcidFlushEnabled:              general&settingsAcidFlushEnabled != 0,
		AiModeEnabled:                 general&(settingsAIEnabled|settingsAIEnabledReadOnly) != 0,
		DisplayORP:                    general&settingsDisplayORP != 0,
		IsDosingCapable:               general&settingsDosingEnabled != 0,
		ThreeSpeedPumpEnabled:         general&settingsThreeSpeedPumpEnabled != 0,
		ThreeSpeedPumpEnabledReadOnly: general&settingsThreeSpeedPumpEnabledReadOnly != 0,
		EnableCleaningInterlock:       general&settingsEnableCleaningInterlock != 0,
	}, nil
}

// VolumeUnits is the unit pool volumes are reported in.
type VolumeUnits uint8

const (
	VolumeLitres VolumeUnits = iota
	VolumeUsGallons
	VolumeImperialGallons
)

func (v VolumeUnits) valid() bool { return v <= VolumeImperialGallons }

func (v VolumeUnits) String() string {
	names := [...]string{"Litres", "UsGallons", "ImperialGallons"}
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("VolumeUnits(%d)", uint8(v))
}

// Water volume flag bits.
const (
	waterVolumePoolEnabled = 1 << 0
	waterVolumeSpaEnabled  = 1 << 1
)

// WaterVolume is the decoded water volume record (tag 101).
type WaterVolume struct {
	VolumeUnits    VolumeUnits
	PoolVolume     uint32
	SpaVolume      uint16
	PoolLeftFilter uint32
	SpaLeftFilter  uint16

	PoolEnabled    bool
	SpaEnabled     bool
	PoolSpaEnabled bool
}

const waterVolumeLen = 14

// DecodeWaterVolume decodes the water volume record.
func DecodeWaterVolume(data []byte) (*WaterVolume, error) {
	if len(data) < waterVolumeLen {
		return nil, codec.ShortBuffer("WaterVolume", waterVolumeLen, len(data))
	}
	units := VolumeUnits(data[0])
	if !units.valid() {
		return nil, &codec.UnknownEnumError{Record: "WaterVolume", Field: "VolumeUnits", Value: int(data[0])}
	}
	flags := data[13]
	w := &WaterVolume{
		VolumeUnits:    units,
		PoolVolume:     binary.LittleEndian.Uint32(data[1:5]),
		SpaVolume:      binary.LittleEndian.Uint16(data[5:7]),
		PoolLeftFilter: binary.LittleEndian.Uint32(data[7:11]),
		SpaLeftFilter:  binary.LittleEndian.Uint16(data[11:13]),

		PoolEnabled: flags&waterVolumePoolEnabled != 0,
		SpaEnabled:  flags&waterVolumeSpaEnabled != 0,
	}
	w.PoolSpaEnabled = w.PoolEnabled && w.SpaEnabled
	return w, nil
}

// SetPoints is the decoded control set point record (tag 102).
type SetPoints struct {
	PhControlSetpoint           float64
	OrpControlSetpoint          uint16
	PoolChlorineControlSetpoint uint8
	AcidControlSetpoint         uint8
	SpaChlorineControlSetpoint  uint8
}

const setPointsLen = 6

// DecodeSetPoints decodes the set point record.
func DecodeSetPoints(data []byte) (*SetPoints, error) {
	if len(data) < setPointsLen {
		return nil, codec.ShortBuffer("SetPoints", setPointsLen, len(data))
	}
	return &SetPoints{
		PhControlSetpoint:           float64(data[0]) / 10,
		OrpControlSetpoint:          binary.LittleEndian.Uint16(data[1:3]),
		PoolChlorineControlSetpoint: data[3],
		AcidControlSetpoint:         data[4],
		SpaChlorineControlSetpoint:  data[5],
	}, nil
}

// ControlType says whether a chemistry loop is absent, manual or automatic.
type ControlType uint8

const (
	ControlNone ControlType = iota
	ControlManual
	ControlAutomatic
)

func (c ControlType) valid() bool { return c <= ControlAutomatic }

func (c ControlType) String() string {
	names := [...]string{"None", "Manual", "Automatic"}
	if int(c) < len(names) {
		return names[c]
	}
	return fmt.Sprintf("ControlType(%d)", uint8(c))
}

// Set point limits enforced by the device firmware.
const (
	MinimumOrpSetpoint = 100
	MaximumOrpSetpoint = 800
	MinimumPhSetpoint  = 3.0
	MaximumPhSetpoint  = 10.0

	MaximumManualChlorineSetpoint = 8
	MaximumManualAcidSetpoint     = 10
)

// Capabilities is the decoded capabilities record (tag 105).
type Capabilities struct {
	PhControlType       ControlType
	ChlorineControlType ControlType
}

const capabilitiesLen = 2

// DecodeCapabilities decodes the capabilities record.
func DecodeCapabilities(data []byte) (*Capabilities, error) {
	if len(data) < capabilitiesLen {
		return nil, codec.ShortBuffer("Capabilities", capabilitiesLen, len(data))
	}
	ph := ControlType(data[0])
	if !ph.valid() {
		return nil, &codec.UnknownEnumError{Record: "Capabilities", Field: "PhControlType", Value: int(data[0])}
	}
	orp := ControlType(data[1])
	if !orp.valid() {
		return nil, &codec.UnknownEnumError{Record: "Capabilities", Field: "ChlorineControlType", Value: int(data[1])}
	}
	return &Capabilities{PhControlType: ph, ChlorineControlType: orp}, nil
}

// TaskState is the running maintenance task. NoState is a sentinel encoded
// as 0xFF on the wire.
type TaskState int8

const (
	TaskNoState TaskState = iota - 1
	TaskNoTask
	TaskSanitiseUntilTimer
	TaskFilterForPeriod
	TaskFilterAndCleanForPeriod
	TaskBackwash
	TaskCalibratePH
	TaskCalibrateORP
	TaskPrimeAcid
	TaskDoseAcid
	TaskSanitiseForPeriod
	TaskSanitiseAndCleanForPeriod
)

func taskStateFromWire(b byte) (TaskState, bool) {
	if b == 0xFF {
		return TaskNoState, true
	}
	t := TaskState(b)
	return t, t >= TaskNoTask && t <= TaskSanitiseAndCleanForPeriod
}

func (t TaskState) String() string {
	names := [...]string{
		"NoTask", "SanitiseUntilTimer", "FilterForPeriod",
		"FilterAndCleanForPeriod", "Backwash", "CalibratePH", "CalibrateORP",
		"PrimeAcid", "DoseAcid", "SanitiseForPeriod",
		"SanitiseAndCleanForPeriod",
	}
	if t == TaskNoState {
		return "NoState"
	}
	if t >= 0 && int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("TaskState(%d)", int8(t))
}

// TaskReturnCode is the outcome of the last maintenance task.
type TaskReturnCode uint8

const (
	TaskReturnOK TaskReturnCode = iota
	TaskReturnFailedSetStartConditions
	TaskReturnOverriddenByUser
	TaskReturnFailedSetSystemMode
	TaskReturnAbortedByUser
	TaskReturnComplete
)

func (t TaskReturnCode) valid() bool { return t <= TaskReturnComplete }

func (t TaskReturnCode) String() string {
	names := [...]string{
		"OK", "FailedSetStartConditions", "TaskOverriddenByUser",
		"FailedSetSystemMode", "TaskAbortedByUser", "TaskComplete",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("TaskReturnCode(%d)", uint8(t))
}

// CalibrateState is the probe calibration state machine position.
type CalibrateState uint8

const (
	CalibrateIdle CalibrateState = iota
	CalibrateProbeCalStarting
	CalibrateConnectToProbe
	CalibrateConnectionFailed
	CalibrateReadCalValue
	CalibrateReadCalValueFailed
	CalibrateRunningPump
	CalibrateTakingMeasurement
	CalibrateMeasurementFailed
	CalibrateWaitNewCalValue
	CalibrateTimeOutWaitingCalibration
	CalibrateWritingCalibrationValue
	CalibrateFailedToWrite
	CalibrateSuccessful
	CalibrateAbort
)

func (c CalibrateState) valid() bool { return c <= CalibrateAbort }

func (c CalibrateState) String() string {
	names := [...]string{
		"Idle", "ProbeCalStarting", "ConnectToProbe", "ConnectionFailed",
		"ReadCalValue", "ReadCalValueFailed", "RunningPump",
		"TakingMeasurement", "MeasurementFailed", "WaitNewCalValue",
		"TimeOutWaitingCalibration", "WritingCalibrationValue",
		"CalibrationFailedToWrite", "CalibrationSuccessful", "CalAbort",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return fmt.Sprintf("CalibrateState(%d)", uint8(c))
}

// Maintenance state flag bits.
const (
	maintAcidDosingDisabled = 1 << 0
	maintDayRolledOver      = 1 << 1
)

// MaintenanceState is the decoded maintenance state record (tag 106).
type MaintenanceState struct {
	DoseDisableTime    time.Duration
	MaintenanceTask    TaskState
	TaskReturnCode     TaskReturnCode
	TaskTimeRemaining  time.Duration
	ValueToDisplay     uint16
	CalibrateState     CalibrateState
	ModeAfterComplete  Mode
	AcidDosingDisabled bool
}

const maintenanceStateLen = 13

// DecodeMaintenanceState decodes the maintenance state record.
func DecodeMaintenanceState(data []byte) (*MaintenanceState, error) {
	if len(data) < maintenanceStateLen {
		return nil, codec.ShortBuffer("MaintenanceState", maintenanceStateLen, len(data))
	}
	task, ok := taskStateFromWire(data[3])
	if !ok {
		return nil, &codec.UnknownEnumError{Record: "MaintenanceState", Field: "MaintenanceTask", Value: int(data[3])}
	}
	code := TaskReturnCode(data[4])
	if !code.valid() {
		return nil, &codec.UnknownEnumError{Record: "MaintenanceState", Field: "TaskReturnCode", Value: int(data[4])}
	}
	calibrate := CalibrateState(data[11])
	if !calibrate.valid() {
		return nil, &codec.UnknownEnumError{Record: "MaintenanceState", Field: "CalibrateState", Value: int(data[11])}
	}
	mode := Mode(data[12])
	if !mode.valid() {
		return nil, &codec.UnknownEnumError{Record: "MaintenanceState", Field: "ModeAfterComplete", Value: int(data[12])}
	}
	return &MaintenanceState{
		DoseDisableTime:    time.Duration(binary.LittleEndian.Uint16(data[1:3])) * time.Minute,
		MaintenanceTask:    task,
		TaskReturnCode:     code,
		TaskTimeRemaining:  time.Duration(binary.LittleEndian.Uint32(data[5:9])) * time.Second,
		ValueToDisplay:     binary.LittleEndian.Uint16(data[9:11]),
		CalibrateState:     calibrate,
		ModeAfterComplete:  mode,
		AcidDosingDisabled: data[0]&maintAcidDosingDisabled != 0,
	}, nil
}
