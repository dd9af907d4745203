package halo

import (
	"encoding/binary"
	"fmt"

	"github.com/pbutterworth/gochlorinator/pkg/codec"
)

// MainText is the headline status shown on the chlorinator display.
type MainText int16

const (
	MainTextNone                           MainText = -1
	MainTextOff                            MainText = 0
	MainTextSanitising                     MainText = 1
	MainTextAIModeSanitising               MainText = 2
	MainTextAIModeSampling                 MainText = 3
	MainTextSampling                       MainText = 4
	MainTextStandby                        MainText = 5
	MainTextPrePurge                       MainText = 6
	MainTextPostPurge                      MainText = 7
	MainTextSanitisingUntilFirstTimer      MainText = 8
	MainTextFiltering                      MainText = 9
	MainTextFilteringAndCleaning           MainText = 10
	MainTextCalibratingSensor              MainText = 11
	MainTextBackwashing                    MainText = 12
	MainTextPrimingAcidPump                MainText = 13
	MainTextManualAcidDose                 MainText = 14
	MainTextLowSpeedNoChlorinating         MainText = 15
	MainTextSanitisingForPeriod            MainText = 16
	MainTextSanitisingAndCleaningForPeriod MainText = 17
	MainTextLowTemperatureReducedOutput    MainText = 18
	MainTextHeaterCooldownInProgress       MainText = 19
)

func (m MainText) valid() bool { return m >= MainTextOff && m <= MainTextHeaterCooldownInProgress }

func (m MainText) String() string {
	names := map[MainText]string{
		MainTextNone: "None", MainTextOff: "Off",
		MainTextSanitising:                     "Sanitising",
		MainTextAIModeSanitising:               "AIModeSanitising",
		MainTextAIModeSampling:                 "AIModeSampling",
		MainTextSampling:                       "Sampling",
		MainTextStandby:                        "Standby",
		MainTextPrePurge:                       "PrePurge",
		MainTextPostPurge:                      "PostPurge",
		MainTextSanitisingUntilFirstTimer:      "SanitisingUntilFirstTimer",
		MainTextFiltering:                      "Filtering",
		MainTextFilteringAndCleaning:           "FilteringAndCleaning",
		MainTextCalibratingSensor:              "CalibratingSensor",
		MainTextBackwashing:                    "Backwashing",
		MainTextPrimingAcidPump:                "PrimingAcidPump",
		MainTextManualAcidDose:                 "ManualAcidDose",
		MainTextLowSpeedNoChlorinating:         "LowSpeedNoChlorinating",
		MainTextSanitisingForPeriod:            "SanitisingForPeriod",
		MainTextSanitisingAndCleaningForPeriod: "SanitisingAndCleaningForPeriod",
		MainTextLowTemperatureReducedOutput:    "LowTemperatureReducedOutput",
		MainTextHeaterCooldownInProgress:       "HeaterCooldownInProgress",
	}
	if s, ok := names[m]; ok {
		return s
	}
	return fmt.Sprintf("MainText(%d)", int16(m))
}

// ChlorineStatus is the chlorine/ORP subtext line.
type ChlorineStatus uint8

const (
	ChlorineStatusNone ChlorineStatus = iota
	ChlorineStatusORPIsYellow
	ChlorineStatusORPWasYellow
	ChlorineStatusORPIsGreen
	ChlorineStatusORPWasGreen
	ChlorineStatusORPIsRed
	ChlorineStatusORPWasRed
	ChlorineStatusChlorineIsLow
	ChlorineStatusChlorineWasLow
	ChlorineStatusChlorineIsOK
	ChlorineStatusChlorineWasOK
	ChlorineStatusChlorineIsHigh
	ChlorineStatusChlorineWasHigh
)

func (c ChlorineStatus) valid() bool { return c <= ChlorineStatusChlorineWasHigh }

func (c ChlorineStatus) String() string {
	names := [...]string{
		"None", "ORPIsYellow", "ORPWasYellow", "ORPIsGreen", "ORPWasGreen",
		"ORPIsRed", "ORPWasRed", "ChlorineIsLow", "ChlorineWasLow",
		"ChlorineIsOK", "ChlorineWasOK", "ChlorineIsHigh", "ChlorineWasHigh",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return fmt.Sprintf("ChlorineStatus(%d)", uint8(c))
}

// PhStatus is the pH subtext line.
type PhStatus uint8

const (
	PhStatusNone PhStatus = iota
	PhStatusPHIsYellow
	PhStatusPHWasYellow
	PhStatusPHIsGreen
	PhStatusPHWasGreen
	PhStatusPHIsRed
	PhStatusPHWasRed
	PhStatusPHIsLow
	PhStatusPHWasLow
	PhStatusPHIsOK
	PhStatusPHWasOK
	PhStatusPHIsHigh
	PhStatusPHWasHigh
)

func (p PhStatus) valid() bool { return p <= PhStatusPHWasHigh }

func (p PhStatus) String() string {
	names := [...]string{
		"None", "PHIsYellow", "PHWasYellow", "PHIsGreen", "PHWasGreen",
		"PHIsRed", "PHWasRed", "PHIsLow", "PHWasLow", "PHIsOK", "PHWasOK",
		"PHIsHigh", "PHWasHigh",
	}
	if int(p) < len(names) {
		return names[p]
	}
	return fmt.Sprintf("PhStatus(%d)", uint8(p))
}

// TimerInfo is the timer subtext line.
type TimerInfo uint8

const (
	TimerInfoNone TimerInfo = iota
	TimerInfoSanitisingPoolOff
	TimerInfoSanitisingPoolUntil
	TimerInfoSanitisingSpaOff
	TimerInfoSanitisingSpaUntil
	TimerInfoSanitisingOff
	TimerInfoSanitisingUntil
	TimerInfoPrimingFor
	TimerInfoHeaterCooldownTimeRemaining
)

func (t TimerInfo) valid() bool { return t <= TimerInfoHeaterCooldownTimeRemaining }

func (t TimerInfo) String() string {
	names := [...]string{
		"None", "SanitisingPoolOff", "SanitisingPoolUntil", "SanitisingSpaOff",
		"SanitisingSpaUntil", "SanitisingOff", "SanitisingUntil", "PrimingFor",
		"HeaterCooldownTimeRemaining",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("TimerInfo(%d)", uint8(t))
}

// ErrorInfo is the error subtext line. The code space is sparse; codes are
// grouped by subsystem in blocks of 100.
type ErrorInfo uint16

const (
	ErrorNone               ErrorInfo = 0
	ErrorIOExpander         ErrorInfo = 1
	ErrorEEPROM             ErrorInfo = 2
	ErrorRTC                ErrorInfo = 3
	ErrorNoComPowerToUser   ErrorInfo = 4
	ErrorNoComUserToPower   ErrorInfo = 5
	ErrorBackwashing        ErrorInfo = 6
	ErrorSensorCalibration  ErrorInfo = 7
	ErrorAccessoryPairing   ErrorInfo = 8
	ErrorChlorOverheat      ErrorInfo = 9
	ErrorTempShortCir       ErrorInfo = 10
	ErrorTempOpenCir        ErrorInfo = 11
	ErrorFactoryReset       ErrorInfo = 12
	ErrorUpdateSuccess      ErrorInfo = 50
	ErrorUpdateFailed       ErrorInfo = 51
	ErrorUpdateAvailable    ErrorInfo = 52
	ErrorLostCom            ErrorInfo = 100
	ErrorLowVoltage         ErrorInfo = 101
	ErrorPumpHighTemp       ErrorInfo = 102
	ErrorOverCurrent        ErrorInfo = 103
	ErrorBlockedInlet       ErrorInfo = 104
	ErrorPumpGnlFault       ErrorInfo = 150
	ErrorPumpLimitFault     ErrorInfo = 151
	ErrorPumpVoltFault      ErrorInfo = 152
	ErrorPumpCommFault      ErrorInfo = 153
	ErrorPumpTempFault      ErrorInfo = 154
	ErrorPumpSoftFault      ErrorInfo = 155
	ErrorPumpFailedStart    ErrorInfo = 156
	ErrorPumpCommErr        ErrorInfo = 157
	ErrorPumpBlocked        ErrorInfo = 158
	ErrorPhComLost          ErrorInfo = 200
	ErrorORPComLost         ErrorInfo = 201
	ErrorPhHigh             ErrorInfo = 202
	ErrorORPHigh            ErrorInfo = 203
	ErrorPhLow              ErrorInfo = 204
	ErrorORPLow             ErrorInfo = 205
	ErrorPhACErr            ErrorInfo = 206
	ErrorORPACErr           ErrorInfo = 207
	ErrorNoComHeater        ErrorInfo = 300
	ErrorLowWaterTemp       ErrorInfo = 301
	ErrorHighWaterTemp      ErrorInfo = 302
	ErrorMechOverheat       ErrorInfo = 303
	ErrorTherShortCir       ErrorInfo = 304
	ErrorFlameRollOut       ErrorInfo = 305
	ErrorFlueOverheat       ErrorInfo = 306
	ErrorCondensateOverflow ErrorInfo = 307
	ErrorHXTherOpenCir      ErrorInfo = 308
	ErrorHXTherShortCir     ErrorInfo = 309
	ErrorWtrSsrSrted        ErrorInfo = 310
	ErrorWtrSsrOpen         ErrorInfo = 311
	ErrorHeaterHighTemp     ErrorInfo = 312
	ErrorLowRefPrs          ErrorInfo = 313
	ErrorHighRefPrs         ErrorInfo = 314
	ErrorSrtedCoilSsr       ErrorInfo = 315
	ErrorOpenCoilSsr        ErrorInfo = 316
	ErrorInterlock          ErrorInfo = 317
	ErrorHighLimit          ErrorInfo = 318
	ErrorAirSsrSrted        ErrorInfo = 319
	ErrorGPO1ComLost        ErrorInfo = 400
	ErrorGPO2ComLost        ErrorInfo = 401
	ErrorLight1LostCom      ErrorInfo = 500
	ErrorLight2LostCom      ErrorInfo = 501
	ErrorSlrRoofSsrSrted    ErrorInfo = 600
	ErrorSlrRoofSsrDis      ErrorInfo = 601
	ErrorSlrWtrSsrSrted     ErrorInfo = 602
	ErrorSlrWtrSsrDis       ErrorInfo = 603
	ErrorNoFlow             ErrorInfo = 700
	ErrorHighSalt           ErrorInfo = 701
	ErrorLowSalt            ErrorInfo = 702
	ErrorWaterTooCold       ErrorInfo = 703
	ErrorDownRate2          ErrorInfo = 705
	ErrorDownRate1          ErrorInfo = 706
	ErrorSamplingOnly       ErrorInfo = 707
	ErrorDosingDisabled     ErrorInfo = 708
	ErrorDlyAcidDoseLimit   ErrorInfo = 709
	ErrorCellDis            ErrorInfo = 710
	ErrorPhBatteryLow       ErrorInfo = 900
	ErrorORPBatteryLow      ErrorInfo = 901
	ErrorPhRequired         ErrorInfo = 902
	ErrorConnectionError    ErrorInfo = 1400
	ErrorUnknown            ErrorInfo = 65535
)

var errorInfoNames = map[ErrorInfo]string{
	ErrorNone: "None", ErrorIOExpander: "IOExpander", ErrorEEPROM: "EEPROM",
	ErrorRTC: "RTC", ErrorNoComPowerToUser: "NoComPowerToUser",
	ErrorNoComUserToPower: "NoComUserToPower", ErrorBackwashing: "Backwashing",
	ErrorSensorCalibration: "SensorCalibration",
	ErrorAccessoryPairing:  "AccessoryPairing",
	ErrorChlorOverheat:     "ChlorOverheat", ErrorTempShortCir: "TempShortCir",
	ErrorTempOpenCir: "TempOpenCir", ErrorFactoryReset: "FactoryReset",
	ErrorUpdateSuccess: "UpdateSuccess", ErrorUpdateFailed: "UpdateFailed",
	ErrorUpdateAvailable: "UpdateAvailable", ErrorLostCom: "LostCom",
	ErrorLowVoltage: "LowVoltage", ErrorPumpHighTemp: "PumpHighTemp",
	ErrorOverCurrent: "OverCurrent", ErrorBlockedInlet: "BlockedInlet",
	ErrorPumpGnlFault: "PumpGnlFault", ErrorPumpLimitFault: "PumpLimitFault",
	ErrorPumpVoltFault: "PumpVoltFault", ErrorPumpCommFault: "PumpCommFault",
	ErrorPumpTempFault: "PumpTempFault", ErrorPumpSoftFault: "PumpSoftFault",
	ErrorPumpFailedStart: "PumpFailedStart", ErrorPumpCommErr: "PumpCommErr",
	ErrorPumpBlocked: "PumpBlocked", ErrorPhComLost: "pHComLost",
	ErrorORPComLost: "ORPComLost", ErrorPhHigh: "pHHigh",
	ErrorORPHigh: "ORPHigh", ErrorPhLow: "pHLow", ErrorORPLow: "ORPLow",
	ErrorPhACErr: "pHACErr", ErrorORPACErr: "ORPACErr",
	ErrorNoComHeater: "NoComHeater", ErrorLowWaterTemp: "LowWaterTemp",
	ErrorHighWaterTemp: "HighWaterTemp", ErrorMechOverheat: "MechOverheat",
	ErrorTherShortCir: "TherShortCir", ErrorFlameRollOut: "FlameRollOut",
	ErrorFlueOverheat:       "FlueOverheat",
	ErrorCondensateOverflow: "CondensateOverflow",
	ErrorHXTherOpenCir:      "HXTherOpenCir",
	ErrorHXTherShortCir:     "HXTherShortCir", ErrorWtrSsrSrted: "WtrSsrSrted",
	ErrorWtrSsrOpen: "WtrSsrOpen", ErrorHeaterHighTemp: "HeaterHighTemp",
	ErrorLowRefPrs: "LowRefPrs", ErrorHighRefPrs: "HighRefPrs",
	ErrorSrtedCoilSsr: "SrtedCoilSsr", ErrorOpenCoilSsr: "OpenCoilSsr",
	ErrorInterlock: "Interlock", ErrorHighLimit: "HighLimit",
	ErrorAirSsrSrted: "AirSsrSrted", ErrorGPO1ComLost: "GPO1ComLost",
	ErrorGPO2ComLost: "GPO2ComLost", ErrorLight1LostCom: "Light1LostCom",
	ErrorLight2LostCom:   "Light2LostCom",
	ErrorSlrRoofSsrSrted: "SlrRoofSsrSrted", ErrorSlrRoofSsrDis: "SlrRoofSsrDis",
	ErrorSlrWtrSsrSrted: "SlrWtrSsrSrted", ErrorSlrWtrSsrDis: "SlrWtrSsrDis",
	ErrorNoFlow: "NoFlow", ErrorHighSalt: "HighSalt", ErrorLowSalt: "LowSalt",
	ErrorWaterTooCold: "WaterTooCold", ErrorDownRate2: "DownRate2",
	ErrorDownRate1: "DownRate1", ErrorSamplingOnly: "SamplingOnly",
	ErrorDosingDisabled:   "DosingDisabled",
	ErrorDlyAcidDoseLimit: "DlyAcidDoseLimit", ErrorCellDis: "CellDis",
	ErrorPhBatteryLow: "pHBatteryLow", ErrorORPBatteryLow: "ORPBatteryLow",
	ErrorPhRequired: "pHRequired", ErrorConnectionError: "ConnectionError",
	ErrorUnknown: "Unknown",
}

func (e ErrorInfo) valid() bool { _, ok := errorInfoNames[e]; return ok }

func (e ErrorInfo) String() string {
	if s, ok := errorInfoNames[e]; ok {
		return s
	}
	return fmt.Sprintf("ErrorInfo(%d)", uint16(e))
}

// State flag bits.
const (
	stateSpaMode         = 1 << 0
	stateCellOn          = 1 << 1
	stateCellReversed    = 1 << 2
	stateCoolingFanOn    = 1 << 3
	stateLightOutputOn   = 1 << 4
	stateDosingPumpOn    = 1 << 5
	stateCellIsReversing = 1 << 6
	stateAIModeActive    = 1 << 7
)

// State is the decoded chlorinator state record (tag 104).
type State struct {
	RealCellLevel  uint8
	CellCurrentMA  uint16
	MainText       MainText
	ChlorineStatus ChlorineStatus
	ORPMeasurement uint16
	PhStatus       PhStatus
	PhMeasurement  float64
	TimerInfo      TimerInfo
	TimerData      [2]byte
	ErrorInfo      ErrorInfo

	IsInPoolSelection bool
	IsCellRunning     bool
	IsCellReversed    bool
	IsCoolingFanOn    bool
	IsLightOutputOn   bool
	DosingPumpOn      bool
	CellIsReversing   bool
	AIModeActive      bool
}

const stateLen = 16

// DecodeState decodes the chlorinator state record.
func DecodeState(data []byte) (*State, error) {
	if len(data) < stateLen {
		return nil, codec.ShortBuffer("State", stateLen, len(data))
	}

	mainText := MainText(data[4])
	if !mainText.valid() {
		return nil, &codec.UnknownEnumError{Record: "State", Field: "MainText", Value: int(data[4])}
	}
	chlorine := ChlorineStatus(data[5])
	if !chlorine.valid() {
		return nil, &codec.UnknownEnumError{Record: "State", Field: "ChlorineStatus", Value: int(data[5])}
	}
	ph := PhStatus(data[8])
	if !ph.valid() {
		return nil, &codec.UnknownEnumError{Record: "State", Field: "PhStatus", Value: int(data[8])}
	}
	timer := TimerInfo(data[10])
	if !timer.valid() {
		return nil, &codec.UnknownEnumError{Record: "State", Field: "TimerInfo", Value: int(data[10])}
	}
	errInfo := ErrorInfo(binary.LittleEndian.Uint16(data[13:15]))
	if !errInfo.valid() {
		return nil, &codec.UnknownEnumError{Record: "State", Field: "ErrorInfo", Value: int(errInfo)}
	}

	flags := data[0]
	s := &State{
		RealCellLevel:  data[1],
		CellCurrentMA:  binary.LittleEndian.Uint16(data[2:4]),
		MainText:       mainText,
		ChlorineStatus: chlorine,
		ORPMeasurement: binary.LittleEndian.Uint16(data[6:8]),
		PhStatus:       ph,
		PhMeasurement:  float64(data[9]) / 10,
		TimerInfo:      timer,
		ErrorInfo:      errInfo,

		IsInPoolSelection: flags&stateSpaMode == 0,
		IsCellRunning:     flags&stateCellOn != 0,
		IsCellReversed:    flags&stateCellReversed != 0,
		IsCoolingFanOn:    flags&stateCoolingFanOn != 0,
		IsLightOutputOn:   flags&stateLightOutputOn != 0,
		DosingPumpOn:      flags&stateDosingPumpOn != 0,
		CellIsReversing:   flags&stateCellIsReversing != 0,
		AIModeActive:      flags&stateAIModeActive != 0,
	}
	copy(s.TimerData[:], data[11:13])
	return s, nil
}
