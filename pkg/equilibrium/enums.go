package equilibrium

import "fmt"

// Mode is the operating mode reported in the state record.
type Mode uint8

const (
	ModeOff Mode = iota
	ModeManualOn
	ModeAuto
)

func (m Mode) valid() bool { return m <= ModeAuto }

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "Off"
	case ModeManualOn:
		return "ManualOn"
	case ModeAuto:
		return "Auto"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// SpeedLevel is a pump speed. The wire carries 0-3; NotSet is a sentinel
// that never appears on the wire (it marks an unconfigured timer slot).
type SpeedLevel int8

const (
	SpeedNotSet SpeedLevel = -1
	SpeedLow    SpeedLevel = 0
	SpeedMedium SpeedLevel = 1
	SpeedHigh   SpeedLevel = 2
	SpeedAI     SpeedLevel = 3
)

func (s SpeedLevel) valid() bool { return s >= SpeedLow && s <= SpeedAI }

func (s SpeedLevel) String() string {
	switch s {
	case SpeedNotSet:
		return "NotSet"
	case SpeedLow:
		return "Low"
	case SpeedMedium:
		return "Medium"
	case SpeedHigh:
		return "High"
	case SpeedAI:
		return "AI"
	}
	return fmt.Sprintf("SpeedLevel(%d)", int8(s))
}

// InfoMessage is the informational message code of the state record.
// Codes at or above InfoWarningLevel are warnings.
type InfoMessage uint8

const (
	InfoNoMessage                    InfoMessage = 0
	InfoPhProbeNoComms               InfoMessage = 1
	InfoPhProbeOtherError            InfoMessage = 2
	InfoPhProbeCleanCalibrate        InfoMessage = 3
	InfoOrpProbeNoComms              InfoMessage = 4
	InfoOrpProbeOtherError           InfoMessage = 5
	InfoOrpProbeCleanCalibrate       InfoMessage = 6
	InfoG4CommsFailure               InfoMessage = 7
	InfoNoWaterFlow                  InfoMessage = 8
	InfoRtccFault                    InfoMessage = 128
	InfoOrpProbeFittedPhProbeMissing InfoMessage = 129
	InfoAiPumpSpeed                  InfoMessage = 130
	InfoLowSalt                      InfoMessage = 131
	InfoUnspecified                  InfoMessage = 132

	// InfoWarningLevel is the threshold above which a message is a warning.
	InfoWarningLevel InfoMessage = 128
)

func (m InfoMessage) valid() bool {
	return m <= InfoNoWaterFlow || (m >= InfoRtccFault && m <= InfoUnspecified)
}

// IsWarning reports whether the message code is in the warning band.
func (m InfoMessage) IsWarning() bool { return m >= InfoWarningLevel }

func (m InfoMessage) String() string {
	names := map[InfoMessage]string{
		InfoNoMessage:                    "NoMessage",
		InfoPhProbeNoComms:               "PhProbeNoComms",
		InfoPhProbeOtherError:            "PhProbeOtherError",
		InfoPhProbeCleanCalibrate:        "PhProbeCleanCalibrate",
		InfoOrpProbeNoComms:              "OrpProbeNoComms",
		InfoOrpProbeOtherError:           "OrpProbeOtherError",
		InfoOrpProbeCleanCalibrate:       "OrpProbeCleanCalibrate",
		InfoG4CommsFailure:               "G4CommsFailure",
		InfoNoWaterFlow:                  "NoWaterFlow",
		InfoRtccFault:                    "RtccFault",
		InfoOrpProbeFittedPhProbeMissing: "OrpProbeFittedPhProbeMissing",
		InfoAiPumpSpeed:                  "AiPumpSpeed",
		InfoLowSalt:                      "LowSalt",
		InfoUnspecified:                  "Unspecified",
	}
	if s, ok := names[m]; ok {
		return s
	}
	return fmt.Sprintf("InfoMessage(%d)", uint8(m))
}

// ChlorineControlStatus is the chlorine band reported in the state record.
// Unknown is a sentinel absent on the wire.
type ChlorineControlStatus int8

const (
	ChlorineStatusUnknown       ChlorineControlStatus = -1
	ChlorineStatusNoMeasurement ChlorineControlStatus = 0
	ChlorineStatusVeryVeryLow   ChlorineControlStatus = 1
	ChlorineStatusVeryLow       ChlorineControlStatus = 2
	ChlorineStatusLow           ChlorineControlStatus = 3
	ChlorineStatusOk            ChlorineControlStatus = 4
	ChlorineStatusHigh          ChlorineControlStatus = 5
	ChlorineStatusVeryHigh      ChlorineControlStatus = 6
	ChlorineStatusVeryVeryHigh  ChlorineControlStatus = 7
)

func (c ChlorineControlStatus) valid() bool {
	return c >= ChlorineStatusNoMeasurement && c <= ChlorineStatusVeryVeryHigh
}

func (c ChlorineControlStatus) String() string {
	switch c {
	case ChlorineStatusUnknown:
		return "Unknown"
	case ChlorineStatusNoMeasurement:
		return "Invalid_NoMeasurement"
	case ChlorineStatusVeryVeryLow:
		return "VeryVeryLow"
	case ChlorineStatusVeryLow:
		return "VeryLow"
	case ChlorineStatusLow:
		return "Low"
	case ChlorineStatusOk:
		return "Ok"
	case ChlorineStatusHigh:
		return "High"
	case ChlorineStatusVeryHigh:
		return "VeryHigh"
	case ChlorineStatusVeryVeryHigh:
		return "VeryVeryHigh"
	}
	return fmt.Sprintf("ChlorineControlStatus(%d)", int8(c))
}

// PhControlType describes how pH is controlled.
type PhControlType uint8

const (
	PhControlNone PhControlType = iota
	PhControlManual
	PhControlAutomatic
)

func (p PhControlType) valid() bool { return p <= PhControlAutomatic }

func (p PhControlType) String() string {
	switch p {
	case PhControlNone:
		return "NoPhControl"
	case PhControlManual:
		return "Manual"
	case PhControlAutomatic:
		return "Automatic"
	}
	return fmt.Sprintf("PhControlType(%d)", uint8(p))
}

// ChlorineControlType describes how chlorine output is controlled.
type ChlorineControlType uint8

const (
	ChlorineControlNone ChlorineControlType = iota
	ChlorineControlManual
	ChlorineControlAutomatic
)

func (c ChlorineControlType) valid() bool { return c <= ChlorineControlAutomatic }

func (c ChlorineControlType) String() string {
	switch c {
	case ChlorineControlNone:
		return "NoChlorineControl"
	case ChlorineControlManual:
		return "Manual"
	case ChlorineControlAutomatic:
		return "Automatic"
	}
	return fmt.Sprintf("ChlorineControlType(%d)", uint8(c))
}

// VolumeUnits is the configured water volume unit.
type VolumeUnits uint8

const (
	VolumeLitres VolumeUnits = iota
	VolumeUsGallons
	VolumeImperialGallons
)

func (v VolumeUnits) String() string {
	switch v {
	case VolumeLitres:
		return "Litres"
	case VolumeUsGallons:
		return "UsGallons"
	case VolumeImperialGallons:
		return "ImperialGallons"
	}
	return fmt.Sprintf("VolumeUnits(%d)", uint8(v))
}

// AcidDosingInhibitStatus reports whether acid dosing is suspended.
type AcidDosingInhibitStatus uint8

const (
	AcidDosingNotInhibited AcidDosingInhibitStatus = iota
	AcidDosingInhibitedIndefinitely
	AcidDosingInhibitedForPeriod
)

func (a AcidDosingInhibitStatus) valid() bool { return a <= AcidDosingInhibitedForPeriod }

func (a AcidDosingInhibitStatus) String() string {
	switch a {
	case AcidDosingNotInhibited:
		return "NotInhibited"
	case AcidDosingInhibitedIndefinitely:
		return "InhibitedIndefinitely"
	case AcidDosingInhibitedForPeriod:
		return "InhibitedForAPeriod"
	}
	return fmt.Sprintf("AcidDosingInhibitStatus(%d)", uint8(a))
}

// Setup record flag bits.
const (
	setupNoTimerModel       = 1 << 0
	setupTimerMasterPresent = 1 << 1
)

// State record flag bits.
const (
	stateChemistryValuesCurrent   = 1 << 0
	stateChemistryValuesValid     = 1 << 1
	stateSpaSelection             = 1 << 2
	statePumpIsPriming            = 1 << 3
	statePumpIsOperating          = 1 << 4
	stateCellIsOperating          = 1 << 5
	stateUserSettingsHasChanged   = 1 << 6
	stateSanitisingUntilTimerTmrw = 1 << 7
)

// Capabilities record flag bits.
const (
	capsThreeSpeedPumpEnabled = 1 << 0
	capsAiModeEnabled         = 1 << 1
	capsVolumeUnitMask        = 0x0C
	capsVolumeUnitShift       = 2
	capsLightingEnabled       = 1 << 4
	capsDosingCapableUnit     = 1 << 5
)

// Timer record bit layout of the first byte of each slot.
const (
	timerStartHourMask  = 0x1F
	timerEnabledFlag    = 0x20
	timerSpeedLevelMask = 0xC0
	timerSpeedShift     = 6
)
