package halo

import (
	"encoding/binary"
	"fmt"
)

// ChlorinatorActions is an app action for the chlorinator subsystem.
type ChlorinatorActions uint8

const (
	ActionNoAction ChlorinatorActions = iota
	ActionOff
	ActionAuto
	ActionOn
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
	ActionAllOff
	ActionAllAuto
	ActionBackwash
	ActionPrimeAcid
	ActionManualDose
	ActionProbeCalibrationStart
	ActionProbeCalibrationAction
	ActionAbortMaintTask
	ActionSanitiseUntilTimerTomorrow
	ActionFilterForPeriod
	ActionFilterAndCleanForPeriod
	ActionResetToFactoryDefaults
	ActionPoolFavourite
	ActionSpaFavourite
	ActionFavourite1
	ActionFavourite2
	ActionClearEventList
	ActionSanitiseForPeriod
	ActionSanitiseAndCleanForPeriod
	ActionOverrideHeaterCooldown
)

func (a ChlorinatorActions) String() string {
	names := [...]string{
		"NoAction", "Off", "Auto", "On", "Low", "Medium", "High", "Pool",
		"Spa", "DismissInfoMessage", "DisableAcidDosingIndefinitely",
		"DisableAcidDosingForPeriod", "ResetStatistics",
		"TriggerCellReversal", "AllOff", "AllAuto", "Backwash", "PrimeAcid",
		"ManualDose", "ProbeCalibrationStart", "ProbeCalibrationAction",
		"AbortMaintTask", "SanitiseUntilTimerTomorrow", "FilterForPeriod",
		"FilterAndCleanForPeriod", "ResetToFactoryDefaults", "PoolFavourite",
		"SpaFavourite", "Favourite1", "Favourite2", "ClearEventList",
		"SanitiseForPeriod", "SanitiseAndCleanForPeriod",
		"OverrideHeaterCooldown",
	}
	if int(a) < len(names) {
		return names[a]
	}
	return fmt.Sprintf("ChlorinatorActions(%d)", uint8(a))
}

// HeaterAppActions is an app action for the heater subsystem.
type HeaterAppActions uint8

const (
	HeaterActionNoAction HeaterAppActions = iota
	HeaterActionPumpOff
	HeaterActionPumpAuto
	HeaterActionPumpOn
	HeaterActionOff
	HeaterActionOn
	HeaterActionIncreaseSetpoint
	HeaterActionDecreaseSetpoint
	HeaterActionPool
	HeaterActionSpa
	HeaterActionDisableUseTimers
	HeaterActionEnableUseTimers
	HeaterActionModeHeating
	HeaterActionModeCooling
)

func (a HeaterAppActions) String() string {
	names := [...]string{
		"NoAction", "HeaterPumpOff", "HeaterPumpAuto", "HeaterPumpOn",
		"HeaterOff", "HeaterOn", "IncreaseSetpoint", "DecreaseSetpoint",
		"Pool", "Spa", "DisableUseTimers", "EnableUseTimers", "ModeHeating",
		"ModeCooling",
	}
	if int(a) < len(names) {
		return names[a]
	}
	return fmt.Sprintf("HeaterAppActions(%d)", uint8(a))
}

// SolarAppActions is an app action for the solar subsystem.
type SolarAppActions uint8

const (
	SolarActionNoAction SolarAppActions = iota
	SolarActionOff
	SolarActionAuto
	SolarActionOn
	SolarActionSummer
	SolarActionWinter
	SolarActionIncreaseSetPoint
	SolarActionDecreaseSetPoint
)

func (a SolarAppActions) String() string {
	names := [...]string{
		"NoAction", "Off", "Auto", "On", "Summer", "Winter",
		"IncreaseSetPoint", "DecreaseSetPoint",
	}
	if int(a) < len(names) {
		return names[a]
	}
	return fmt.Sprintf("SolarAppActions(%d)", uint8(a))
}

// LightAppActions is an app action for a lighting zone.
type LightAppActions uint8

const (
	LightActionNoAction LightAppActions = iota
	LightActionSetZoneModeToManual
	LightActionSetZoneModeToAuto
	LightActionTurnOffZone
	LightActionTurnOnZone
	LightActionSetZoneColour
	LightActionSynchroniseZoneColour
)

func (a LightAppActions) String() string {
	names := [...]string{
		"NoAction", "SetZoneModeToManual", "SetZoneModeToAuto",
		"TurnOffZone", "TurnOnZone", "SetZoneColour",
		"SynchroniseZoneColour",
	}
	if int(a) < len(names) {
		return names[a]
	}
	return fmt.Sprintf("LightAppActions(%d)", uint8(a))
}

// Subsystem action packet headers. The three header bytes address the
// subsystem command group (500-503) the action is routed to.
var (
	chlorinatorActionHeader = [3]byte{0x03, 0xF4, 0x01} // group 500
	lightActionHeader       = [3]byte{0x03, 0xF5, 0x01} // group 501
	heaterActionHeader      = [3]byte{0x03, 0xF6, 0x01} // group 502
	solarActionHeader       = [3]byte{0x03, 0xF7, 0x01} // group 503
)

// Action is a chlorinator app action command. PeriodMinutes is only
// consulted for the period-based actions (disable dosing, filter, sanitise
// for period); callers must leave it zero otherwise.
type Action struct {
	Action        ChlorinatorActions
	PeriodMinutes int32
}

// MarshalBinary serializes the action into the fixed 20-byte packet:
// subsystem header, action tag, little-endian signed minutes, padding.
func (a Action) MarshalBinary() ([]byte, error) {
	buf := make([]byte, packetLen)
	copy(buf, chlorinatorActionHeader[:])
	buf[3] = byte(a.Action)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(a.PeriodMinutes))
	return buf, nil
}

// HeaterAction is a heater app action command.
type HeaterAction struct {
	Action HeaterAppActions
}

// MarshalBinary serializes the heater action into the fixed 20-byte packet.
func (a HeaterAction) MarshalBinary() ([]byte, error) {
	buf := make([]byte, packetLen)
	copy(buf, heaterActionHeader[:])
	buf[3] = byte(a.Action)
	return buf, nil
}

// SolarAction is a solar app action command.
type SolarAction struct {
	Action SolarAppActions
}

// MarshalBinary serializes the solar action into the fixed 20-byte packet.
func (a SolarAction) MarshalBinary() ([]byte, error) {
	buf := make([]byte, packetLen)
	copy(buf, solarActionHeader[:])
	buf[3] = byte(a.Action)
	return buf, nil
}

// LightAction is a lighting app action command.
type LightAction struct {
	Action LightAppActions
}

// MarshalBinary serializes the light action into the fixed 20-byte packet.
func (a LightAction) MarshalBinary() ([]byte, error) {
	buf := make([]byte, packetLen)
	copy(buf, lightActionHeader[:])
	buf[3] = byte(a.Action)
	return buf, nil
}
