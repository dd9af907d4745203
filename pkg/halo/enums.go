package halo

import "fmt"

// Mode is the generic off/auto/on mode used across Halo equipment. Note the
// encoding differs from the eQuilibrium one (Auto is 1 here, On is 2).
type Mode uint8

const (
	ModeOff Mode = iota
	ModeAuto
	ModeOn
)

func (m Mode) valid() bool { return m <= ModeOn }

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "Off"
	case ModeAuto:
		return "Auto"
	case ModeOn:
		return "On"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// GPOMode is the mode of a general purpose outlet, valve or relay slot.
// Slots without installed equipment report NotEnabled.
type GPOMode uint8

const (
	GPOModeOff        GPOMode = 0
	GPOModeAuto       GPOMode = 1
	GPOModeOn         GPOMode = 2
	GPOModeNotEnabled GPOMode = 255
)

func (m GPOMode) valid() bool { return m <= GPOModeOn || m == GPOModeNotEnabled }

func (m GPOMode) String() string {
	switch m {
	case GPOModeOff:
		return "Off"
	case GPOModeAuto:
		return "Auto"
	case GPOModeOn:
		return "On"
	case GPOModeNotEnabled:
		return "NotEnabled"
	}
	return fmt.Sprintf("GPOMode(%d)", uint8(m))
}

// SpeedLevel is a pump speed. NotSet is a sentinel encoded as 0xFF on the
// wire where it occurs at all.
type SpeedLevel int8

const (
	SpeedNotSet SpeedLevel = -1
	SpeedLow    SpeedLevel = 0
	SpeedMedium SpeedLevel = 1
	SpeedHigh   SpeedLevel = 2
	SpeedAI     SpeedLevel = 3
)

// speedLevelFromWire maps a wire byte to a SpeedLevel, treating 0xFF as the
// NotSet sentinel.
func speedLevelFromWire(b byte) (SpeedLevel, bool) {
	if b == 0xFF {
		return SpeedNotSet, true
	}
	s := SpeedLevel(b)
	return s, s >= SpeedLow && s <= SpeedAI
}

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

// TempValid qualifies a temperature reading.
type TempValid uint8

const (
	TempInvalid TempValid = iota
	TempIsValid
	TempWasValid
)

func (t TempValid) valid() bool { return t <= TempWasValid }

func (t TempValid) String() string {
	switch t {
	case TempInvalid:
		return "Invalid"
	case TempIsValid:
		return "IsValid"
	case TempWasValid:
		return "WasValid"
	}
	return fmt.Sprintf("TempValid(%d)", uint8(t))
}

// DeviceType identifies the product reported in scan responses and the
// device profile record.
type DeviceType int16

const (
	DeviceTypeUnknown             DeviceType = -1
	DeviceTypePump                DeviceType = 0
	DeviceTypeChlorinator         DeviceType = 1
	DeviceTypeDoser               DeviceType = 2
	DeviceTypeLight               DeviceType = 3
	DeviceTypeProbe               DeviceType = 4
	DeviceTypeChlorinatorEmulator DeviceType = 129
)

func (d DeviceType) valid() bool {
	return (d >= DeviceTypePump && d <= DeviceTypeProbe) || d == DeviceTypeChlorinatorEmulator
}

func (d DeviceType) String() string {
	switch d {
	case DeviceTypeUnknown:
		return "Unknown"
	case DeviceTypePump:
		return "Pump"
	case DeviceTypeChlorinator:
		return "Chlorinator"
	case DeviceTypeDoser:
		return "Doser"
	case DeviceTypeLight:
		return "Light"
	case DeviceTypeProbe:
		return "Probe"
	case DeviceTypeChlorinatorEmulator:
		return "ChlorinatorEmulator"
	}
	return fmt.Sprintf("DeviceType(%d)", int16(d))
}

// DeviceProtocol identifies the protocol generation of a device.
type DeviceProtocol int16

const (
	DeviceProtocolUnknown    DeviceProtocol = -1
	DeviceProtocol0          DeviceProtocol = 0
	DeviceProtocolFirmware57 DeviceProtocol = 1
	DeviceProtocolNextGen    DeviceProtocol = 2
)

func (p DeviceProtocol) valid() bool { return p >= DeviceProtocol0 && p <= DeviceProtocolNextGen }

func (p DeviceProtocol) String() string {
	switch p {
	case DeviceProtocolUnknown:
		return "Unknown"
	case DeviceProtocol0:
		return "Protocol0"
	case DeviceProtocolFirmware57:
		return "Firmware57"
	case DeviceProtocolNextGen:
		return "NextGen"
	}
	return fmt.Sprintf("DeviceProtocol(%d)", int16(p))
}
