package halo

import (
	"encoding/binary"
	"fmt"

	"github.com/pbutterworth/gochlorinator/pkg/codec"
)

// SolarCapabilities is the decoded solar capabilities record (tag 1200).
type SolarCapabilities struct {
	SolarEnabled bool
}

const solarCapabilitiesLen = 1

// DecodeSolarCapabilities decodes the solar capabilities record.
func DecodeSolarCapabilities(data []byte) (*SolarCapabilities, error) {
	if len(data) < solarCapabilitiesLen {
		return nil, codec.ShortBuffer("SolarCapabilities", solarCapabilitiesLen, len(data))
	}
	return &SolarCapabilities{SolarEnabled: data[0] != 0}, nil
}

// SolarConfig is the decoded solar configuration record (tag 1201).
type SolarConfig struct {
	PumpStartHour       uint8
	PumpStartMinute     uint8
	PumpStopHour        uint8
	PumpStopMinute      uint8
	FlushEnabled        bool
	FlushTimeHour       uint8
	FlushTimeMinute     uint8
	Differential        uint16
	ExclusionPeriodUsed bool
}

const solarConfigLen = 10

// DecodeSolarConfig decodes the solar configuration record.
func DecodeSolarConfig(data []byte) (*SolarConfig, error) {
	if len(data) < solarConfigLen {
		return nil, codec.ShortBuffer("SolarConfig", solarConfigLen, len(data))
	}
	return &SolarConfig{
		PumpStartHour:       data[0],
		PumpStartMinute:     data[1],
		PumpStopHour:        data[2],
		PumpStopMinute:      data[3],
		FlushEnabled:        data[4] != 0,
		FlushTimeHour:       data[5],
		FlushTimeMinute:     data[6],
		Differential:        binary.LittleEndian.Uint16(data[7:9]),
		ExclusionPeriodUsed: data[9] != 0,
	}, nil
}

// SolarMessage is the solar status line shown on the display.
type SolarMessage uint8

const (
	SolarDisplayNothing SolarMessage = iota
	SolarStandby
	SolarHeatingActive
	SolarFlushRunning
	SolarExclusionPeriodActive
	SolarSystemFlushed
	SolarPumpWillRunFor
)

func (m SolarMessage) valid() bool { return m <= SolarPumpWillRunFor }

func (m SolarMessage) String() string {
	names := [...]string{
		"DisplayNothing", "Standby", "SolarHeatingActive", "SolarFlushActive",
		"SolarExcPerActive", "SolarSystemflushed", "PumpWillRunFor",
	}
	if int(m) < len(names) {
		return names[m]
	}
	return fmt.Sprintf("SolarMessage(%d)", uint8(m))
}

// Solar flag bits.
const (
	solarPumpState   = 1 << 0
	solarFlushActive = 1 << 1
)

// SolarState is the decoded solar state record (tag 1202).
type SolarState struct {
	RoofTemp       float64
	WaterTemp      float64
	SolarTemp      uint16
	IsSummerMode   bool
	Mode           Mode
	PumpOn         bool
	FlushActive    bool
	RoofTempValid  TempValid
	WaterTempValid TempValid
	SpecTemp       uint16
	Message        SolarMessage
}

const solarStateLen = 14

// DecodeSolarState decodes the solar state record.
func DecodeSolarState(data []byte) (*SolarState, error) {
	if len(data) < solarStateLen {
		return nil, codec.ShortBuffer("SolarState", solarStateLen, len(data))
	}
	mode := Mode(data[7])
	if !mode.valid() {
		return nil, &codec.UnknownEnumError{Record: "SolarState", Field: "Mode", Value: int(data[7])}
	}
	roofValid := TempValid(data[9])
	if !roofValid.valid() {
		return nil, &codec.UnknownEnumError{Record: "SolarState", Field: "RoofTempValid", Value: int(data[9])}
	}
	waterValid := TempValid(data[10])
	if !waterValid.valid() {
		return nil, &codec.UnknownEnumError{Record: "SolarState", Field: "WaterTempValid", Value: int(data[10])}
	}
	message := SolarMessage(data[13])
	if !message.valid() {
		return nil, &codec.UnknownEnumError{Record: "SolarState", Field: "Message", Value: int(data[13])}
	}
	flags := data[8]
	return &SolarState{
		RoofTemp:       float64(binary.LittleEndian.Uint16(data[0:2])) / 10,
		WaterTemp:      float64(binary.LittleEndian.Uint16(data[2:4])) / 10,
		SolarTemp:      binary.LittleEndian.Uint16(data[4:6]),
		IsSummerMode:   data[6] != 0,
		Mode:           mode,
		PumpOn:         flags&solarPumpState != 0,
		FlushActive:    flags&solarFlushActive != 0,
		RoofTempValid:  roofValid,
		WaterTempValid: waterValid,
		SpecTemp:       binary.LittleEndian.Uint16(data[11:13]),
		Message:        message,
	}, nil
}
