package halo

import (
	"encoding/binary"
	"fmt"

	"github.com/pbutterworth/gochlorinator/pkg/codec"
)

// Equipment slot bits shared by the state and auto-enabled bitfields.
const (
	equipFilterPump = 1 << 0
	equipGPO1       = 1 << 1
	equipGPO2       = 1 << 2
	equipGPO3       = 1 << 3
	equipGPO4       = 1 << 4
	equipValve1     = 1 << 5
	equipValve2     = 1 << 6
	equipValve3     = 1 << 7
	equipValve4     = 1 << 8
	equipRelay1     = 1 << 9
	equipRelay2     = 1 << 10
)

// EquipmentSlot is the live mode and state of one outlet, valve or relay.
type EquipmentSlot struct {
	Mode        GPOMode
	On          bool
	AutoEnabled bool
}

// EquipmentMode is the decoded equipment mode record (tag 201). Slot arrays
// are indexed from zero, so GPOs[0] is the outlet labelled GPO1 on the unit.
type EquipmentMode struct {
	EquipmentEnabled bool
	FilterPumpMode   Mode
	FilterPumpOn     bool
	FilterPumpAuto   bool
	GPOs             [4]EquipmentSlot
	Valves           [4]EquipmentSlot
	Relays           [2]EquipmentSlot
}

const equipmentModeLen = 16

// DecodeEquipmentMode decodes the equipment mode record.
func DecodeEquipmentMode(data []byte) (*EquipmentMode, error) {
	if len(data) < equipmentModeLen {
		return nil, codec.ShortBuffer("EquipmentMode", equipmentModeLen, len(data))
	}
	pumpMode := Mode(data[1])
	if !pumpMode.valid() {
		return nil, &codec.UnknownEnumError{Record: "EquipmentMode", Field: "FilterPumpMode", Value: int(data[1])}
	}

	state := binary.LittleEndian.Uint16(data[12:14])
	auto := binary.LittleEndian.Uint16(data[14:16])

	m := &EquipmentMode{
		EquipmentEnabled: data[0] != 0,
		FilterPumpMode:   pumpMode,
		FilterPumpOn:     state&equipFilterPump != 0,
		FilterPumpAuto:   auto&equipFilterPump != 0,
	}
	slot := func(record string, field string, raw byte, bit uint16) (EquipmentSlot, error) {
		mode := GPOMode(raw)
		if !mode.valid() {
			return EquipmentSlot{}, &codec.UnknownEnumError{Record: record, Field: field, Value: int(raw)}
		}
		return EquipmentSlot{
			Mode:        mode,
			On:          state&bit != 0,
			AutoEnabled: auto&bit != 0,
		}, nil
	}

	var err error
	gpoBits := [4]uint16{equipGPO1, equipGPO2, equipGPO3, equipGPO4}
	valveBits := [4]uint16{equipValve1, equipValve2, equipValve3, equipValve4}
	relayBits := [2]uint16{equipRelay1, equipRelay2}
	for i := range m.GPOs {
		if m.GPOs[i], err = slot("EquipmentMode", fmt.Sprintf("ModeGPO%d", i+1), data[2+i], gpoBits[i]); err != nil {
			return nil, err
		}
	}
	for i := range m.Valves {
		if m.Valves[i], err = slot("EquipmentMode", fmt.Sprintf("ModeValve%d", i+1), data[6+i], valveBits[i]); err != nil {
			return nil, err
		}
	}
	for i := range m.Relays {
		if m.Relays[i], err = slot("EquipmentMode", fmt.Sprintf("ModeRelay%d", i+1), data[10+i], relayBits[i]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// EquipmentParameter is the decoded equipment parameter record (tag 202).
// The per-slot parameters are opaque tuning bytes.
type EquipmentParameter struct {
	FilterPumpSpeed SpeedLevel
	GPOParams       [4]uint8
	ValveParams     [4]uint8
	RelayParams     [2]uint8
}

const equipmentParameterLen = 11

// DecodeEquipmentParameter decodes the equipment parameter record.
func DecodeEquipmentParameter(data []byte) (*EquipmentParameter, error) {
	if len(data) < equipmentParameterLen {
		return nil, codec.ShortBuffer("EquipmentParameter", equipmentParameterLen, len(data))
	}
	speed, ok := speedLevelFromWire(data[0])
	if !ok {
		return nil, &codec.UnknownEnumError{Record: "EquipmentParameter", Field: "FilterPumpSpeed", Value: int(data[0])}
	}
	p := &EquipmentParameter{FilterPumpSpeed: speed}
	copy(p.GPOParams[:], data[1:5])
	copy(p.ValveParams[:], data[5:9])
	copy(p.RelayParams[:], data[9:11])
	return p, nil
}

// GPODeviceType locates which expansion device a GPO setup record refers to.
type GPODeviceType uint8

const (
	GPODeviceFilterPump GPODeviceType = iota
	GPODevicePHProbe
	GPODeviceOrpProbe
	GPODeviceHeater
	GPODeviceLight1
	GPODeviceLight2
	GPODeviceLightFAB
	GPODeviceConnect1
	GPODeviceConnect2
)

func (d GPODeviceType) valid() bool { return d <= GPODeviceConnect2 }

func (d GPODeviceType) String() string {
	names := [...]string{
		"FilterPump", "PHProbe", "OrpProbe", "Heater", "Light1", "Light2",
		"LightFAB", "Connect1", "Connect2",
	}
	if int(d) < len(names) {
		return names[d]
	}
	return fmt.Sprintf("GPODeviceType(%d)", uint8(d))
}

// GPOFunction is the role assigned to a general purpose outlet.
type GPOFunction uint8

const (
	GPOFunctionEquipment GPOFunction = iota
	GPOFunctionLighting
	GPOFunctionSolar
	GPOFunctionHeating
)

func (f GPOFunction) valid() bool { return f <= GPOFunctionHeating }

func (f GPOFunction) String() string {
	names := [...]string{"Equipment", "Lighting", "Solar", "Heating"}
	if int(f) < len(names) {
		return names[f]
	}
	return fmt.Sprintf("GPOFunction(%d)", uint8(f))
}

// GPOName is the preset display name of an outlet.
type GPOName uint8

const (
	GPONameNoName GPOName = iota
	GPONameOther
	GPONameCleaningPump
	GPONameHeaterPump
	GPONameBoosterPump
	GPONameWaterfallPump
	GPONameFountainPump
	GPONameBlower
	GPONameJets
)

func (n GPOName) valid() bool { return n <= GPONameJets }

func (n GPOName) String() string {
	names := [...]string{
		"NoName", "Other", "CleaningPump", "HeaterPump", "BoosterPump",
		"WaterfallPump", "FountainPump", "Blower", "Jets",
	}
	if int(n) < len(names) {
		return names[n]
	}
	return fmt.Sprintf("GPOName(%d)", uint8(n))
}

// GPOSetup is the decoded GPO setup record (tag 1300). One record describes
// one outlet; Slot is the 1-based outlet number on the unit, or 0 when the
// record refers to a non-expansion device.
type GPOSetup struct {
	DeviceType    GPODeviceType
	Index         uint8
	Slot          int
	OutletEnabled bool
	Function      GPOFunction
	Name          GPOName
	LightingZone  uint8
	UseTimers     bool
}

const gpoSetupLen = 7

// DecodeGPOSetup decodes a GPO setup record.
func DecodeGPOSetup(data []byte) (*GPOSetup, error) {
	if len(data) < gpoSetupLen {
		return nil, codec.ShortBuffer("GPOSetup", gpoSetupLen, len(data))
	}
	deviceType := GPODeviceType(data[0])
	if !deviceType.valid() {
		return nil, &codec.UnknownEnumError{Record: "GPOSetup", Field: "DeviceType", Value: int(data[0])}
	}
	function := GPOFunction(data[3])
	if !function.valid() {
		return nil, &codec.UnknownEnumError{Record: "GPOSetup", Field: "Function", Value: int(data[3])}
	}
	name := GPOName(data[4])
	if !name.valid() {
		return nil, &codec.UnknownEnumError{Record: "GPOSetup", Field: "Name", Value: int(data[4])}
	}

	index := data[1]
	slot := 0
	switch deviceType {
	case GPODeviceConnect1:
		slot = 1 + int(index)
	case GPODeviceConnect2:
		slot = 3 + int(index)
	}
	return &GPOSetup{
		DeviceType:    deviceType,
		Index:         index,
		Slot:          slot,
		OutletEnabled: data[2] != 0,
		Function:      function,
		Name:          name,
		LightingZone:  data[5],
		UseTimers:     data[6] != 0,
	}, nil
}

// SnapshotFields keys the outlet fields by slot number so that records for
// different outlets never overwrite each other in the device snapshot.
func (g *GPOSetup) SnapshotFields() map[string]any {
	prefix := fmt.Sprintf("GPO%d", g.Slot)
	return map[string]any{
		prefix + "OutletEnabled": g.OutletEnabled,
		prefix + "Function":      g.Function,
		prefix + "Name":          g.Name,
		prefix + "LightingZone":  g.LightingZone,
		prefix + "UseTimers":     g.UseTimers,
	}
}

// RelayName is the preset display name of a relay.
type RelayName uint8

const (
	RelayNameRelay1 RelayName = iota
	RelayNameRelay2
)

func (n RelayName) valid() bool { return n <= RelayNameRelay2 }

func (n RelayName) String() string {
	names := [...]string{"Relay1", "Relay2"}
	if int(n) < len(names) {
		return names[n]
	}
	return fmt.Sprintf("RelayName(%d)", uint8(n))
}

// RelaySetup is the decoded relay setup record (tag 1301). Slot is the
// 1-based relay number.
type RelaySetup struct {
	Index     uint8
	Slot      int
	Enabled   bool
	Name      RelayName
	Action    uint8
	UseTimers bool
}

const relaySetupLen = 5

// DecodeRelaySetup decodes a relay setup record.
func DecodeRelaySetup(data []byte) (*RelaySetup, error) {
	if len(data) < relaySetupLen {
		return nil, codec.ShortBuffer("RelaySetup", relaySetupLen, len(data))
	}
	name := RelayName(data[2])
	if !name.valid() {
		return nil, &codec.UnknownEnumError{Record: "RelaySetup", Field: "Name", Value: int(data[2])}
	}
	return &RelaySetup{
		Index:     data[0],
		Slot:      int(data[0]) + 1,
		Enabled:   data[1] != 0,
		Name:      name,
		Action:    data[3],
		UseTimers: data[4] != 0,
	}, nil
}

// SnapshotFields keys the relay fields by slot number.
func (r *RelaySetup) SnapshotFields() map[string]any {
	prefix := fmt.Sprintf("Relay%d", r.Slot)
	return map[string]any{
		prefix + "Enabled":   r.Enabled,
		prefix + "Name":      r.Name,
		prefix + "Action":    r.Action,
		prefix + "UseTimers": r.UseTimers,
	}
}

// ValveName is the preset display name of a valve.
type ValveName uint8

const (
	ValveNameNone ValveName = iota
	ValveNameOther
	ValveNamePool
	ValveNameSpa
	ValveNameWaterFeature
	ValveNameWaterfall
)

func (n ValveName) valid() bool { return n <= ValveNameWaterfall }

func (n ValveName) String() string {
	names := [...]string{"None", "Other", "Pool", "Spa", "WaterFeature", "Waterfall"}
	if int(n) < len(names) {
		return names[n]
	}
	return fmt.Sprintf("ValveName(%d)", uint8(n))
}

// ValveSetup is the decoded valve setup record (tag 1302). Slot is the
// 1-based valve number.
type ValveSetup struct {
	Index     uint8
	Slot      int
	Enabled   bool
	Name      ValveName
	UseTimers bool
}

const valveSetupLen = 4

// DecodeValveSetup decodes a valve setup record.
func DecodeValveSetup(data []byte) (*ValveSetup, error) {
	if len(data) < valveSetupLen {
		return nil, codec.ShortBuffer("ValveSetup", valveSetupLen, len(data))
	}
	name := ValveName(data[2])
	if !name.valid() {
		return nil, &codec.UnknownEnumError{Record: "ValveSetup", Field: "Name", Value: int(data[2])}
	}
	return &ValveSetup{
		Index:     data[0],
		Slot:      int(data[0]) + 1,
		Enabled:   data[1] != 0,
		Name:      name,
		UseTimers: data[3] != 0,
	}, nil
}

// SnapshotFields keys the valve fields by slot number.
func (v *ValveSetup) SnapshotFields() map[string]any {
	prefix := fmt.Sprintf("Valve%d", v.Slot)
	return map[string]any{
		prefix + "Enabled":   v.Enabled,
		prefix + "Name":      v.Name,
		prefix + "UseTimers": v.UseTimers,
	}
}
