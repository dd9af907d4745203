package halo

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/pbutterworth/gochlorinator/pkg/codec"
)

func TestDecodeDeviceProfile(t *testing.T) {
	data := []byte{1, 2, 2, 1, 5, 7, 1, 0, 3, 0x39, 0x30, 0x00, 0x00}
	p, err := DecodeDeviceProfile(data)
	if err != nil {
		t.Fatalf("DecodeDeviceProfile: %v", err)
	}
	if p.DeviceType != DeviceTypeChlorinator {
		t.Errorf("DeviceType = %v, want Chlorinator", p.DeviceType)
	}
	if p.DeviceProtocol != DeviceProtocolNextGen {
		t.Errorf("DeviceProtocol = %v, want NextGen", p.DeviceProtocol)
	}
	if p.FirmwareVersionMajor != 5 || p.FirmwareVersionMinor != 7 {
		t.Errorf("firmware = %d.%d, want 5.7", p.FirmwareVersionMajor, p.FirmwareVersionMinor)
	}
	if p.SerialNumber != 12345 {
		t.Errorf("SerialNumber = %d, want 12345", p.SerialNumber)
	}
}

func TestDecodeState(t *testing.T) {
	data := []byte{
		0xA2,       // flags: CellOn | DosingPumpOn | AIModeActive
		5,          // real cell level
		0xB0, 0x04, // cell current 1200mA
		1,          // main text Sanitising
		9,          // chlorine status ChlorineIsOK
		0x8A, 0x02, // ORP 650
		9,          // ph status PHIsOK
		74,         // pH 7.4
		6,          // timer info SanitisingUntil
		0x12, 0x34, // timer data
		0x00, 0x00, // error info None
		7, // packet counter
	}
	s, err := DecodeState(data)
	if err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if !s.IsInPoolSelection {
		t.Error("IsInPoolSelection = false, want true")
	}
	if !s.IsCellRunning || !s.DosingPumpOn || !s.AIModeActive {
		t.Errorf("flag bools = %v/%v/%v, want all true",
			s.IsCellRunning, s.DosingPumpOn, s.AIModeActive)
	}
	if s.IsCellReversed || s.IsCoolingFanOn || s.IsLightOutputOn || s.CellIsReversing {
		t.Error("clear flag bits decoded as set")
	}
	if s.CellCurrentMA != 1200 {
		t.Errorf("CellCurrentMA = %d, want 1200", s.CellCurrentMA)
	}
	if s.MainText != MainTextSanitising {
		t.Errorf("MainText = %v, want Sanitising", s.MainText)
	}
	if s.ORPMeasurement != 650 {
		t.Errorf("ORPMeasurement = %d, want 650", s.ORPMeasurement)
	}
	if s.PhMeasurement != 7.4 {
		t.Errorf("PhMeasurement = %v, want 7.4", s.PhMeasurement)
	}
	if s.TimerInfo != TimerInfoSanitisingUntil {
		t.Errorf("TimerInfo = %v, want SanitisingUntil", s.TimerInfo)
	}
	if s.TimerData != [2]byte{0x12, 0x34} {
		t.Errorf("TimerData = %v", s.TimerData)
	}
	if s.ErrorInfo != ErrorNone {
		t.Errorf("ErrorInfo = %v, want None", s.ErrorInfo)
	}
}

func TestDecodeStateUnknownEnum(t *testing.T) {
	data := make([]byte, stateLen)
	data[4] = 99 // main text out of range
	_, err := DecodeState(data)
	var unknown *codec.UnknownEnumError
	if !errors.As(err, &unknown) {
		t.Fatalf("DecodeState = %v, want UnknownEnumError", err)
	}
	if unknown.Field != "MainText" || unknown.Value != 99 {
		t.Errorf("got %s=%d, want MainText=99", unknown.Field, unknown.Value)
	}
}

func TestDecodeTemperature(t *testing.T) {
	data := []byte{
		0,          // celsius
		3,          // supports board + water
		0x38, 0x01, // board 31.2
		0xFF, 0x00, // water 25.5
		0xE6, 0x00, // chloro 23.0
		0x2C, 0x01, // solar water 30.0
		1,          // water temp IsValid
		0xA4, 0x01, // solar roof 42.0
		0x1D, 0x01, // heater 28.5
		2,          // displayed: water
	}
	temp, err := DecodeTemperature(data)
	if err != nil {
		t.Fatalf("DecodeTemperature: %v", err)
	}
	if temp.IsFahrenheit {
		t.Error("IsFahrenheit = true, want false")
	}
	if !temp.TempSupports.Has(TempBoardTemp | TempWaterTemp) {
		t.Errorf("TempSupports = %b, want board+water", temp.TempSupports)
	}
	if temp.TempSupports.Has(TempHeater) {
		t.Error("TempSupports reports heater")
	}
	if temp.BoardTemp != 31.2 || temp.WaterTemp != 25.5 {
		t.Errorf("temps = %v/%v, want 31.2/25.5", temp.BoardTemp, temp.WaterTemp)
	}
	// The assumed tenths scalings decode the same way as the confirmed
	// water temperature.
	if temp.ChloroWater != 23.0 || temp.SolarWater != 30.0 {
		t.Errorf("chloro/solar = %v/%v, want 23/30", temp.ChloroWater, temp.SolarWater)
	}
	if temp.SolarRoof != 42.0 || temp.Heater != 28.5 {
		t.Errorf("roof/heater = %v/%v, want 42/28.5", temp.SolarRoof, temp.Heater)
	}
	if temp.WaterTempValid != TempIsValid {
		t.Errorf("WaterTempValid = %v, want IsValid", temp.WaterTempValid)
	}
	if !temp.TempDisplayed.Has(TempWaterTemp) {
		t.Errorf("TempDisplayed = %b, want water", temp.TempDisplayed)
	}
}

func TestDecodeSettings(t *testing.T) {
	// AI enabled read-only + dosing enabled.
	data := []byte{80, 0, 2, 5, 8, 60, 75, 2}
	s, err := DecodeSettings(data)
	if err != nil {
		t.Fatalf("DecodeSettings: %v", err)
	}
	if !s.AiModeEnabled {
		t.Error("AiModeEnabled = false, want true via read-only bit")
	}
	if !s.IsDosingCapable {
		t.Error("IsDosingCapable = false, want true")
	}
	if s.PrePurgeEnabled || s.ThreeSpeedPumpEnabled {
		t.Error("clear flag bits decoded as set")
	}
	if s.CellModel != CellModel35 {
		t.Errorf("CellModel = %v, want Model_35", s.CellModel)
	}
	if s.FilterPumpSize != 75 {
		t.Errorf("FilterPumpSize = %d, want 75", s.FilterPumpSize)
	}
}

func TestDecodeWaterVolume(t *testing.T) {
	data := []byte{
		0,                      // litres
		0x50, 0xC3, 0x00, 0x00, // pool 50000
		0xB8, 0x0B, // spa 3000
		0xD2, 0x04, 0x00, 0x00, // pool left filter 1234
		0x64, 0x00, // spa left filter 100
		3, // pool + spa enabled
	}
	w, err := DecodeWaterVolume(data)
	if err != nil {
		t.Fatalf("DecodeWaterVolume: %v", err)
	}
	if w.VolumeUnits != VolumeLitres {
		t.Errorf("VolumeUnits = %v, want Litres", w.VolumeUnits)
	}
	if w.PoolVolume != 50000 || w.SpaVolume != 3000 {
		t.Errorf("volumes = %d/%d, want 50000/3000", w.PoolVolume, w.SpaVolume)
	}
	if !w.PoolSpaEnabled {
		t.Error("PoolSpaEnabled = false, want true")
	}
}

func TestDecodeSetPoints(t *testing.T) {
	data := []byte{72, 0x8A, 0x02, 4, 6, 3}
	p, err := DecodeSetPoints(data)
	if err != nil {
		t.Fatalf("DecodeSetPoints: %v", err)
	}
	if p.PhControlSetpoint != 7.2 {
		t.Errorf("PhControlSetpoint = %v, want 7.2", p.PhControlSetpoint)
	}
	if p.OrpControlSetpoint != 650 {
		t.Errorf("OrpControlSetpoint = %d, want 650", p.OrpControlSetpoint)
	}
}

func TestDecodeMaintenanceState(t *testing.T) {
	data := []byte{
		1,          // acid dosing disabled
		120, 0,     // dose disable 120 minutes
		0xFF,       // task NoState sentinel
		5,          // return code TaskComplete
		90, 0, 0, 0, // 90 seconds remaining
		0x2C, 0x01, // value to display 300
		0, // calibrate Idle
		1, // mode after complete Auto
	}
	m, err := DecodeMaintenanceState(data)
	if err != nil {
		t.Fatalf("DecodeMaintenanceState: %v", err)
	}
	if !m.AcidDosingDisabled {
		t.Error("AcidDosingDisabled = false, want true")
	}
	if m.DoseDisableTime != 2*time.Hour {
		t.Errorf("DoseDisableTime = %v, want 2h", m.DoseDisableTime)
	}
	if m.MaintenanceTask != TaskNoState {
		t.Errorf("MaintenanceTask = %v, want NoState", m.MaintenanceTask)
	}
	if m.TaskReturnCode != TaskReturnComplete {
		t.Errorf("TaskReturnCode = %v, want TaskComplete", m.TaskReturnCode)
	}
	if m.TaskTimeRemaining != 90*time.Second {
		t.Errorf("TaskTimeRemaining = %v, want 90s", m.TaskTimeRemaining)
	}
	if m.ModeAfterComplete != ModeAuto {
		t.Errorf("ModeAfterComplete = %v, want Auto", m.ModeAfterComplete)
	}
}

func TestDecodeEquipmentMode(t *testing.T) {
	data := []byte{
		1,               // equipment enabled
		2,               // filter pump On
		2, 0, 1, 255,    // GPO modes
		0, 0, 0, 0,      // valve modes
		0, 0,            // relay modes
		0x03, 0x00,      // state: filter pump + GPO1
		0x01, 0x00,      // auto: filter pump
	}
	m, err := DecodeEquipmentMode(data)
	if err != nil {
		t.Fatalf("DecodeEquipmentMode: %v", err)
	}
	if m.FilterPumpMode != ModeOn {
		t.Errorf("FilterPumpMode = %v, want On", m.FilterPumpMode)
	}
	if !m.FilterPumpOn || !m.FilterPumpAuto {
		t.Errorf("filter pump state/auto = %v/%v, want true/true", m.FilterPumpOn, m.FilterPumpAuto)
	}
	if m.GPOs[0].Mode != GPOModeOn || !m.GPOs[0].On {
		t.Errorf("GPO1 = %+v, want mode On, on", m.GPOs[0])
	}
	if m.GPOs[3].Mode != GPOModeNotEnabled {
		t.Errorf("GPO4 mode = %v, want NotEnabled", m.GPOs[3].Mode)
	}
	if m.Valves[0].On || m.Relays[1].On {
		t.Error("idle slots decoded as on")
	}
}

func TestDecodeEquipmentParameter(t *testing.T) {
	data := []byte{0xFF, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	p, err := DecodeEquipmentParameter(data)
	if err != nil {
		t.Fatalf("DecodeEquipmentParameter: %v", err)
	}
	if p.FilterPumpSpeed != SpeedNotSet {
		t.Errorf("FilterPumpSpeed = %v, want NotSet", p.FilterPumpSpeed)
	}
	if p.GPOParams != [4]uint8{1, 2, 3, 4} {
		t.Errorf("GPOParams = %v", p.GPOParams)
	}
}

func TestDecodeLightState(t *testing.T) {
	data := []byte{
		2, 1, 0, 0, // zone modes
		5, 6, 7, 8, // zone colours
		0x05, // zones 1 and 3 on
	}
	s, err := DecodeLightState(data)
	if err != nil {
		t.Fatalf("DecodeLightState: %v", err)
	}
	if s.ZoneModes[0] != ModeOn || s.ZoneModes[1] != ModeAuto {
		t.Errorf("ZoneModes = %v", s.ZoneModes)
	}
	want := [lightZones]bool{true, false, true, false}
	if s.ZoneOn != want {
		t.Errorf("ZoneOn = %v, want %v", s.ZoneOn, want)
	}
	if s.ZoneColours != [lightZones]uint8{5, 6, 7, 8} {
		t.Errorf("ZoneColours = %v", s.ZoneColours)
	}
}

func TestDecodeGPOSetupSlots(t *testing.T) {
	tests := []struct {
		name       string
		deviceType byte
		index      byte
		wantSlot   int
	}{
		{"connect1 first outlet", 7, 0, 1},
		{"connect1 second outlet", 7, 1, 2},
		{"connect2 first outlet", 8, 0, 3},
		{"connect2 second outlet", 8, 1, 4},
		{"non-expansion device", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte{tt.deviceType, tt.index, 1, 1, 4, 2, 1}
			g, err := DecodeGPOSetup(data)
			if err != nil {
				t.Fatalf("DecodeGPOSetup: %v", err)
			}
			if g.Slot != tt.wantSlot {
				t.Fatalf("Slot = %d, want %d", g.Slot, tt.wantSlot)
			}
			fields := g.SnapshotFields()
			if len(fields) != 5 {
				t.Fatalf("SnapshotFields has %d entries, want 5", len(fields))
			}
			key := "GPO" + string(rune('0'+tt.wantSlot)) + "Function"
			if v, ok := fields[key]; !ok || v != GPOFunctionLighting {
				t.Errorf("fields[%s] = %v (%v), want Lighting", key, v, ok)
			}
		})
	}
}

func TestDecodeRelayAndValveSetup(t *testing.T) {
	r, err := DecodeRelaySetup([]byte{1, 1, 1, 3, 0})
	if err != nil {
		t.Fatalf("DecodeRelaySetup: %v", err)
	}
	if r.Slot != 2 || r.Name != RelayNameRelay2 {
		t.Errorf("relay = %+v, want slot 2 named Relay2", r)
	}
	if _, ok := r.SnapshotFields()["Relay2Enabled"]; !ok {
		t.Error("SnapshotFields missing Relay2Enabled")
	}

	v, err := DecodeValveSetup([]byte{0, 1, 2, 1})
	if err != nil {
		t.Fatalf("DecodeValveSetup: %v", err)
	}
	if v.Slot != 1 || v.Name != ValveNamePool {
		t.Errorf("valve = %+v, want slot 1 named Pool", v)
	}
	if _, ok := v.SnapshotFields()["Valve1UseTimers"]; !ok {
		t.Error("SnapshotFields missing Valve1UseTimers")
	}
}

func TestDecodeHeaterState(t *testing.T) {
	data := []byte{
		0x09,       // heater on + flame
		1,          // pump Auto
		1,          // heater On
		28,         // setpoint
		1,          // heat pump Heating
		0,          // not forced
		1, 30,      // forced time 1h30m
		1,          // temp IsValid
		0x1D, 0x01, // water temp 28.5
		0, // no error
	}
	h, err := DecodeHeaterState(data)
	if err != nil {
		t.Fatalf("DecodeHeaterState: %v", err)
	}
	if !h.HeaterOn || !h.HeaterFlame {
		t.Errorf("HeaterOn/Flame = %v/%v, want true/true", h.HeaterOn, h.HeaterFlame)
	}
	if h.HeaterLockout {
		t.Error("HeaterLockout = true, want false")
	}
	if h.HeaterWaterTemp != 28.5 {
		t.Errorf("HeaterWaterTemp = %v, want 28.5", h.HeaterWaterTemp)
	}
	if h.HeatPumpMode != HeatPumpHeating {
		t.Errorf("HeatPumpMode = %v, want Heating", h.HeatPumpMode)
	}
}

func TestDecodeSolarState(t *testing.T) {
	data := []byte{
		0x38, 0x01, // roof 31.2
		0xFF, 0x00, // water 25.5
		0x64, 0x00, // solar temp 100
		1,    // summer
		1,    // mode Auto
		1,    // pump on
		1, 1, // validities
		0x00, 0x00, // spec temp
		2, // SolarHeatingActive
	}
	s, err := DecodeSolarState(data)
	if err != nil {
		t.Fatalf("DecodeSolarState: %v", err)
	}
	if s.RoofTemp != 31.2 || s.WaterTemp != 25.5 {
		t.Errorf("temps = %v/%v, want 31.2/25.5", s.RoofTemp, s.WaterTemp)
	}
	if !s.IsSummerMode || !s.PumpOn || s.FlushActive {
		t.Errorf("summer/pump/flush = %v/%v/%v", s.IsSummerMode, s.PumpOn, s.FlushActive)
	}
	if s.Message != SolarHeatingActive {
		t.Errorf("Message = %v, want SolarHeatingActive", s.Message)
	}
}

func TestDecodeCellStatistics(t *testing.T) {
	data := []byte{
		0x0A, 0x00, // 10 reversals
		0xE8, 0x03, 0x00, 0x00, // 1000 hours running
		0x64, 0x00, 0x00, 0x00, // 100 hours low salt
		80,         // 80% load yesterday
		0x2C, 0x01, // 300 dosing secs
		0xB4, 0x00, // 180 filter pump mins
	}
	c, err := DecodeCellStatistics(data)
	if err != nil {
		t.Fatalf("DecodeCellStatistics: %v", err)
	}
	if c.CellRunningTime != 1000*time.Hour {
		t.Errorf("CellRunningTime = %v, want 1000h", c.CellRunningTime)
	}
	if c.LowSaltCellRunningTime != 100*time.Hour {
		t.Errorf("LowSaltCellRunningTime = %v, want 100h", c.LowSaltCellRunningTime)
	}
	if c.PreviousDaysCellLoad != 80 {
		t.Errorf("PreviousDaysCellLoad = %d, want 80", c.PreviousDaysCellLoad)
	}
}

func TestDecodeScanResponse(t *testing.T) {
	data := []byte{
		1, 2, 2, 1, // type, version, protocol, revision
		0, 0, // status, reserved
		0x39, 0x30, 0x00, 0x00, // unique id 12345
		'1', '2', '3', '4', // access code
		5, 7, 1, 0, // firmware, bootloader
		2, 0, // hardware platform
		42, // time alive
	}
	s, err := DecodeScanResponse(data)
	if err != nil {
		t.Fatalf("DecodeScanResponse: %v", err)
	}
	if s.DeviceType != DeviceTypeChlorinator {
		t.Errorf("DeviceType = %v, want Chlorinator", s.DeviceType)
	}
	if s.DeviceUniqueID != 12345 {
		t.Errorf("DeviceUniqueID = %d, want 12345", s.DeviceUniqueID)
	}
	if !s.IsPairable() {
		t.Error("IsPairable = false, want true")
	}
	if got := s.AccessCodeString(); got != "1234" {
		t.Errorf("AccessCodeString = %q, want 1234", got)
	}

	var unpairable ScanResponse
	if unpairable.IsPairable() {
		t.Error("zero access code reported pairable")
	}
	if got := unpairable.AccessCodeString(); got != "0000" {
		t.Errorf("unpairable AccessCodeString = %q, want 0000", got)
	}
}

func TestDecodeShortBuffers(t *testing.T) {
	short := []byte{1, 2}
	decoders := map[string]DecodeFunc{
		"State":            Decoders[CmdState],
		"Temperature":      Decoders[CmdTemperature],
		"EquipmentMode":    Decoders[CmdEquipmentMode],
		"MaintenanceState": Decoders[CmdMaintenanceState],
		"HeaterState":      Decoders[CmdHeaterState],
		"SolarState":       Decoders[CmdSolarState],
	}
	for name, decode := range decoders {
		t.Run(name, func(t *testing.T) {
			_, err := decode(short)
			if !errors.Is(err, codec.ErrShortBuffer) {
				t.Fatalf("decode(short) = %v, want ErrShortBuffer", err)
			}
		})
	}
}

func TestBuildReadRequest(t *testing.T) {
	tests := []struct {
		group uint16
		want  []byte
	}{
		{107, []byte{0x02, 0x6B, 0x00}},
		{5, []byte{0x02, 0x05, 0x00}},
		{600, []byte{0x02, 0x58, 0x02}},
		{603, []byte{0x02, 0x5B, 0x02}},
	}
	for _, tt := range tests {
		got := BuildReadRequest(tt.group)
		if len(got) != packetLen {
			t.Fatalf("BuildReadRequest(%d) has len %d, want %d", tt.group, len(got), packetLen)
		}
		if !bytes.Equal(got[:3], tt.want) {
			t.Errorf("BuildReadRequest(%d)[:3] = %x, want %x", tt.group, got[:3], tt.want)
		}
		if !bytes.Equal(got[3:], make([]byte, packetLen-3)) {
			t.Errorf("BuildReadRequest(%d) padding not zero: %x", tt.group, got)
		}
	}
}
