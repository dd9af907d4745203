package equilibrium

import (
	"errors"
	"testing"
	"time"

	"github.com/pbutterworth/gochlorinator/pkg/codec"
)

func TestDecodeState(t *testing.T) {
	data := []byte{
		2,    // mode Auto
		1,    // speed Medium
		3,    // active timer
		0,    // no info message
		0xAA, // reserved
		0x21, // chemistry values current + cell operating
		74,   // pH 7.4
		4,    // chlorine Ok
		14, 30, 45, // device time
	}
	s, err := DecodeState(data)
	if err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if s.Mode != ModeAuto {
		t.Errorf("Mode = %v, want Auto", s.Mode)
	}
	if s.PumpSpeed != SpeedMedium {
		t.Errorf("PumpSpeed = %v, want Medium", s.PumpSpeed)
	}
	if s.PhMeasurement != 7.4 {
		t.Errorf("PhMeasurement = %v, want 7.4", s.PhMeasurement)
	}
	if s.ChlorineControlStatus != ChlorineStatusOk {
		t.Errorf("ChlorineControlStatus = %v, want Ok", s.ChlorineControlStatus)
	}
	if !s.ChemistryValuesCurrent || !s.CellIsOperating {
		t.Errorf("flags = %+v, want chemistry current and cell operating", s)
	}
	if s.SpaSelection || s.PumpIsPriming || s.PumpIsOperating ||
		s.ChemistryValuesValid || s.UserSettingsHasChanged ||
		s.SanitisingUntilNextTimerTomorrow {
		t.Error("clear flag bits decoded as set")
	}
	if s.TimeHours != 14 || s.TimeMinutes != 30 || s.TimeSeconds != 45 {
		t.Errorf("device time = %d:%d:%d, want 14:30:45", s.TimeHours, s.TimeMinutes, s.TimeSeconds)
	}
}

func TestDecodeStateTrailingBytesIgnored(t *testing.T) {
	data := make([]byte, 20) // full padded packet
	data[0] = 1
	if _, err := DecodeState(data); err != nil {
		t.Fatalf("DecodeState with padding: %v", err)
	}
}

func TestDecodeStateErrors(t *testing.T) {
	if _, err := DecodeState([]byte{1, 2, 3}); !errors.Is(err, codec.ErrShortBuffer) {
		t.Errorf("short buffer: got %v, want ErrShortBuffer", err)
	}

	data := make([]byte, stateLen)
	data[0] = 9 // mode out of range
	_, err := DecodeState(data)
	var unknown *codec.UnknownEnumError
	if !errors.As(err, &unknown) {
		t.Fatalf("bad mode: got %v, want UnknownEnumError", err)
	}
	if unknown.Field != "Mode" || unknown.Value != 9 {
		t.Errorf("got %s=%d, want Mode=9", unknown.Field, unknown.Value)
	}
}

func TestDecodeSetup(t *testing.T) {
	data := []byte{2, 72, 0x8A, 0x02, 0x03}
	s, err := DecodeSetup(data)
	if err != nil {
		t.Fatalf("DecodeSetup: %v", err)
	}
	if s.DefaultManualOnSpeed != SpeedHigh {
		t.Errorf("DefaultManualOnSpeed = %v, want High", s.DefaultManualOnSpeed)
	}
	if s.PhControlSetpoint != 7.2 {
		t.Errorf("PhControlSetpoint = %v, want 7.2", s.PhControlSetpoint)
	}
	if s.ChlorineControlSetpoint != 650 {
		t.Errorf("ChlorineControlSetpoint = %d, want 650", s.ChlorineControlSetpoint)
	}
	if !s.IsNoTimerModel || !s.IsTimerMasterPresentInSystem {
		t.Errorf("flags = %+v, want both set", s)
	}
}

func TestDecodeCapabilities(t *testing.T) {
	data := []byte{
		0, 10, // acid setpoint range
		0, 8, // chlorine setpoint range
		30, 100, // pH range 3.0-10.0
		10, 80, // ORP range 100-800
		2, 2, // both automatic
		0x27,   // three speed + AI + US gallons + dosing
		25,     // cell size
		60,     // acid pump size
		75,     // filter pump 7.5
		14,     // reversal period
		0x50, 0xC3, 0x00, // pool volume 50000, 24-bit
		0xB8, 0x0B, // spa volume 3000
	}
	c, err := DecodeCapabilities(data)
	if err != nil {
		t.Fatalf("DecodeCapabilities: %v", err)
	}
	if c.MinimumPhSetpoint != 3.0 || c.MaximumPhSetpoint != 10.0 {
		t.Errorf("pH range = %v-%v, want 3.0-10.0", c.MinimumPhSetpoint, c.MaximumPhSetpoint)
	}
	if c.MinimumOrpSetpoint != 100 || c.MaximumOrpSetpoint != 800 {
		t.Errorf("ORP range = %d-%d, want 100-800", c.MinimumOrpSetpoint, c.MaximumOrpSetpoint)
	}
	if c.PhControlType != PhControlAutomatic || c.ChlorineControlType != ChlorineControlAutomatic {
		t.Errorf("control types = %v/%v, want Automatic", c.PhControlType, c.ChlorineControlType)
	}
	if !c.ThreespeedPumpEnabled || !c.AiModeEnabled || !c.DosingCapableUnit {
		t.Error("capability flags not decoded")
	}
	if c.LightingEnabled {
		t.Error("LightingEnabled = true, want false")
	}
	if c.VolumeUnits != VolumeUsGallons {
		t.Errorf("VolumeUnits = %v, want UsGallons", c.VolumeUnits)
	}
	if c.FilterPumpSize != 7.5 {
		t.Errorf("FilterPumpSize = %v, want 7.5", c.FilterPumpSize)
	}
	if c.PoolVolume != [3]byte{0x50, 0xC3, 0x00} {
		t.Errorf("PoolVolume = %v", c.PoolVolume)
	}
	if c.SpaVolume != 3000 {
		t.Errorf("SpaVolume = %d, want 3000", c.SpaVolume)
	}
}

func TestDecodeSettings(t *testing.T) {
	s, err := DecodeSettings([]byte{120, 0, 2})
	if err != nil {
		t.Fatalf("DecodeSettings: %v", err)
	}
	if s.AcidDosingInhibitTimeRemaining != 120 {
		t.Errorf("AcidDosingInhibitTimeRemaining = %d, want 120", s.AcidDosingInhibitTimeRemaining)
	}
	if s.AcidDosingInhibitStatus != AcidDosingInhibitedForPeriod {
		t.Errorf("AcidDosingInhibitStatus = %v, want InhibitedForAPeriod", s.AcidDosingInhibitStatus)
	}
}

func TestDecodeStatistics(t *testing.T) {
	data := []byte{
		82, 68, // pH extremes 8.2 / 6.8
		0xBC, 0x02, // highest ORP 700
		0x2C, 0x01, // lowest ORP 300
		0x0A, 0x00, // 10 reversals
		0xE8, 0x03, 0x00, 0x00, // 1000 hours
		0x64, 0x00, 0x00, 0x00, // 100 hours low salt
		80,
	}
	s, err := DecodeStatistics(data)
	if err != nil {
		t.Fatalf("DecodeStatistics: %v", err)
	}
	if s.HighestPhMeasured != 8.2 || s.LowestPhMeasured != 6.8 {
		t.Errorf("pH extremes = %v/%v, want 8.2/6.8", s.HighestPhMeasured, s.LowestPhMeasured)
	}
	if s.CellRunningTime != 1000*time.Hour {
		t.Errorf("CellRunningTime = %v, want 1000h", s.CellRunningTime)
	}
	if s.LowSaltCellRunningTime != 100*time.Hour {
		t.Errorf("LowSaltCellRunningTime = %v, want 100h", s.LowSaltCellRunningTime)
	}
	if s.PreviousDaysCellLoad != 80 {
		t.Errorf("PreviousDaysCellLoad = %d, want 80", s.PreviousDaysCellLoad)
	}
}

func TestDecodeTimers(t *testing.T) {
	data := []byte{
		0xA8, 0, 10, 30, // enabled, 08:00-10:30, speed High
		25 | 0x20, 0, 26, 0, // enabled but start past 24h
		0, 0, 0, 0, // disabled, empty
		8 | 0x20, 0, 8, 0, // enabled, start == stop
	}
	timers, err := DecodeTimers(data)
	if err != nil {
		t.Fatalf("DecodeTimers: %v", err)
	}

	first := timers.PumpTimers[0]
	if !first.Enabled {
		t.Error("timer 0 not enabled")
	}
	if first.StartTime != 8*time.Hour || first.StopTime != 10*time.Hour+30*time.Minute {
		t.Errorf("timer 0 = %v-%v, want 8h-10h30m", first.StartTime, first.StopTime)
	}
	if first.SpeedLevel != SpeedHigh {
		t.Errorf("timer 0 speed = %v, want High", first.SpeedLevel)
	}
	if first.IsInvalid() {
		t.Error("timer 0 reported invalid")
	}

	if !timers.PumpTimers[1].IsInvalid() {
		t.Error("timer past 24h not reported invalid")
	}
	if timers.PumpTimers[2].IsInvalid() {
		t.Error("disabled empty timer reported invalid")
	}
	if !timers.PumpTimers[3].IsInvalid() {
		t.Error("start == stop timer not reported invalid")
	}
}

func TestPumpTimerInvalid(t *testing.T) {
	tests := []struct {
		name  string
		timer PumpTimer
		want  bool
	}{
		{"disabled past 24h", PumpTimer{StartTime: 25 * time.Hour}, true},
		{"disabled in range", PumpTimer{StartTime: 8 * time.Hour, StopTime: 6 * time.Hour}, false},
		{"enabled reversed", PumpTimer{Enabled: true, StartTime: 10 * time.Hour, StopTime: 8 * time.Hour}, true},
		{"enabled speed not set", PumpTimer{Enabled: true, StopTime: time.Hour, SpeedLevel: SpeedNotSet}, true},
		{"enabled ok", PumpTimer{Enabled: true, StopTime: time.Hour, SpeedLevel: SpeedLow}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.timer.IsInvalid(); got != tt.want {
				t.Errorf("IsInvalid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActionRoundTrip(t *testing.T) {
	in := Action{Action: ActionDisableAcidDosingForPeriod, PeriodMinutes: 90}
	buf, err := in.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(buf) != actionLen {
		t.Fatalf("packet len = %d, want %d", len(buf), actionLen)
	}
	out, err := DecodeAction(buf)
	if err != nil {
		t.Fatalf("DecodeAction: %v", err)
	}
	if *out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestInfoMessageWarnings(t *testing.T) {
	if InfoNoWaterFlow.IsWarning() {
		t.Error("NoWaterFlow reported as warning")
	}
	if !InfoLowSalt.IsWarning() {
		t.Error("LowSalt not reported as warning")
	}
	if InfoMessage(64).valid() {
		t.Error("gap code 64 reported valid")
	}
}
