package emulator

import (
	"context"
	"testing"

	"github.com/pbutterworth/gochlorinator/pkg/equilibrium"
	"github.com/pbutterworth/gochlorinator/pkg/halo"
)

func TestEquilibriumSession(t *testing.T) {
	dev := NewEquilibrium("1234")
	s := equilibrium.NewSession(dev, "1234")
	ctx := context.Background()

	if err := s.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	snap, err := s.GatherData(ctx)
	if err != nil {
		t.Fatalf("GatherData: %v", err)
	}
	if mode, _ := snap.Get("Mode"); mode != equilibrium.ModeAuto {
		t.Errorf("Mode = %v, want Auto", mode)
	}
	if ph, _ := snap.Get("PhMeasurement"); ph != 7.4 {
		t.Errorf("PhMeasurement = %v, want 7.4", ph)
	}
	if sp, _ := snap.Get("ChlorineControlSetpoint"); sp != uint16(650) {
		t.Errorf("ChlorineControlSetpoint = %v, want 650", sp)
	}
}

func TestEquilibriumActionsMutateState(t *testing.T) {
	dev := NewEquilibrium("1234")
	s := equilibrium.NewSession(dev, "1234")
	ctx := context.Background()
	if err := s.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if err := s.WriteAction(ctx, equilibrium.Action{Action: equilibrium.ActionOff}); err != nil {
		t.Fatalf("WriteAction: %v", err)
	}
	if err := s.WriteAction(ctx, equilibrium.Action{
		Action:        equilibrium.ActionDisableAcidDosingForPeriod,
		PeriodMinutes: 90,
	}); err != nil {
		t.Fatalf("WriteAction: %v", err)
	}

	snap, err := s.GatherData(ctx)
	if err != nil {
		t.Fatalf("GatherData: %v", err)
	}
	if mode, _ := snap.Get("Mode"); mode != equilibrium.ModeOff {
		t.Errorf("Mode = %v, want Off after action", mode)
	}
	if status, _ := snap.Get("AcidDosingInhibitStatus"); status != equilibrium.AcidDosingInhibitedForPeriod {
		t.Errorf("AcidDosingInhibitStatus = %v, want InhibitedForAPeriod", status)
	}
	if remaining, _ := snap.Get("AcidDosingInhibitTimeRemaining"); remaining != uint16(90) {
		t.Errorf("AcidDosingInhibitTimeRemaining = %v, want 90", remaining)
	}
}

func TestEquilibriumRejectsBadAccessCode(t *testing.T) {
	dev := NewEquilibrium("1234")
	s := equilibrium.NewSession(dev, "0000")
	if err := s.Authenticate(context.Background()); err == nil {
		t.Fatal("Authenticate with wrong access code succeeded")
	}
}

func TestHaloSession(t *testing.T) {
	dev := NewHalo("1234")
	s := halo.NewSession(dev, dev, "1234")
	defer s.Close()
	ctx := context.Background()

	if err := s.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	snap, err := s.GatherData(ctx)
	if err != nil {
		t.Fatalf("GatherData: %v", err)
	}
	if water, _ := snap.Get("WaterTemp"); water != 26.5 {
		t.Errorf("WaterTemp = %v, want 26.5", water)
	}
	if ph, _ := snap.Get("PhMeasurement"); ph != 7.4 {
		t.Errorf("PhMeasurement = %v, want 7.4", ph)
	}
	if running, _ := snap.Get("IsCellRunning"); running != true {
		t.Errorf("IsCellRunning = %v, want true", running)
	}
	if _, ok := snap.Get("HighestOrpMeasured"); !ok {
		t.Error("probe statistics missing from snapshot")
	}
	if _, ok := snap.Get("HeaterSetpoint"); !ok {
		t.Error("heater state missing from snapshot")
	}
}

func TestHaloActionsMutateState(t *testing.T) {
	dev := NewHalo("1234")
	ctx := context.Background()

	s := halo.NewSession(dev, dev, "1234")
	if err := s.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if err := s.WriteAction(ctx, halo.Action{Action: halo.ActionOff}); err != nil {
		t.Fatalf("WriteAction: %v", err)
	}
	if err := s.WriteHeaterAction(ctx, halo.HeaterAction{Action: halo.HeaterActionOn}); err != nil {
		t.Fatalf("WriteHeaterAction: %v", err)
	}
	if err := s.WriteLightAction(ctx, halo.LightAction{Action: halo.LightActionTurnOnZone}); err != nil {
		t.Fatalf("WriteLightAction: %v", err)
	}
	s.Close()

	// A fresh session sees the mutated state; the emulated device hands out
	// the same key across sessions.
	s2 := halo.NewSession(dev, dev, "1234")
	defer s2.Close()
	if err := s2.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	snap, err := s2.GatherData(ctx)
	if err != nil {
		t.Fatalf("GatherData: %v", err)
	}
	if running, _ := snap.Get("IsCellRunning"); running != false {
		t.Errorf("IsCellRunning = %v, want false after Off", running)
	}
	if on, _ := snap.Get("HeaterOn"); on != true {
		t.Errorf("HeaterOn = %v, want true after heater action", on)
	}
	zones, _ := snap.Get("ZoneOn")
	if zones, ok := zones.([4]bool); !ok || !zones[0] {
		t.Errorf("ZoneOn = %v, want zone 1 on", zones)
	}
}
