package halo

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/pbutterworth/gochlorinator/pkg/crypto"
	"github.com/pbutterworth/gochlorinator/pkg/snapshot"
)

var testSessionKey = []byte{
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
	0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F,
}

// encryptedPacket builds and encrypts one notification carrying tag and data.
func encryptedPacket(t *testing.T, tag uint16, data []byte) []byte {
	t.Helper()
	if len(data) > packetLen-3 {
		t.Fatalf("record data too long: %d", len(data))
	}
	plain := make([]byte, packetLen)
	binary.LittleEndian.PutUint16(plain[1:3], tag)
	copy(plain[3:], data)
	enc, err := crypto.EncryptCharacteristic(plain, testSessionKey)
	if err != nil {
		t.Fatalf("EncryptCharacteristic: %v", err)
	}
	return enc
}

func temperatureData(waterTenths uint16) []byte {
	data := make([]byte, temperatureLen)
	binary.LittleEndian.PutUint16(data[4:6], waterTenths)
	data[10] = byte(TempIsValid)
	return data
}

func TestDemuxMergesInOrder(t *testing.T) {
	d := NewDemux(testSessionKey, snapshot.New())

	probe := make([]byte, probeStatisticsLen)
	probe[0] = 82 // highest pH 8.2
	binary.LittleEndian.PutUint16(probe[2:4], 700)

	d.HandleNotification(encryptedPacket(t, CmdTemperature, temperatureData(255)))
	d.HandleNotification(encryptedPacket(t, CmdProbeStatistics, probe))
	d.HandleNotification(encryptedPacket(t, 999, make([]byte, 17))) // unknown tag
	d.HandleNotification([]byte{1, 2, 3})                           // undecryptable
	d.HandleNotification(encryptedPacket(t, CmdTemperature, temperatureData(260)))
	d.Close()

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap := d.Snapshot()
	water, ok := snap.Get("WaterTemp")
	if !ok {
		t.Fatal("WaterTemp missing from snapshot")
	}
	if water != 26.0 {
		t.Errorf("WaterTemp = %v, want 26.0 from the later packet", water)
	}
	if orp, _ := snap.Get("HighestOrpMeasured"); orp != uint16(700) {
		t.Errorf("HighestOrpMeasured = %v, want 700", orp)
	}
	if ph, _ := snap.Get("HighestPhMeasured"); ph != 8.2 {
		t.Errorf("HighestPhMeasured = %v, want 8.2", ph)
	}
}

func TestDemuxSkipsUndecodableRecord(t *testing.T) {
	d := NewDemux(testSessionKey, snapshot.New())

	bad := make([]byte, stateLen)
	bad[4] = 99 // main text out of range
	d.HandleNotification(encryptedPacket(t, CmdState, bad))
	d.HandleNotification(encryptedPacket(t, CmdTemperature, temperatureData(255)))
	d.Close()

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := d.Snapshot().Get("MainText"); ok {
		t.Error("undecodable state record leaked into snapshot")
	}
	if water, _ := d.Snapshot().Get("WaterTemp"); water != 25.5 {
		t.Errorf("WaterTemp = %v, want 25.5", water)
	}
}

func TestDemuxSlotRecordsDoNotClobber(t *testing.T) {
	d := NewDemux(testSessionKey, snapshot.New())

	// Two GPO setup records for different outlets on the same expansion.
	d.HandleNotification(encryptedPacket(t, CmdGPOSetup, []byte{7, 0, 1, 0, 2, 0, 1}))
	d.HandleNotification(encryptedPacket(t, CmdGPOSetup, []byte{7, 1, 0, 3, 8, 0, 0}))
	d.Close()

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	snap := d.Snapshot()
	if v, _ := snap.Get("GPO1Name"); v != GPONameCleaningPump {
		t.Errorf("GPO1Name = %v, want CleaningPump", v)
	}
	if v, _ := snap.Get("GPO2Name"); v != GPONameJets {
		t.Errorf("GPO2Name = %v, want Jets", v)
	}
	if v, _ := snap.Get("GPO1OutletEnabled"); v != true {
		t.Errorf("GPO1OutletEnabled = %v, want true", v)
	}
	if v, _ := snap.Get("GPO2OutletEnabled"); v != false {
		t.Errorf("GPO2OutletEnabled = %v, want false", v)
	}
}

func TestDemuxContextCancel(t *testing.T) {
	d := NewDemux(testSessionKey, snapshot.New())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDemuxCloseIsIdempotent(t *testing.T) {
	d := NewDemux(testSessionKey, snapshot.New())
	d.Close()
	d.Close()
	d.HandleNotification(encryptedPacket(t, CmdTemperature, temperatureData(255)))
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
