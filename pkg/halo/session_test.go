package halo

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pbutterworth/gochlorinator/pkg/ble"
	"github.com/pbutterworth/gochlorinator/pkg/crypto"
)

type fakeSub struct {
	done chan struct{}
}

func (s *fakeSub) Unsubscribe() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}

func (s *fakeSub) Done() <-chan struct{} { return s.done }

// fakeHalo emulates the device side of a Halo session: it hands out a
// session key, accepts the auth token, and answers read requests by
// streaming encrypted records at the subscriber, disconnecting after the
// last expected request like the real unit does.
type fakeHalo struct {
	key        []byte
	accessCode string

	authed    bool
	sub       *fakeSub
	onPacket  func([]byte)
	responses map[uint16][][]byte // plaintext packets per request group
	requests  []uint16
	rxWrites  [][]byte
}

func newFakeHalo(accessCode string) *fakeHalo {
	return &fakeHalo{
		key:        bytes.Repeat([]byte{0x42}, crypto.SessionKeySize),
		accessCode: accessCode,
		responses:  make(map[uint16][][]byte),
	}
}

func (f *fakeHalo) respond(group uint16, tag uint16, data []byte) {
	plain := make([]byte, packetLen)
	binary.LittleEndian.PutUint16(plain[1:3], tag)
	copy(plain[3:], data)
	f.responses[group] = append(f.responses[group], plain)
}

func (f *fakeHalo) ReadCharacteristic(_ context.Context, uuid string) ([]byte, error) {
	if uuid == UUIDSlaveSessionKey {
		return append([]byte(nil), f.key...), nil
	}
	return nil, &ble.CharacteristicIOError{UUID: uuid, Op: "read", Err: errors.New("no such characteristic")}
}

func (f *fakeHalo) WriteCharacteristic(_ context.Context, uuid string, data []byte) error {
	switch uuid {
	case UUIDMasterAuthentication:
		want, err := crypto.DeriveAuthToken(f.key, []byte(f.accessCode))
		if err != nil {
			return err
		}
		if !bytes.Equal(data, want) {
			return &ble.CharacteristicIOError{UUID: uuid, Op: "write", Err: errors.New("bad auth token")}
		}
		f.authed = true
		return nil
	case UUIDRxCharacteristic:
		if !f.authed {
			return &ble.CharacteristicIOError{UUID: uuid, Op: "write", Err: errors.New("not authenticated")}
		}
		plain, err := crypto.DecryptCharacteristic(data, f.key)
		if err != nil {
			return err
		}
		f.rxWrites = append(f.rxWrites, plain)
		if plain[0] == requestOpcode && f.onPacket != nil {
			group := binary.LittleEndian.Uint16(plain[1:3])
			f.requests = append(f.requests, group)
			for _, response := range f.responses[group] {
				enc, err := crypto.EncryptCharacteristic(response, f.key)
				if err != nil {
					return err
				}
				f.onPacket(enc)
			}
			if len(f.requests) == len(catchAllGroups) {
				f.sub.Unsubscribe() // device drops the connection
			}
		}
		return nil
	}
	return &ble.CharacteristicIOError{UUID: uuid, Op: "write", Err: errors.New("no such characteristic")}
}

func (f *fakeHalo) Subscribe(_ context.Context, uuid string, onPacket func([]byte)) (ble.Subscription, error) {
	if uuid != UUIDTxCharacteristic {
		return nil, &ble.CharacteristicIOError{UUID: uuid, Op: "subscribe", Err: errors.New("no such characteristic")}
	}
	f.sub = &fakeSub{done: make(chan struct{})}
	f.onPacket = onPacket
	return f.sub, nil
}

func TestSessionGatherData(t *testing.T) {
	dev := newFakeHalo("1234")

	temp := make([]byte, temperatureLen)
	binary.LittleEndian.PutUint16(temp[4:6], 255)
	temp[10] = byte(TempIsValid)
	dev.respond(107, CmdTemperature, temp)

	probe := make([]byte, probeStatisticsLen)
	binary.LittleEndian.PutUint16(probe[2:4], 700)
	dev.respond(600, CmdProbeStatistics, probe)

	power := make([]byte, powerBoardStatisticsLen)
	binary.LittleEndian.PutUint32(power[0:4], 500)
	dev.respond(602, CmdPowerBoardStatistics, power)

	s := NewSession(dev, dev, "1234")
	defer s.Close()
	ctx := context.Background()
	if err := s.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	snap, err := s.GatherData(ctx)
	if err != nil {
		t.Fatalf("GatherData: %v", err)
	}
	if got := fmt.Sprint(dev.requests); got != fmt.Sprint(catchAllGroups) {
		t.Errorf("requested groups %v, want %v", dev.requests, catchAllGroups)
	}
	if water, _ := snap.Get("WaterTemp"); water != 25.5 {
		t.Errorf("WaterTemp = %v, want 25.5", water)
	}
	if orp, _ := snap.Get("HighestOrpMeasured"); orp != uint16(700) {
		t.Errorf("HighestOrpMeasured = %v, want 700", orp)
	}
	if rt, _ := snap.Get("PowerBoardRuntime"); rt != 500*time.Hour {
		t.Errorf("PowerBoardRuntime = %v, want 500h", rt)
	}
}

func TestSessionWriteActions(t *testing.T) {
	dev := newFakeHalo("1234")
	s := NewSession(dev, dev, "1234")
	defer s.Close()
	ctx := context.Background()
	if err := s.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if err := s.WriteAction(ctx, Action{Action: ActionFilterForPeriod, PeriodMinutes: 60}); err != nil {
		t.Fatalf("WriteAction: %v", err)
	}
	if err := s.WriteHeaterAction(ctx, HeaterAction{Action: HeaterActionPool}); err != nil {
		t.Fatalf("WriteHeaterAction: %v", err)
	}
	if err := s.WriteLightAction(ctx, LightAction{Action: LightActionTurnOnZone}); err != nil {
		t.Fatalf("WriteLightAction: %v", err)
	}

	if len(dev.rxWrites) != 3 {
		t.Fatalf("device saw %d writes, want 3", len(dev.rxWrites))
	}
	chlor := dev.rxWrites[0]
	if !bytes.Equal(chlor[:4], []byte{0x03, 0xF4, 0x01, byte(ActionFilterForPeriod)}) {
		t.Errorf("chlorinator packet header = %x", chlor[:4])
	}
	if binary.LittleEndian.Uint32(chlor[4:8]) != 60 {
		t.Errorf("period minutes = %d, want 60", binary.LittleEndian.Uint32(chlor[4:8]))
	}
	if !bytes.Equal(dev.rxWrites[1][:4], []byte{0x03, 0xF6, 0x01, byte(HeaterActionPool)}) {
		t.Errorf("heater packet header = %x", dev.rxWrites[1][:4])
	}
	if !bytes.Equal(dev.rxWrites[2][:4], []byte{0x03, 0xF5, 0x01, byte(LightActionTurnOnZone)}) {
		t.Errorf("light packet header = %x", dev.rxWrites[2][:4])
	}
}

func TestSessionRequiresAuthentication(t *testing.T) {
	dev := newFakeHalo("1234")
	s := NewSession(dev, dev, "1234")
	if _, err := s.GatherData(context.Background()); !errors.Is(err, ErrHandshakeFailed) {
		t.Fatalf("GatherData = %v, want ErrHandshakeFailed", err)
	}
	if err := s.WriteAction(context.Background(), Action{Action: ActionOff}); !errors.Is(err, ErrHandshakeFailed) {
		t.Fatalf("WriteAction = %v, want ErrHandshakeFailed", err)
	}
}

func TestSessionSingleAtATime(t *testing.T) {
	dev := newFakeHalo("1234")
	first := NewSession(dev, dev, "1234")
	if err := first.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	second := NewSession(dev, dev, "1234")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := second.Authenticate(ctx); !errors.Is(err, ErrSessionBusy) {
		first.Close()
		t.Fatalf("second Authenticate = %v, want ErrSessionBusy", err)
	}

	first.Close()
	if err := second.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate after release: %v", err)
	}
	second.Close()
}
