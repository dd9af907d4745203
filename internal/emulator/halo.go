package emulator

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/pbutterworth/gochlorinator/internal/logging"
	"github.com/pbutterworth/gochlorinator/pkg/ble"
	"github.com/pbutterworth/gochlorinator/pkg/crypto"
	"github.com/pbutterworth/gochlorinator/pkg/halo"
)

const haloPacketLen = 20

// haloCatchAllRequests is how many read requests a gather cycle issues. The
// emulator drops the subscription after the last one, mirroring the real
// unit, which ends its data dump by disconnecting.
const haloCatchAllRequests = 6

// Halo is an emulated Halo chlorinator. It implements ble.Conn and
// ble.Notifier; wrap it in a halo.Session to talk to it.
type Halo struct {
	mu         sync.Mutex
	key        []byte
	accessCode string
	authed     bool
	counter    uint8

	sub      *haloSubscription
	onPacket func([]byte)
	requests int

	spaMode     bool
	cellOn      bool
	waterTemp   float64
	ph          float64
	orp         uint16
	phSetpoint  float64
	orpSetpoint uint16

	heaterOn       bool
	heaterSetpoint uint8
	solarMode      uint8 // halo.Mode on the wire
	lightOn        [4]bool
}

// NewHalo creates an emulated device that accepts accessCode.
func NewHalo(accessCode string) *Halo {
	key := make([]byte, crypto.SessionKeySize)
	rand.Read(key)
	return &Halo{
		key:            key,
		accessCode:     accessCode,
		cellOn:         true,
		waterTemp:      26.5,
		ph:             7.4,
		orp:            680,
		phSetpoint:     7.2,
		orpSetpoint:    650,
		heaterSetpoint: 28,
		solarMode:      byte(halo.ModeAuto),
	}
}

type haloSubscription struct {
	done chan struct{}
	once sync.Once
}

func (s *haloSubscription) Unsubscribe() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *haloSubscription) Done() <-chan struct{} { return s.done }

// ReadCharacteristic serves only the session key; all data flows over the
// notification characteristic.
func (h *Halo) ReadCharacteristic(_ context.Context, uuid string) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if uuid == halo.UUIDSlaveSessionKey {
		return append([]byte(nil), h.key...), nil
	}
	return nil, &ble.CharacteristicIOError{UUID: uuid, Op: "read", Err: errors.New("characteristic is not readable")}
}

// Subscribe registers the notification sink for the TX characteristic.
func (h *Halo) Subscribe(_ context.Context, uuid string, onPacket func([]byte)) (ble.Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if uuid != halo.UUIDTxCharacteristic {
		return nil, &ble.CharacteristicIOError{UUID: uuid, Op: "subscribe", Err: errors.New("characteristic does not notify")}
	}
	h.sub = &haloSubscription{done: make(chan struct{})}
	h.onPacket = onPacket
	h.requests = 0
	return h.sub, nil
}

// WriteCharacteristic accepts the auth token on the authentication
// characteristic and encrypted command packets on RX.
func (h *Halo) WriteCharacteristic(_ context.Context, uuid string, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch uuid {
	case halo.UUIDMasterAuthentication:
		want, err := crypto.DeriveAuthToken(h.key, []byte(h.accessCode))
		if err != nil {
			return err
		}
		if !bytes.Equal(data, want) {
			return &ble.CharacteristicIOError{UUID: uuid, Op: "write", Err: errors.New("auth token rejected")}
		}
		h.authed = true
		return nil

	case halo.UUIDRxCharacteristic:
		if !h.authed {
			return &ble.CharacteristicIOError{UUID: uuid, Op: "write", Err: errors.New("not authenticated")}
		}
		plain, err := crypto.DecryptCharacteristic(data, h.key)
		if err != nil {
			return err
		}
		return h.handleCommand(plain)
	}
	return &ble.CharacteristicIOError{UUID: uuid, Op: "write", Err: errors.New("no such characteristic")}
}

// handleCommand dispatches a decrypted RX packet. Read requests stream the
// group's records at the subscriber; action packets mutate state.
func (h *Halo) handleCommand(plain []byte) error {
	if len(plain) < 4 {
		return errors.New("emulator: short command packet")
	}

	if plain[0] == 0x02 { // read request
		group := binary.LittleEndian.Uint16(plain[1:3])
		logging.Debug("emulated halo read request", zap.Uint16("group", group))
		h.streamGroup(group)
		h.requests++
		if h.requests >= haloCatchAllRequests && h.sub != nil {
			h.sub.Unsubscribe()
		}
		return nil
	}

	if plain[0] == 0x03 && plain[2] == 0x01 { // subsystem action
		h.applyAction(plain[1], plain[3], int32(binary.LittleEndian.Uint32(plain[4:8])))
		return nil
	}
	return nil
}

func (h *Halo) applyAction(subsystem, action byte, period int32) {
	logging.Debug("emulated halo applying action",
		zap.Uint8("subsystem", subsystem),
		zap.Uint8("action", action),
		zap.Int32("period_minutes", period))

	switch subsystem {
	case 0xF4: // chlorinator
		switch halo.ChlorinatorActions(action) {
		case halo.ActionOff, halo.ActionAllOff:
			h.cellOn = false
		case halo.ActionOn, halo.ActionAuto, halo.ActionAllAuto:
			h.cellOn = true
		case halo.ActionPool:
			h.spaMode = false
		case halo.ActionSpa:
			h.spaMode = true
		}
	case 0xF5: // lighting, zone 1 in the emulator
		switch halo.LightAppActions(action) {
		case halo.LightActionTurnOnZone:
			h.lightOn[0] = true
		case halo.LightActionTurnOffZone:
			h.lightOn[0] = false
		}
	case 0xF6: // heater
		switch halo.HeaterAppActions(action) {
		case halo.HeaterActionOn:
			h.heaterOn = true
		case halo.HeaterActionOff:
			h.heaterOn = false
		case halo.HeaterActionIncreaseSetpoint:
			h.heaterSetpoint++
		case halo.HeaterActionDecreaseSetpoint:
			h.heaterSetpoint--
		}
	case 0xF7: // solar
		switch halo.SolarAppActions(action) {
		case halo.SolarActionOff:
			h.solarMode = byte(halo.ModeOff)
		case halo.SolarActionOn:
			h.solarMode = byte(halo.ModeOn)
		case halo.SolarActionAuto:
			h.solarMode = byte(halo.ModeAuto)
		}
	}
}

// streamGroup notifies the subscriber with every record of a request group.
func (h *Halo) streamGroup(group uint16) {
	if h.onPacket == nil {
		return
	}

	type record struct {
		tag   uint16
		build func([]byte)
	}
	var records []record
	switch group {
	case 107:
		records = []record{
			{halo.CmdDeviceProfile, h.buildProfile},
			{halo.CmdTemperature, h.buildTemperature},
			{halo.CmdSettings, h.buildSettings},
			{halo.CmdWaterVolume, h.buildWaterVolume},
			{halo.CmdSetPoints, h.buildSetPoints},
			{halo.CmdState, h.buildState},
			{halo.CmdCapabilities, h.buildCapabilities},
			{halo.CmdMaintenanceState, h.buildMaintenanceState},
		}
	case 5:
		records = []record{
			{halo.CmdEquipmentMode, h.buildEquipmentMode},
		}
	case 600:
		records = []record{{halo.CmdProbeStatistics, h.buildProbeStatistics}}
	case 601:
		records = []record{{halo.CmdCellStatistics, h.buildCellStatistics}}
	case 602:
		records = []record{{halo.CmdPowerBoardStatistics, h.buildPowerBoardStatistics}}
	case 603:
		records = []record{
			{halo.CmdHeaterState, h.buildHeaterState},
			{halo.CmdSolarState, h.buildSolarState},
			{halo.CmdLightState, h.buildLightState},
			{halo.CmdLightCapabilities, h.buildLightCapabilities},
		}
	}

	for _, rec := range records {
		plain := make([]byte, haloPacketLen)
		h.counter++
		plain[0] = h.counter
		binary.LittleEndian.PutUint16(plain[1:3], rec.tag)
		rec.build(plain[3:])
		enc, err := crypto.EncryptCharacteristic(plain, h.key)
		if err != nil {
			logging.Warn("emulator failed to encrypt record", zap.Error(err))
			continue
		}
		h.onPacket(enc)
	}
}

func (h *Halo) buildProfile(buf []byte) {
	buf[0] = 2 // device type
	buf[1] = 1 // version
	buf[2] = 2 // protocol
	buf[4] = 4 // firmware 4.2
	buf[5] = 2
	binary.LittleEndian.PutUint32(buf[9:13], 1048576)
}

func (h *Halo) buildTemperature(buf []byte) {
	buf[1] = byte(halo.TempWaterTemp)
	binary.LittleEndian.PutUint16(buf[2:4], 331) // board
	binary.LittleEndian.PutUint16(buf[4:6], uint16(h.waterTemp*10))
	buf[10] = 1 // water temp valid
	buf[15] = byte(halo.TempWaterTemp)
}

func (h *Halo) buildSettings(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], 0x0040|0x0008) // dosing + AI
	buf[2] = 1                                             // cell model 25
	buf[3] = 14                                            // reversal period
	buf[4] = 4                                             // AI water turns
	buf[5] = 60
	buf[6] = 8
	buf[7] = 1
}

func (h *Halo) buildWaterVolume(buf []byte) {
	binary.LittleEndian.PutUint32(buf[1:5], 52000)
	binary.LittleEndian.PutUint16(buf[5:7], 2800)
	binary.LittleEndian.PutUint32(buf[7:11], 30000)
	binary.LittleEndian.PutUint16(buf[11:13], 1500)
	buf[13] = 0x03 // pool and spa enabled
}

func (h *Halo) buildSetPoints(buf []byte) {
	buf[0] = byte(h.phSetpoint * 10)
	binary.LittleEndian.PutUint16(buf[1:3], h.orpSetpoint)
	buf[3] = 5
	buf[4] = 4
	buf[5] = 3
}

func (h *Halo) buildState(buf []byte) {
	var flags byte
	if h.spaMode {
		flags |= 0x01
	}
	if h.cellOn {
		flags |= 0x02
	}
	buf[0] = flags
	buf[1] = 60 // real cell level
	binary.LittleEndian.PutUint16(buf[2:4], 4200)
	buf[4] = 1 // main text: Auto
	buf[5] = 4 // chlorine Ok
	binary.LittleEndian.PutUint16(buf[6:8], h.orp)
	buf[8] = 4 // pH Ok
	buf[9] = byte(h.ph * 10)
}

func (h *Halo) buildCapabilities(buf []byte) {
	buf[0] = 2 // pH automatic
	buf[1] = 2 // chlorine automatic
}

func (h *Halo) buildMaintenanceState(buf []byte) {
	buf[3] = 0xFF // no task state
}

func (h *Halo) buildEquipmentMode(buf []byte) {
	buf[0] = 1                   // equipment enabled
	buf[1] = byte(halo.ModeAuto) // filter pump
	if h.cellOn {
		binary.LittleEndian.PutUint16(buf[12:14], 0x0001) // filter pump on
	}
}

func (h *Halo) buildProbeStatistics(buf []byte) {
	buf[0] = 81
	buf[1] = 69
	binary.LittleEndian.PutUint16(buf[2:4], 745)
	binary.LittleEndian.PutUint16(buf[4:6], 420)
}

func (h *Halo) buildCellStatistics(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], 37)
	binary.LittleEndian.PutUint32(buf[2:6], 910)
	binary.LittleEndian.PutUint32(buf[6:10], 5)
	buf[10] = 72
	binary.LittleEndian.PutUint16(buf[11:13], 180)
	binary.LittleEndian.PutUint16(buf[13:15], 420)
}

func (h *Halo) buildPowerBoardStatistics(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], 1320)
}

func (h *Halo) buildHeaterState(buf []byte) {
	if h.heaterOn {
		buf[0] = 0x01 // heater on
		buf[2] = 1    // mode on
	}
	buf[1] = byte(halo.ModeAuto)
	buf[3] = h.heaterSetpoint
	buf[8] = 1 // water temp valid
	binary.LittleEndian.PutUint16(buf[9:11], uint16(h.waterTemp*10))
}

func (h *Halo) buildSolarState(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], 391) // roof 39.1
	binary.LittleEndian.PutUint16(buf[2:4], uint16(h.waterTemp*10))
	binary.LittleEndian.PutUint16(buf[4:6], 30)
	buf[6] = 1 // summer mode
	buf[7] = h.solarMode
	buf[9] = 1 // roof temp valid
	buf[10] = 1
}

func (h *Halo) buildLightState(buf []byte) {
	var flags byte
	for i, on := range h.lightOn {
		buf[i] = byte(halo.ModeAuto)
		if on {
			flags |= 1 << i
		}
	}
	buf[8] = flags
}

func (h *Halo) buildLightCapabilities(buf []byte) {
	buf[0] = 1 // lighting enabled
	buf[3] = 2 // two zones in use
	buf[4] = 0x01
}
