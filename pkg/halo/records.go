package halo

import (
	"encoding/binary"

	"github.com/pbutterworth/gochlorinator/pkg/codec"
)

// DecodeFunc turns the data slice of a notification packet into a typed
// record.
type DecodeFunc func(data []byte) (any, error)

// Decoders maps command tags to record decoders. Packets with tags outside
// this table are dropped by the demultiplexer.
var Decoders = map[uint16]DecodeFunc{
	CmdDeviceProfile:        func(b []byte) (any, error) { return DecodeDeviceProfile(b) },
	CmdTemperature:          func(b []byte) (any, error) { return DecodeTemperature(b) },
	CmdSettings:             func(b []byte) (any, error) { return DecodeSettings(b) },
	CmdWaterVolume:          func(b []byte) (any, error) { return DecodeWaterVolume(b) },
	CmdSetPoints:            func(b []byte) (any, error) { return DecodeSetPoints(b) },
	CmdState:                func(b []byte) (any, error) { return DecodeState(b) },
	CmdCapabilities:         func(b []byte) (any, error) { return DecodeCapabilities(b) },
	CmdMaintenanceState:     func(b []byte) (any, error) { return DecodeMaintenanceState(b) },
	CmdEquipmentMode:        func(b []byte) (any, error) { return DecodeEquipmentMode(b) },
	CmdEquipmentParameter:   func(b []byte) (any, error) { return DecodeEquipmentParameter(b) },
	CmdLightState:           func(b []byte) (any, error) { return DecodeLightState(b) },
	CmdLightCapabilities:    func(b []byte) (any, error) { return DecodeLightCapabilities(b) },
	CmdLightSetup:           func(b []byte) (any, error) { return DecodeLightSetup(b) },
	CmdProbeStatistics:      func(b []byte) (any, error) { return DecodeProbeStatistics(b) },
	CmdCellStatistics:       func(b []byte) (any, error) { return DecodeCellStatistics(b) },
	CmdPowerBoardStatistics: func(b []byte) (any, error) { return DecodePowerBoardStatistics(b) },
	CmdHeaterCapabilities:   func(b []byte) (any, error) { return DecodeHeaterCapabilities(b) },
	CmdHeaterConfig:         func(b []byte) (any, error) { return DecodeHeaterConfig(b) },
	CmdHeaterState:          func(b []byte) (any, error) { return DecodeHeaterState(b) },
	CmdHeaterCooldownState:  func(b []byte) (any, error) { return DecodeHeaterCooldownState(b) },
	CmdSolarCapabilities:    func(b []byte) (any, error) { return DecodeSolarCapabilities(b) },
	CmdSolarConfig:          func(b []byte) (any, error) { return DecodeSolarConfig(b) },
	CmdSolarState:           func(b []byte) (any, error) { return DecodeSolarState(b) },
	CmdGPOSetup:             func(b []byte) (any, error) { return DecodeGPOSetup(b) },
	CmdRelaySetup:           func(b []byte) (any, error) { return DecodeRelaySetup(b) },
	CmdValveSetup:           func(b []byte) (any, error) { return DecodeValveSetup(b) },
}

// DeviceProfile is the decoded device profile record (tag 1).
type DeviceProfile struct {
	DeviceType             DeviceType
	DeviceVersion          uint8
	DeviceProtocol         DeviceProtocol
	DeviceProtocolRevision uint8
	FirmwareVersionMajor   uint8
	FirmwareVersionMinor   uint8
	BootloaderVersionMajor uint8
	BootloaderVersionMinor uint8
	HardwareVersion        uint8
	SerialNumber           uint32
}

const deviceProfileLen = 13

// DecodeDeviceProfile decodes the device profile record.
func DecodeDeviceProfile(data []byte) (*DeviceProfile, error) {
	if len(data) < deviceProfileLen {
		return nil, codec.ShortBuffer("DeviceProfile", deviceProfileLen, len(data))
	}

	deviceType := DeviceType(data[0])
	if !deviceType.valid() {
		return nil, &codec.UnknownEnumError{Record: "DeviceProfile", Field: "DeviceType", Value: int(data[0])}
	}
	protocol := DeviceProtocol(data[2])
	if !protocol.valid() {
		return nil, &codec.UnknownEnumError{Record: "DeviceProfile", Field: "DeviceProtocol", Value: int(data[2])}
	}
	return &DeviceProfile{
		DeviceType:             deviceType,
		DeviceVersion:          data[1],
		DeviceProtocol:         protocol,
		DeviceProtocolRevision: data[3],
		FirmwareVersionMajor:   data[4],
		FirmwareVersionMinor:   data[5],
		BootloaderVersionMajor: data[6],
		BootloaderVersionMinor: data[7],
		HardwareVersion:        data[8],
		SerialNumber:           binary.LittleEndian.Uint32(data[9:13]),
	}, nil
}
