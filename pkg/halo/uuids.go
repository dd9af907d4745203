package halo

import "encoding/binary"

// BLEName is the advertised device name of a Halo chlorinator.
const BLEName = "HCHLOR"

// GATT characteristic UUIDs of the Halo service. Unlike the eQuilibrium,
// data flows over a single TX notification characteristic and commands are
// written to RX; individual records are addressed by inline command tags.
const (
	UUIDAstralPoolService    = "45000001-98b7-4e29-a03f-160174643002"
	UUIDSlaveSessionKey      = "45000001-98b7-4e29-a03f-160174643002"
	UUIDMasterAuthentication = "45000002-98b7-4e29-a03f-160174643002"
	UUIDTxCharacteristic     = "45000003-98b7-4e29-a03f-160174643002"
	UUIDRxCharacteristic     = "45000004-98b7-4e29-a03f-160174643002"
)

// Command tags identifying the record type of a notification packet.
const (
	CmdDeviceProfile        uint16 = 1
	CmdTemperature          uint16 = 9
	CmdSettings             uint16 = 100
	CmdWaterVolume          uint16 = 101
	CmdSetPoints            uint16 = 102
	CmdState                uint16 = 104
	CmdCapabilities         uint16 = 105
	CmdMaintenanceState     uint16 = 106
	CmdEquipmentMode        uint16 = 201
	CmdEquipmentParameter   uint16 = 202
	CmdLightState           uint16 = 300
	CmdLightCapabilities    uint16 = 301
	CmdLightSetup           uint16 = 302
	CmdProbeStatistics      uint16 = 600
	CmdCellStatistics       uint16 = 601
	CmdPowerBoardStatistics uint16 = 602
	CmdHeaterCapabilities   uint16 = 1100
	CmdHeaterConfig         uint16 = 1101
	CmdHeaterState          uint16 = 1102
	CmdHeaterCooldownState  uint16 = 1104
	CmdSolarCapabilities    uint16 = 1200
	CmdSolarConfig          uint16 = 1201
	CmdSolarState           uint16 = 1202
	CmdGPOSetup             uint16 = 1300
	CmdRelaySetup           uint16 = 1301
	CmdValveSetup           uint16 = 1302
)

// packetLen is the fixed size of every RX packet before encryption.
const packetLen = 20

// requestOpcode starts a catch-all read request packet.
const requestOpcode = 0x02

// BuildReadRequest builds the catch-all read request for a group id:
// opcode, little-endian group id, zero padding to the packet size.
func BuildReadRequest(group uint16) []byte {
	buf := make([]byte, packetLen)
	buf[0] = requestOpcode
	binary.LittleEndian.PutUint16(buf[1:3], group)
	return buf
}

// catchAllGroups is the request sequence issued after subscribing; it makes
// the device stream out every record group it supports.
var catchAllGroups = []uint16{107, 5, 600, 601, 602, 603}
