package halo

import (
	"encoding/binary"

	"github.com/pbutterworth/gochlorinator/pkg/codec"
)

// ScanResponse is the manufacturer data a Halo broadcasts in its BLE
// advertisement, with the two-byte manufacturer id already stripped.
type ScanResponse struct {
	DeviceType             DeviceType
	DeviceVersion          uint8
	DeviceProtocol         DeviceProtocol
	DeviceProtocolRevision uint8
	DeviceStatus           uint8
	DeviceUniqueID         uint32
	AccessCode             [4]byte
	FirmwareMajorVersion   uint8
	FirmwareMinorVersion   uint8
	BootloaderMajorVersion uint8
	BootloaderMinorVersion uint8
	HardwarePlatformIDLo   uint8
	HardwarePlatformIDHi   uint8
	TimeAlive              uint8
}

const scanResponseLen = 21

// DecodeScanResponse decodes advertisement manufacturer data.
func DecodeScanResponse(data []byte) (*ScanResponse, error) {
	if len(data) < scanResponseLen {
		return nil, codec.ShortBuffer("ScanResponse", scanResponseLen, len(data))
	}
	deviceType := DeviceType(data[0])
	if !deviceType.valid() {
		return nil, &codec.UnknownEnumError{Record: "ScanResponse", Field: "DeviceType", Value: int(data[0])}
	}
	protocol := DeviceProtocol(data[2])
	if !protocol.valid() {
		return nil, &codec.UnknownEnumError{Record: "ScanResponse", Field: "DeviceProtocol", Value: int(data[2])}
	}
	s := &ScanResponse{
		DeviceType:             deviceType,
		DeviceVersion:          data[1],
		DeviceProtocol:         protocol,
		DeviceProtocolRevision: data[3],
		DeviceStatus:           data[4],
		DeviceUniqueID:         binary.LittleEndian.Uint32(data[6:10]),
		FirmwareMajorVersion:   data[14],
		FirmwareMinorVersion:   data[15],
		BootloaderMajorVersion: data[16],
		BootloaderMinorVersion: data[17],
		HardwarePlatformIDLo:   data[18],
		HardwarePlatformIDHi:   data[19],
		TimeAlive:              data[20],
	}
	copy(s.AccessCode[:], data[10:14])
	return s, nil
}

// IsPairable reports whether the device is advertising an access code and
// will accept a pairing handshake.
func (s *ScanResponse) IsPairable() bool {
	return s.AccessCode != [4]byte{}
}

// AccessCodeString returns the advertised access code as the four-digit
// string used in the auth handshake, or "0000" when not pairable.
func (s *ScanResponse) AccessCodeString() string {
	if !s.IsPairable() {
		return "0000"
	}
	return string(s.AccessCode[:])
}
