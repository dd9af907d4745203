package halo

import (
	"encoding/binary"
	"time"

	"github.com/pbutterworth/gochlorinator/pkg/codec"
)

// ProbeStatistics is the decoded probe statistics record (tag 600).
type ProbeStatistics struct {
	HighestPhMeasured  float64
	LowestPhMeasured   float64
	HighestOrpMeasured uint16
	LowestOrpMeasured  uint16
}

const probeStatisticsLen = 6

// DecodeProbeStatistics decodes the probe statistics record.
func DecodeProbeStatistics(data []byte) (*ProbeStatistics, error) {
	if len(data) < probeStatisticsLen {
		return nil, codec.ShortBuffer("ProbeStatistics", probeStatisticsLen, len(data))
	}
	return &ProbeStatistics{
		HighestPhMeasured:  float64(data[0]) / 10,
		LowestPhMeasured:   float64(data[1]) / 10,
		HighestOrpMeasured: binary.LittleEndian.Uint16(data[2:4]),
		LowestOrpMeasured:  binary.LittleEndian.Uint16(data[4:6]),
	}, nil
}

// CellStatistics is the decoded cell statistics record (tag 601).
type CellStatistics struct {
	CellReversalCount      uint16
	CellRunningTime        time.Duration
	LowSaltCellRunningTime time.Duration
	PreviousDaysCellLoad   uint8
	DosingPumpSecs         uint16
	FilterPumpMins         uint16
}

const cellStatisticsLen = 15

// DecodeCellStatistics decodes the cell statistics record. Running times are
// reported in whole hours.
func DecodeCellStatistics(data []byte) (*CellStatistics, error) {
	if len(data) < cellStatisticsLen {
		return nil, codec.ShortBuffer("CellStatistics", cellStatisticsLen, len(data))
	}
	return &CellStatistics{
		CellReversalCount:      binary.LittleEndian.Uint16(data[0:2]),
		CellRunningTime:        time.Duration(binary.LittleEndian.Uint32(data[2:6])) * time.Hour,
		LowSaltCellRunningTime: time.Duration(binary.LittleEndian.Uint32(data[6:10])) * time.Hour,
		PreviousDaysCellLoad:   data[10],
		DosingPumpSecs:         binary.LittleEndian.Uint16(data[11:13]),
		FilterPumpMins:         binary.LittleEndian.Uint16(data[13:15]),
	}, nil
}

// PowerBoardStatistics is the decoded power board record (tag 602).
type PowerBoardStatistics struct {
	PowerBoardRuntime time.Duration
}

const powerBoardStatisticsLen = 4

// DecodePowerBoardStatistics decodes the power board record. Runtime is
// reported in whole hours.
func DecodePowerBoardStatistics(data []byte) (*PowerBoardStatistics, error) {
	if len(data) < powerBoardStatisticsLen {
		return nil, codec.ShortBuffer("PowerBoardStatistics", powerBoardStatisticsLen, len(data))
	}
	return &PowerBoardStatistics{
		PowerBoardRuntime: time.Duration(binary.LittleEndian.Uint32(data[0:4])) * time.Hour,
	}, nil
}
