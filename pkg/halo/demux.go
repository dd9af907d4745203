package halo

import (
	"context"
	"encoding/binary"
	"sync"

	"go.uber.org/zap"

	"github.com/pbutterworth/gochlorinator/internal/logging"
	"github.com/pbutterworth/gochlorinator/pkg/crypto"
	"github.com/pbutterworth/gochlorinator/pkg/snapshot"
)

// packet is one decrypted notification, split into its command tag and data
// slice.
type packet struct {
	tag  uint16
	data []byte
}

// demuxBuffer bounds how many notifications can queue between the BLE
// callback and the consumer before overflow drops kick in.
const demuxBuffer = 256

// Demux decodes the single notification stream of a Halo into typed records
// and merges them into a device snapshot.
//
// HandleNotification is the producer side and is safe to call from a BLE
// notification callback; it never blocks. Run is the consumer side and
// preserves notification order. Close marks the stream as ended, after which
// Run drains what is queued and returns; the snapshot then holds whatever
// records arrived, which may be a partial view of the device.
type Demux struct {
	key  []byte
	snap *snapshot.Snapshot

	packets   chan packet
	done      chan struct{}
	closeOnce sync.Once
}

// NewDemux returns a demultiplexer decrypting with the given session key and
// merging into snap.
func NewDemux(sessionKey []byte, snap *snapshot.Snapshot) *Demux {
	return &Demux{
		key:     sessionKey,
		snap:    snap,
		packets: make(chan packet, demuxBuffer),
		done:    make(chan struct{}),
	}
}

// Snapshot returns the snapshot records are merged into.
func (d *Demux) Snapshot() *snapshot.Snapshot { return d.snap }

// HandleNotification decrypts one raw notification packet and queues it for
// decoding. Packets that fail to decrypt, are too short to carry a tag, or
// arrive while the queue is full are dropped.
func (d *Demux) HandleNotification(raw []byte) {
	plain, err := crypto.DecryptCharacteristic(raw, d.key)
	if err != nil {
		logging.Warn("dropping undecryptable notification",
			zap.Int("len", len(raw)), zap.Error(err))
		return
	}
	if len(plain) < packetLen {
		logging.Warn("dropping short notification", zap.Int("len", len(plain)))
		return
	}
	p := packet{
		tag:  binary.LittleEndian.Uint16(plain[1:3]),
		data: plain[3:packetLen],
	}
	select {
	case <-d.done:
	case d.packets <- p:
	default:
		logging.Warn("notification queue full, dropping packet",
			zap.Uint16("tag", p.tag))
	}
}

// Close marks the notification stream as ended, normally on disconnect. Safe
// to call more than once and concurrently with HandleNotification.
func (d *Demux) Close() {
	d.closeOnce.Do(func() { close(d.done) })
}

// Run consumes queued notifications in arrival order until the stream is
// closed or ctx is done. Unknown tags and records that fail to decode are
// logged and skipped; they never abort the stream. Returns nil when the
// stream ended, ctx.Err() otherwise.
func (d *Demux) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p := <-d.packets:
			d.dispatch(p)
		case <-d.done:
			// Drain whatever arrived before the stream ended.
			for {
				select {
				case p := <-d.packets:
					d.dispatch(p)
				default:
					return nil
				}
			}
		}
	}
}

func (d *Demux) dispatch(p packet) {
	decode, ok := Decoders[p.tag]
	if !ok {
		logging.Debug("ignoring unknown command tag", zap.Uint16("tag", p.tag))
		return
	}
	record, err := decode(p.data)
	if err != nil {
		logging.Warn("failed to decode record",
			zap.Uint16("tag", p.tag), logging.Hex("data", p.data), zap.Error(err))
		return
	}
	d.snap.Merge(record)
	logging.Debug("merged record", zap.Uint16("tag", p.tag))
}
