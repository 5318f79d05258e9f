package codec

import (
	"encoding/binary"
	"math"

	"tradecore/internal/schema"
)

// SignalPayloadSize is the wire size of a Signal event payload.
const SignalPayloadSize = 4 + tagWidth + 8 + 8

// EncodeSignal serializes a signal into a fixed-size payload.
func EncodeSignal(dst []byte, s schema.SignalEvent) []byte {
	if cap(dst) < SignalPayloadSize {
		dst = make([]byte, SignalPayloadSize)
	} else {
		dst = dst[:SignalPayloadSize]
	}

	binary.LittleEndian.PutUint32(dst[0:4], uint32(s.SymbolID))
	putTag(dst[4:4+tagWidth], s.Kind)
	off := 4 + tagWidth
	binary.LittleEndian.PutUint64(dst[off:off+8], math.Float64bits(s.Payload))
	binary.LittleEndian.PutUint64(dst[off+8:off+16], uint64(s.TimestampNanos))

	return dst
}

// DecodeSignal parses a fixed-size signal payload.
func DecodeSignal(src []byte) (schema.SignalEvent, bool) {
	if len(src) < SignalPayloadSize {
		return schema.SignalEvent{}, false
	}
	off := 4 + tagWidth
	return schema.SignalEvent{
		SymbolID:       schema.SymbolID(binary.LittleEndian.Uint32(src[0:4])),
		Kind:           getTag(src[4 : 4+tagWidth]),
		Payload:        math.Float64frombits(binary.LittleEndian.Uint64(src[off : off+8])),
		TimestampNanos: int64(binary.LittleEndian.Uint64(src[off+8 : off+16])),
	}, true
}
