package codec

import (
	"encoding/binary"

	"tradecore/internal/schema"
)

// CancelPayloadSize is the wire size of a Cancel event payload.
const CancelPayloadSize = 8 + 4 + tagWidth + 8

// EncodeCancel serializes a cancel into a fixed-size payload.
func EncodeCancel(dst []byte, c schema.CancelEvent) []byte {
	if cap(dst) < CancelPayloadSize {
		dst = make([]byte, CancelPayloadSize)
	} else {
		dst = dst[:CancelPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], uint64(c.OrderID))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(c.SymbolID))
	putTag(dst[12:12+tagWidth], c.Reason)
	off := 12 + tagWidth
	binary.LittleEndian.PutUint64(dst[off:off+8], uint64(c.TimestampNanos))

	return dst
}

// DecodeCancel parses a fixed-size cancel payload.
func DecodeCancel(src []byte) (schema.CancelEvent, bool) {
	if len(src) < CancelPayloadSize {
		return schema.CancelEvent{}, false
	}
	off := 12 + tagWidth
	return schema.CancelEvent{
		OrderID:        schema.OrderID(binary.LittleEndian.Uint64(src[0:8])),
		SymbolID:       schema.SymbolID(binary.LittleEndian.Uint32(src[8:12])),
		Reason:         getTag(src[12 : 12+tagWidth]),
		TimestampNanos: int64(binary.LittleEndian.Uint64(src[off : off+8])),
	}, true
}
