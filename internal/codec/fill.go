package codec

import (
	"encoding/binary"

	"tradecore/internal/schema"
)

// FillPayloadSize is the wire size of a Fill event payload.
const FillPayloadSize = 8 + 4 + 2 + 8 + 8 + 8 + 8

// EncodeFill serializes a fill into a fixed-size payload.
func EncodeFill(dst []byte, fill schema.FillEvent) []byte {
	if cap(dst) < FillPayloadSize {
		dst = make([]byte, FillPayloadSize)
	} else {
		dst = dst[:FillPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], uint64(fill.OrderID))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(fill.SymbolID))
	binary.LittleEndian.PutUint16(dst[12:14], uint16(fill.Side))
	binary.LittleEndian.PutUint64(dst[14:22], uint64(fill.Price))
	binary.LittleEndian.PutUint64(dst[22:30], uint64(fill.FilledQty))
	binary.LittleEndian.PutUint64(dst[30:38], uint64(fill.RemainingQty))
	binary.LittleEndian.PutUint64(dst[38:46], uint64(fill.TimestampNanos))

	return dst
}

// DecodeFill parses a fixed-size fill payload.
func DecodeFill(src []byte) (schema.FillEvent, bool) {
	if len(src) < FillPayloadSize {
		return schema.FillEvent{}, false
	}
	return schema.FillEvent{
		OrderID:        schema.OrderID(binary.LittleEndian.Uint64(src[0:8])),
		SymbolID:       schema.SymbolID(binary.LittleEndian.Uint32(src[8:12])),
		Side:           schema.OrderSide(binary.LittleEndian.Uint16(src[12:14])),
		Price:          schema.Price(int64(binary.LittleEndian.Uint64(src[14:22]))),
		FilledQty:      schema.Quantity(int64(binary.LittleEndian.Uint64(src[22:30]))),
		RemainingQty:   schema.Quantity(int64(binary.LittleEndian.Uint64(src[30:38]))),
		TimestampNanos: int64(binary.LittleEndian.Uint64(src[38:46])),
	}, true
}
