package codec

import (
	"encoding/binary"

	"tradecore/internal/schema"
)

// OrderPayloadSize is the wire size of an Order event payload.
const OrderPayloadSize = 8 + 4 + 2 + 2 + 2 + 8 + 8 + 8 + 8

// EncodeOrder serializes an order intent into a fixed-size payload.
func EncodeOrder(dst []byte, o schema.OrderEvent) []byte {
	if cap(dst) < OrderPayloadSize {
		dst = make([]byte, OrderPayloadSize)
	} else {
		dst = dst[:OrderPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], uint64(o.OrderID))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(o.SymbolID))
	binary.LittleEndian.PutUint16(dst[12:14], uint16(o.Side))
	binary.LittleEndian.PutUint16(dst[14:16], uint16(o.Type))
	binary.LittleEndian.PutUint16(dst[16:18], uint16(o.Flags))
	binary.LittleEndian.PutUint64(dst[18:26], uint64(o.Price))
	binary.LittleEndian.PutUint64(dst[26:34], uint64(o.StopPrice))
	binary.LittleEndian.PutUint64(dst[34:42], uint64(o.Quantity))
	binary.LittleEndian.PutUint64(dst[42:50], uint64(o.TimestampNanos))

	return dst
}

// DecodeOrder parses a fixed-size order intent payload.
func DecodeOrder(src []byte) (schema.OrderEvent, bool) {
	if len(src) < OrderPayloadSize {
		return schema.OrderEvent{}, false
	}
	return schema.OrderEvent{
		OrderID:        schema.OrderID(binary.LittleEndian.Uint64(src[0:8])),
		SymbolID:       schema.SymbolID(binary.LittleEndian.Uint32(src[8:12])),
		Side:           schema.OrderSide(binary.LittleEndian.Uint16(src[12:14])),
		Type:           schema.OrderType(binary.LittleEndian.Uint16(src[14:16])),
		Flags:          schema.OrderFlag(binary.LittleEndian.Uint16(src[16:18])),
		Price:          schema.Price(int64(binary.LittleEndian.Uint64(src[18:26]))),
		StopPrice:      schema.Price(int64(binary.LittleEndian.Uint64(src[26:34]))),
		Quantity:       schema.Quantity(int64(binary.LittleEndian.Uint64(src[34:42]))),
		TimestampNanos: int64(binary.LittleEndian.Uint64(src[42:50])),
	}, true
}
