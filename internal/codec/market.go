package codec

import (
	"encoding/binary"

	"tradecore/internal/schema"
)

// MarketPayloadSize is the wire size of a Market event payload. The raw
// Symbol string is not carried on the wire; only the dense SymbolID is
// durable, resolved back to a name via the symbol registry on replay.
const MarketPayloadSize = 29

// EncodeMarket serializes a market tick into a fixed-size payload.
func EncodeMarket(dst []byte, m schema.MarketEvent) []byte {
	if cap(dst) < MarketPayloadSize {
		dst = make([]byte, MarketPayloadSize)
	} else {
		dst = dst[:MarketPayloadSize]
	}

	binary.LittleEndian.PutUint32(dst[0:4], uint32(m.SymbolID))
	binary.LittleEndian.PutUint64(dst[4:12], uint64(m.Price))
	binary.LittleEndian.PutUint64(dst[12:20], uint64(m.Quantity))
	binary.LittleEndian.PutUint64(dst[20:28], uint64(m.TimestampNanos))
	if m.BuyerInitiated {
		dst[28] = 1
	} else {
		dst[28] = 0
	}

	return dst
}

// DecodeMarket parses a fixed-size market tick payload.
func DecodeMarket(src []byte) (schema.MarketEvent, bool) {
	if len(src) < MarketPayloadSize {
		return schema.MarketEvent{}, false
	}
	return schema.MarketEvent{
		SymbolID:       schema.SymbolID(binary.LittleEndian.Uint32(src[0:4])),
		Price:          schema.Price(int64(binary.LittleEndian.Uint64(src[4:12]))),
		Quantity:       schema.Quantity(int64(binary.LittleEndian.Uint64(src[12:20]))),
		TimestampNanos: int64(binary.LittleEndian.Uint64(src[20:28])),
		BuyerInitiated: src[28] != 0,
	}, true
}
