package codec

import "tradecore/internal/schema"

// PayloadSize returns the wire size of an event's payload for its kind, or
// 0 for a kind with no registered codec.
func PayloadSize(kind schema.EventKind) int {
	switch kind {
	case schema.EventKindMarket:
		return MarketPayloadSize
	case schema.EventKindSignal:
		return SignalPayloadSize
	case schema.EventKindOrder:
		return OrderPayloadSize
	case schema.EventKindFill:
		return FillPayloadSize
	case schema.EventKindCancel:
		return CancelPayloadSize
	default:
		return 0
	}
}

// EncodeEvent serializes an event's payload according to its Kind.
func EncodeEvent(dst []byte, ev schema.Event) []byte {
	switch ev.Kind {
	case schema.EventKindMarket:
		return EncodeMarket(dst, ev.Market)
	case schema.EventKindSignal:
		return EncodeSignal(dst, ev.Signal)
	case schema.EventKindOrder:
		return EncodeOrder(dst, ev.Order)
	case schema.EventKindFill:
		return EncodeFill(dst, ev.Fill)
	case schema.EventKindCancel:
		return EncodeCancel(dst, ev.Cancel)
	default:
		return dst[:0]
	}
}

// DecodeEvent parses a payload back into an Event given its Kind.
func DecodeEvent(kind schema.EventKind, src []byte) (schema.Event, bool) {
	switch kind {
	case schema.EventKindMarket:
		m, ok := DecodeMarket(src)
		return schema.NewMarketEvent(m), ok
	case schema.EventKindSignal:
		s, ok := DecodeSignal(src)
		return schema.NewSignalEvent(s), ok
	case schema.EventKindOrder:
		o, ok := DecodeOrder(src)
		return schema.NewOrderEvent(o), ok
	case schema.EventKindFill:
		f, ok := DecodeFill(src)
		return schema.NewFillEvent(f), ok
	case schema.EventKindCancel:
		c, ok := DecodeCancel(src)
		return schema.NewCancelEvent(c), ok
	default:
		return schema.Event{}, false
	}
}
