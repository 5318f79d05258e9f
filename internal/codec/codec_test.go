package codec

import (
	"testing"

	"tradecore/internal/schema"
)

func TestMarketRoundTrip(t *testing.T) {
	want := schema.MarketEvent{SymbolID: 3, Price: 10050, Quantity: 7, TimestampNanos: 42, BuyerInitiated: true}
	got, ok := DecodeMarket(EncodeMarket(nil, want))
	if !ok || got != want {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, want)
	}
}

func TestSignalRoundTrip(t *testing.T) {
	want := schema.SignalEvent{SymbolID: 1, Kind: "momentum", Payload: 0.75, TimestampNanos: 99}
	got, ok := DecodeSignal(EncodeSignal(nil, want))
	if !ok || got != want {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, want)
	}
}

func TestSignalKindTruncatesAtTagWidth(t *testing.T) {
	long := "this-kind-name-is-definitely-too-long-for-the-wire"
	want := schema.SignalEvent{Kind: long}
	got, ok := DecodeSignal(EncodeSignal(nil, want))
	if !ok {
		t.Fatalf("decode failed")
	}
	if len(got.Kind) != tagWidth {
		t.Fatalf("expected truncated kind of length %d, got %q", tagWidth, got.Kind)
	}
}

func TestOrderRoundTrip(t *testing.T) {
	want := schema.OrderEvent{
		OrderID: 5, SymbolID: 2, Side: schema.OrderSideBuy, Type: schema.OrderTypeLimit,
		Flags: schema.FlagIOC, Price: 100, StopPrice: 0, Quantity: 10, TimestampNanos: 1000,
	}
	got, ok := DecodeOrder(EncodeOrder(nil, want))
	if !ok || got != want {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, want)
	}
}

func TestFillRoundTrip(t *testing.T) {
	want := schema.FillEvent{OrderID: 5, SymbolID: 2, Side: schema.OrderSideSell, Price: 105, FilledQty: 4, RemainingQty: 6, TimestampNanos: 2000}
	got, ok := DecodeFill(EncodeFill(nil, want))
	if !ok || got != want {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, want)
	}
}

func TestCancelRoundTrip(t *testing.T) {
	want := schema.CancelEvent{OrderID: 5, SymbolID: 2, Reason: "ioc_unfilled_remainder", TimestampNanos: 3000}
	got, ok := DecodeCancel(EncodeCancel(nil, want))
	if !ok || got.OrderID != want.OrderID || got.SymbolID != want.SymbolID || got.TimestampNanos != want.TimestampNanos {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, want)
	}
	if got.Reason != want.Reason[:tagWidth] {
		t.Fatalf("expected reason truncated to %d bytes, got %q", tagWidth, got.Reason)
	}
}

func TestEncodeEventDispatchesByKind(t *testing.T) {
	ev := schema.NewFillEvent(schema.FillEvent{OrderID: 1, FilledQty: 3})
	buf := EncodeEvent(nil, ev)
	if len(buf) != FillPayloadSize {
		t.Fatalf("expected fill payload size %d, got %d", FillPayloadSize, len(buf))
	}
	decoded, ok := DecodeEvent(schema.EventKindFill, buf)
	if !ok || decoded.Fill.OrderID != 1 || decoded.Fill.FilledQty != 3 {
		t.Fatalf("unexpected decode: %+v", decoded)
	}
}
