package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"tradecore/internal/codec"
	"tradecore/internal/recorder"
	"tradecore/internal/schema"
)

func main() {
	dir := flag.String("dir", "testdata/wal", "WAL directory")
	prefix := flag.String("prefix", "", "WAL file prefix (default: wal)")
	speed := flag.Float64("speed", 0, "Playback speed (1=real-time, 0=no pacing)")
	useRecv := flag.Bool("use-recv-time", false, "Use receive timestamp for pacing")
	noChecksum := flag.Bool("no-checksum", false, "Disable checksum validation")
	maxPayload := flag.Int("max-payload", 0, "Max payload size in bytes (0=unlimited)")
	decode := flag.Bool("decode", false, "Decode known payload types")
	flag.Parse()

	cfg := recorder.PlaybackConfig{
		Dir:             *dir,
		FilePrefix:      *prefix,
		Speed:           *speed,
		UseRecvTime:     *useRecv,
		DisableChecksum: *noChecksum,
		MaxPayloadSize:  *maxPayload,
	}
	pb, err := recorder.NewPlayback(cfg)
	if err != nil {
		log.Fatalf("playback init failed: %v", err)
	}

	ctx := context.Background()
	var index int
	err = pb.Run(ctx, func(header schema.EventHeader, payload []byte) error {
		index++
		fmt.Printf("%06d seq=%d type=%s ts_event=%d ts_recv=%d len=%d\n", index, header.Seq, header.Type, header.TsEvent, header.TsRecv, len(payload))
		if *decode {
			printDecoded(header.Type, payload)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("playback run failed: %v", err)
	}
}

func printDecoded(kind schema.EventKind, payload []byte) {
	ev, ok := codec.DecodeEvent(kind, payload)
	if !ok {
		fmt.Printf("  decode %s failed\n", kind)
		return
	}
	switch kind {
	case schema.EventKindMarket:
		m := ev.Market
		fmt.Printf("  market symbol=%d price=%d qty=%d buyer_initiated=%t\n", m.SymbolID, m.Price, m.Quantity, m.BuyerInitiated)
	case schema.EventKindSignal:
		s := ev.Signal
		fmt.Printf("  signal symbol=%d kind=%s payload=%g\n", s.SymbolID, s.Kind, s.Payload)
	case schema.EventKindOrder:
		o := ev.Order
		fmt.Printf("  order id=%d symbol=%d side=%s type=%s price=%d stop=%d qty=%d flags=%d\n",
			o.OrderID, o.SymbolID, o.Side, o.Type, o.Price, o.StopPrice, o.Quantity, o.Flags)
	case schema.EventKindFill:
		f := ev.Fill
		fmt.Printf("  fill id=%d symbol=%d side=%s price=%d filled=%d remaining=%d\n",
			f.OrderID, f.SymbolID, f.Side, f.Price, f.FilledQty, f.RemainingQty)
	case schema.EventKindCancel:
		c := ev.Cancel
		fmt.Printf("  cancel id=%d symbol=%d reason=%s\n", c.OrderID, c.SymbolID, c.Reason)
	}
}
