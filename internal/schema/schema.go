package schema

// SchemaVersion is the current wire schema version stamped into every WAL
// record header.
const SchemaVersion uint16 = 1

// EventHeader is the fixed-size metadata prefixed to every event recorded
// to the write-ahead log. It is independent of the in-memory Event struct
// so the wire format can evolve without touching the hot dispatch path.
type EventHeader struct {
	Type    EventKind
	Version uint16
	Source  uint16
	Flags   uint16
	Seq     uint64
	TsEvent int64
	TsRecv  int64
	TraceID uint64
}

// NewHeader builds a header stamped with the current schema version.
func NewHeader(kind EventKind, source uint16, seq uint64, tsEvent, tsRecv int64) EventHeader {
	return EventHeader{
		Type:    kind,
		Version: SchemaVersion,
		Source:  source,
		Seq:     seq,
		TsEvent: tsEvent,
		TsRecv:  tsRecv,
	}
}
