/*
WAL records the dispatcher's event stream in an append-only log.

# Module
  - writer: frames and appends events, one header+payload record per event
  - reader: replays a log back into the recorder for deterministic re-runs

# Source
  - market ticks, signals, orders, fills and cancels from internal/engine

# Produce
  - none

# Sharded
  - none
*/
package wal
