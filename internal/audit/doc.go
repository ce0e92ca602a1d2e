// Package audit provides the best-effort change-event channel. The Bridge
// delivers events to a pluggable Sink under a bounded timeout; sink failures
// are logged and absorbed, never propagated to the write path. The LogStore
// sink persists events as an append-only trail in Pebble for tail reads.
package audit
