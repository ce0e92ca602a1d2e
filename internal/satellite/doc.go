// Package satellite implements the versioned half of OneVault's hub/satellite
// model: an append-only store of immutable version rows per identity.
//
// Keys are lexicographically ordered for efficient range scans:
//   - sat/{key32}/v/{seq_be8} (version rows)
//   - sat/{key32}/c           (current pointer)
//   - seq/v                   (global sequencer meta: last issued seq)
//
// Rows are stored as: varint headerLen | header JSON | payload | crc32c.
//
// Exactly one row per identity is open (effective end unset) once the
// identity has been written. A write whose payload digest matches the open
// row is a no-op. A changed write closes the open row and inserts its
// successor in one atomic batch, numbered by a persisted counter rather than
// wall-clock time, so concurrent writes in the same timestamp granularity can
// never collide.
package satellite
