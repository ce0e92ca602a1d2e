package satellite

import (
	"encoding/binary"

	"github.com/travisdw72/onevault-api-sub007/internal/hub"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - sat/{key32}/v/{seq_be8}  (version rows, ascending by version sequence)
// - sat/{key32}/c            (current pointer: seq_be8 of the open row)
// - seq/v                    (global version sequencer meta: last issued seq)

var (
	satPrefix  = []byte("sat/")
	verSeg     = []byte("/v/")
	curSuffix  = []byte("/c")
	seqMetaKey = []byte("seq/v")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// KeyVersion builds the version row key with a big-endian sequence so scan
// order equals version order.
func KeyVersion(key hub.Key, seq uint64) []byte {
	k := make([]byte, 0, len(satPrefix)+hub.KeySize+len(verSeg)+8)
	k = append(k, satPrefix...)
	k = append(k, key[:]...)
	k = append(k, verSeg...)
	k = appendBE8(k, seq)
	return k
}

// KeyCurrent builds the current-pointer key for an identity.
func KeyCurrent(key hub.Key) []byte {
	k := make([]byte, 0, len(satPrefix)+hub.KeySize+len(curSuffix))
	k = append(k, satPrefix...)
	k = append(k, key[:]...)
	k = append(k, curSuffix...)
	return k
}

// KeySequencerMeta returns the global sequencer meta key.
func KeySequencerMeta() []byte { return seqMetaKey }

// versionBounds returns the [low, high) iterator bounds covering every
// version row of one identity.
func versionBounds(key hub.Key) (low, high []byte) {
	low = KeyVersion(key, 0)
	high = append(KeyVersion(key, ^uint64(0)), 0x00)
	return low, high
}
