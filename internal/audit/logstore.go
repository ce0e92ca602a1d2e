package audit

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"sync"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/travisdw72/onevault-api-sub007/internal/storage/pebble"
)

// LogStore is an append-only audit trail persisted in Pebble, usable as a
// Bridge sink. Entries are numbered by a dedicated counter so tail reads can
// resume from a durable position.
//
// Keys:
//   - audit/m           (meta: last entry seq)
//   - audit/e/{seq_be8} (entries: event JSON | crc32c)
type LogStore struct {
	db *pebblestore.DB

	mu      sync.Mutex
	lastSeq uint64
}

var (
	auditMetaKey    = []byte("audit/m")
	auditEntrySeg   = []byte("audit/e/")
	auditCastagnoli = crc32.MakeTable(crc32.Castagnoli)
)

func auditEntryKey(seq uint64) []byte {
	k := make([]byte, 0, len(auditEntrySeg)+8)
	k = append(k, auditEntrySeg...)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return append(k, b[:]...)
}

// OpenLogStore initializes a LogStore and loads the last entry seq from meta.
func OpenLogStore(db *pebblestore.DB) (*LogStore, error) {
	s := &LogStore{db: db}
	meta, err := db.Get(auditMetaKey)
	if err == nil && len(meta) >= 8 {
		s.lastSeq = binary.BigEndian.Uint64(meta[:8])
	} else if err != nil && !pebblestore.IsNotFound(err) {
		return nil, err
	}
	return s, nil
}

// Name returns "store".
func (s *LogStore) Name() string { return "store" }

// Emit appends the event to the audit log as a single atomic batch.
func (s *LogStore) Emit(ctx context.Context, ev ChangeEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	val := make([]byte, 0, len(body)+4)
	val = append(val, body...)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc32.Checksum(body, auditCastagnoli))
	val = append(val, crcb[:]...)

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.db.NewBatch()
	defer b.Close()

	seq := s.lastSeq + 1
	if err := b.Set(auditEntryKey(seq), val, nil); err != nil {
		return err
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], seq)
	if err := b.Set(auditMetaKey, meta[:], nil); err != nil {
		return err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return err
	}
	s.lastSeq = seq
	return nil
}

// Entry is one stored audit record with its log position.
type Entry struct {
	Seq   uint64      `json:"seq"`
	Event ChangeEvent `json:"event"`
}

// ReadOptions controls Read scans.
type ReadOptions struct {
	// StartSeq is the first entry to return (inclusive); zero starts at the
	// beginning.
	StartSeq uint64
	// Limit bounds the number of entries; zero means no bound.
	Limit int
}

// Read returns entries in log order starting at StartSeq, plus the seq to
// resume from on the next call.
func (s *LogStore) Read(opts ReadOptions) ([]Entry, uint64, error) {
	low := auditEntryKey(0)
	high := append(auditEntryKey(^uint64(0)), 0x00)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return nil, 0, err
	}
	defer iter.Close()

	entries := make([]Entry, 0, 16)
	ok := iter.First()
	if opts.StartSeq > 0 {
		ok = iter.SeekGE(auditEntryKey(opts.StartSeq))
	}
	var next uint64
	for ; ok; ok = iter.Next() {
		if opts.Limit > 0 && len(entries) >= opts.Limit {
			break
		}
		seq := binary.BigEndian.Uint64(iter.Key()[len(auditEntrySeg):])
		val := iter.Value()
		if len(val) < 4 {
			continue
		}
		body := val[:len(val)-4]
		if crc32.Checksum(body, auditCastagnoli) != binary.BigEndian.Uint32(val[len(val)-4:]) {
			continue
		}
		var ev ChangeEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			continue
		}
		entries = append(entries, Entry{Seq: seq, Event: ev})
		next = seq + 1
	}
	return entries, next, nil
}

// LastSeq returns the most recently committed entry seq.
func (s *LogStore) LastSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq
}
