package satellite

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/travisdw72/onevault-api-sub007/internal/hub"
	pebblestore "github.com/travisdw72/onevault-api-sub007/internal/storage/pebble"
)

// ErrNoVersions is returned when an identity has no version satisfying a read.
var ErrNoVersions = errors.New("satellite: no version found")

// Version is one historical snapshot of an entity's attributes. Rows are
// immutable once written except for the effective-end marker, which is set
// exactly once when the row stops being current.
type Version struct {
	Key              hub.Key
	Seq              uint64
	EffectiveStartMs int64
	// EffectiveEndMs is zero while the row is current.
	EffectiveEndMs int64
	Digest         string
	Payload        []byte
	Actor          string
	SourceTag      string
}

// Current reports whether the row is the open (current) one.
func (v Version) Current() bool { return v.EffectiveEndMs == 0 }

// AppendResult is the outcome of an Append call.
type AppendResult struct {
	// Changed is false when the payload digest matched the current row and
	// nothing was written.
	Changed bool
	Version Version
	// PrevSeq is the seq of the row closed by this append, or zero when the
	// identity had no versions. It is read under the per-identity lock, so it
	// is exact even with concurrent writers.
	PrevSeq uint64
}

// Store persists version rows for identities. All writes for one identity are
// serialized by a per-identity lock and committed as a single atomic batch
// (close old row, insert new row, advance current pointer, advance sequencer
// meta), so observers never see a closed row without its successor.
type Store struct {
	db    *pebblestore.DB
	seq   *Sequencer
	locks *lockTable

	nowMs func() int64
}

// Open initializes a Store and loads sequencer state.
func Open(db *pebblestore.DB) (*Store, error) {
	seq, err := OpenSequencer(db)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:    db,
		seq:   seq,
		locks: newLockTable(),
		nowMs: func() int64 { return time.Now().UnixMilli() },
	}, nil
}

// Sequencer exposes the store's version sequencer.
func (s *Store) Sequencer() *Sequencer { return s.seq }

// Append records payload as the new current version of key unless its digest
// matches the current row, in which case no row is written and the existing
// version is returned with Changed=false.
func (s *Store) Append(ctx context.Context, key hub.Key, payload []byte, actor, sourceTag string) (AppendResult, error) {
	digest, err := Digest(payload)
	if err != nil {
		return AppendResult{}, err
	}

	m := s.locks.lock(key)
	defer m.Unlock()

	cur, err := s.Current(key)
	hasCurrent := err == nil
	if err != nil && !errors.Is(err, ErrNoVersions) {
		return AppendResult{}, err
	}
	if hasCurrent && cur.Digest == digest {
		return AppendResult{Changed: false, Version: cur}, nil
	}

	now := s.nowMs()
	var newVersion Version
	_, err = s.seq.Alloc(func(seq uint64, seqMeta []byte) error {
		b := s.db.NewBatch()
		defer b.Close()

		if hasCurrent {
			closed := cur
			closed.EffectiveEndMs = now
			closedRow, err := encodeRow(headerOf(closed), closed.Payload)
			if err != nil {
				return err
			}
			if err := b.Set(KeyVersion(key, cur.Seq), closedRow, nil); err != nil {
				return err
			}
		}

		newVersion = Version{
			Key:              key,
			Seq:              seq,
			EffectiveStartMs: now,
			Digest:           digest,
			Payload:          append([]byte(nil), payload...),
			Actor:            actor,
			SourceTag:        sourceTag,
		}
		row, err := encodeRow(headerOf(newVersion), newVersion.Payload)
		if err != nil {
			return err
		}
		if err := b.Set(KeyVersion(key, seq), row, nil); err != nil {
			return err
		}

		var ptr [8]byte
		binary.BigEndian.PutUint64(ptr[:], seq)
		if err := b.Set(KeyCurrent(key), ptr[:], nil); err != nil {
			return err
		}
		if err := b.Set(KeySequencerMeta(), seqMeta, nil); err != nil {
			return err
		}
		return s.db.CommitBatch(ctx, b)
	})
	if err != nil {
		return AppendResult{}, err
	}
	res := AppendResult{Changed: true, Version: newVersion}
	if hasCurrent {
		res.PrevSeq = cur.Seq
	}
	return res, nil
}

// Current returns the open row for key, or ErrNoVersions.
func (s *Store) Current(key hub.Key) (Version, error) {
	ptr, err := s.db.Get(KeyCurrent(key))
	if err != nil {
		if pebblestore.IsNotFound(err) {
			return Version{}, ErrNoVersions
		}
		return Version{}, err
	}
	if len(ptr) < 8 {
		return Version{}, ErrNoVersions
	}
	return s.version(key, binary.BigEndian.Uint64(ptr[:8]))
}

// AsOf returns the row whose [effectiveStart, effectiveEnd) interval contains
// the given instant; the open row covers [effectiveStart, now).
func (s *Store) AsOf(key hub.Key, at time.Time) (Version, error) {
	atMs := at.UnixMilli()
	low, high := versionBounds(key)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return Version{}, err
	}
	defer iter.Close()

	// Newest-first: version order equals time order, and a closed row whose
	// interval collapsed to zero width (same-millisecond successor) must lose
	// to that successor.
	for ok := iter.Last(); ok; ok = iter.Prev() {
		h, payload, valid := decodeRow(iter.Value())
		if !valid {
			continue
		}
		if h.EffectiveStartMs > atMs {
			continue
		}
		if h.EffectiveEndMs != 0 && atMs >= h.EffectiveEndMs {
			// Versions before this one ended even earlier.
			break
		}
		return versionFrom(key, h, payload), nil
	}
	return Version{}, ErrNoVersions
}

// HistoryOptions controls History scans.
type HistoryOptions struct {
	// Limit bounds the number of rows returned; zero means no bound.
	Limit int
	// Reverse returns newest rows first.
	Reverse bool
}

// History returns the version rows of an identity in sequence order.
func (s *Store) History(key hub.Key, opts HistoryOptions) ([]Version, error) {
	low, high := versionBounds(key)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	out := make([]Version, 0, 8)
	advance := iter.Next
	ok := iter.First()
	if opts.Reverse {
		advance = iter.Prev
		ok = iter.Last()
	}
	for ; ok; ok = advance() {
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
		h, payload, valid := decodeRow(iter.Value())
		if !valid {
			continue
		}
		out = append(out, versionFrom(key, h, payload))
	}
	return out, nil
}

// CountOpen returns how many rows of an identity have no effective end. The
// invariant is 0 (never written) or 1; anything else indicates corruption.
func (s *Store) CountOpen(key hub.Key) (int, error) {
	versions, err := s.History(key, HistoryOptions{})
	if err != nil {
		return 0, err
	}
	open := 0
	for _, v := range versions {
		if v.Current() {
			open++
		}
	}
	return open, nil
}

func (s *Store) version(key hub.Key, seq uint64) (Version, error) {
	b, err := s.db.Get(KeyVersion(key, seq))
	if err != nil {
		if pebblestore.IsNotFound(err) {
			return Version{}, ErrNoVersions
		}
		return Version{}, err
	}
	h, payload, valid := decodeRow(b)
	if !valid {
		return Version{}, errors.New("satellite: corrupt version row")
	}
	return versionFrom(key, h, payload), nil
}

func headerOf(v Version) rowHeader {
	return rowHeader{
		Seq:              v.Seq,
		EffectiveStartMs: v.EffectiveStartMs,
		EffectiveEndMs:   v.EffectiveEndMs,
		Digest:           v.Digest,
		Actor:            v.Actor,
		SourceTag:        v.SourceTag,
	}
}

func versionFrom(key hub.Key, h rowHeader, payload []byte) Version {
	return Version{
		Key:              key,
		Seq:              h.Seq,
		EffectiveStartMs: h.EffectiveStartMs,
		EffectiveEndMs:   h.EffectiveEndMs,
		Digest:           h.Digest,
		Payload:          payload,
		Actor:            h.Actor,
		SourceTag:        h.SourceTag,
	}
}
