package satellite

import (
	"encoding/binary"
	"sync"

	pebblestore "github.com/travisdw72/onevault-api-sub007/internal/storage/pebble"
)

// Sequencer issues version sequence numbers: strictly increasing, globally
// unique, and never derived from wall-clock time. The last issued value is
// persisted under the sequencer meta key inside the same batch as the version
// row it numbers, so a committed row and the counter can never diverge.
type Sequencer struct {
	mu   sync.Mutex
	last uint64
}

// OpenSequencer loads the last issued sequence from meta (if any).
func OpenSequencer(db *pebblestore.DB) (*Sequencer, error) {
	s := &Sequencer{}
	meta, err := db.Get(KeySequencerMeta())
	if err == nil && len(meta) >= 8 {
		s.last = binary.BigEndian.Uint64(meta[:8])
	} else if err != nil && !pebblestore.IsNotFound(err) {
		return nil, err
	}
	return s, nil
}

// Last returns the most recently committed sequence.
func (s *Sequencer) Last() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Alloc reserves the next sequence and invokes commit with it. The counter
// only advances when commit succeeds, and the sequencer stays locked across
// the commit so persisted meta values are monotone: a later allocation can
// never land before an earlier one.
func (s *Sequencer) Alloc(commit func(seq uint64, meta []byte) error) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.last + 1
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], seq)
	if err := commit(seq, meta[:]); err != nil {
		return 0, err
	}
	s.last = seq
	return seq, nil
}
