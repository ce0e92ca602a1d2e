package satellite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/travisdw72/onevault-api-sub007/internal/hub"
	pebblestore "github.com/travisdw72/onevault-api-sub007/internal/storage/pebble"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	s, err := Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func testKey(t *testing.T, businessKey string) hub.Key {
	t.Helper()
	k, err := hub.DeriveKey("script_execution", "t1", businessKey)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	return k
}

func TestFirstAppendCreatesOpenRow(t *testing.T) {
	s := newTestStore(t)
	key := testKey(t, "BUILD_42")
	ctx := context.Background()

	res, err := s.Append(ctx, key, []byte(`{"status":"STARTED"}`), "alice", "ci")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if !res.Changed {
		t.Fatalf("first append must change")
	}
	if res.Version.Seq != 1 {
		t.Fatalf("want seq 1, got %d", res.Version.Seq)
	}
	cur, err := s.Current(key)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if !cur.Current() || cur.Seq != res.Version.Seq {
		t.Fatalf("current mismatch: %+v", cur)
	}
}

func TestNoOpOnIdenticalPayload(t *testing.T) {
	s := newTestStore(t)
	key := testKey(t, "BUILD_42")
	ctx := context.Background()

	first, err := s.Append(ctx, key, []byte(`{"status":"STARTED"}`), "alice", "ci")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	// Different formatting of the same document must still be a no-op.
	second, err := s.Append(ctx, key, []byte(`{ "status" : "STARTED" }`), "bob", "ci")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if second.Changed {
		t.Fatalf("identical payload must be a no-op")
	}
	if second.Version.Seq != first.Version.Seq {
		t.Fatalf("no-op must return current seq %d, got %d", first.Version.Seq, second.Version.Seq)
	}
	versions, err := s.History(key, HistoryOptions{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("no-op must not add rows, got %d", len(versions))
	}
}

func TestChangedAppendClosesPredecessor(t *testing.T) {
	s := newTestStore(t)
	key := testKey(t, "BUILD_42")
	ctx := context.Background()

	if _, err := s.Append(ctx, key, []byte(`{"status":"STARTED"}`), "alice", "ci"); err != nil {
		t.Fatalf("append: %v", err)
	}
	res, err := s.Append(ctx, key, []byte(`{"status":"COMPLETED"}`), "alice", "ci")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if !res.Changed || res.Version.Seq != 2 {
		t.Fatalf("want changed seq 2, got %+v", res)
	}

	versions, err := s.History(key, HistoryOptions{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("want 2 rows, got %d", len(versions))
	}
	if versions[0].EffectiveEndMs == 0 {
		t.Fatalf("predecessor must be closed")
	}
	if versions[1].EffectiveEndMs != 0 {
		t.Fatalf("successor must be open")
	}
	if open, _ := s.CountOpen(key); open != 1 {
		t.Fatalf("want exactly one open row, got %d", open)
	}
}

func TestAppendReportsClosedPredecessorSeq(t *testing.T) {
	s := newTestStore(t)
	key := testKey(t, "BUILD_42")
	ctx := context.Background()

	first, err := s.Append(ctx, key, []byte(`{"status":"STARTED"}`), "alice", "ci")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.PrevSeq != 0 {
		t.Fatalf("first append has no predecessor, got %d", first.PrevSeq)
	}
	second, err := s.Append(ctx, key, []byte(`{"status":"COMPLETED"}`), "alice", "ci")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if second.PrevSeq != first.Version.Seq {
		t.Fatalf("want predecessor seq %d, got %d", first.Version.Seq, second.PrevSeq)
	}
}

func TestConcurrentAppendsMonotonicAndSingleCurrent(t *testing.T) {
	s := newTestStore(t)
	key := testKey(t, "NEW_1")
	ctx := context.Background()

	const n = 50
	seqs := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := []byte(`{"writer":` + itoa(i) + `}`)
			res, err := s.Append(ctx, key, payload, "writer", "test")
			if err != nil {
				t.Errorf("append: %v", err)
				return
			}
			if res.Changed {
				seqs <- res.Version.Seq
			}
		}(i)
	}
	wg.Wait()
	close(seqs)

	seen := map[uint64]bool{}
	for seq := range seqs {
		if seen[seq] {
			t.Fatalf("duplicate seq %d", seq)
		}
		seen[seq] = true
	}
	if len(seen) != n {
		t.Fatalf("want %d distinct seqs, got %d", n, len(seen))
	}
	if open, _ := s.CountOpen(key); open != 1 {
		t.Fatalf("want exactly one open row, got %d", open)
	}

	// Sequence order must be total per identity.
	versions, err := s.History(key, HistoryOptions{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for i := 1; i < len(versions); i++ {
		if versions[i].Seq <= versions[i-1].Seq {
			t.Fatalf("non-increasing seqs: %d then %d", versions[i-1].Seq, versions[i].Seq)
		}
	}
}

func TestSequencerNotWallClock(t *testing.T) {
	s := newTestStore(t)
	// Freeze time: every append lands in the same millisecond bucket. The
	// sequencer must still issue distinct numbers.
	s.nowMs = func() int64 { return 1700000000000 }
	ctx := context.Background()
	key := testKey(t, "SAME_MS")

	for i := 0; i < 5; i++ {
		res, err := s.Append(ctx, key, []byte(`{"i":`+itoa(i)+`}`), "a", "t")
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if res.Version.Seq != uint64(i+1) {
			t.Fatalf("want seq %d, got %d", i+1, res.Version.Seq)
		}
	}
}

func TestAsOfBetweenVersions(t *testing.T) {
	s := newTestStore(t)
	key := testKey(t, "BUILD_42")
	ctx := context.Background()

	now := int64(1_700_000_000_000)
	s.nowMs = func() int64 { return now }
	if _, err := s.Append(ctx, key, []byte(`{"v":1}`), "a", "t"); err != nil {
		t.Fatalf("append: %v", err)
	}
	now += 1000
	if _, err := s.Append(ctx, key, []byte(`{"v":2}`), "a", "t"); err != nil {
		t.Fatalf("append: %v", err)
	}
	now += 1000
	if _, err := s.Append(ctx, key, []byte(`{"v":3}`), "a", "t"); err != nil {
		t.Fatalf("append: %v", err)
	}

	cases := []struct {
		atMs    int64
		wantSeq uint64
	}{
		{1_700_000_000_000, 1},
		{1_700_000_000_500, 1},
		{1_700_000_001_000, 2},
		{1_700_000_001_999, 2},
		{1_700_000_002_000, 3},
		{1_700_000_999_999, 3},
	}
	for _, tc := range cases {
		got, err := s.AsOf(key, time.UnixMilli(tc.atMs))
		if err != nil {
			t.Fatalf("as_of(%d): %v", tc.atMs, err)
		}
		if got.Seq != tc.wantSeq {
			t.Fatalf("as_of(%d): want seq %d, got %d", tc.atMs, tc.wantSeq, got.Seq)
		}
	}

	// Before the first version: nothing existed.
	if _, err := s.AsOf(key, time.UnixMilli(1_699_999_999_999)); !errors.Is(err, ErrNoVersions) {
		t.Fatalf("want ErrNoVersions before first write, got %v", err)
	}
}

func TestAsOfSameMillisecondSuccessorWins(t *testing.T) {
	s := newTestStore(t)
	key := testKey(t, "SAME_MS")
	ctx := context.Background()
	s.nowMs = func() int64 { return 1_700_000_000_000 }

	if _, err := s.Append(ctx, key, []byte(`{"v":1}`), "a", "t"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := s.Append(ctx, key, []byte(`{"v":2}`), "a", "t"); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.AsOf(key, time.UnixMilli(1_700_000_000_000))
	if err != nil {
		t.Fatalf("as_of: %v", err)
	}
	if got.Seq != 2 {
		t.Fatalf("zero-width predecessor must lose to successor, got seq %d", got.Seq)
	}
}

func TestSequencerDurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	s, err := Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	key := testKey(t, "DUR_1")
	ctx := context.Background()
	res, err := s.Append(ctx, key, []byte(`{"v":1}`), "a", "t")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db2, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("reopen pebble: %v", err)
	}
	t.Cleanup(func() { _ = db2.Close() })
	s2, err := Open(db2)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	res2, err := s2.Append(ctx, key, []byte(`{"v":2}`), "a", "t")
	if err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	if res2.Version.Seq <= res.Version.Seq {
		t.Fatalf("seq must keep increasing across reopen: %d then %d", res.Version.Seq, res2.Version.Seq)
	}
}

func TestDigestRejectsNonJSON(t *testing.T) {
	if _, err := Digest([]byte("not json")); err == nil {
		t.Fatalf("want error for non-JSON payload")
	}
	d1, err := Digest([]byte(`{"a":1,"b":2}`))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	d2, err := Digest([]byte(`{"b":2,"a":1}`))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("key order must not affect digest")
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	bp := len(buf)
	for i > 0 {
		bp--
		buf[bp] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[bp:])
}
