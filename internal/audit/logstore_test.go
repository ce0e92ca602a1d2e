package audit

import (
	"context"
	"testing"

	pebblestore "github.com/travisdw72/onevault-api-sub007/internal/storage/pebble"
)

func newTestLogStore(t *testing.T) *LogStore {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	s, err := OpenLogStore(db)
	if err != nil {
		t.Fatalf("open log store: %v", err)
	}
	return s
}

func TestEmitAndReadInOrder(t *testing.T) {
	s := newTestLogStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ev := testEvent()
		ev.NewSeq = uint64(i + 1)
		if err := s.Emit(ctx, ev); err != nil {
			t.Fatalf("emit %d: %v", i, err)
		}
	}

	entries, next, err := s.Read(ReadOptions{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("want 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Seq <= entries[i-1].Seq {
			t.Fatalf("entries out of order: %d then %d", entries[i-1].Seq, entries[i].Seq)
		}
	}
	if next != entries[len(entries)-1].Seq+1 {
		t.Fatalf("next should resume after last entry, got %d", next)
	}
}

func TestReadResumesFromStartSeq(t *testing.T) {
	s := newTestLogStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := s.Emit(ctx, testEvent()); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}
	first, next, err := s.Read(ReadOptions{Limit: 2})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("want 2 entries, got %d", len(first))
	}
	rest, _, err := s.Read(ReadOptions{StartSeq: next})
	if err != nil {
		t.Fatalf("read rest: %v", err)
	}
	if len(rest) != 3 {
		t.Fatalf("want 3 remaining entries, got %d", len(rest))
	}
	if rest[0].Seq != first[1].Seq+1 {
		t.Fatalf("resume gap: %d then %d", first[1].Seq, rest[0].Seq)
	}
}

func TestFilterMatchesFields(t *testing.T) {
	f, err := NewFilter(`tenant == "t1" && json.status == "STARTED"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ev := testEvent()
	ev.Payload = []byte(`{"status":"STARTED"}`)
	if !f.Match(Entry{Seq: 1, Event: ev}) {
		t.Fatalf("entry should match")
	}
	ev2 := ev
	ev2.TenantID = "t2"
	if f.Match(Entry{Seq: 2, Event: ev2}) {
		t.Fatalf("other tenant should not match")
	}
}

func TestEmptyFilterMatchesAll(t *testing.T) {
	f, err := NewFilter("  ")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !f.Match(Entry{}) {
		t.Fatalf("disabled filter must match everything")
	}
}

func TestLogStoreDurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	s, err := OpenLogStore(db)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Emit(context.Background(), testEvent()); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db2, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = db2.Close() })
	s2, err := OpenLogStore(db2)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if s2.LastSeq() != 1 {
		t.Fatalf("lastSeq must be restored, got %d", s2.LastSeq())
	}
	if err := s2.Emit(context.Background(), testEvent()); err != nil {
		t.Fatalf("emit after reopen: %v", err)
	}
	entries, _, err := s2.Read(ReadOptions{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 2 || entries[1].Seq != 2 {
		t.Fatalf("want 2 entries with seq 1,2: %+v", entries)
	}
}
