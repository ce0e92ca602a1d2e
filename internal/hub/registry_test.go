package hub

import (
	"errors"
	"sync"
	"testing"

	pebblestore "github.com/travisdw72/onevault-api-sub007/internal/storage/pebble"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewRegistry(db)
}

func TestEnsureCreatesOnce(t *testing.T) {
	r := newTestRegistry(t)
	first, created, err := r.Ensure("agent", "t1", "A-1", "test")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !created {
		t.Fatalf("first ensure must create")
	}
	second, created, err := r.Ensure("agent", "t1", "A-1", "other")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if created {
		t.Fatalf("second ensure must not create")
	}
	if second.Key != first.Key || second.SourceTag != "test" {
		t.Fatalf("second ensure must return the original record: %+v", second)
	}
}

func TestLookupMissing(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := r.Lookup("agent", "t1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestEnsureConcurrentSingleRow(t *testing.T) {
	r := newTestRegistry(t)
	const n = 50
	keys := make([]Key, n)
	createdCount := make([]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ident, created, err := r.Ensure("agent", "t1", "NEW_1", "race")
			if err != nil {
				t.Errorf("ensure: %v", err)
				return
			}
			keys[i] = ident.Key
			createdCount[i] = created
		}(i)
	}
	wg.Wait()

	creators := 0
	for i := 1; i < n; i++ {
		if keys[i] != keys[0] {
			t.Fatalf("callers saw different keys: %s vs %s", keys[i], keys[0])
		}
	}
	for _, c := range createdCount {
		if c {
			creators++
		}
	}
	if creators != 1 {
		t.Fatalf("want exactly one creator, got %d", creators)
	}
}

func TestTenantsDeriveDistinctKeys(t *testing.T) {
	r := newTestRegistry(t)
	a, _, err := r.Ensure("agent", "t1", "A-1", "test")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	b, _, err := r.Ensure("agent", "t2", "A-1", "test")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if a.Key == b.Key {
		t.Fatalf("tenants must not share identity keys")
	}
}
