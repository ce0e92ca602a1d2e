package tenant

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/travisdw72/onevault-api-sub007/internal/storage/pebble"
)

// Meta holds tenant metadata and per-tenant limits.
type Meta struct {
	Name                string `json:"name"`
	CreatedAtMs         int64  `json:"createdAtMs"`
	PayloadMaxBytes     int    `json:"payloadMaxBytes"`
	BusinessKeyMaxBytes int    `json:"businessKeyMaxBytes"`
}

// Defaults returns opinionated defaults for new tenants.
func Defaults() Meta {
	return Meta{
		PayloadMaxBytes:     1 << 20, // 1 MiB
		BusinessKeyMaxBytes: 1 << 10, // 1 KiB
	}
}

var tenantMetaPrefix = []byte("tmeta/")

// metaKey builds the metadata key for a tenant.
func metaKey(name string) []byte {
	k := make([]byte, 0, len(tenantMetaPrefix)+len(name))
	k = append(k, tenantMetaPrefix...)
	k = append(k, name...)
	return k
}

// EnsureTenant creates a tenant meta record if absent, returning the
// effective meta. Idempotent: returns existing if already present.
func EnsureTenant(db *pebblestore.DB, name string, defaults Meta) (Meta, error) {
	key := metaKey(name)
	if b, err := db.Get(key); err == nil && len(b) > 0 {
		var m Meta
		if err := json.Unmarshal(b, &m); err == nil {
			return m, nil
		}
		// fallthrough to rewrite if corrupted
	}
	m := defaults
	m.Name = name
	m.CreatedAtMs = time.Now().UnixMilli()
	bytes, err := json.Marshal(m)
	if err != nil {
		return Meta{}, err
	}
	if err := db.Set(key, bytes); err != nil {
		return Meta{}, err
	}
	return m, nil
}

// GetTenant loads a tenant meta record. found is false when absent.
func GetTenant(db *pebblestore.DB, name string) (Meta, bool, error) {
	b, err := db.Get(metaKey(name))
	if err != nil {
		if pebblestore.IsNotFound(err) {
			return Meta{}, false, nil
		}
		return Meta{}, false, err
	}
	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return Meta{}, false, err
	}
	return m, true, nil
}

// ListTenants returns the names of all known tenants.
func ListTenants(db *pebblestore.DB) ([]string, error) {
	low := metaKey("")
	high := append(append([]byte(nil), tenantMetaPrefix...), 0xff)
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var names []string
	for ok := iter.First(); ok; ok = iter.Next() {
		names = append(names, string(iter.Key()[len(tenantMetaPrefix):]))
	}
	return names, nil
}
