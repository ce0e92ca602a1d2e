package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	pebblestore "github.com/travisdw72/onevault-api-sub007/internal/storage/pebble"
)

// ErrNotFound is returned when no identity exists for a lookup.
var ErrNotFound = errors.New("hub: identity not found")

// Identity is the immutable record establishing that an entity exists for a
// tenant. It is created at most once per (entityType, tenantID, businessKey)
// and never mutated or deleted afterwards.
type Identity struct {
	Key         Key    `json:"-"`
	EntityType  string `json:"entityType"`
	TenantID    string `json:"tenantId"`
	BusinessKey string `json:"businessKey"`
	CreatedAtMs int64  `json:"createdAtMs"`
	SourceTag   string `json:"sourceTag"`
}

var hubPrefix = []byte("hub/k/")

// keyFor builds the pebble key for an identity record.
func keyFor(k Key) []byte {
	out := make([]byte, 0, len(hubPrefix)+KeySize)
	out = append(out, hubPrefix...)
	out = append(out, k[:]...)
	return out
}

// Registry is the append-only identity registry backed by Pebble.
type Registry struct {
	db *pebblestore.DB

	// mu serializes concurrent Ensure calls so racing creators observe
	// insert-if-absent semantics rather than overwriting each other.
	mu sync.Mutex

	nowMs func() int64
}

// NewRegistry returns a Registry over db.
func NewRegistry(db *pebblestore.DB) *Registry {
	return &Registry{db: db, nowMs: func() int64 { return time.Now().UnixMilli() }}
}

// Ensure creates the identity for the triple if absent and returns it.
// created reports whether this call performed the insert; a concurrent or
// earlier creator is a benign outcome, not an error.
func (r *Registry) Ensure(entityType, tenantID, businessKey, sourceTag string) (Identity, bool, error) {
	key, err := DeriveKey(entityType, tenantID, businessKey)
	if err != nil {
		return Identity{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, err := r.get(key); err == nil {
		return existing, false, nil
	} else if !pebblestore.IsNotFound(err) {
		return Identity{}, false, err
	}

	ident := Identity{
		Key:         key,
		EntityType:  entityType,
		TenantID:    tenantID,
		BusinessKey: businessKey,
		CreatedAtMs: r.nowMs(),
		SourceTag:   sourceTag,
	}
	b, err := json.Marshal(ident)
	if err != nil {
		return Identity{}, false, err
	}
	if err := r.db.Set(keyFor(key), b); err != nil {
		return Identity{}, false, err
	}
	return ident, true, nil
}

// Lookup resolves the identity for a business triple. Returns ErrNotFound if
// the entity was never written.
func (r *Registry) Lookup(entityType, tenantID, businessKey string) (Identity, error) {
	key, err := DeriveKey(entityType, tenantID, businessKey)
	if err != nil {
		return Identity{}, err
	}
	return r.Get(key)
}

// Get loads an identity by its derived key. Returns ErrNotFound when absent.
func (r *Registry) Get(key Key) (Identity, error) {
	ident, err := r.get(key)
	if pebblestore.IsNotFound(err) {
		return Identity{}, ErrNotFound
	}
	return ident, err
}

func (r *Registry) get(key Key) (Identity, error) {
	b, err := r.db.Get(keyFor(key))
	if err != nil {
		return Identity{}, err
	}
	var ident Identity
	if err := json.Unmarshal(b, &ident); err != nil {
		return Identity{}, err
	}
	ident.Key = key
	return ident, nil
}
