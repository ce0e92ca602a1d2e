package hub

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// KeySize is the size in bytes of a derived identity key.
const KeySize = sha256.Size

// MaxFieldBytes bounds each input field of DeriveKey.
const MaxFieldBytes = 1024

// Key is the derived identity of an entity: a SHA-256 digest over
// (entity type, tenant, business key). Keys order lexicographically and
// render as lowercase hex.
type Key [KeySize]byte

// Bytes returns the raw key bytes.
func (k Key) Bytes() []byte { b := make([]byte, KeySize); copy(b, k[:]); return b }

// String returns the lowercase hex encoding.
func (k Key) String() string { return hex.EncodeToString(k[:]) }

// IsZero reports whether the key is the zero value.
func (k Key) IsZero() bool { return k == Key{} }

// ParseKey decodes a lowercase hex key string.
func ParseKey(s string) (Key, error) {
	var k Key
	b, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("hub: invalid key %q: %w", s, err)
	}
	if len(b) != KeySize {
		return Key{}, fmt.Errorf("hub: invalid key length %d", len(b))
	}
	copy(k[:], b)
	return k, nil
}

// KeyFromBytes copies raw bytes into a Key.
func KeyFromBytes(b []byte) (Key, error) {
	var k Key
	if len(b) != KeySize {
		return Key{}, fmt.Errorf("hub: invalid key length %d", len(b))
	}
	copy(k[:], b)
	return k, nil
}

var errEmptyField = errors.New("hub: empty derive field")

// DeriveKey maps (entityType, tenantID, businessKey) to a Key. The derivation
// is pure: the same triple always yields the same key. Fields are joined with
// NUL separators so ("ab","c") and ("a","bc") cannot collide across field
// boundaries. Empty or oversized fields are rejected.
func DeriveKey(entityType, tenantID, businessKey string) (Key, error) {
	for _, f := range [...]string{entityType, tenantID, businessKey} {
		if f == "" {
			return Key{}, errEmptyField
		}
		if len(f) > MaxFieldBytes {
			return Key{}, fmt.Errorf("hub: derive field exceeds %d bytes", MaxFieldBytes)
		}
	}
	h := sha256.New()
	h.Write([]byte(entityType))
	h.Write([]byte{0})
	h.Write([]byte(tenantID))
	h.Write([]byte{0})
	h.Write([]byte(businessKey))
	var k Key
	copy(k[:], h.Sum(nil))
	return k, nil
}
