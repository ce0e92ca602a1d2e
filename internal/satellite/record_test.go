package satellite

import (
	"bytes"
	"testing"

	"github.com/travisdw72/onevault-api-sub007/internal/hub"
)

func TestRowCodecRoundTrip(t *testing.T) {
	h := rowHeader{Seq: 7, EffectiveStartMs: 123, Digest: "abc", Actor: "alice", SourceTag: "ci"}
	payload := []byte(`{"status":"STARTED"}`)
	row, err := encodeRow(h, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, gotPayload, ok := decodeRow(row)
	if !ok {
		t.Fatalf("decode failed")
	}
	if got != h {
		t.Fatalf("header mismatch: %+v vs %+v", got, h)
	}
	if !bytes.Equal(gotPayload, payload) {
		t.Fatalf("payload mismatch: %q", gotPayload)
	}
}

func TestRowCodecDetectsCorruption(t *testing.T) {
	row, err := encodeRow(rowHeader{Seq: 1, Digest: "d"}, []byte(`{}`))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	row[len(row)/2] ^= 0xff
	if _, _, ok := decodeRow(row); ok {
		t.Fatalf("corrupted row must not decode")
	}
}

func TestVersionKeysOrderBySeq(t *testing.T) {
	key, err := hub.DeriveKey("e", "t", "b")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	k1 := KeyVersion(key, 1)
	k2 := KeyVersion(key, 2)
	k300 := KeyVersion(key, 300)
	if !(bytes.Compare(k1, k2) < 0 && bytes.Compare(k2, k300) < 0) {
		t.Fatalf("version keys must order by sequence")
	}
}
