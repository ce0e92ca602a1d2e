package satellite

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Digest fingerprints a JSON payload for change detection. The payload is
// re-marshalled through a generic value first so key order and whitespace do
// not influence the digest: two encodings of the same document always hash
// identically. Non-JSON payloads are rejected.
func Digest(payload []byte) (string, error) {
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return "", fmt.Errorf("satellite: payload is not valid JSON: %w", err)
	}
	canonical, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
