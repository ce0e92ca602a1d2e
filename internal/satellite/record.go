package satellite

import (
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
)

// Version row encoding: varint headerLen | header JSON | payload | crc32c(header|payload)
//
// The header carries row metadata; the payload bytes follow verbatim. The
// trailing checksum guards against torn or corrupted rows.

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// rowHeader is the persisted metadata of one version row.
type rowHeader struct {
	Seq              uint64 `json:"seq"`
	EffectiveStartMs int64  `json:"effectiveStartMs"`
	EffectiveEndMs   int64  `json:"effectiveEndMs,omitempty"`
	Digest           string `json:"digest"`
	Actor            string `json:"actor"`
	SourceTag        string `json:"sourceTag,omitempty"`
}

func encodeRow(h rowHeader, payload []byte) ([]byte, error) {
	header, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 10+len(header)+len(payload)+4)
	var tmp [10]byte
	n := binary.PutUvarint(tmp[:], uint64(len(header)))
	out = append(out, tmp[:n]...)
	out = append(out, header...)
	out = append(out, payload...)

	crc := crc32.Update(0, castagnoli, header)
	crc = crc32.Update(crc, castagnoli, payload)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc)
	out = append(out, crcb[:]...)
	return out, nil
}

func decodeRow(b []byte) (rowHeader, []byte, bool) {
	if len(b) < 1+4 {
		return rowHeader{}, nil, false
	}
	hlen, n := binary.Uvarint(b)
	if n <= 0 {
		return rowHeader{}, nil, false
	}
	if n+int(hlen)+4 > len(b) {
		return rowHeader{}, nil, false
	}
	header := b[n : n+int(hlen)]
	payload := b[n+int(hlen) : len(b)-4]
	expect := binary.BigEndian.Uint32(b[len(b)-4:])
	crc := crc32.Update(0, castagnoli, header)
	crc = crc32.Update(crc, castagnoli, payload)
	if crc != expect {
		return rowHeader{}, nil, false
	}
	var h rowHeader
	if err := json.Unmarshal(header, &h); err != nil {
		return rowHeader{}, nil, false
	}
	return h, append([]byte(nil), payload...), true
}
