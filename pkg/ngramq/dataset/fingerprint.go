package dataset

import (
	"math"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Fingerprint hashes the table contents in row order. Two tables with the
// same records in the same order share a fingerprint.
func Fingerprint(t Table) string {
	h := xxh3.New()
	var buf [8]byte
	writeUint := func(v uint64) {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		_, _ = h.Write(buf[:])
	}

	writeUint(uint64(len(t.Records)))
	for _, r := range t.Records {
		writeUint(uint64(len(r.Query)))
		_, _ = h.Write([]byte(r.Query))
		writeUint(uint64(r.Clicks))
		writeUint(math.Float64bits(r.Cost))
		writeUint(uint64(r.Conversions))
		writeUint(uint64(r.EffectiveImpressions()))
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
