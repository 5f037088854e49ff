package idgen

import (
	"encoding/json"
	"testing"
)

// FuzzIDEncodings exercises String/Hex/Base58/Base62 round trips over
// arbitrary 64-bit words with bit 63 clear, the invariant every packed
// identifier satisfies (SPEC_FULL.md §3, L1).
func FuzzIDEncodings(f *testing.F) {
	f.Add(uint64(0))
	f.Add(uint64(1))
	f.Add(uint64(391_531_655_594_249))
	f.Add(^uint64(0) >> 1) // largest word with bit 63 clear

	f.Fuzz(func(t *testing.T, raw uint64) {
		raw &^= uint64(1) << 63
		id := ID(raw)

		if got, err := ParseID(id.String()); err != nil || got != id {
			t.Fatalf("decimal round-trip failed for %d: got=%d err=%v", id, got, err)
		}
		if got, err := ParseHex(id.Hex()); err != nil || got != id {
			t.Fatalf("hex round-trip failed for %d: got=%d err=%v", id, got, err)
		}
		if got, err := ParseBase58(id.Base58()); err != nil || got != id {
			t.Fatalf("base58 round-trip failed for %d: got=%d err=%v", id, got, err)
		}
		if got, err := ParseBase62(id.Base62()); err != nil || got != id {
			t.Fatalf("base62 round-trip failed for %d: got=%d err=%v", id, got, err)
		}
	})
}

// FuzzIDJSON exercises ID's JSON marshaling round-trip: every ID must
// survive a MarshalJSON/UnmarshalJSON cycle as a quoted string, since
// plain JSON numbers lose precision above 2^53.
func FuzzIDJSON(f *testing.F) {
	f.Add(uint64(0))
	f.Add(uint64(1))
	f.Add(^uint64(0) >> 1)

	f.Fuzz(func(t *testing.T, raw uint64) {
		raw &^= uint64(1) << 63
		id := ID(raw)

		data, err := json.Marshal(id)
		if err != nil {
			t.Fatalf("Marshal(%d): %v", id, err)
		}

		var got ID
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if got != id {
			t.Fatalf("JSON round-trip failed: original=%d, got=%d (encoded: %s)", id, got, data)
		}
	})
}
