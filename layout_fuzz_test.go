package idgen

import "testing"

// FuzzLayoutRoundTrip checks the two property-based invariants spec.md §8
// calls out for the bit-packing layer: Encode/Decode are exact inverses
// over in-range fields, and Encode never sets a bit above the configured
// field width (so the word always fits a signed int64 too).
func FuzzLayoutRoundTrip(f *testing.F) {
	f.Add(uint64(1_458_569), uint64(5), uint64(1), uint64(9))
	f.Add(uint64(0), uint64(0), uint64(0), uint64(0))
	f.Add(^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0))
	f.Add(uint64(1)<<34, uint64(1)<<5, uint64(1)<<13, uint64(1)<<7)

	layout, err := NewLayout(LayoutParams{
		TimestampBits:        35,
		InstanceBits:         6,
		CounterBits:          14,
		DomainBits:           8,
		EpochStartSecond:     1672531200,
		ReservedSecondsCount: 60,
		InstanceID:           5,
	}, 2_000_000_000)
	if err != nil {
		f.Fatalf("NewLayout: %v", err)
	}

	f.Fuzz(func(t *testing.T, timestamp, instance, counter, domain uint64) {
		p := Params{
			Timestamp: timestamp % (layout.maxTimestamp + 1),
			Instance:  instance % (layout.maxInstance + 1),
			Counter:   counter % (layout.maxCounter + 1),
			Domain:    domain % (layout.maxDomain + 1),
		}

		word, err := layout.Encode(p)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", p, err)
		}
		if word>>63 != 0 {
			t.Fatalf("Encode(%+v) set the reserved top bit: word=%d", p, word)
		}
		if got := layout.Decode(word); got != p {
			t.Fatalf("round-trip mismatch: encoded %+v, decoded %+v", p, got)
		}
	})
}
