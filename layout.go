// Package idgen issues dense, time-ordered 64-bit identifiers partitioned
// across independently-counted domains, with each identifier also encoding
// the originating instance so multiple deployed replicas can coexist without
// coordination.
//
// # ID structure (64 bits, MSB to LSB)
//
//	[ timestamp | instance | counter | domain ]
//
// One bit is always left clear (the field widths must sum to at most 63),
// so every identifier fits in a signed 64-bit container as well.
package idgen

import (
	"fmt"
)

// Layout is the validated bit-field configuration fixing the packed
// identifier format for the life of the process. It is immutable after
// construction and safe to share across any number of goroutines.
type Layout struct {
	timestampBits uint
	instanceBits  uint
	counterBits   uint
	domainBits    uint

	epochStartSecond      uint64
	reservedSecondsCount  uint64
	instanceID            uint64

	maxTimestamp uint64
	maxInstance  uint64
	maxCounter   uint64
	maxDomain    uint64
}

// LayoutParams are the raw construction parameters for a Layout, matching
// the configuration table in SPEC_FULL.md §6.
type LayoutParams struct {
	TimestampBits        uint
	InstanceBits         uint
	CounterBits          uint
	DomainBits           uint
	EpochStartSecond     uint64
	ReservedSecondsCount uint64
	InstanceID           uint64
}

// Params is a decoded identifier: the four packed fields plus nothing else.
// Encode and Decode are exact inverses of each other over this type.
type Params struct {
	Timestamp uint64
	Instance  uint64
	Counter   uint64
	Domain    uint64
}

// NewLayout validates params and builds an immutable Layout. Construction
// fails (and the process should refuse to start) if any of invariants
// L1–L3 from SPEC_FULL.md §3 are violated.
func NewLayout(p LayoutParams, nowWallSecond uint64) (*Layout, error) {
	total := p.TimestampBits + p.InstanceBits + p.CounterBits + p.DomainBits
	if total > 63 {
		return nil, &LayoutError{
			Field:  "bit widths",
			Reason: fmt.Sprintf("sum of field widths must be <= 63, got %d (timestamp=%d instance=%d counter=%d domain=%d)", total, p.TimestampBits, p.InstanceBits, p.CounterBits, p.DomainBits),
		}
	}
	if p.EpochStartSecond == 0 || p.EpochStartSecond > nowWallSecond {
		return nil, &LayoutError{
			Field:  "epoch_start_second",
			Reason: fmt.Sprintf("must satisfy 0 < epoch_start_second (%d) <= now (%d)", p.EpochStartSecond, nowWallSecond),
		}
	}

	maxDomain := maxForBits(p.DomainBits)
	// maxDomain+1 must be representable as a native size; on any platform
	// Go actually runs on, a domain field wide enough to violate this would
	// already have failed the L1 check above, but we guard it explicitly
	// since it protects the DomainState table allocation.
	if maxDomain == ^uint64(0) {
		return nil, &LayoutError{Field: "domain_id_bits", Reason: "domain count overflows a native index"}
	}

	maxInstance := maxForBits(p.InstanceBits)
	if p.InstanceID > maxInstance {
		return nil, &LayoutError{
			Field:  "instance_id",
			Reason: fmt.Sprintf("instance_id %d exceeds max_instance %d (%d bits)", p.InstanceID, maxInstance, p.InstanceBits),
		}
	}

	return &Layout{
		timestampBits:        p.TimestampBits,
		instanceBits:         p.InstanceBits,
		counterBits:          p.CounterBits,
		domainBits:           p.DomainBits,
		epochStartSecond:     p.EpochStartSecond,
		reservedSecondsCount: p.ReservedSecondsCount,
		instanceID:           p.InstanceID,
		maxTimestamp:         maxForBits(p.TimestampBits),
		maxInstance:          maxInstance,
		maxCounter:           maxForBits(p.CounterBits),
		maxDomain:            maxDomain,
	}, nil
}

func maxForBits(bits uint) uint64 {
	if bits == 0 {
		return 0
	}
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}

// MaxDomain returns the largest valid domain index, 2^domain_bits - 1.
func (l *Layout) MaxDomain() uint64 { return l.maxDomain }

// MaxCounter returns the largest valid counter value for one logical second.
func (l *Layout) MaxCounter() uint64 { return l.maxCounter }

// MaxInstance returns the largest valid instance id, 2^instance_bits - 1.
func (l *Layout) MaxInstance() uint64 { return l.maxInstance }

// InstanceID returns this process's configured instance identifier.
func (l *Layout) InstanceID() uint64 { return l.instanceID }

// EpochStartSecond returns the Unix-seconds zero point for packed timestamps.
func (l *Layout) EpochStartSecond() uint64 { return l.epochStartSecond }

// ReservedSecondsCount returns the configured reserve depth in seconds.
func (l *Layout) ReservedSecondsCount() uint64 { return l.reservedSecondsCount }

// Encode composes the four fields into a single 64-bit word by repeated
// left-shift-and-OR, in the order timestamp, instance, counter, domain.
// Each field is masked against its own maximum before composing; if the
// masked value does not equal the original, the field was out of range and
// Encode fails fatally — the state machine that calls Encode is required to
// guarantee this never happens, so a failure here indicates a broken
// invariant elsewhere, not a normal runtime condition.
func (l *Layout) Encode(p Params) (uint64, error) {
	if masked := p.Timestamp & l.maxTimestamp; masked != p.Timestamp {
		return 0, fmt.Errorf("idgen: timestamp %d exceeds field width (max %d)", p.Timestamp, l.maxTimestamp)
	}
	if masked := p.Instance & l.maxInstance; masked != p.Instance {
		return 0, fmt.Errorf("idgen: instance %d exceeds field width (max %d)", p.Instance, l.maxInstance)
	}
	if masked := p.Counter & l.maxCounter; masked != p.Counter {
		return 0, fmt.Errorf("idgen: counter %d exceeds field width (max %d)", p.Counter, l.maxCounter)
	}
	if masked := p.Domain & l.maxDomain; masked != p.Domain {
		return 0, fmt.Errorf("idgen: domain %d exceeds field width (max %d)", p.Domain, l.maxDomain)
	}

	word := p.Timestamp
	word = (word << l.instanceBits) | p.Instance
	word = (word << l.counterBits) | p.Counter
	word = (word << l.domainBits) | p.Domain
	return word, nil
}

// Decode inverts Encode, extracting fields in the reverse order (domain,
// counter, instance, timestamp) via mask-and-shift. Decode is a pure
// function of word and Layout and never fails: every 64-bit word is a
// valid packed value under some set of field values.
func (l *Layout) Decode(word uint64) Params {
	domain := word & l.maxDomain
	word >>= l.domainBits

	counter := word & l.maxCounter
	word >>= l.counterBits

	instance := word & l.maxInstance
	word >>= l.instanceBits

	timestamp := word & l.maxTimestamp

	return Params{
		Timestamp: timestamp,
		Instance:  instance,
		Counter:   counter,
		Domain:    domain,
	}
}
