package idgen

import (
	"time"

	"github.com/sxyafiq/idgen/metrics"
)

// Allocator owns one DomainState per domain index, dispatches batch
// requests to the right one, and exposes decode. It is constructed once at
// process start, lives until process exit, and is never resized
// (SPEC_FULL.md §3).
type Allocator struct {
	layout   *Layout
	clock    Clock
	states   []*DomainState
	counters metrics.Counters
}

// New builds an Allocator using the real system clock.
func New(params LayoutParams) (*Allocator, error) {
	return NewWithClock(params, SystemClock)
}

// NewWithClock builds an Allocator against an arbitrary Clock, primarily
// so tests can control wall-clock behavior deterministically.
func NewWithClock(params LayoutParams, clock Clock) (*Allocator, error) {
	layout, err := NewLayout(params, uint64(time.Now().Unix()))
	if err != nil {
		return nil, err
	}

	t0, err := clock.Now(layout.EpochStartSecond())
	if err != nil {
		return nil, err
	}

	states := make([]*DomainState, layout.MaxDomain()+1)
	for d := range states {
		states[d] = newDomainState(uint64(d), t0)
	}

	return &Allocator{layout: layout, clock: clock, states: states}, nil
}

// GenerateIDs requests count identifiers for domain. The only error the
// core surfaces is IncorrectDomainError, when domain > MaxDomain(); a
// clock-regression failure mid-generation is also possible and propagated
// (SPEC_FULL.md §4.1 Open Question 2).
func (a *Allocator) GenerateIDs(count int, domain uint64) ([]uint64, error) {
	if domain > a.layout.MaxDomain() {
		return nil, &IncorrectDomainError{Domain: domain, MaxDomain: a.layout.MaxDomain()}
	}
	if count <= 0 {
		return []uint64{}, nil
	}
	return a.states[domain].Generate(count, a.clock, a.layout, &a.counters)
}

// Decode is a pure Layout.Decode, exposed so callers need not also hold a
// reference to the Layout.
func (a *Allocator) Decode(word uint64) Params { return a.layout.Decode(word) }

// MaxDomain returns the largest valid domain index.
func (a *Allocator) MaxDomain() uint64 { return a.layout.MaxDomain() }

// EpochStartSecond returns the Unix-second zero point of packed timestamps.
func (a *Allocator) EpochStartSecond() uint64 { return a.layout.EpochStartSecond() }

// InstanceID returns this allocator's configured instance identifier.
func (a *Allocator) InstanceID() uint64 { return a.layout.InstanceID() }

// Layout returns the Allocator's immutable Layout, e.g. for ID.Components.
func (a *Allocator) Layout() *Layout { return a.layout }

// Metrics returns a consistent snapshot of the allocator's counters,
// aggregated across all domains.
func (a *Allocator) Metrics() metrics.Snapshot { return a.counters.Snapshot() }
