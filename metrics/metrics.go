// Package metrics holds the atomic counters an Allocator maintains across
// all of its domains, and renders them in Prometheus text exposition
// format.
//
// Grounded on the teacher repository's examples/prometheus/main.go, which
// hand-rolls the same exposition format over a plain net/http handler
// rather than pulling in a metrics client library — no such library
// appears anywhere in the retrieval pack, so this package follows suit.
package metrics

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Counters are the atomic, lock-free counters incremented by the
// allocator's hot path. All fields are safe for concurrent use.
type Counters struct {
	issued          atomic.Int64 // total identifiers issued
	reserveAdvances atomic.Int64 // times the logical second advanced into the reserve without a wall-clock refresh
	resets          atomic.Int64 // times a DomainState was reset to now-reserve after falling far behind
	sleeps          atomic.Int64 // times the allocator blocked on SleepUntilNextSecond
	sleepWaitMicros atomic.Int64 // cumulative microseconds spent asleep
}

// Snapshot is a consistent point-in-time read of Counters.
type Snapshot struct {
	Issued          int64
	ReserveAdvances int64
	Resets          int64
	Sleeps          int64
	SleepWaitMicros int64
}

func (c *Counters) AddIssued(n int64)          { c.issued.Add(n) }
func (c *Counters) AddReserveAdvance()         { c.reserveAdvances.Add(1) }
func (c *Counters) AddReset()                  { c.resets.Add(1) }
func (c *Counters) AddSleep(waitMicros int64)  { c.sleeps.Add(1); c.sleepWaitMicros.Add(waitMicros) }

// Snapshot returns a consistent snapshot of all counters.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Issued:          c.issued.Load(),
		ReserveAdvances: c.reserveAdvances.Load(),
		Resets:          c.resets.Load(),
		Sleeps:          c.sleeps.Load(),
		SleepWaitMicros: c.sleepWaitMicros.Load(),
	}
}

// WritePrometheus renders a Snapshot in Prometheus text exposition format,
// labeled with the given instance ID.
func WritePrometheus(w io.Writer, instanceID uint64, s Snapshot) error {
	lines := []struct {
		name, help, typ string
		value           int64
	}{
		{"idgen_ids_issued_total", "Total number of identifiers issued", "counter", s.Issued},
		{"idgen_reserve_advances_total", "Times the logical second advanced into the reserve without a wall-clock refresh", "counter", s.ReserveAdvances},
		{"idgen_resets_total", "Times a domain was reset after falling behind the reserve window", "counter", s.Resets},
		{"idgen_sleeps_total", "Times generation blocked for the next wall-clock second", "counter", s.Sleeps},
		{"idgen_sleep_wait_microseconds_total", "Cumulative microseconds spent blocked on sleep", "counter", s.SleepWaitMicros},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s{instance=\"%d\"} %d\n", l.name, l.help, l.name, l.typ, l.name, instanceID, l.value); err != nil {
			return err
		}
	}
	return nil
}
