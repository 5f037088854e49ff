package idgen

import (
	"sync"
	"time"

	"github.com/sxyafiq/idgen/metrics"
)

// DomainState advances the (timestamp, counter) pair for one domain under
// the "seconds reserve" policy described in SPEC_FULL.md §4.1–4.4: the
// allocator is permitted to run its logical timestamp up to
// reservedSecondsCount seconds ahead of wall-clock, burning down that
// reserve as a burst buffer, and only blocks a caller once the reserve is
// exhausted.
//
// One DomainState instance is held per domain index, each behind its own
// mutex — never a single lock shared across domains (SPEC_FULL.md §5).
type DomainState struct {
	mu        sync.Mutex
	domain    uint64
	timestamp uint64
	counter   uint64
}

func newDomainState(domain, timestamp uint64) *DomainState {
	return &DomainState{domain: domain, timestamp: timestamp, counter: 0}
}

// Generate emits n identifiers for this domain. The caller must supply the
// Layout and Clock the owning Allocator was built with; Generate holds its
// internal mutex for the entire call, including any blocking sleep, which
// is deliberate: it preserves per-domain total order (SPEC_FULL.md §5).
func (d *DomainState) Generate(n int, clock Clock, layout *Layout, counters *metrics.Counters) ([]uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	reserved := layout.ReservedSecondsCount()
	maxCounter := layout.MaxCounter()
	epoch := layout.EpochStartSecond()

	now, err := clock.Now(epoch)
	if err != nil {
		return nil, err
	}
	d.refreshLocked(now, reserved, maxCounter, counters)

	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		if d.counter >= maxCounter {
			now, err = clock.Now(epoch)
			if err != nil {
				return ids, err
			}
			d.refreshLocked(now, reserved, maxCounter, counters)

			if d.counter >= maxCounter {
				// Reserve exhausted even at the current logical second:
				// wait for the wall clock to actually advance.
				waitStart := time.Now()
				nowPre := now
				clock.SleepUntilNextSecond()

				nowPost, err := clock.Now(epoch)
				if err != nil {
					return ids, err
				}
				// Open Question 1 (SPEC_FULL.md §4.1): rather than
				// blindly trusting nowPre+1, take the later of the two
				// readings, so a sleep that overshoots (scheduler
				// pressure, suspended VM) cannot leave the logical
				// timestamp behind the wall clock. The logical timestamp
				// may already sit up to reserved seconds ahead of nowPre,
				// so it also never moves below d.timestamp+1.
				next := nowPre + 1
				if nowPost > next {
					next = nowPost
				}
				if d.timestamp+1 > next {
					next = d.timestamp + 1
				}
				d.timestamp = next
				d.counter = 0
				counters.AddSleep(time.Since(waitStart).Microseconds())
			}
		}

		d.counter++
		word, err := layout.Encode(Params{
			Timestamp: d.timestamp,
			Instance:  layout.InstanceID(),
			Counter:   d.counter,
			Domain:    d.domain,
		})
		if err != nil {
			// The state machine is required to guarantee every field
			// stays in range; reaching here means that guarantee broke.
			panic(err)
		}
		ids = append(ids, word)
	}

	counters.AddIssued(int64(len(ids)))
	return ids, nil
}

// refreshLocked applies step 1 of SPEC_FULL.md §4.1-4.4 (the "refresh
// against wall clock" logic). Callers must hold d.mu.
func (d *DomainState) refreshLocked(now, reserved, maxCounter uint64, counters *metrics.Counters) {
	var delta int64
	if now >= d.timestamp {
		delta = int64(now - d.timestamp)
	} else {
		delta = -int64(d.timestamp - now)
	}

	switch {
	case delta > int64(reserved):
		// Far behind wall-clock (e.g. first call after idle): reset to
		// the earliest reserve second, maximizing remaining headroom.
		if now >= reserved {
			d.timestamp = now - reserved
		} else {
			d.timestamp = 0
		}
		d.counter = 0
		counters.AddReset()
	case delta > -int64(reserved) && d.counter >= maxCounter:
		// Counter saturated for the current logical second, but the
		// reserve ceiling (timestamp at most reserved seconds ahead of
		// wall-clock) hasn't been reached yet: advance one logical
		// second, consuming one second of reserve, instead of blocking.
		d.timestamp++
		d.counter = 0
		counters.AddReserveAdvance()
	default:
		// Counter still has room, or the reserve ceiling is already
		// reached: no refresh possible without a sleep.
	}
}
