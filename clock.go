package idgen

import "time"

// Clock is the wall-clock source consulted by DomainState. It is the only
// source of blocking in the allocator: Now is pure, SleepUntilNextSecond is
// the single suspension point (SPEC_FULL.md §5).
type Clock interface {
	// Now returns whole seconds since epochStartSecond. It returns
	// ErrClockRegression if the wall clock currently reads before
	// epochStartSecond (Open Question 2, SPEC_FULL.md §4.1).
	Now(epochStartSecond uint64) (uint64, error)

	// SleepUntilNextSecond blocks until the start of the next whole
	// wall-clock second, plus a millisecond of slack, so that a
	// subsequent Now() call is guaranteed to observe a strictly greater
	// second.
	SleepUntilNextSecond()
}

// systemClock is the real-time Clock backed by time.Now.
type systemClock struct{}

// SystemClock is the production Clock, reading the system's real-time
// clock at second resolution.
var SystemClock Clock = systemClock{}

func (systemClock) Now(epochStartSecond uint64) (uint64, error) {
	now := uint64(time.Now().Unix())
	if now < epochStartSecond {
		return 0, &ClockRegressionError{WallSecond: now, EpochStartSecond: epochStartSecond}
	}
	return now - epochStartSecond, nil
}

func (systemClock) SleepUntilNextSecond() {
	now := time.Now()
	next := now.Truncate(time.Second).Add(time.Second)
	time.Sleep(next.Sub(now) + time.Millisecond)
}
