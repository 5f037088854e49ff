package idgen

import "sync"

// fakeClock is a deterministic Clock for tests: wall time only advances
// when Advance is called directly, or implicitly by one second per
// SleepUntilNextSecond call.
type fakeClock struct {
	mu     sync.Mutex
	wall   uint64
	sleeps int
}

func newFakeClock(startWall uint64) *fakeClock {
	return &fakeClock{wall: startWall}
}

func (f *fakeClock) Now(epochStartSecond uint64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.wall < epochStartSecond {
		return 0, &ClockRegressionError{WallSecond: f.wall, EpochStartSecond: epochStartSecond}
	}
	return f.wall - epochStartSecond, nil
}

func (f *fakeClock) SleepUntilNextSecond() {
	f.mu.Lock()
	f.wall++
	f.sleeps++
	f.mu.Unlock()
}

func (f *fakeClock) Advance(seconds uint64) {
	f.mu.Lock()
	f.wall += seconds
	f.mu.Unlock()
}

func (f *fakeClock) Sleeps() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sleeps
}
