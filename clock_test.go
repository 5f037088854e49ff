package idgen

import (
	"errors"
	"testing"
)

func TestFakeClockNowSubtractsEpoch(t *testing.T) {
	c := newFakeClock(1000)
	got, err := c.Now(100)
	if err != nil {
		t.Fatalf("Now: %v", err)
	}
	if got != 900 {
		t.Fatalf("Now(100) = %d, want 900", got)
	}
}

func TestFakeClockNowRegressionBeforeEpoch(t *testing.T) {
	c := newFakeClock(50)
	_, err := c.Now(100)
	var regErr *ClockRegressionError
	if !errors.As(err, &regErr) {
		t.Fatalf("expected *ClockRegressionError, got %v", err)
	}
}

func TestFakeClockSleepAdvancesOneSecond(t *testing.T) {
	c := newFakeClock(1000)
	before, _ := c.Now(0)
	c.SleepUntilNextSecond()
	after, _ := c.Now(0)
	if after != before+1 {
		t.Fatalf("SleepUntilNextSecond advanced wall by %d seconds, want 1", after-before)
	}
	if c.Sleeps() != 1 {
		t.Fatalf("Sleeps() = %d, want 1", c.Sleeps())
	}
}

func TestSystemClockIsWallClock(t *testing.T) {
	now, err := SystemClock.Now(1)
	if err != nil {
		t.Fatalf("SystemClock.Now: %v", err)
	}
	if now == 0 {
		t.Fatal("SystemClock.Now(1) returned 0 seconds since epoch 1, expected nonzero this far past 1970")
	}
}
