package timeutil

import "time"

// Sleeper abstracts wall-clock sleeping so politeness delays can be
// disabled in tests without making crawl behavior time-dependent.
type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

// NewRealSleeper returns a Sleeper that calls time.Sleep.
func NewRealSleeper() Sleeper {
	return realSleeper{}
}

func (realSleeper) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

type noOpSleeper struct{}

// NewNoOpSleeper returns a Sleeper that never blocks, for deterministic tests.
func NewNoOpSleeper() Sleeper {
	return noOpSleeper{}
}

func (noOpSleeper) Sleep(time.Duration) {}
