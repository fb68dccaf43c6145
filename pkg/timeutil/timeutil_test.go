package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationPtr(t *testing.T) {
	p := DurationPtr(5 * time.Second)
	assert.NotNil(t, p)
	assert.Equal(t, 5*time.Second, *p)
}

func TestMaxDuration(t *testing.T) {
	tests := []struct {
		name string
		in   []time.Duration
		want time.Duration
	}{
		{name: "empty", in: nil, want: 0},
		{name: "single", in: []time.Duration{3 * time.Second}, want: 3 * time.Second},
		{name: "picks largest", in: []time.Duration{time.Second, 5 * time.Second, 2 * time.Second}, want: 5 * time.Second},
		{name: "all zero", in: []time.Duration{0, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaxDuration(tt.in))
		})
	}
}

func TestRealSleeperSleeps(t *testing.T) {
	s := NewRealSleeper()
	start := time.Now()
	s.Sleep(10 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestNoOpSleeperDoesNotBlock(t *testing.T) {
	s := NewNoOpSleeper()
	start := time.Now()
	s.Sleep(time.Hour)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
