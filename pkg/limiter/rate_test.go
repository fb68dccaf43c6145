package limiter_test

import (
	"testing"
	"time"

	"github.com/marcosalmeida/siteauditor/pkg/limiter"
	"github.com/stretchr/testify/assert"
)

func TestResolveDelayUnknownHostReturnsZero(t *testing.T) {
	rl := limiter.NewConcurrentRateLimiter()
	assert.Equal(t, time.Duration(0), rl.ResolveDelay("example.test"))
}

func TestResolveDelayHonorsBaseDelay(t *testing.T) {
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBaseDelay(50 * time.Millisecond)
	rl.MarkLastFetchAsNow("example.test")

	delay := rl.ResolveDelay("example.test")
	assert.Greater(t, delay, time.Duration(0))
	assert.LessOrEqual(t, delay, 50*time.Millisecond)
}

func TestResolveDelayHonorsCrawlDelayOverBase(t *testing.T) {
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBaseDelay(10 * time.Millisecond)
	rl.SetCrawlDelay("example.test", 200*time.Millisecond)
	rl.MarkLastFetchAsNow("example.test")

	delay := rl.ResolveDelay("example.test")
	assert.Greater(t, delay, 100*time.Millisecond)
}

func TestResolveDelayZeroAfterElapsed(t *testing.T) {
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBaseDelay(5 * time.Millisecond)
	rl.MarkLastFetchAsNow("example.test")

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, time.Duration(0), rl.ResolveDelay("example.test"))
}
