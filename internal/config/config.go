package config

import (
	"fmt"
	"net/url"
	"time"
)

// Profile names a budget preset. Profiles share the same code path;
// nothing in the crawler or findings engine branches by profile name.
type Profile string

const (
	ProfileSummary Profile = "summary"
	ProfileFull    Profile = "full"
)

// Config carries one audit's crawl scope and budgets. It is built once
// per audit call and never mutated afterward.
type Config struct {
	//===============
	//  Crawl scope
	//===============
	seedURL url.URL
	profile Profile

	//===============
	// Budgets
	//===============
	maxPages       int
	maxDepth       int
	maxRuntime     time.Duration
	maxLinkChecks  int
	perPageTimeout time.Duration

	// includeLimitFindings controls whether a tripped budget becomes a
	// critical_partial_crawl finding; suppressed in the summary profile.
	includeLimitFindings bool

	userAgent string
}

// ForProfile returns the Config for the given profile's hard-coded
// budget table, seeded at seedURL.
func ForProfile(profile Profile, seedURL url.URL) (Config, error) {
	switch profile {
	case ProfileSummary:
		return Config{
			seedURL:              seedURL,
			profile:              profile,
			maxPages:             12,
			maxDepth:             1,
			maxRuntime:           8 * time.Second,
			maxLinkChecks:        0,
			perPageTimeout:       5 * time.Second,
			includeLimitFindings: false,
			userAgent:            "SimpleSiteAuditBot/1.0",
		}, nil
	case ProfileFull:
		return Config{
			seedURL:              seedURL,
			profile:              profile,
			maxPages:             150,
			maxDepth:             6,
			maxRuntime:           120 * time.Second,
			maxLinkChecks:        400,
			perPageTimeout:       20 * time.Second,
			includeLimitFindings: true,
			userAgent:            "SimpleSiteAuditBot/1.0",
		}, nil
	default:
		return Config{}, fmt.Errorf("%w: unknown profile %q", ErrInvalidConfig, profile)
	}
}

// NewForTest builds a Config with explicit budgets, bypassing the
// hard-coded profile tables. It exists for other packages' tests that
// need to exercise a boundary (e.g. maxPages == 1) neither preset hits.
func NewForTest(seedURL url.URL, maxPages, maxDepth int, maxRuntime time.Duration, maxLinkChecks int, perPageTimeout time.Duration, includeLimitFindings bool, userAgent string) Config {
	return Config{
		seedURL:              seedURL,
		profile:              ProfileFull,
		maxPages:             maxPages,
		maxDepth:             maxDepth,
		maxRuntime:           maxRuntime,
		maxLinkChecks:        maxLinkChecks,
		perPageTimeout:       perPageTimeout,
		includeLimitFindings: includeLimitFindings,
		userAgent:            userAgent,
	}
}

func (c Config) SeedURL() url.URL            { return c.seedURL }
func (c Config) Profile() Profile            { return c.profile }
func (c Config) MaxPages() int               { return c.maxPages }
func (c Config) MaxDepth() int               { return c.maxDepth }
func (c Config) MaxRuntime() time.Duration   { return c.maxRuntime }
func (c Config) MaxLinkChecks() int          { return c.maxLinkChecks }
func (c Config) PerPageTimeout() time.Duration {
	return c.perPageTimeout
}
func (c Config) IncludeLimitFindings() bool { return c.includeLimitFindings }
func (c Config) UserAgent() string          { return c.userAgent }
