package fetch

import (
	"net/url"
	"time"
)

// Result is the outcome of a single page fetch. A transport failure is
// represented by Status == 0 and a non-empty Err, never a Go error
// return: the fetcher itself never fails the caller's flow.
type Result struct {
	url          url.URL
	finalURL     url.URL
	status       int
	contentType  string
	redirectHops int
	body         []byte
	elapsedMs    int64
	ttfbMs       int64
	fetchedAt    time.Time
	err          string
}

func (r Result) URL() url.URL         { return r.url }
func (r Result) FinalURL() url.URL    { return r.finalURL }
func (r Result) Status() int          { return r.status }
func (r Result) ContentType() string  { return r.contentType }
func (r Result) RedirectHops() int    { return r.redirectHops }
func (r Result) Body() []byte         { return r.body }
func (r Result) ElapsedMs() int64     { return r.elapsedMs }
func (r Result) TTFBMs() int64        { return r.ttfbMs }
func (r Result) FetchedAt() time.Time { return r.fetchedAt }
func (r Result) Err() string          { return r.err }
func (r Result) BodySize() int64      { return int64(len(r.body)) }
