package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// LinkChecker verifies internal-link reachability for the crawler's
// phase-2 pass: HEAD first, falling back to GET when the server
// rejects HEAD (405 Method Not Allowed, 501 Not Implemented).
type LinkChecker struct {
	userAgent string
	client    *http.Client
}

func NewLinkChecker(userAgent string) *LinkChecker {
	return &LinkChecker{
		userAgent: userAgent,
		client:    &http.Client{},
	}
}

// CheckResult is a link verification outcome. Status 0 means the
// request could not be completed at all.
type CheckResult struct {
	Status int
}

// Check performs HEAD then, on 405/501, GET. Any transport error
// yields Status 0, never a Go error: link checks never abort the audit.
func (c *LinkChecker) Check(ctx context.Context, target url.URL, timeout time.Duration) CheckResult {
	res := c.do(ctx, http.MethodHead, target, timeout)
	if res.Status == http.StatusMethodNotAllowed || res.Status == http.StatusNotImplemented {
		res = c.do(ctx, http.MethodGet, target, timeout)
	}
	return res
}

func (c *LinkChecker) do(ctx context.Context, method string, target url.URL, timeout time.Duration) CheckResult {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, target.String(), nil)
	if err != nil {
		return CheckResult{Status: 0}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return CheckResult{Status: 0}
	}
	defer resp.Body.Close()

	if method == http.MethodGet {
		_, _ = io.CopyN(io.Discard, resp.Body, 1<<20)
	}

	return CheckResult{Status: resp.StatusCode}
}
