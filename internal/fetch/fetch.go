// Package fetch performs the audit engine's single-shot page GET.
//
// Responsibilities
//   - Perform one HTTP request per call, following redirects
//   - Apply a per-request deadline and a fixed User-Agent
//   - Classify and surface transport outcomes without ever erroring
//     the caller: fetch failures become a Result with Status == 0
//
// The fetcher never parses content; it only returns bytes and
// transport metadata. No cookies persist across calls: each Fetch
// uses a fresh client with an empty cookie jar.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"time"

	"github.com/marcosalmeida/siteauditor/internal/telemetry"
)

// Fetcher performs single-attempt, follow-redirects GETs.
type Fetcher struct {
	userAgent string
	recorder  *telemetry.Recorder
	transport http.RoundTripper
}

func New(userAgent string, recorder *telemetry.Recorder) *Fetcher {
	return &Fetcher{
		userAgent: userAgent,
		recorder:  recorder,
		transport: http.DefaultTransport,
	}
}

// Fetch performs one GET against target with a per-request deadline.
// It never returns a Go error: transport failures are folded into the
// Result (Status 0, Err populated).
func (f *Fetcher) Fetch(ctx context.Context, target url.URL, timeout time.Duration) Result {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	redirectHops := 0
	client := &http.Client{
		Transport: f.transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			redirectHops = len(via)
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	var ttfb time.Time
	start := time.Now()
	trace := &httptrace.ClientTrace{
		GotFirstResponseByte: func() {
			ttfb = time.Now()
		},
	}
	traceCtx := httptrace.WithClientTrace(reqCtx, trace)

	req, err := http.NewRequestWithContext(traceCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return f.failure(target, start, "InvalidRequest", err)
	}
	for k, v := range requestHeaders(f.userAgent) {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		f.recorder.RecordError("fetch", "Fetch", telemetry.CauseNetworkFailure, err.Error(),
			telemetry.NewAttr(telemetry.AttrURL, target.String()))
		return f.failure(target, start, "TransportFailure", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.recorder.RecordError("fetch", "Fetch", telemetry.CauseNetworkFailure, err.Error(),
			telemetry.NewAttr(telemetry.AttrURL, target.String()))
		return f.failure(target, start, "ReadBodyFailure", err)
	}

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = *resp.Request.URL
	}

	elapsed := time.Since(start).Milliseconds()
	ttfbMs := elapsed
	if !ttfb.IsZero() {
		ttfbMs = ttfb.Sub(start).Milliseconds()
	}

	return Result{
		url:          target,
		finalURL:     finalURL,
		status:       resp.StatusCode,
		contentType:  resp.Header.Get("Content-Type"),
		redirectHops: redirectHops,
		body:         body,
		elapsedMs:    elapsed,
		ttfbMs:       ttfbMs,
		fetchedAt:    time.Now().UTC(),
	}
}

func (f *Fetcher) failure(target url.URL, start time.Time, kind string, err error) Result {
	return Result{
		url:       target,
		finalURL:  target,
		status:    0,
		elapsedMs: time.Since(start).Milliseconds(),
		fetchedAt: time.Now().UTC(),
		err:       fmt.Sprintf("%s: %s", kind, err.Error()),
	}
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Connection":      "close",
	}
}
