package audit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcosalmeida/siteauditor/internal/crawler"
	"github.com/marcosalmeida/siteauditor/internal/narrator"
	"github.com/marcosalmeida/siteauditor/internal/telemetry"
	"github.com/marcosalmeida/siteauditor/pkg/timeutil"
)

type stubNarrator struct {
	err   error
	calls int
}

func (s *stubNarrator) Narrate(_ context.Context, sections map[string]narrator.SectionInput) (map[string]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return narrator.Fallback(sections), nil
}

func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(404) })
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(404) })
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Home</title></head><body><a href="/about">About</a></body></html>`)
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>About</title></head><body>no links</body></html>`)
	})
	return httptest.NewServer(mux)
}

func newTestOrchestrator(narr Narrator) *Orchestrator {
	o := New("SimpleSiteAuditBot/1.0", narr)
	o.crawlerMaker = func(recorder *telemetry.Recorder) *crawler.Crawler {
		return crawler.New("SimpleSiteAuditBot/1.0", recorder, timeutil.NewNoOpSleeper())
	}
	return o
}

func TestRunFullReport_BuildsScoredReport(t *testing.T) {
	srv := newTestSite(t)
	defer srv.Close()

	o := newTestOrchestrator(nil)
	outcome, err := o.RunFullReport(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	assert.False(t, outcome.FromCache)
	assert.NotEmpty(t, outcome.Report.Sections)
}

func TestRunFullReport_SecondCallHitsCache(t *testing.T) {
	srv := newTestSite(t)
	defer srv.Close()

	o := newTestOrchestrator(nil)
	ctx := context.Background()

	first, err := o.RunFullReport(ctx, srv.URL+"/")
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := o.RunFullReport(ctx, srv.URL+"/")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Report.Appendix.HashConteudo, second.Report.Appendix.HashConteudo)
}

func TestRunFullReport_InvalidURLReturnsError(t *testing.T) {
	o := newTestOrchestrator(nil)
	_, err := o.RunFullReport(context.Background(), "not a url")
	require.Error(t, err)
}

func TestRunFullReport_NeverInvokesNarrator(t *testing.T) {
	srv := newTestSite(t)
	defer srv.Close()

	narr := &stubNarrator{err: &narrator.UnavailableError{Reason: "boom"}}
	o := newTestOrchestrator(narr)

	_, err := o.RunFullReport(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	assert.Zero(t, narr.calls, "/report must not depend on the narrator")
}

func TestRunSummary_NarratorFailureIsFatal(t *testing.T) {
	srv := newTestSite(t)
	defer srv.Close()

	narr := &stubNarrator{err: &narrator.UnavailableError{Reason: "boom"}}
	o := newTestOrchestrator(narr)

	_, err := o.RunSummary(context.Background(), srv.URL+"/")
	require.Error(t, err)
	var unavailable *narrator.UnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestRunSummary_ReusesFreshFullReportInsteadOfRecrawling(t *testing.T) {
	srv := newTestSite(t)
	defer srv.Close()

	narr := &stubNarrator{}
	o := newTestOrchestrator(narr)
	crawls := 0
	base := o.crawlerMaker
	o.crawlerMaker = func(recorder *telemetry.Recorder) *crawler.Crawler {
		crawls++
		return base(recorder)
	}
	ctx := context.Background()

	_, err := o.RunFullReport(ctx, srv.URL+"/")
	require.NoError(t, err)
	require.Equal(t, 1, crawls)

	narration, err := o.RunSummary(ctx, srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, 1, crawls, "a fresh full-profile report must be reused instead of re-crawling")
	for _, key := range narrator.SectionKeys {
		assert.NotEmpty(t, narration[key], key)
	}
}

func TestRunSummary_SecondCallServedFromSummaryCache(t *testing.T) {
	srv := newTestSite(t)
	defer srv.Close()

	narr := &stubNarrator{}
	o := newTestOrchestrator(narr)
	ctx := context.Background()

	first, err := o.RunSummary(ctx, srv.URL+"/")
	require.NoError(t, err)
	require.Equal(t, 1, narr.calls)

	second, err := o.RunSummary(ctx, srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, 1, narr.calls, "the cached narration must be reused without another LLM call")
	assert.Equal(t, first, second)
}

func TestRunSummary_NoNarratorConfiguredIsUnavailable(t *testing.T) {
	srv := newTestSite(t)
	defer srv.Close()

	o := newTestOrchestrator(nil)
	_, err := o.RunSummary(context.Background(), srv.URL+"/")
	require.Error(t, err)
	var unavailable *narrator.UnavailableError
	require.ErrorAs(t, err, &unavailable)
}
