package crawler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/finsift/finsift/engine"
	"github.com/finsift/finsift/extract"
	"github.com/finsift/finsift/models"
	"github.com/finsift/finsift/page"
)

// stubEngine serves pages from an in-memory site map.
type stubEngine struct {
	pages map[string]string
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	html, ok := s.pages[req.URL]
	if !ok {
		return nil, errors.New("stub: no such page")
	}
	return &engine.FetchResult{HTML: html, StatusCode: 200, FinalURL: req.URL, EngineName: "stub"}, nil
}

// memSink collects records in memory.
type memSink struct {
	mu        sync.Mutex
	records   []*models.ProductRecord
	snapshots map[string]string
}

func newMemSink() *memSink {
	return &memSink{snapshots: make(map[string]string)}
}

func (m *memSink) Put(ctx context.Context, rec *models.ProductRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memSink) PutSnapshot(ctx context.Context, sourceURL, markdown string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[sourceURL] = markdown
	return nil
}

func (m *memSink) Close() error { return nil }

const hubHTML = `<html><head><title>Compare lenders</title></head><body>
<p>Find the right option for you.</p>
<a href="/loans/personal">Personal</a>
<a href="/loans/auto">Auto</a>
</body></html>`

const personalLoanHTML = `<html><head>
<meta property="og:site_name" content="LendCo">
<title>Personal Loan</title></head><body>
<h1>Everyday Personal Loan</h1>
<p>Fixed interest rate of 9.5% APR over 24 months.</p>
<p>Origination fee of 2% applies to every personal loan.</p>
<p>Eligibility: residents aged 18 or over with a bank account.</p>
</body></html>`

const autoLoanHTML = `<html><head>
<meta property="og:site_name" content="LendCo">
<title>Auto Loan</title></head><body>
<h1>DriveAway Auto Loan</h1>
<p>Finance a car at 6.9% APR for 48 months.</p>
<p>No application fee on auto finance.</p>
</body></html>`

func mustPage(t *testing.T, rawURL, html string) *page.Page {
	t.Helper()
	p, err := page.New(rawURL, html)
	if err != nil {
		t.Fatalf("page.New: %v", err)
	}
	return p
}

func newTestCrawler(pages map[string]string, snk *memSink) *Crawler {
	return New(&stubEngine{pages: pages}, extract.New(), snk, Options{
		FetchTimeout: time.Second,
		Concurrency:  2,
	})
}

func fastRequest(seeds ...string) models.CrawlRequest {
	req := models.CrawlRequest{
		StartURLs:         seeds,
		RequestsPerSecond: 1000,
	}
	req.Defaults()
	return req
}

func runJob(t *testing.T, c *Crawler, req models.CrawlRequest) *models.CrawlJob {
	t.Helper()
	job := &models.CrawlJob{ID: "crawl-test", Status: "processing", CreatedAt: time.Now().Unix()}
	c.Run(context.Background(), job, req)
	return job
}

func TestRunFollowsProductLinksAndEmitsRecords(t *testing.T) {
	snk := newMemSink()
	c := newTestCrawler(map[string]string{
		"https://lendco.example/compare":        hubHTML,
		"https://lendco.example/loans/personal": personalLoanHTML,
		"https://lendco.example/loans/auto":     autoLoanHTML,
	}, snk)

	job := runJob(t, c, fastRequest("https://lendco.example/compare"))
	snap := job.Snapshot()

	if snap.Status != "completed" {
		t.Fatalf("status = %q, want completed", snap.Status)
	}
	if snap.Fetched != 3 {
		t.Errorf("fetched = %d, want 3", snap.Fetched)
	}
	// The hub page is not a product page.
	if snap.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", snap.Skipped)
	}
	if len(snap.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(snap.Records))
	}
	if len(snk.records) != 2 {
		t.Errorf("sink received %d records, want 2", len(snk.records))
	}

	names := map[string]bool{}
	for _, rec := range snap.Records {
		names[rec.ProductName] = true
		if rec.Provider != "LendCo" {
			t.Errorf("provider = %q, want LendCo", rec.Provider)
		}
	}
	if !names["Everyday Personal Loan"] || !names["DriveAway Auto Loan"] {
		t.Errorf("unexpected product names: %v", names)
	}
}

func TestRunDoesNotFollowExternalLinks(t *testing.T) {
	hub := `<html><body><p>Partners</p>
<a href="https://other.example/products/x">Partner product</a>
</body></html>`
	snk := newMemSink()
	c := newTestCrawler(map[string]string{
		"https://lendco.example/compare": hub,
	}, snk)

	job := runJob(t, c, fastRequest("https://lendco.example/compare"))
	snap := job.Snapshot()

	// The external link was never fetched, so nothing could fail.
	if snap.Fetched != 1 || snap.Failed != 0 {
		t.Errorf("fetched = %d, failed = %d, want 1 and 0", snap.Fetched, snap.Failed)
	}
}

func TestRunRespectsMaxRequests(t *testing.T) {
	hub := `<html><body>
<a href="/loans/a">a</a><a href="/loans/b">b</a><a href="/loans/c">c</a>
<a href="/loans/d">d</a><a href="/loans/e">e</a>
</body></html>`
	pages := map[string]string{"https://lendco.example/compare": hub}
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		pages["https://lendco.example/loans/"+s] = personalLoanHTML
	}
	snk := newMemSink()
	c := newTestCrawler(pages, snk)

	req := fastRequest("https://lendco.example/compare")
	req.MaxRequests = 2
	job := runJob(t, c, req)
	snap := job.Snapshot()

	if got := snap.Fetched + snap.Failed; got > 2 {
		t.Errorf("attempted %d pages, budget was 2", got)
	}
}

func TestRunCountsFetchFailuresWithoutStopping(t *testing.T) {
	hub := `<html><body>
<a href="/loans/personal">ok</a>
<a href="/loans/missing">broken</a>
</body></html>`
	snk := newMemSink()
	c := newTestCrawler(map[string]string{
		"https://lendco.example/compare":        hub,
		"https://lendco.example/loans/personal": personalLoanHTML,
	}, snk)

	job := runJob(t, c, fastRequest("https://lendco.example/compare"))
	snap := job.Snapshot()

	if snap.Status != "partial" {
		t.Errorf("status = %q, want partial", snap.Status)
	}
	if snap.Failed != 1 {
		t.Errorf("failed = %d, want 1", snap.Failed)
	}
	if len(snap.Records) != 1 {
		t.Errorf("records = %d, want 1", len(snap.Records))
	}
}

func TestRunSkipsNearDuplicatePages(t *testing.T) {
	hub := `<html><body>
<a href="/loans/personal">one</a>
<a href="/loans/personal-offer">two</a>
</body></html>`
	snk := newMemSink()
	c := newTestCrawler(map[string]string{
		"https://lendco.example/compare":              hub,
		"https://lendco.example/loans/personal":       personalLoanHTML,
		"https://lendco.example/loans/personal-offer": personalLoanHTML,
	}, snk)

	job := runJob(t, c, fastRequest("https://lendco.example/compare"))
	snap := job.Snapshot()

	if len(snap.Records) != 1 {
		t.Errorf("records = %d, want 1 (duplicate suppressed)", len(snap.Records))
	}
	// Hub plus one of the two identical pages.
	if snap.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", snap.Skipped)
	}
}

func TestCandidatesResolvesAndFilters(t *testing.T) {
	html := `<html><body>
<a href="/loans/personal#rates">relative with fragment</a>
<a href="https://lendco.example/products/card">absolute internal</a>
<a href="https://other.example/loans/x">external</a>
<a href="/about">non-product path</a>
<a href="mailto:hi@lendco.example">mail</a>
<a href="/loans/personal">duplicate</a>
</body></html>`
	p := mustPage(t, "https://lendco.example/compare", html)
	seedHosts := map[string]struct{}{"lendco.example": {}}

	got := candidates(p, seedHosts, true)
	want := []string{
		"https://lendco.example/loans/personal",
		"https://lendco.example/products/card",
	}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidates[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCandidatesExternalAllowedWhenInternalOnlyOff(t *testing.T) {
	html := `<a href="https://other.example/loans/x">external</a>`
	p := mustPage(t, "https://lendco.example/compare", html)

	got := candidates(p, map[string]struct{}{"lendco.example": {}}, false)
	if len(got) != 1 || got[0] != "https://other.example/loans/x" {
		t.Errorf("candidates = %v, want the external link", got)
	}
}

func TestCandidatesMalformedURLFailsOpen(t *testing.T) {
	// The href does not parse, so the host check cannot run.
	html := `<a href="http://bad host/loans/personal">broken</a>`
	p := mustPage(t, "https://lendco.example/compare", html)

	got := candidates(p, map[string]struct{}{"lendco.example": {}}, true)
	if len(got) != 1 {
		t.Fatalf("candidates = %v, want the malformed link kept", got)
	}
}
