// Package crawler drives BFS crawls over financial product sites: fetch
// a page, extract a record if the page qualifies, discover more links,
// repeat until the request budget runs out. Page-level failures never
// stop a crawl.
package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/finsift/finsift/engine"
	"github.com/finsift/finsift/extract"
	"github.com/finsift/finsift/models"
	"github.com/finsift/finsift/page"
	"github.com/finsift/finsift/simhash"
	"github.com/finsift/finsift/sink"
	"github.com/finsift/finsift/snapshot"
	"github.com/finsift/finsift/webhook"
)

// simhashThreshold is the maximum Hamming distance at which two pages
// count as near-duplicates.
const simhashThreshold = 3

// Options configures a Crawler.
type Options struct {
	// Renderer enables Markdown snapshots of emitted pages when non-nil.
	Renderer *snapshot.Renderer

	// FetchTimeout bounds each page fetch.
	FetchTimeout time.Duration

	// Concurrency is the number of parallel fetch workers. Default: 4.
	Concurrency int
}

// Crawler runs crawl jobs. One Crawler is shared by all jobs.
type Crawler struct {
	engine    engine.Engine
	extractor *extract.Extractor
	sink      sink.Sink
	opts      Options
}

// New creates a Crawler.
func New(eng engine.Engine, ex *extract.Extractor, snk sink.Sink, opts Options) *Crawler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	return &Crawler{engine: eng, extractor: ex, sink: snk, opts: opts}
}

// bfsItem is a URL queued at a given depth.
type bfsItem struct {
	url   string
	depth int
}

// Run executes the crawl described by req, updating job as it goes.
// It blocks until the crawl finishes; callers launch it in a goroutine.
func (c *Crawler) Run(ctx context.Context, job *models.CrawlJob, req models.CrawlRequest) {
	req.Defaults()

	seedHosts := make(map[string]struct{})
	for _, seed := range req.StartURLs {
		if u, err := url.Parse(seed); err == nil && u.Host != "" {
			seedHosts[strings.ToLower(u.Host)] = struct{}{}
		}
	}

	limiter := rate.NewLimiter(rate.Limit(req.RequestsPerSecond), 1)
	sem := make(chan struct{}, c.opts.Concurrency)

	visited := &sync.Map{}
	var queue []bfsItem
	for _, seed := range req.StartURLs {
		if _, loaded := visited.LoadOrStore(seed, struct{}{}); !loaded {
			queue = append(queue, bfsItem{url: seed, depth: 0})
		}
	}

	var mu sync.Mutex
	var attempted, failed int
	var fingerprints []uint64

	for len(queue) > 0 {
		mu.Lock()
		budgetLeft := attempted < req.MaxRequests
		mu.Unlock()
		if !budgetLeft || ctx.Err() != nil {
			break
		}

		// Process the current BFS level in parallel.
		currentLevel := queue
		queue = nil

		var wg sync.WaitGroup
		var nextLevel []bfsItem
		var nextMu sync.Mutex

		for _, item := range currentLevel {
			mu.Lock()
			if attempted >= req.MaxRequests {
				mu.Unlock()
				break
			}
			attempted++
			mu.Unlock()

			wg.Add(1)
			go func(it bfsItem) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				if err := limiter.Wait(ctx); err != nil {
					return
				}

				links := c.crawlPage(ctx, job, req, it, seedHosts, &mu, &failed, &fingerprints)

				if it.depth < req.MaxDepth {
					for _, link := range links {
						if _, loaded := visited.LoadOrStore(link, struct{}{}); loaded {
							continue
						}
						nextMu.Lock()
						nextLevel = append(nextLevel, bfsItem{url: link, depth: it.depth + 1})
						nextMu.Unlock()
					}
				}
			}(item)
		}

		wg.Wait()
		queue = append(queue, nextLevel...)
	}

	mu.Lock()
	var status string
	switch {
	case failed == attempted && attempted > 0:
		status = "failed"
	case failed > 0:
		status = "partial"
	default:
		status = "completed"
	}
	mu.Unlock()

	job.Update(func(j *models.CrawlJob) { j.Status = status })

	snap := job.Snapshot()
	slog.Info("crawl job finished",
		"id", snap.ID,
		"status", snap.Status,
		"fetched", snap.Fetched,
		"skipped", snap.Skipped,
		"failed", snap.Failed,
		"records", len(snap.Records),
	)

	if job.WebhookURL != "" {
		eventType := "crawl.completed"
		if status == "failed" {
			eventType = "crawl.failed"
		}
		webhook.DeliverAsync(job.WebhookURL, job.WebhookSecret, &webhook.Event{
			Type:      eventType,
			JobID:     snap.ID,
			Timestamp: time.Now().Unix(),
			Data:      snap,
		})
	}
}

// crawlPage fetches and processes one URL, returning discovered links.
// seedHosts is read-only during the crawl, safe to share across workers.
func (c *Crawler) crawlPage(ctx context.Context, job *models.CrawlJob, req models.CrawlRequest, it bfsItem, seedHosts map[string]struct{}, mu *sync.Mutex, failed *int, fingerprints *[]uint64) []string {
	res, err := c.engine.Fetch(ctx, &engine.FetchRequest{
		URL:     it.url,
		Timeout: c.opts.FetchTimeout,
	})
	if err != nil {
		slog.Warn("fetch failed", "url", it.url, "error", err)
		mu.Lock()
		*failed++
		mu.Unlock()
		job.Update(func(j *models.CrawlJob) { j.Failed++ })
		return nil
	}

	pageURL := res.FinalURL
	if pageURL == "" {
		pageURL = it.url
	}
	job.Update(func(j *models.CrawlJob) { j.Fetched++ })

	p, err := page.New(pageURL, res.HTML)
	if err != nil {
		slog.Warn("page parse failed", "url", pageURL, "error", err)
		mu.Lock()
		*failed++
		mu.Unlock()
		job.Update(func(j *models.CrawlJob) { j.Failed++ })
		return nil
	}

	links := candidates(p, seedHosts, *req.FollowInternalOnly)

	// Near-duplicate suppression. Sites often serve the same product
	// under several URLs; a second copy adds nothing to the dataset.
	fp := simhash.Fingerprint(p.Text())
	mu.Lock()
	dup := false
	for _, seen := range *fingerprints {
		if simhash.Similar(fp, seen, simhashThreshold) {
			dup = true
			break
		}
	}
	if !dup {
		*fingerprints = append(*fingerprints, fp)
	}
	mu.Unlock()
	if dup {
		slog.Debug("near-duplicate page skipped", "url", pageURL)
		job.Update(func(j *models.CrawlJob) { j.Skipped++ })
		return links
	}

	rec, err := c.extractor.Extract(p, extract.Options{RedactPII: *req.RedactPII})
	if err != nil {
		mu.Lock()
		*failed++
		mu.Unlock()
		job.Update(func(j *models.CrawlJob) { j.Failed++ })
		return links
	}
	if rec == nil {
		// Not a product page. Skips are silent at warn level and above.
		slog.Debug("page skipped by classifier", "url", pageURL)
		job.Update(func(j *models.CrawlJob) { j.Skipped++ })
		return links
	}

	if err := c.sink.Put(ctx, rec); err != nil {
		slog.Error("sink write failed", "url", pageURL, "error", err)
		mu.Lock()
		*failed++
		mu.Unlock()
		job.Update(func(j *models.CrawlJob) { j.Failed++ })
		return links
	}

	if c.opts.Renderer != nil {
		if md, err := c.opts.Renderer.Render(res.HTML, pageURL); err == nil {
			if err := c.sink.PutSnapshot(ctx, pageURL, md); err != nil {
				slog.Warn("snapshot write failed", "url", pageURL, "error", err)
			}
		} else {
			slog.Warn("snapshot render failed", "url", pageURL, "error", err)
		}
	}

	job.Update(func(j *models.CrawlJob) { j.Records = append(j.Records, rec) })

	if job.WebhookURL != "" {
		webhook.DeliverAsync(job.WebhookURL, job.WebhookSecret, &webhook.Event{
			Type:      "product.record",
			JobID:     job.ID,
			Timestamp: time.Now().Unix(),
			Data:      rec,
		})
	}
	return links
}
