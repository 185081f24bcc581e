package models

import "sync"

// CrawlRequest is the payload for POST /api/v1/crawl.
type CrawlRequest struct {
	// StartURLs are the seed pages. Required, at least one.
	StartURLs []string `json:"start_urls" binding:"required,min=1,dive,url"`

	// MaxRequests limits the total number of pages fetched in this crawl.
	// Default: 50. Max: 500.
	MaxRequests int `json:"max_requests,omitempty" binding:"omitempty,min=1,max=500"`

	// MaxDepth limits how many link hops from a seed are followed.
	// Default: 3. Max: 10.
	MaxDepth int `json:"max_depth,omitempty" binding:"omitempty,min=1,max=10"`

	// FollowInternalOnly restricts link following to the seed's host.
	// Malformed candidate URLs are allowed through (fail open).
	// Default: true.
	FollowInternalOnly *bool `json:"follow_internal_only,omitempty"`

	// RedactPII controls the redaction pass on extracted fields.
	// Default: true.
	RedactPII *bool `json:"redact_pii,omitempty"`

	// RequestsPerSecond throttles fetches for this crawl. Default: 2.
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" binding:"omitempty,min=0"`

	WebhookURL    string `json:"webhook_url,omitempty" binding:"omitempty,url"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *CrawlRequest) Defaults() {
	if r.MaxRequests == 0 {
		r.MaxRequests = 50
	}
	if r.MaxDepth == 0 {
		r.MaxDepth = 3
	}
	if r.FollowInternalOnly == nil {
		t := true
		r.FollowInternalOnly = &t
	}
	if r.RedactPII == nil {
		t := true
		r.RedactPII = &t
	}
	if r.RequestsPerSecond == 0 {
		r.RequestsPerSecond = 2
	}
}

// CrawlResponse is the immediate response for POST /api/v1/crawl.
type CrawlResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CrawlStatusResponse is the response for GET /api/v1/crawl/:id.
type CrawlStatusResponse struct {
	ID      string           `json:"id"`
	Status  string           `json:"status"`
	Fetched int              `json:"fetched"`
	Skipped int              `json:"skipped"`
	Failed  int              `json:"failed"`
	Records []*ProductRecord `json:"records,omitempty"`
}

// CrawlJob tracks an in-progress crawl operation. The crawler mutates
// counters from worker goroutines while the status endpoint reads them,
// so all access goes through the mutex.
type CrawlJob struct {
	mu            sync.Mutex
	ID            string
	Status        string // "processing", "completed", "partial", "failed"
	Fetched       int    // pages fetched
	Skipped       int    // pages the classifier declined
	Failed        int    // pages that errored (fetch or extraction)
	Records       []*ProductRecord
	CreatedAt     int64 // unix timestamp
	WebhookURL    string
	WebhookSecret string
}

// Update runs fn while holding the job lock.
func (j *CrawlJob) Update(fn func(*CrawlJob)) {
	j.mu.Lock()
	defer j.mu.Unlock()
	fn(j)
}

// Snapshot returns a consistent view of the job for the status endpoint.
func (j *CrawlJob) Snapshot() CrawlStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	records := make([]*ProductRecord, len(j.Records))
	copy(records, j.Records)
	return CrawlStatusResponse{
		ID:      j.ID,
		Status:  j.Status,
		Fetched: j.Fetched,
		Skipped: j.Skipped,
		Failed:  j.Failed,
		Records: records,
	}
}
