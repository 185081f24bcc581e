package models

// ExtractResponse is the response for POST /api/v1/extract.
type ExtractResponse struct {
	// Success indicates whether the pipeline completed without errors.
	Success bool `json:"success"`

	// Skipped is true when the classifier declined the page. Not an
	// error: Success stays true and Record is nil.
	Skipped bool `json:"skipped,omitempty"`

	// Record is the assembled product record; nil when Skipped.
	Record *ProductRecord `json:"record,omitempty"`

	// FinalURL is the URL after following redirects (fetch mode only).
	FinalURL string `json:"final_url,omitempty"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// ClassifyResponse is the response for POST /api/v1/classify.
type ClassifyResponse struct {
	Success bool `json:"success"`

	// Accept is the gate decision: true means the page is worth extracting.
	Accept bool `json:"accept"`

	// Reason names the signal that fired: "url_keyword", "text_marker",
	// or "none".
	Reason string `json:"reason"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// FetchMs is the time spent fetching the page, zero for supplied HTML.
	FetchMs int64 `json:"fetch_ms"`

	// ExtractMs is the time spent classifying and extracting fields.
	ExtractMs int64 `json:"extract_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // "healthy" or "degraded"
	Uptime  string `json:"uptime"`
	Crawls  int    `json:"active_crawls"`
	Version string `json:"version"`
}
