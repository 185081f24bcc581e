package models

// ExtractRequest is the payload for POST /api/v1/extract.
// Exactly one of URL or HTML must be set: with URL the service fetches the
// page itself; with HTML the caller supplies an already-fetched document
// (SourceURL then labels the record).
type ExtractRequest struct {
	// URL is the page to fetch and extract. Optional when HTML is set.
	URL string `json:"url,omitempty" binding:"omitempty,url"`

	// HTML is a pre-fetched document body. Optional when URL is set.
	HTML string `json:"html,omitempty"`

	// SourceURL labels records extracted from caller-supplied HTML.
	SourceURL string `json:"source_url,omitempty" binding:"omitempty,url"`

	// RedactPII controls the redaction pass over textual fields.
	// Default: true.
	RedactPII *bool `json:"redact_pii,omitempty"`

	// CSSSelector optionally scopes extraction to the matched elements'
	// outer HTML. Falls back to the full document when nothing matches.
	CSSSelector string `json:"css_selector,omitempty"`

	// MaxAge enables the response cache: a cached record younger than
	// MaxAge milliseconds is returned without re-fetching. 0 disables.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	// Timeout is the fetch deadline in seconds. Default: 30. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`
}

// Defaults applies default values to unset fields.
func (r *ExtractRequest) Defaults() {
	if r.RedactPII == nil {
		t := true
		r.RedactPII = &t
	}
	if r.Timeout == 0 {
		r.Timeout = 30
	}
	if r.SourceURL == "" {
		r.SourceURL = r.URL
	}
}

// ClassifyRequest is the payload for POST /api/v1/classify.
// It runs only the cheap accept/skip gate, without field extraction.
type ClassifyRequest struct {
	// URL is the page URL; matched against the product keyword pattern
	// and, when HTML is absent, fetched for the text check.
	URL string `json:"url" binding:"required,url"`

	// HTML is an optional pre-fetched document body.
	HTML string `json:"html,omitempty"`
}
