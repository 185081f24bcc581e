// Package extract turns a parsed page into a structured product record.
// Each field has its own independent, side-effect-free extractor; the
// Extractor orchestrates classifier → extractors → redactor → record.
package extract

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/finsift/finsift/classify"
	"github.com/finsift/finsift/models"
	"github.com/finsift/finsift/page"
	"github.com/finsift/finsift/redact"
)

// Options controls one extraction pass.
type Options struct {
	// RedactPII runs every textual field through the PII redactor before
	// the record is assembled.
	RedactPII bool
}

// Extractor assembles product records from pages. Stateless and safe for
// concurrent use; one instance serves all pages of a crawl.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract runs the full pipeline for one page.
//
// Returns (nil, nil) when the classifier skips the page — a normal,
// silent decision, not an error. Extraction failures on malformed
// documents are recovered and returned as an error: the page produces no
// record, and the caller logs and moves on. A record is either complete
// or absent, never partial.
func (e *Extractor) Extract(p *page.Page, opts Options) (rec *models.ProductRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = models.NewExtractError(models.ErrCodeExtraction,
				"extraction failed on malformed document",
				fmt.Errorf("%v", r))
			slog.Warn("extraction failed", "url", p.URL(), "panic", fmt.Sprint(r))
		}
	}()

	text := p.Text()
	if !classify.IsProductPage(p.URL(), text) {
		return nil, nil
	}

	apr := APR(text)
	term := Term(text)

	// No principal is known, so the payment is never computed — it is
	// only captured when the page advertises one alongside a rate and
	// a term.
	payment := ""
	if apr != "" && term != "" {
		payment = SampleMonthlyPayment(text)
	}

	// Snippet caps are re-applied after redaction: a placeholder token
	// can be longer than the substring it replaced.
	r := redact.New(opts.RedactPII)
	return &models.ProductRecord{
		Provider:             r.Redact(Provider(p)),
		ProductName:          r.Redact(ProductName(p)),
		ProductType:          ProductType(text),
		APR:                  r.Redact(apr),
		Fees:                 Truncate(r.Redact(Fees(p)), models.MaxFeesLen),
		Term:                 r.Redact(term),
		Eligibility:          Truncate(r.Redact(Eligibility(p)), models.MaxEligibilityLen),
		SampleMonthlyPayment: r.Redact(payment),
		SourceURL:            p.URL(),
		ExtractedAt:          time.Now().UTC().Format(time.RFC3339),
	}, nil
}
