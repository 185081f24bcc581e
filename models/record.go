package models

// Product type values assigned by the text classifier. BNPL wording is
// checked before loan wording; anything else falls through to the generic
// credit-product bucket.
const (
	ProductTypeBNPL   = "BNPL"
	ProductTypeLoan   = "Loan"
	ProductTypeCredit = "Credit Product"
)

// Snippet length caps for the element-scoped extractors.
const (
	MaxFeesLen        = 400
	MaxEligibilityLen = 800
)

// ProductRecord is one extracted financial product page. A record is
// created once per qualifying page and handed to the sink as-is; it is
// never mutated after assembly. When PII redaction is enabled, every
// textual field has already passed through the redactor.
type ProductRecord struct {
	// Provider is the institution offering the product, resolved through
	// the og:site_name → application-name → header text → hostname chain.
	Provider string `json:"provider"`

	// ProductName comes from the first h1, og:title, or document title.
	ProductName string `json:"product_name"`

	// ProductType is one of ProductTypeBNPL, ProductTypeLoan, ProductTypeCredit.
	ProductType string `json:"product_type"`

	// APR is the first rate-like figure found near a rate indicator.
	// Free-form; may be empty.
	APR string `json:"apr"`

	// Fees is a snippet from the first fee-related element, at most
	// MaxFeesLen characters.
	Fees string `json:"fees"`

	// Term is the first duration reference ("6 months", "2 years"), or the
	// bare keyword when no number was found nearby.
	Term string `json:"term"`

	// Eligibility is a snippet from the first eligibility/requirements
	// element, at most MaxEligibilityLen characters.
	Eligibility string `json:"eligibility"`

	// SampleMonthlyPayment is the advertised payment figure, captured
	// verbatim. Only populated when both APR and Term were found.
	SampleMonthlyPayment string `json:"sample_monthly_payment"`

	// SourceURL is the resolved URL of the page the record came from.
	SourceURL string `json:"source_url"`

	// ExtractedAt is the RFC 3339 UTC timestamp of record assembly.
	ExtractedAt string `json:"extracted_at"`
}
