package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/finsift/finsift/models"
	"github.com/finsift/finsift/page"
)

// Fees and eligibility are element-scoped: they return the text of one
// matching element rather than searching the full page text, which bounds
// scan cost and keeps the returned snippet local to its section.

// snippetSelector lists the element kinds considered as snippet sources.
// Scanning these instead of every node keeps the first match close to the
// actual content instead of an enclosing wrapper div.
const snippetSelector = "p, li, td, dt, dd, section, h2, h3, h4"

// Fees returns the text of the first fee-related element, truncated to
// models.MaxFeesLen characters. An element qualifies when its class or id
// contains "fee", or its text mentions the word; either way the text must
// actually contain "fee".
func Fees(p *page.Page) string {
	doc := p.Doc()

	if sel := doc.Find(`[class*="fee"], [id*="fee"]`).First(); sel.Length() > 0 {
		if text := strings.TrimSpace(sel.Text()); containsFold(text, "fee") {
			return Truncate(text, models.MaxFeesLen)
		}
	}

	text := firstSnippet(doc, []string{"fee"})
	return Truncate(text, models.MaxFeesLen)
}

// eligibilityMarkers identify elements describing who may apply.
var eligibilityMarkers = []string{"eligibility", "requirements", "who can apply"}

// Eligibility returns the text of the first element mentioning an
// eligibility marker, truncated to models.MaxEligibilityLen characters.
func Eligibility(p *page.Page) string {
	text := firstSnippet(p.Doc(), eligibilityMarkers)
	return Truncate(text, models.MaxEligibilityLen)
}

// firstSnippet walks snippet-sized elements in document order and returns
// the trimmed text of the first one containing any marker
// (case-insensitive), or "".
func firstSnippet(doc *goquery.Document, markers []string) string {
	var found string
	doc.Find(snippetSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return true
		}
		for _, marker := range markers {
			if containsFold(text, marker) {
				found = text
				return false
			}
		}
		return true
	})
	return found
}

func containsFold(text, substr string) bool {
	return strings.Contains(strings.ToLower(text), substr)
}

// Truncate caps s at max characters (runes, so multi-byte text is never
// split mid-character).
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
