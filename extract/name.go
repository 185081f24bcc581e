package extract

import (
	"strings"

	"github.com/finsift/finsift/models"
	"github.com/finsift/finsift/page"
)

// ProductName resolves the product's display name: first h1 → og:title →
// document title → "". An empty result is valid, not an error.
func ProductName(p *page.Page) string {
	doc := p.Doc()
	return firstNonEmpty(
		func() string { return strings.TrimSpace(doc.Find("h1").First().Text()) },
		func() string { return metaContent(doc, `meta[property="og:title"]`) },
		func() string { return strings.TrimSpace(doc.Find("title").First().Text()) },
	)
}

// bnplTerms are checked before loanTerms: BNPL copy routinely contains
// the word "loan", so the precedence order matters.
var bnplTerms = []string{"bnpl", "buy now", "pay later", "pay-later"}

var loanTerms = []string{"loan", "personal loan", "microloan", "installment"}

// ProductType buckets the page into BNPL, Loan, or the generic credit
// product type from the normalized text.
func ProductType(normalizedText string) string {
	for _, term := range bnplTerms {
		if strings.Contains(normalizedText, term) {
			return models.ProductTypeBNPL
		}
	}
	for _, term := range loanTerms {
		if strings.Contains(normalizedText, term) {
			return models.ProductTypeLoan
		}
	}
	return models.ProductTypeCredit
}
