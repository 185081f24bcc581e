package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/finsift/finsift/page"
)

// Provider resolves the institution name through an ordered fallback
// chain: og:site_name meta → application-name meta → site-name/header
// element text → URL hostname. Later candidates are only tried when
// earlier ones are absent or empty.
func Provider(p *page.Page) string {
	doc := p.Doc()
	return firstNonEmpty(
		func() string { return metaContent(doc, `meta[property="og:site_name"]`) },
		func() string { return metaContent(doc, `meta[name="application-name"]`) },
		func() string {
			return strings.TrimSpace(doc.Find(".site-name, #site-name, header").First().Text())
		},
		func() string { return p.Host() },
	)
}

// metaContent returns the trimmed content attribute of the first element
// matching selector, or "".
func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
