package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/finsift/finsift/page"
)

// followSegments are the URL path segments that mark a link as worth
// following. Anything else (blog posts, careers, support) is noise for
// a product crawl.
var followSegments = map[string]struct{}{
	"product":   {},
	"products":  {},
	"loan":      {},
	"loans":     {},
	"bnpl":      {},
	"pay-later": {},
}

// candidates returns the links worth following from a fetched page:
// a[href] values resolved against the page URL, restricted to http(s)
// and to paths that look like product or listing pages. When
// internalOnly is set, candidates on a host outside seedHosts are
// dropped; a candidate whose host cannot be determined fails open and
// is kept.
func candidates(p *page.Page, seedHosts map[string]struct{}, internalOnly bool) []string {
	doc := p.Doc()
	if doc == nil {
		return nil
	}
	base := p.Base()

	var out []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			// Host and path cannot be inspected, so the scope check
			// fails open and the fetch decides.
			if hasFollowSegment(href) {
				out = appendUnique(out, seen, href)
			}
			return
		}

		resolved := ref
		if base != nil {
			resolved = base.ResolveReference(ref)
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		resolved.Fragment = ""

		if internalOnly && resolved.Host != "" {
			if _, ok := seedHosts[strings.ToLower(resolved.Host)]; !ok {
				return
			}
		}
		if !hasFollowSegment(resolved.Path) {
			return
		}
		out = appendUnique(out, seen, resolved.String())
	})
	return out
}

// hasFollowSegment reports whether any path segment is a follow keyword.
func hasFollowSegment(path string) bool {
	for _, seg := range strings.Split(strings.ToLower(path), "/") {
		if _, ok := followSegments[seg]; ok {
			return true
		}
	}
	return false
}

func appendUnique(out []string, seen map[string]struct{}, u string) []string {
	if _, ok := seen[u]; ok {
		return out
	}
	seen[u] = struct{}{}
	return append(out, u)
}
