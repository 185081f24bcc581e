// Package snapshot renders a Markdown copy of a product page's main
// content. Snapshots are stored next to the structured record so an
// analyst can audit what the extractors saw without re-fetching a page
// that may have changed or disappeared.
package snapshot

import (
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum extracted text length (in characters)
// for readability output to be trusted. Below it the main-content
// detection has likely failed and the raw HTML is converted instead.
const minContentLength = 50

// Renderer converts page HTML into Markdown snapshots. The converter is
// created once and reused across all pages (goroutine-safe).
type Renderer struct {
	conv *converter.Converter
}

// NewRenderer initialises a Renderer.
//
//   - base plugin: strips script, style, iframe, noscript, head, meta —
//     noise in an audit artifact.
//   - commonmark plugin: standard Markdown rendering.
//   - table plugin: rate and fee tables are the most load-bearing part
//     of a product page, so table structure is preserved.
func NewRenderer() *Renderer {
	return &Renderer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Render extracts the main content of rawHTML with the Mozilla
// Readability algorithm and converts it to Markdown. Readability
// failures fall back to converting the full document; a snapshot must
// never be the reason a record is dropped, so the only error returned is
// from Markdown conversion itself.
func (r *Renderer) Render(rawHTML, sourceURL string) (string, error) {
	content := mainContent(rawHTML, sourceURL)
	return r.conv.ConvertString(content, converter.WithDomain(sourceURL))
}

// mainContent returns the readability-extracted HTML, or rawHTML when
// extraction fails or yields too little text.
func mainContent(rawHTML, sourceURL string) string {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Debug("snapshot: invalid source URL, using full document", "url", sourceURL, "error", err)
		return rawHTML
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Debug("snapshot: readability failed, using full document", "url", sourceURL, "error", err)
		return rawHTML
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		return rawHTML
	}
	return article.Content
}
