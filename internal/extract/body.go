package extract

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/newswatch/scout/internal/sources"
)

// defaultNoise covers the nodes stripped from every article body when the
// adapter declares nothing more specific.
const defaultNoise = "script, style, noscript, iframe, aside, form, " +
	"[class*='share'], [class*='promo'], [class*='newsletter'], [class*='related'], " +
	"[id*='taboola'], [class*='advert'], [class*='-ad-'], [data-ad]"

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// RenderBody serializes the article body out of detail-page HTML: locate
// the adapter's content node, strip noise, then convert the remaining
// block-level elements to a markdown-like plain text that keeps heading
// levels, list bullets, and blockquote markers without carrying markup.
// Returns "" when the content node is absent.
func RenderBody(html string, a *sources.Adapter) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn().Err(err).Str("source", a.Name).Msg("Detail HTML unparsable")
		return ""
	}

	contentSel := a.Detail.Content
	if contentSel == "" {
		contentSel = "article"
	}
	content := doc.Find(contentSel).First()
	if content.Length() == 0 {
		return ""
	}

	noise := a.Detail.Noise
	if noise == "" {
		noise = defaultNoise
	}
	content.Find(noise).Remove()

	if a.Detail.Blocks != "" {
		// Adapter narrows the body to specific block elements; keep only
		// those, in document order.
		var parts []string
		content.Find(a.Detail.Blocks).Each(func(_ int, block *goquery.Selection) {
			if text := convertBlock(block); text != "" {
				parts = append(parts, text)
			}
		})
		return strings.TrimSpace(strings.Join(parts, "\n\n"))
	}

	return strings.TrimSpace(blankLinesRe.ReplaceAllString(convertBlock(content), "\n\n"))
}

func convertBlock(sel *goquery.Selection) string {
	conv := md.NewConverter("", true, nil)
	return strings.TrimSpace(conv.Convert(sel))
}
