package fallback

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/newswatch/scout/internal/extract"
	"github.com/newswatch/scout/internal/normalize"
	"github.com/newswatch/scout/internal/sources"
	"github.com/newswatch/scout/pkg/models"
)

// minLinkTextLen filters navigation chrome out of the anchor scan: real
// headlines are longer than "Home" or "World".
const minLinkTextLen = 20

// emergencyStrategy is the last resort: scan whatever page did load for
// anchors that look like article links, judged by the adapter's
// article-path patterns and the length of the link text.
type emergencyStrategy struct{}

func (e *emergencyStrategy) Name() string { return "emergency" }

func (e *emergencyStrategy) Resolve(_ context.Context, a *sources.Adapter, lastHTML string) ([]models.NormalizedRecord, error) {
	if strings.TrimSpace(lastHTML) == "" {
		return nil, fmt.Errorf("no page loaded for %s", a.Name)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(lastHTML))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var records []models.NormalizedRecord
	doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href, _ := anchor.Attr("href")
		if !matchesArticlePath(href, a.ArticlePatterns) {
			return true
		}

		title := strings.TrimSpace(anchor.Text())
		if len(title) < minLinkTextLen {
			return true
		}

		absolute := normalize.ResolveURL(href, a.ListingURL)
		if seen[absolute] {
			return true
		}
		seen[absolute] = true

		rec := models.NormalizedRecord{
			Source:      a.Name,
			URL:         absolute,
			Title:       title,
			Description: enclosingBlockText(anchor, title),
			ContentType: "emergency",
		}
		records = append(records, normalize.Sanitize(rec, a.ListingURL))
		return len(records) < extract.MaxCandidates
	})

	log.Debug().Str("source", a.Name).Int("anchors", len(records)).Msg("Emergency scrape completed")
	return records, nil
}

func matchesArticlePath(href string, patterns []string) bool {
	if href == "" {
		return false
	}
	if len(patterns) == 0 {
		// Without patterns fall back to a crude heuristic: article URLs
		// tend to have deep, hyphenated paths.
		return strings.Count(href, "/") >= 3 && strings.Contains(href, "-")
	}
	for _, p := range patterns {
		if strings.Contains(href, p) {
			return true
		}
	}
	return false
}

// enclosingBlockText takes the nearest enclosing block's text as the
// description, minus the headline itself.
func enclosingBlockText(anchor *goquery.Selection, title string) string {
	block := anchor.Closest("article, li, div, section")
	if block.Length() == 0 {
		return ""
	}
	text := strings.TrimSpace(block.First().Text())
	text = strings.TrimSpace(strings.Replace(text, title, "", 1))
	return normalize.Truncate(text, 500)
}
