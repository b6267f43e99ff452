// Package extract runs a source adapter's selector maps against loaded
// pages. Parsing is split from navigation: ParseList and RenderBody are
// pure functions over HTML snapshots, while Engine drives the browser
// session and feeds them.
package extract

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/newswatch/scout/internal/session"
	"github.com/newswatch/scout/internal/sources"
	"github.com/newswatch/scout/pkg/models"
)

// MaxCandidates bounds per-cycle cost: a listing page never yields more
// than this many candidates regardless of how many items it renders.
const MaxCandidates = 10

// Engine extracts candidates and article bodies through a browser session.
type Engine struct {
	navTimeout  time.Duration
	waitTimeout time.Duration
}

// NewEngine returns an Engine with the given per-navigation and
// per-selector-wait timeouts.
func NewEngine(navTimeout, waitTimeout time.Duration) *Engine {
	if navTimeout <= 0 {
		navTimeout = 30 * time.Second
	}
	if waitTimeout <= 0 {
		waitTimeout = 10 * time.Second
	}
	return &Engine{navTimeout: navTimeout, waitTimeout: waitTimeout}
}

// ExtractList navigates the session to the adapter's listing URL and parses
// candidates out of the rendered page. The snapshot HTML is returned
// alongside so the caller can run block detection and the emergency
// fallback against the same bytes.
func (e *Engine) ExtractList(s *session.Session, a *sources.Adapter) ([]models.RawCandidate, string, error) {
	if err := s.Navigate(a.ListingURL, e.navTimeout); err != nil {
		return nil, "", err
	}
	if a.List.Container != "" && !s.WaitVisible(a.List.Container, e.waitTimeout) {
		log.Debug().Str("source", a.Name).Str("selector", a.List.Container).Msg("Listing container never appeared")
	}

	html, err := s.HTML(e.navTimeout)
	if err != nil {
		return nil, "", err
	}

	return ParseList(html, a), html, nil
}

// ParseList extracts raw candidates from listing-page HTML. Every field
// selector is independently optional: a missing field yields an empty value
// rather than dropping the item. Items missing title or link are discarded,
// and the result is capped at MaxCandidates.
func ParseList(html string, a *sources.Adapter) []models.RawCandidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn().Err(err).Str("source", a.Name).Msg("Listing HTML unparsable")
		return nil
	}

	root := doc.Selection
	if a.List.Container != "" {
		if container := doc.Find(a.List.Container).First(); container.Length() > 0 {
			root = container
		}
	}

	var out []models.RawCandidate
	root.Find(a.List.Item).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		c := models.RawCandidate{
			Title:       fieldText(item, a.List.Title),
			Link:        fieldLink(item, a.List.Link),
			Description: fieldText(item, a.List.Description),
			Category:    fieldText(item, a.List.Category),
			Author:      fieldText(item, a.List.Author),
			Published:   fieldTime(item, a.List.Date),
			ImageURL:    fieldImage(item, a.List.Image),
		}
		if !c.Valid() {
			return true
		}
		out = append(out, c)
		return len(out) < MaxCandidates
	})

	return out
}

func fieldText(item *goquery.Selection, sel string) string {
	if sel == "" {
		return ""
	}
	return strings.TrimSpace(item.Find(sel).First().Text())
}

// fieldLink resolves the href for a candidate: the matched node itself if
// it is an anchor, otherwise the first anchor inside it.
func fieldLink(item *goquery.Selection, sel string) string {
	if sel == "" {
		return ""
	}
	node := item.Find(sel).First()
	if href, ok := node.Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	href, _ := node.Find("a[href]").First().Attr("href")
	return strings.TrimSpace(href)
}

func fieldTime(item *goquery.Selection, sel string) string {
	if sel == "" {
		return ""
	}
	node := item.Find(sel).First()
	if dt, ok := node.Attr("datetime"); ok && dt != "" {
		return strings.TrimSpace(dt)
	}
	return strings.TrimSpace(node.Text())
}

func fieldImage(item *goquery.Selection, sel string) string {
	if sel == "" {
		return ""
	}
	node := item.Find(sel).First()
	for _, attr := range []string{"src", "data-src", "srcset"} {
		if v, ok := node.Attr(attr); ok && v != "" {
			// srcset: take the first URL
			if i := strings.IndexAny(v, " ,"); attr == "srcset" && i > 0 {
				v = v[:i]
			}
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ExtractDetail navigates to url and serializes the article body into a
// markdown-like plain-text form. A navigation failure, wait timeout, or
// missing content node yields an empty string, never an error: a bad
// detail page fails that candidate only.
func (e *Engine) ExtractDetail(s *session.Session, a *sources.Adapter, url string) string {
	if err := s.Navigate(url, e.navTimeout); err != nil {
		log.Warn().Err(err).Str("source", a.Name).Str("url", url).Msg("Detail navigation failed")
		return ""
	}

	contentSel := a.Detail.Content
	if contentSel == "" {
		contentSel = "article"
	}
	if !s.WaitVisible(contentSel, e.waitTimeout) {
		log.Debug().Str("source", a.Name).Str("selector", contentSel).Str("url", url).Msg("Content selector never appeared")
		return ""
	}

	html, err := s.HTML(e.navTimeout)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Detail snapshot failed")
		return ""
	}

	return RenderBody(html, a)
}
