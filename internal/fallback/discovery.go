package fallback

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/newswatch/scout/internal/extract"
	"github.com/newswatch/scout/internal/normalize"
	"github.com/newswatch/scout/internal/retry"
	"github.com/newswatch/scout/internal/sources"
	"github.com/newswatch/scout/pkg/models"
)

// searchEndpoint is DuckDuckGo's HTML-only results page: no JS required,
// stable result markup, and it tolerates site-scoped queries.
const searchEndpoint = "https://html.duckduckgo.com/html/"

const maxSearchBytes = 1 << 20

// discoveryStrategy harvests article links from a site-scoped search-engine
// query when the source's own pages give nothing usable.
type discoveryStrategy struct {
	client    *http.Client
	userAgent string
}

func (d *discoveryStrategy) Name() string { return "discovery" }

func (d *discoveryStrategy) Resolve(ctx context.Context, a *sources.Adapter, _ string) ([]models.NormalizedRecord, error) {
	host, err := hostOf(a.ListingURL)
	if err != nil {
		return nil, err
	}

	query := url.Values{"q": {"site:" + host + " news"}}
	var body string
	err = retry.Do(ctx, retry.DefaultConfig(), func() error {
		b, err := d.fetch(ctx, searchEndpoint+"?"+query.Encode())
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	var records []models.NormalizedRecord
	doc.Find("div.result").EachWithBreak(func(_ int, result *goquery.Selection) bool {
		link := result.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}

		target := unwrapRedirect(href)
		targetHost, err := hostOf(target)
		if err != nil || !sameSite(targetHost, host) {
			return true
		}

		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}

		rec := models.NormalizedRecord{
			Source:      a.Name,
			URL:         target,
			Title:       title,
			Description: strings.TrimSpace(result.Find(".result__snippet").Text()),
			ContentType: "discovery",
		}
		records = append(records, normalize.Sanitize(rec, a.ListingURL))
		return len(records) < extract.MaxCandidates
	})

	log.Debug().Str("source", a.Name).Int("results", len(records)).Msg("Discovery results harvested")
	return records, nil
}

func (d *discoveryStrategy) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", retry.HTTPError{StatusCode: resp.StatusCode, URL: searchEndpoint}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBytes))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// unwrapRedirect decodes DuckDuckGo's redirect wrapper (//duckduckgo.com/l/?uddg=<encoded>)
// back to the destination URL. Plain links pass through.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		if decoded, err := url.QueryUnescape(uddg); err == nil {
			return decoded
		}
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www."), nil
}

// sameSite matches hosts ignoring a www prefix, accepting subdomains of
// the source host (edition.cnn.com vs cnn.com).
func sameSite(candidate, source string) bool {
	return candidate == source || strings.HasSuffix(candidate, "."+source)
}
