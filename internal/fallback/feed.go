package fallback

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"github.com/newswatch/scout/internal/extract"
	"github.com/newswatch/scout/internal/normalize"
	"github.com/newswatch/scout/internal/retry"
	"github.com/newswatch/scout/internal/sources"
	"github.com/newswatch/scout/pkg/models"
)

// wellKnownFeedPaths are probed at the site root when the adapter declares
// no feed URLs, or when all declared feeds fail.
var wellKnownFeedPaths = []string{
	"/rss",
	"/feed",
	"/rss.xml",
	"/feed.xml",
	"/atom.xml",
	"/index.xml",
}

const maxFeedBytes = 2 << 20

// feedStrategy recovers records from the source's syndication feed. Feeds
// are fetched over plain HTTP and parsed as XML; they are documents, not
// rendered pages, so the browser session stays out of it.
type feedStrategy struct {
	client    *http.Client
	userAgent string
}

func (f *feedStrategy) Name() string { return "feed" }

func (f *feedStrategy) Resolve(ctx context.Context, a *sources.Adapter, _ string) ([]models.NormalizedRecord, error) {
	var lastErr error
	for _, feedURL := range f.candidateURLs(a) {
		records, err := f.tryFeed(ctx, a, feedURL)
		if err != nil {
			log.Debug().Err(err).Str("source", a.Name).Str("feed", feedURL).Msg("Feed probe failed")
			lastErr = err
			continue
		}
		if len(records) > 0 {
			return records, nil
		}
	}
	return nil, lastErr
}

func (f *feedStrategy) candidateURLs(a *sources.Adapter) []string {
	urls := append([]string{}, a.FeedURLs...)

	if base, err := url.Parse(a.ListingURL); err == nil {
		root := url.URL{Scheme: base.Scheme, Host: base.Host}
		for _, path := range wellKnownFeedPaths {
			urls = append(urls, root.String()+path)
		}
	}
	return urls
}

func (f *feedStrategy) tryFeed(ctx context.Context, a *sources.Adapter, feedURL string) ([]models.NormalizedRecord, error) {
	var body string
	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		b, err := f.fetch(ctx, feedURL)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !looksLikeFeed(body) {
		return nil, fmt.Errorf("no feed markup at %s", feedURL)
	}

	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	records := make([]models.NormalizedRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}

		rec := models.NormalizedRecord{
			Source:      a.Name,
			URL:         item.Link,
			Title:       item.Title,
			Description: item.Description,
			ContentType: "feed",
		}
		if len(item.Categories) > 0 {
			rec.Category = item.Categories[0]
		}
		if item.Author != nil {
			rec.Author = item.Author.Name
		} else if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
			rec.Author = item.DublinCoreExt.Creator[0]
		}
		if content := item.Content; content != "" {
			rec.Content = normalize.CleanText(content)
		}
		if item.PublishedParsed != nil {
			rec.PublishedAt = item.PublishedParsed.UTC().Format("2006-01-02T15:04:05Z07:00")
		} else {
			rec.PublishedAt = normalize.NormalizeDate(item.Published)
		}

		records = append(records, normalize.Sanitize(rec, a.ListingURL))
		if len(records) >= extract.MaxCandidates {
			break
		}
	}
	return records, nil
}

func (f *feedStrategy) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", retry.HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// looksLikeFeed sniffs for recognizable feed markup so an HTML error page
// served at /rss is rejected before it reaches the parser.
func looksLikeFeed(body string) bool {
	head := strings.ToLower(body)
	if len(head) > 1024 {
		head = head[:1024]
	}
	return strings.Contains(head, "<rss") ||
		strings.Contains(head, "<feed") ||
		strings.Contains(head, "<rdf:rdf")
}
