// Package normalize turns raw scraped values into the persisted schema:
// markup-free text, absolute URLs, and ISO-8601 timestamps.
package normalize

import (
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/newswatch/scout/pkg/models"
)

const previewLength = 240

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText strips HTML tags and collapses runs of whitespace to a single
// space. Non-HTML input passes through with only whitespace collapsed.
func CleanText(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.WriteString(tokenizer.Token().Data)
			b.WriteByte(' ')
		}
	}

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(b.String(), " "))
}

// ResolveURL returns href unchanged when it is already absolute, otherwise
// resolves it against base. Idempotent: resolving an already-resolved URL
// is a no-op. Unparsable input is returned as-is.
func ResolveURL(href, base string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		// An absent link must stay absent, not resolve to the base page.
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}

// Sanitize trims a record to the persisted field set: markup-free text,
// absolute URL against baseURL, a preview derived from the body, and a
// fresh ID plus fetch timestamp when unset.
func Sanitize(rec models.NormalizedRecord, baseURL string) models.NormalizedRecord {
	rec.Title = CleanText(rec.Title)
	rec.Description = CleanText(rec.Description)
	rec.Category = CleanText(rec.Category)
	rec.Author = CleanText(rec.Author)
	rec.URL = ResolveURL(rec.URL, baseURL)

	if rec.Preview == "" && rec.Content != "" {
		rec.Preview = preview(rec.Content)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.FetchedAt == "" {
		rec.FetchedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if rec.PublishedAt == "" {
		rec.PublishedAt = rec.FetchedAt
	}
	return rec
}

func preview(content string) string {
	flat := CleanText(content)
	if len(flat) <= previewLength {
		return flat
	}
	cut := Truncate(flat, previewLength)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

// Truncate shortens s to at most max bytes without splitting a rune, so
// truncated CJK or other multi-byte text stays valid UTF-8.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

var relativeRe = regexp.MustCompile(`(?i)^(?:about\s+)?(a|an|\d+)\s*(second|sec|minute|min|hour|hr|day|week)s?\s+ago$`)

// trailing timezone abbreviation, e.g. "5:16PM EDT" or "12:00 GMT+2"
var tzAbbrRe = regexp.MustCompile(`\s+[A-Z]{2,4}(?:[+-]\d{1,2})?$`)

// NormalizeDate canonicalizes a site-provided publication time string to
// ISO-8601 UTC. See NormalizeDateAt for the rules.
func NormalizeDate(raw string) string {
	return NormalizeDateAt(raw, time.Now())
}

// NormalizeDateAt is NormalizeDate with an explicit reference time, which
// anchors relative phrases and the unparsable-input fallback.
//
// Unparsable input deliberately falls back to the reference time rather
// than failing: a wrong-but-recent timestamp keeps the record usable, and
// the parse failure is logged so the selector map can be fixed.
func NormalizeDateAt(raw string, now time.Time) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.UTC().Format(time.RFC3339)
	}

	// Already ISO-8601: pass through, normalized to UTC.
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().Format(time.RFC3339)
	}

	// Relative phrasing: "3 hours ago", "a minute ago".
	if m := relativeRe.FindStringSubmatch(raw); m != nil {
		return now.Add(-relativeOffset(m[1], m[2])).UTC().Format(time.RFC3339)
	}
	switch strings.ToLower(raw) {
	case "just now", "now":
		return now.UTC().Format(time.RFC3339)
	case "yesterday":
		return now.Add(-24 * time.Hour).UTC().Format(time.RFC3339)
	}

	// Comma/AM-PM formats frequently carry a trailing timezone abbreviation
	// ("Mar 18, 2025, 5:16PM EDT") that most parsers reject. Strip it and
	// retry; the abbreviation is ambiguous anyway so UTC is as good a guess
	// as any.
	if t, err := dateparse.ParseAny(raw); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	if stripped := tzAbbrRe.ReplaceAllString(raw, ""); stripped != raw {
		if t, err := dateparse.ParseAny(stripped); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}

	log.Debug().Str("raw", raw).Msg("Unparsable date, falling back to reference time")
	return now.UTC().Format(time.RFC3339)
}

func relativeOffset(amount, unit string) time.Duration {
	n := 1
	if amount != "a" && amount != "an" {
		for _, r := range amount {
			if r < '0' || r > '9' {
				return 0
			}
		}
		n = 0
		for _, r := range amount {
			n = n*10 + int(r-'0')
		}
	}

	switch strings.ToLower(unit) {
	case "second", "sec":
		return time.Duration(n) * time.Second
	case "minute", "min":
		return time.Duration(n) * time.Minute
	case "hour", "hr":
		return time.Duration(n) * time.Hour
	case "day":
		return time.Duration(n) * 24 * time.Hour
	case "week":
		return time.Duration(n) * 7 * 24 * time.Hour
	}
	return 0
}
