package normalize

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/newswatch/scout/pkg/models"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  hello   world  ", "hello world"},
		{"<b>Breaking</b> news: storm &amp; floods", "Breaking news: storm & floods"},
		{"line\none\n\n\ttwo", "line one two"},
		{"", ""},
		{"plain", "plain"},
	}
	for _, c := range cases {
		if got := CleanText(c.in); got != c.want {
			t.Errorf("CleanText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolveURL(t *testing.T) {
	base := "https://news.example.com/world/"
	cases := []struct {
		href, want string
	}{
		{"/politics/story-1", "https://news.example.com/politics/story-1"},
		{"story-2", "https://news.example.com/world/story-2"},
		{"https://other.example.org/x", "https://other.example.org/x"},
		{"", ""},
	}
	for _, c := range cases {
		if got := ResolveURL(c.href, base); got != c.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", c.href, got, c.want)
		}
	}
}

func TestResolveURLIdempotent(t *testing.T) {
	base := "https://news.example.com/section/"
	once := ResolveURL("/a/b?c=1", base)
	twice := ResolveURL(once, base)
	if once != twice {
		t.Fatalf("resolving an absolute URL changed it: %q -> %q", once, twice)
	}
}

func TestNormalizeDateAtAlwaysReturnsISO(t *testing.T) {
	now := time.Date(2025, 3, 18, 17, 0, 0, 0, time.UTC)
	inputs := []string{
		"",
		"garbage that is not a date",
		"2025-03-18T12:00:00Z",
		"Mar 18, 2025, 5:16PM EDT",
		"3 hours ago",
		"just now",
		"yesterday",
		"18 March 2025",
	}
	for _, in := range inputs {
		got := NormalizeDateAt(in, now)
		if _, err := time.Parse(time.RFC3339, got); err != nil {
			t.Errorf("NormalizeDateAt(%q) = %q, not RFC 3339: %v", in, got, err)
		}
	}
}

func TestNormalizeDateAtRelative(t *testing.T) {
	now := time.Date(2025, 3, 18, 17, 0, 0, 0, time.UTC)
	got := NormalizeDateAt("2 hours ago", now)
	want := now.Add(-2 * time.Hour).Format(time.RFC3339)
	if got != want {
		t.Errorf("NormalizeDateAt(2 hours ago) = %q, want %q", got, want)
	}

	got = NormalizeDateAt("a minute ago", now)
	want = now.Add(-time.Minute).Format(time.RFC3339)
	if got != want {
		t.Errorf("NormalizeDateAt(a minute ago) = %q, want %q", got, want)
	}
}

func TestNormalizeDateAtPassthrough(t *testing.T) {
	now := time.Now()
	got := NormalizeDateAt("2024-11-02T08:30:00Z", now)
	if got != "2024-11-02T08:30:00Z" {
		t.Errorf("ISO input rewritten to %q", got)
	}
}

func TestNormalizeDateAtUnparsableFallsBackToNow(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	got := NormalizeDateAt("???", now)
	if got != now.Format(time.RFC3339) {
		t.Errorf("fallback = %q, want now %q", got, now.Format(time.RFC3339))
	}
}

func TestSanitize(t *testing.T) {
	rec := models.NormalizedRecord{
		Source: "example",
		URL:    "/world/story-9",
		Title:  "  <i>Title</i>  here ",
		Content: strings.Repeat("word ", 100),
	}
	out := Sanitize(rec, "https://news.example.com/")

	if out.Title != "Title here" {
		t.Errorf("Title = %q", out.Title)
	}
	if out.URL != "https://news.example.com/world/story-9" {
		t.Errorf("URL = %q", out.URL)
	}
	if out.ID == "" {
		t.Error("ID not assigned")
	}
	if out.FetchedAt == "" {
		t.Error("FetchedAt not assigned")
	}
	if out.PublishedAt != out.FetchedAt {
		t.Errorf("empty PublishedAt should default to FetchedAt, got %q", out.PublishedAt)
	}
	if len(out.Preview) > previewLength+3 {
		t.Errorf("preview too long: %d chars", len(out.Preview))
	}
	if !strings.HasSuffix(out.Preview, "…") {
		t.Errorf("long content preview should be truncated, got %q", out.Preview)
	}
}

func TestTruncateRuneBoundary(t *testing.T) {
	s := strings.Repeat("日", 100) // 3 bytes per rune
	got := Truncate(s, 250)
	if !utf8.ValidString(got) {
		t.Fatalf("Truncate split a rune: %q", got[len(got)-6:])
	}
	if len(got) > 250 {
		t.Fatalf("len = %d, want <= 250", len(got))
	}
	if got != strings.Repeat("日", 83) {
		t.Errorf("got %d bytes, want 249", len(got))
	}

	if Truncate("abc", 10) != "abc" {
		t.Error("short input should pass through")
	}
	if Truncate("abc", 0) != "" {
		t.Error("zero budget should yield empty")
	}
}

// A body with no spaces near the cut point must still produce a valid
// UTF-8 preview.
func TestPreviewKeepsRuneBoundaries(t *testing.T) {
	rec := models.NormalizedRecord{
		Title:   "t",
		URL:     "https://e.com/a",
		Content: "a" + strings.Repeat("日", 120),
	}
	out := Sanitize(rec, "https://e.com/")
	if !utf8.ValidString(out.Preview) {
		t.Fatalf("preview is not valid UTF-8: %q", out.Preview)
	}
	if !strings.HasSuffix(out.Preview, "…") {
		t.Errorf("long content preview should be truncated, got %q", out.Preview)
	}
}

func TestSanitizeKeepsExistingID(t *testing.T) {
	rec := models.NormalizedRecord{ID: "fixed", Title: "t", URL: "https://e.com/a"}
	out := Sanitize(rec, "https://e.com/")
	if out.ID != "fixed" {
		t.Errorf("ID overwritten: %q", out.ID)
	}
}
