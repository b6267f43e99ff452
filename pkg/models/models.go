package models

import "time"

// RawCandidate is an article entry scraped from a listing page before
// normalization. It is ephemeral: candidates are transformed into
// NormalizedRecords or dropped, never persisted directly.
type RawCandidate struct {
	Title       string `json:"title"`
	Link        string `json:"link"` // possibly relative to the listing URL
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Author      string `json:"author,omitempty"`
	Published   string `json:"published,omitempty"` // raw site-provided time string
	ImageURL    string `json:"image_url,omitempty"`
}

// Valid reports whether the candidate carries the two mandatory fields.
func (c RawCandidate) Valid() bool {
	return c.Title != "" && c.Link != ""
}

// NormalizedRecord is the persisted output schema. URL is absolute,
// timestamps are ISO-8601, and text fields carry no markup.
type NormalizedRecord struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Author      string `json:"author,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Content     string `json:"content,omitempty"`
	Preview     string `json:"preview,omitempty"`
	PublishedAt string `json:"published_at"`
	FetchedAt   string `json:"fetched_at"`
}

// BlockReason classifies why a page load did not yield usable content.
type BlockReason string

const (
	ReasonCaptcha      BlockReason = "captcha"
	ReasonBlockMessage BlockReason = "block-message"
	ReasonNoContent    BlockReason = "no-content"
	ReasonEmptyPage    BlockReason = "empty-page"
	ReasonNone         BlockReason = "none"
)

// BlockSignal is the result of inspecting a loaded page. Produced fresh
// per page load and never persisted.
type BlockSignal struct {
	Blocked bool
	Reason  BlockReason
}

// CycleStats summarizes one scheduler pass over the source roster.
type CycleStats struct {
	Cycle    int           `json:"cycle"`
	Sources  int           `json:"sources"`
	Records  int           `json:"records"`
	Failures int           `json:"failures"`
	Fallback int           `json:"fallback"`
	Duration time.Duration `json:"duration"`
	Started  time.Time     `json:"started"`
}
