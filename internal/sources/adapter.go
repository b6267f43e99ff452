// Package sources holds the declarative per-site configuration that drives
// the extraction engine. An Adapter describes where list items and article
// fields live on one site; it carries no behavior of its own.
package sources

import (
	"fmt"
	"strings"
)

// ListSelectors maps listing-page fields to CSS selectors. Container and
// Item locate the repeated elements; the rest are resolved within each item.
// Link and Title are mandatory, everything else degrades to empty.
type ListSelectors struct {
	Container   string `yaml:"container"`
	Item        string `yaml:"item"`
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description,omitempty"`
	Category    string `yaml:"category,omitempty"`
	Author      string `yaml:"author,omitempty"`
	Date        string `yaml:"date,omitempty"`
	Image       string `yaml:"image,omitempty"`
	Video       string `yaml:"video,omitempty"`
	ReadingTime string `yaml:"reading_time,omitempty"`
}

// DetailSelectors maps article-page fields to CSS selectors. Content locates
// the body root; Blocks lists the block-level elements serialized into the
// plain-text body.
type DetailSelectors struct {
	Content  string `yaml:"content"`
	Title    string `yaml:"title,omitempty"`
	Subtitle string `yaml:"subtitle,omitempty"`
	Author   string `yaml:"author,omitempty"`
	Date     string `yaml:"date,omitempty"`
	Tags     string `yaml:"tags,omitempty"`
	Category string `yaml:"category,omitempty"`
	Image    string `yaml:"image,omitempty"`
	Blocks   string `yaml:"blocks,omitempty"` // defaults to standard block elements
	Noise    string `yaml:"noise,omitempty"`  // nodes stripped before serialization
}

// Adapter is the immutable configuration for one source. Adapters are loaded
// once at startup and shared read-only across cycles.
type Adapter struct {
	Name            string          `yaml:"name"`
	ListingURL      string          `yaml:"listing_url"`
	FeedURLs        []string        `yaml:"feed_urls,omitempty"`        // probed by the feed fallback
	ArticlePatterns []string        `yaml:"article_patterns,omitempty"` // href substrings for the emergency fallback
	Enabled         bool            `yaml:"enabled"`
	List            ListSelectors   `yaml:"list"`
	Detail          DetailSelectors `yaml:"detail"`
}

// Validate enforces the mandatory selector invariant: a source without
// Link and Title list selectors can never produce a usable candidate.
func (a *Adapter) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if a.ListingURL == "" {
		return fmt.Errorf("source %s: listing_url is required", a.Name)
	}
	if strings.TrimSpace(a.List.Link) == "" {
		return fmt.Errorf("source %s: list.link selector is required", a.Name)
	}
	if strings.TrimSpace(a.List.Title) == "" {
		return fmt.Errorf("source %s: list.title selector is required", a.Name)
	}
	return nil
}
