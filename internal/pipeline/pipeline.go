// Package pipeline wires one source's crawl end to end: session, listing
// extraction, block detection, fallback, detail pages, normalization, and
// persistence. The scheduler drives it across the roster; the CLI drives
// it directly for one-shot runs.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/newswatch/scout/internal/blockdetect"
	"github.com/newswatch/scout/internal/extract"
	"github.com/newswatch/scout/internal/fallback"
	"github.com/newswatch/scout/internal/normalize"
	"github.com/newswatch/scout/internal/pacing"
	"github.com/newswatch/scout/internal/session"
	"github.com/newswatch/scout/internal/sources"
	"github.com/newswatch/scout/internal/store"
	"github.com/newswatch/scout/pkg/models"
)

// Pipeline holds the collaborators for crawling a single source.
type Pipeline struct {
	Sessions *session.Manager
	Engine   *extract.Engine
	Chain    *fallback.Chain
	Pacer    *pacing.Pacer
	Files    *store.FileStore
	Records  *store.RecordStore

	DelayMin time.Duration
	DelayMax time.Duration
}

// Result reports what one source produced and how.
type Result struct {
	Records      []models.NormalizedRecord
	UsedFallback bool
}

// CrawlSource runs the full extraction flow for one source. shared, when
// non-nil, lends its browser process to the per-source session. Persistence
// failures are logged and do not discard the in-memory records; the only
// error returned is a failure to obtain a session at all.
func (p *Pipeline) CrawlSource(ctx context.Context, shared *session.Session, a *sources.Adapter) (Result, error) {
	start := time.Now()
	log.Info().Str("source", a.Name).Msg("Crawling source")

	if err := p.Pacer.WaitDomain(ctx, a.ListingURL); err != nil {
		return Result{}, err
	}

	sess, err := p.Sessions.Acquire(ctx, shared)
	if err != nil {
		return Result{}, err
	}
	defer p.Sessions.Release(sess)

	candidates, pageHTML, err := p.Engine.ExtractList(sess, a)
	if err != nil {
		log.Warn().Err(err).Str("source", a.Name).Msg("Listing extraction failed")
	}

	signal := blockdetect.Inspect(pageHTML)
	if signal.Blocked {
		log.Warn().Str("source", a.Name).Str("reason", string(signal.Reason)).Msg("Page classified as blocked")
	}

	var result Result
	if err != nil || signal.Blocked || len(candidates) == 0 {
		result.UsedFallback = true
		result.Records = p.Chain.Resolve(ctx, a, pageHTML)
		if len(result.Records) == 0 {
			log.Warn().Str("source", a.Name).Msg("Fallback chain exhausted, source yields nothing this cycle")
			return result, nil
		}
	} else {
		p.Pacer.Simulate(sess)
		result.Records = p.visitCandidates(ctx, sess, a, candidates)
	}

	p.persist(ctx, a.Name, result.Records)

	log.Info().
		Str("source", a.Name).
		Int("records", len(result.Records)).
		Bool("fallback", result.UsedFallback).
		Dur("duration", time.Since(start)).
		Msg("Source completed")
	return result, nil
}

// visitCandidates walks the candidate list in listing order, pulling each
// detail page with pacing delays in between. A failed detail page keeps
// the candidate (without body); a candidate is only dropped upstream, by
// the mandatory title/link filter.
func (p *Pipeline) visitCandidates(ctx context.Context, sess *session.Session, a *sources.Adapter, candidates []models.RawCandidate) []models.NormalizedRecord {
	records := make([]models.NormalizedRecord, 0, len(candidates))
	for i, cand := range candidates {
		if ctx.Err() != nil {
			break
		}

		detailURL := normalize.ResolveURL(cand.Link, a.ListingURL)
		if err := p.Pacer.WaitDomain(ctx, detailURL); err != nil {
			break
		}

		body := p.Engine.ExtractDetail(sess, a, detailURL)

		rec := models.NormalizedRecord{
			Source:      a.Name,
			URL:         detailURL,
			Title:       cand.Title,
			Description: cand.Description,
			Category:    cand.Category,
			Author:      cand.Author,
			ContentType: "article",
			Content:     body,
			PublishedAt: normalize.NormalizeDate(cand.Published),
		}
		records = append(records, normalize.Sanitize(rec, a.ListingURL))

		// Pace between detail visits, not after the last one.
		if i < len(candidates)-1 {
			p.Pacer.Delay(ctx, p.DelayMin, p.DelayMax)
		}
	}
	return records
}

// persist writes to both sinks. Failures are logged; extracted records stay
// available to the caller regardless.
func (p *Pipeline) persist(ctx context.Context, source string, records []models.NormalizedRecord) {
	if len(records) == 0 {
		return
	}
	if p.Files != nil {
		if err := p.Files.Write(source, records); err != nil {
			log.Error().Err(err).Str("source", source).Msg("Output file write failed")
		}
	}
	if p.Records != nil {
		if err := p.Records.Upsert(ctx, records); err != nil {
			log.Error().Err(err).Str("source", source).Msg("Record store upsert failed")
		}
	}
}
