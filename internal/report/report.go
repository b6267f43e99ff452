// Package report emits aggregate summaries of crawl activity: a structured
// line per cycle and a periodic store-backed overview.
package report

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/newswatch/scout/internal/store"
	"github.com/newswatch/scout/pkg/models"
)

// Reporter reads the record store for aggregate views. It never writes.
type Reporter struct {
	records       *store.RecordStore
	windowMinutes int
}

// New returns a Reporter summarizing the last windowMinutes of activity.
func New(records *store.RecordStore, windowMinutes int) *Reporter {
	if windowMinutes <= 0 {
		windowMinutes = 120
	}
	return &Reporter{records: records, windowMinutes: windowMinutes}
}

// Cycle logs the outcome of one roster pass.
func (r *Reporter) Cycle(stats models.CycleStats) {
	log.Info().
		Int("cycle", stats.Cycle).
		Int("sources", stats.Sources).
		Int("records", stats.Records).
		Int("failures", stats.Failures).
		Int("fallback_sources", stats.Fallback).
		Dur("duration", stats.Duration).
		Msg("Cycle completed")
}

// Aggregate logs a store-backed overview: distinct sources seen and record
// volume inside the recent window, with a per-source breakdown at debug.
func (r *Reporter) Aggregate(ctx context.Context) {
	if r.records == nil {
		return
	}

	srcs, err := r.records.DistinctSources(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Aggregate report: source listing failed")
		return
	}
	recent, err := r.records.FindRecent(ctx, r.windowMinutes)
	if err != nil {
		log.Warn().Err(err).Msg("Aggregate report: recent query failed")
		return
	}

	perSource := make(map[string]int)
	for _, rec := range recent {
		perSource[rec.Source]++
	}

	log.Info().
		Int("sources_total", len(srcs)).
		Int("records_recent", len(recent)).
		Int("window_minutes", r.windowMinutes).
		Msg("Aggregate report")

	for name, count := range perSource {
		log.Debug().Str("source", name).Int("records", count).Msg("Aggregate per-source")
	}
}
