package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/newswatch/scout/internal/config"
	"github.com/newswatch/scout/internal/pipeline"
	"github.com/newswatch/scout/internal/report"
	"github.com/newswatch/scout/internal/session"
	"github.com/newswatch/scout/internal/sources"
	"github.com/newswatch/scout/pkg/models"
)

// Scheduler drives the daemon: a shared browser session, a cron-triggered
// crawl cycle over the enabled roster, and periodic aggregate reports.
// Cycles never overlap; a tick that lands while a cycle is in flight is
// skipped.
type Scheduler struct {
	cfg      *config.Config
	registry *sources.Registry
	pipe     *pipeline.Pipeline
	sessions *session.Manager
	reporter *report.Reporter

	state  CycleState
	shared *session.Session
	cron   *cron.Cron
}

func New(cfg *config.Config, registry *sources.Registry, pipe *pipeline.Pipeline, sessions *session.Manager, reporter *report.Reporter) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		registry: registry,
		pipe:     pipe,
		sessions: sessions,
		reporter: reporter,
	}
}

// Run starts the daemon loop and blocks until ctx is cancelled. The shared
// session is created up front; failing to create it is a startup error and
// the daemon does not start. The first cycle runs immediately, subsequent
// cycles on the configured interval.
func (s *Scheduler) Run(ctx context.Context) error {
	shared, err := s.sessions.Acquire(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting shared browser session: %w", err)
	}
	s.shared = shared

	log.Info().
		Dur("interval", s.cfg.CheckInterval).
		Int("recycle_after", s.cfg.RecycleAfter).
		Int("sources", len(s.registry.Enabled())).
		Msg("scheduler started")

	s.runCycle(ctx)

	s.cron = cron.New()
	every := fmt.Sprintf("@every %s", s.cfg.CheckInterval)
	if _, err := s.cron.AddFunc(every, func() { s.runCycle(ctx) }); err != nil {
		s.sessions.Release(s.shared)
		return fmt.Errorf("scheduling crawl cycle: %w", err)
	}
	s.cron.Start()

	<-ctx.Done()
	s.shutdown()
	return nil
}

// shutdown stops the cron loop, waits for any in-flight cycle, then tears
// the shared session down. When no cycle is running the wait returns at
// once, so an idle daemon exits immediately.
func (s *Scheduler) shutdown() {
	s.state.RequestShutdown()
	log.Info().Bool("cycle_in_flight", s.state.Busy()).Msg("shutting down")

	stopped := s.cron.Stop()
	<-stopped.Done()

	// The immediate first cycle runs outside cron; poll the busy flag in
	// case it is still draining.
	for s.state.Busy() {
		time.Sleep(50 * time.Millisecond)
	}

	if s.shared != nil {
		s.sessions.Release(s.shared)
		s.shared = nil
	}
	log.Info().Int("cycles", s.state.Completed()).Msg("scheduler stopped")
}

// runCycle performs one pass over the enabled roster. Sources are crawled
// sequentially; a failing source is logged and the cycle moves on. Shutdown
// and context cancellation are polled between sources, never mid-source.
func (s *Scheduler) runCycle(ctx context.Context) {
	cycleNo, ok := s.state.TryBegin()
	if !ok {
		log.Warn().Msg("previous cycle still running, skipping tick")
		return
	}
	defer s.state.End()

	if s.state.ShuttingDown() || ctx.Err() != nil {
		return
	}

	s.maybeRecycle(ctx)

	stats := models.CycleStats{
		Cycle:   cycleNo,
		Started: time.Now().UTC(),
	}

	for _, a := range s.registry.Enabled() {
		if s.state.ShuttingDown() || ctx.Err() != nil {
			log.Info().Str("source", a.Name).Msg("shutdown requested, cycle stops before source")
			break
		}
		stats.Sources++
		res, err := s.pipe.CrawlSource(ctx, s.shared, a)
		if err != nil {
			stats.Failures++
			log.Error().Err(err).Str("source", a.Name).Msg("source failed")
			continue
		}
		stats.Records += len(res.Records)
		if res.UsedFallback {
			stats.Fallback++
		}
	}

	stats.Duration = time.Since(stats.Started)
	s.reporter.Cycle(stats)

	if s.cfg.ReportEvery > 0 && cycleNo%s.cfg.ReportEvery == 0 {
		s.reporter.Aggregate(ctx)
	}
}

// maybeRecycle replaces the shared session once RecycleAfter cycles have
// completed since the last replacement. Checked at cycle start so the
// roster never switches sessions mid-pass. A failed replacement leaves the
// cycle running without a shared process; per-source sessions then own
// their browsers.
func (s *Scheduler) maybeRecycle(ctx context.Context) {
	if !s.state.ShouldRecycle(s.cfg.RecycleAfter) {
		return
	}
	log.Info().Int("after_cycles", s.cfg.RecycleAfter).Msg("recycling shared browser session")
	if s.shared != nil {
		s.sessions.Release(s.shared)
		s.shared = nil
	}
	fresh, err := s.sessions.Acquire(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("could not replace shared session")
	} else {
		s.shared = fresh
	}
	s.state.MarkRecycled()
}
