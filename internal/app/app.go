// Package app provides application initialization and lifecycle management.
package app

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/newswatch/scout/internal/config"
	"github.com/newswatch/scout/internal/extract"
	"github.com/newswatch/scout/internal/fallback"
	"github.com/newswatch/scout/internal/pacing"
	"github.com/newswatch/scout/internal/pipeline"
	"github.com/newswatch/scout/internal/report"
	"github.com/newswatch/scout/internal/scheduler"
	"github.com/newswatch/scout/internal/session"
	"github.com/newswatch/scout/internal/sources"
	"github.com/newswatch/scout/internal/store"
)

// Application holds every long-lived dependency and manages its lifecycle.
// It is created once at startup, shared across CLI commands, and torn down
// with Close().
type Application struct {
	Config   *config.Config
	Logger   *zerolog.Logger
	Registry *sources.Registry
	Sessions *session.Manager
	Files    *store.FileStore
	Records  *store.RecordStore
	Pipeline *pipeline.Pipeline
	Reporter *report.Reporter

	startTime time.Time
}

// New wires the application: logger, source roster, persistence, browser
// session manager, extraction engine, pacing, fallback chain and pipeline.
// No browser process is started here; sessions are created on demand.
func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := setupLogger(cfg)

	registry, err := sources.NewRegistry(cfg.RosterPath, cfg.EnableSources)
	if err != nil {
		return nil, fmt.Errorf("loading source roster: %w", err)
	}
	logger.Debug().Int("sources", len(registry.All())).Msg("roster loaded")

	records, err := store.OpenRecordStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening record store: %w", err)
	}
	files := store.NewFileStore(cfg.OutputDir)

	sessions := session.NewManager(session.Options{
		Headless:  cfg.Headless,
		UserAgent: cfg.UserAgent,
		Locale:    cfg.Locale,
		Proxy:     cfg.Proxy,
	})

	pacer := pacing.New(cfg.DomainRPS, cfg.DomainBurst, time.Now().UnixNano())
	engine := extract.NewEngine(cfg.NavTimeout, cfg.WaitTimeout)

	httpClient := &http.Client{
		Timeout: cfg.NavTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	chain := fallback.NewChain(httpClient, cfg.UserAgent)

	pipe := &pipeline.Pipeline{
		Sessions: sessions,
		Engine:   engine,
		Chain:    chain,
		Pacer:    pacer,
		Files:    files,
		Records:  records,
		DelayMin: cfg.DelayMin,
		DelayMax: cfg.DelayMax,
	}

	reporter := report.New(records, cfg.RecentWindow)

	app := &Application{
		Config:    cfg,
		Logger:    &logger,
		Registry:  registry,
		Sessions:  sessions,
		Files:     files,
		Records:   records,
		Pipeline:  pipe,
		Reporter:  reporter,
		startTime: time.Now(),
	}
	logger.Debug().Msg("application initialized")
	return app, nil
}

// Scheduler builds the daemon loop over this application's dependencies.
func (a *Application) Scheduler() *scheduler.Scheduler {
	return scheduler.New(a.Config, a.Registry, a.Pipeline, a.Sessions, a.Reporter)
}

// Close tears down persistent resources. Errors are logged; the first one
// is returned so callers can surface a dirty shutdown.
func (a *Application) Close() error {
	a.Logger.Debug().Dur("uptime", time.Since(a.startTime)).Msg("closing application")
	var first error
	if a.Records != nil {
		if err := a.Records.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("closing record store")
			first = err
		}
	}
	return first
}

func setupLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer
	if cfg.JSONLog {
		w = os.Stderr
	} else {
		w = zerolog.NewConsoleWriter()
	}
	logger := log.Output(w).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
