// Package fallback implements the layered recovery strategies used when
// primary extraction yields nothing or the page is blocked: syndication
// feeds, search-engine discovery, and a best-effort link scrape of whatever
// page did load.
package fallback

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/newswatch/scout/internal/sources"
	"github.com/newswatch/scout/pkg/models"
)

// Strategy is one alternative way to produce records for a source when the
// primary path fails. lastHTML is the rendered HTML of the (possibly
// degraded) listing page, or "" when none loaded at all.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, a *sources.Adapter, lastHTML string) ([]models.NormalizedRecord, error)
}

// Chain tries its strategies in order and short-circuits on the first
// non-empty result. Each strategy is independently fallible: a failure is
// logged and the chain moves on.
type Chain struct {
	strategies []Strategy
}

// NewChain builds the standard feed → discovery → emergency chain. client
// is used for the plain-HTTP strategies; feed documents and search result
// pages are not rendered pages, so no browser session is involved.
func NewChain(client *http.Client, userAgent string) *Chain {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Chain{
		strategies: []Strategy{
			&feedStrategy{client: client, userAgent: userAgent},
			&discoveryStrategy{client: client, userAgent: userAgent},
			&emergencyStrategy{},
		},
	}
}

// NewChainWith builds a chain from explicit strategies, in order. Used by
// tests and by callers that need a narrowed chain.
func NewChainWith(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Resolve runs the chain for one source. Returns nil when every strategy
// fails or comes back empty; the caller logs the exhaustion.
func (c *Chain) Resolve(ctx context.Context, a *sources.Adapter, lastHTML string) []models.NormalizedRecord {
	for _, strat := range c.strategies {
		if ctx.Err() != nil {
			return nil
		}

		records, err := strat.Resolve(ctx, a, lastHTML)
		if err != nil {
			log.Warn().Err(err).Str("source", a.Name).Str("strategy", strat.Name()).Msg("Fallback strategy failed")
			continue
		}
		if len(records) > 0 {
			log.Info().
				Str("source", a.Name).
				Str("strategy", strat.Name()).
				Int("records", len(records)).
				Msg("Fallback recovered records")
			return records
		}
		log.Debug().Str("source", a.Name).Str("strategy", strat.Name()).Msg("Fallback strategy empty")
	}
	return nil
}
