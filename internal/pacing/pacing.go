// Package pacing makes automated browsing look less automated: randomized
// scrolling and pointer movement on loaded pages, uniform delays between
// detail-page visits, and a per-domain token bucket in front of every
// navigation.
package pacing

import (
	"context"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/newswatch/scout/internal/session"
)

const (
	minScrollSteps = 2
	maxScrollSteps = 5
	// probability of following a random in-page link and navigating back
	linkFollowChance = 0.3
)

// Pacer owns the randomness source and the per-domain limiters. The crawl
// worker is the only caller today; the limiter map is locked so that does
// not have to stay true.
type Pacer struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	limiters map[string]*rate.Limiter
	perHost  rate.Limit
	burst    int
}

// New creates a Pacer. requestsPerSecond and burst bound navigation rate
// per target host; seed fixes the randomness source for tests (pass 0 for
// time-based seeding).
func New(requestsPerSecond float64, burst int, seed int64) *Pacer {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1.0
	}
	if burst <= 0 {
		burst = 2
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Pacer{
		rnd:      rand.New(rand.NewSource(seed)),
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Delay suspends for a duration sampled uniformly from [min, max], or until
// ctx is done. Used between successive detail-page visits.
func (p *Pacer) Delay(ctx context.Context, min, max time.Duration) {
	if max < min {
		min, max = max, min
	}
	d := min
	if max > min {
		d = min + time.Duration(p.intn(int(max-min)))
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// WaitDomain blocks until the token bucket for urlStr's host allows another
// request. Unparsable URLs pass through; they will fail at navigation.
func (p *Pacer) WaitDomain(ctx context.Context, urlStr string) error {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return nil
	}

	p.mu.Lock()
	lim, ok := p.limiters[u.Host]
	if !ok {
		lim = rate.NewLimiter(p.perHost, p.burst)
		p.limiters[u.Host] = lim
	}
	p.mu.Unlock()

	return lim.Wait(ctx)
}

// Simulate performs a bounded sequence of randomized scroll increments and
// pointer moves on the session's page, occasionally following a random
// in-page link and navigating back. Best-effort: every failure is swallowed
// and logged, never propagated.
func (p *Pacer) Simulate(s *session.Session) {
	pageCtx := s.PageCtx()

	steps := minScrollSteps + p.intn(maxScrollSteps-minScrollSteps+1)
	for i := 0; i < steps; i++ {
		x := float64(200 + p.intn(1200))
		y := float64(150 + p.intn(700))
		delta := float64(200 + p.intn(500))

		runCtx, cancel := context.WithTimeout(pageCtx, 5*time.Second)
		err := chromedp.Run(runCtx,
			input.DispatchMouseEvent(input.MouseMoved, x, y),
			input.DispatchMouseEvent(input.MouseWheel, x, y).
				WithDeltaX(0).
				WithDeltaY(delta),
		)
		cancel()
		if err != nil {
			log.Debug().Err(err).Msg("Pacing gesture failed")
			return
		}

		p.sleep(200, 600)
	}

	if p.float() < linkFollowChance {
		p.wanderLink(s)
	}
}

// wanderLink clicks a random same-page anchor and navigates back. Both the
// click and the back navigation are allowed to fail silently.
func (p *Pacer) wanderLink(s *session.Session) {
	pageCtx := s.PageCtx()

	var hrefs []string
	runCtx, cancel := context.WithTimeout(pageCtx, 5*time.Second)
	err := chromedp.Run(runCtx, chromedp.Evaluate(
		`Array.from(document.querySelectorAll('a[href^="/"], a[href^="http"]')).slice(0, 50).map(a => a.href)`,
		&hrefs,
	))
	cancel()
	if err != nil || len(hrefs) == 0 {
		return
	}

	target := hrefs[p.intn(len(hrefs))]
	log.Debug().Str("url", target).Msg("Pacing detour")

	runCtx, cancel = context.WithTimeout(pageCtx, 15*time.Second)
	defer cancel()
	if err := chromedp.Run(runCtx, chromedp.Navigate(target)); err != nil {
		log.Debug().Err(err).Msg("Pacing detour navigation failed")
		return
	}
	p.sleep(400, 900)
	if err := chromedp.Run(runCtx, chromedp.NavigateBack()); err != nil {
		log.Debug().Err(err).Msg("Pacing detour back-navigation failed")
	}
}

func (p *Pacer) sleep(minMs, maxMs int) {
	time.Sleep(time.Duration(minMs+p.intn(maxMs-minMs+1)) * time.Millisecond)
}

func (p *Pacer) intn(n int) int {
	if n <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.Intn(n)
}

func (p *Pacer) float() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.Float64()
}
