// Package session manages scriptable browser sessions: one Chrome process
// owning one isolated context owning one page, with a fixed identity and a
// resource-blocking policy installed for the context's lifetime.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// blockedURLPatterns is the network-level deny list installed on every
// session context. Images, fonts, media, and analytics beacons are cut to
// reduce load time and fingerprint surface; article text never lives there.
var blockedURLPatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg", "*.ico", "*.avif",
	"*.woff", "*.woff2", "*.ttf", "*.otf",
	"*.mp4", "*.webm", "*.mp3", "*.m4a",
	"*.css",
	"*google-analytics*",
	"*googletagmanager*",
	"*doubleclick*",
	"*facebook.net*",
	"*hotjar*",
	"*segment.io*",
	"*sentry*",
	"*chartbeat*",
	"*scorecardresearch*",
}

// Options configures the session identity shared by every page the manager
// opens.
type Options struct {
	Headless  bool
	UserAgent string
	Locale    string
	Viewport  Viewport
	Proxy     string
}

// Viewport is the fixed emulated window size.
type Viewport struct {
	Width  int64
	Height int64
}

// Session is a page plus whatever it stands on. An owned session carries
// the full process / browser context / page chain; a borrowed session is a
// single tab inside another session's browser, and Release closes only
// that tab.
type Session struct {
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc
	pageCtx     context.Context
	pageStop    context.CancelFunc

	owned bool

	mu       sync.Mutex
	released bool
}

// PageCtx returns the chromedp context for the session's page. Valid until
// Release.
func (s *Session) PageCtx() context.Context {
	return s.pageCtx
}

// Owned reports whether releasing this session also closes its process.
func (s *Session) Owned() bool {
	return s.owned
}

// Released reports whether the session has been torn down.
func (s *Session) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Manager acquires and releases browser sessions with a consistent identity
// and blocking policy.
type Manager struct {
	opts Options
}

// NewManager returns a Manager. Zero-value option fields get the package
// defaults (headless, desktop viewport, en-US locale).
func NewManager(opts Options) *Manager {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Locale == "" {
		opts.Locale = "en-US"
	}
	if opts.Viewport.Width == 0 {
		opts.Viewport = Viewport{Width: 1920, Height: 1080}
	}
	return &Manager{opts: opts}
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// allocatorOptions is the hardened Chrome flag set. Flags mirror what keeps
// headless Chrome stable and quiet in long-running daemons.
func (m *Manager) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("lang", m.opts.Locale),
		chromedp.Flag("window-size", fmt.Sprintf("%d,%d", m.opts.Viewport.Width, m.opts.Viewport.Height)),
		chromedp.Flag("disk-cache-size", "0"),
		chromedp.UserAgent(m.opts.UserAgent),
	}

	if path := findChrome(); path != "" {
		opts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, opts...)
	}
	if m.opts.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}
	if m.opts.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(m.opts.Proxy))
	}
	return opts
}

// Acquire creates a session ready for navigation. When shared is non-nil
// and still alive, the new session opens a fresh tab inside the shared
// session's browser process; the borrowed process is not closed by Release.
// When shared is nil (or already released) a new owned process is started.
//
// On every acquisition the page gets the identity (user agent, locale,
// viewport) and the network deny list installed for its lifetime.
func (m *Manager) Acquire(ctx context.Context, shared *Session) (*Session, error) {
	s := m.build(ctx, shared)
	if err := m.warmUp(s); err != nil {
		m.Release(s)
		return nil, fmt.Errorf("session warm-up failed: %w", err)
	}

	log.Debug().Bool("owned", s.owned).Msg("Session acquired")
	return s, nil
}

// build assembles the session's context chain without touching the browser.
// A borrowed session hangs its page directly off the shared session's
// browser context: chromedp only reuses a process when the parent is a
// browser context, so deriving from the allocator would silently start a
// second Chrome.
func (m *Manager) build(ctx context.Context, shared *Session) *Session {
	s := &Session{}

	// A borrowed session has no browser context of its own, so only a
	// process-owning session can lend one.
	if shared != nil && shared.browserCtx != nil && !shared.Released() {
		pageCtx, pageStop := chromedp.NewContext(shared.browserCtx)
		s.pageCtx = pageCtx
		s.pageStop = pageStop
		return s
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, m.allocatorOptions()...)
	s.allocCancel = allocCancel
	s.owned = true

	// Context before page: the page context is derived from the browser
	// context, so creation and teardown must mirror each other.
	browserCtx, browserStop := chromedp.NewContext(allocCtx)
	s.browserCtx = browserCtx
	s.browserStop = browserStop

	pageCtx, pageStop := chromedp.NewContext(browserCtx)
	s.pageCtx = pageCtx
	s.pageStop = pageStop
	return s
}

// warmUp starts the browser (for owned sessions) and installs the session
// identity on the page. Starting the process on the browser context, not
// the page, is what lets later borrowers open tabs in it.
func (m *Manager) warmUp(s *Session) error {
	if s.owned {
		if err := chromedp.Run(s.browserCtx); err != nil {
			return fmt.Errorf("start browser: %w", err)
		}
	}

	return chromedp.Run(s.pageCtx,
		network.Enable(),
		network.SetBlockedURLS(blockedURLPatterns),
		emulation.SetUserAgentOverride(m.opts.UserAgent).WithAcceptLanguage(m.opts.Locale),
		chromedp.EmulateViewport(m.opts.Viewport.Width, m.opts.Viewport.Height),
		chromedp.Navigate("about:blank"),
	)
}

// Release tears the session down page → context → (if owned) process. Each
// step runs regardless of earlier failures, and calling Release again is a
// no-op; an already-closed process is never touched twice.
func (m *Manager) Release(s *Session) {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	s.mu.Unlock()

	if s.pageStop != nil {
		s.pageStop()
	}
	if s.browserStop != nil {
		s.browserStop()
	}
	if s.owned && s.allocCancel != nil {
		s.allocCancel()
	}

	log.Debug().Bool("owned", s.owned).Msg("Session released")
}

// Navigate loads url in the session's page, bounded by timeout. A timeout
// or network failure is returned to the caller; it fails this navigation,
// not the session.
func (s *Session) Navigate(url string, timeout time.Duration) error {
	runCtx, cancel := context.WithTimeout(s.pageCtx, timeout)
	defer cancel()
	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// WaitVisible waits for sel to appear, resolving false on timeout instead
// of returning an error.
func (s *Session) WaitVisible(sel string, timeout time.Duration) bool {
	runCtx, cancel := context.WithTimeout(s.pageCtx, timeout)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.WaitVisible(sel, chromedp.ByQuery)) == nil
}

// HTML snapshots the page's rendered outer HTML.
func (s *Session) HTML(timeout time.Duration) (string, error) {
	runCtx, cancel := context.WithTimeout(s.pageCtx, timeout)
	defer cancel()
	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("snapshot html: %w", err)
	}
	return html, nil
}
