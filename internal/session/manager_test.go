package session

import (
	"context"
	"testing"

	"github.com/chromedp/chromedp"
)

// fakeSession builds a Session with counting cancel funcs so teardown
// ordering and idempotence can be checked without a browser.
func fakeSession(owned bool) (*Session, *[]string) {
	var calls []string
	s := &Session{
		owned:       owned,
		allocCancel: func() { calls = append(calls, "process") },
		browserStop: func() { calls = append(calls, "context") },
		pageStop:    func() { calls = append(calls, "page") },
	}
	return s, &calls
}

func TestReleaseOrder(t *testing.T) {
	m := NewManager(Options{})
	s, calls := fakeSession(true)

	m.Release(s)

	want := []string{"page", "context", "process"}
	if len(*calls) != len(want) {
		t.Fatalf("teardown calls = %v, want %v", *calls, want)
	}
	for i := range want {
		if (*calls)[i] != want[i] {
			t.Fatalf("teardown calls = %v, want %v", *calls, want)
		}
	}
	if !s.Released() {
		t.Error("session not marked released")
	}
	if !s.Owned() {
		t.Error("Owned = false for a process-owning session")
	}
}

func TestReleaseIdempotent(t *testing.T) {
	m := NewManager(Options{})
	s, calls := fakeSession(true)

	m.Release(s)
	m.Release(s)
	m.Release(s)

	if len(*calls) != 3 {
		t.Fatalf("repeat release re-ran teardown: %v", *calls)
	}
}

func TestReleaseBorrowedKeepsProcess(t *testing.T) {
	m := NewManager(Options{})
	s, calls := fakeSession(false)
	if s.Owned() {
		t.Fatal("Owned = true for a borrowing session")
	}

	m.Release(s)

	for _, c := range *calls {
		if c == "process" {
			t.Fatal("borrowed session closed the shared process")
		}
	}
	if len(*calls) != 2 {
		t.Fatalf("teardown calls = %v, want page and context only", *calls)
	}
}

func TestReleaseNil(t *testing.T) {
	m := NewManager(Options{})
	m.Release(nil)
}

// A borrowed session must be a tab inside the shared browser context, not
// a sibling hung off the allocator: chromedp only reuses the process when
// the parent context is a browser context, so an allocator-derived child
// would launch its own Chrome.
func TestBuildBorrowedOpensTabInSharedBrowser(t *testing.T) {
	m := NewManager(Options{})
	shared := m.build(context.Background(), nil)
	defer m.Release(shared)

	borrowed := m.build(context.Background(), shared)
	defer m.Release(borrowed)

	if borrowed.owned {
		t.Fatal("borrowed session reports owning a process")
	}
	if borrowed.allocCancel != nil || borrowed.browserStop != nil {
		t.Error("borrowed session carries process-level teardown")
	}

	sc := chromedp.FromContext(shared.browserCtx)
	bc := chromedp.FromContext(borrowed.pageCtx)
	if sc == nil || bc == nil {
		t.Fatal("chromedp context missing from session context chain")
	}
	if bc.Allocator != sc.Allocator {
		t.Error("borrowed page does not descend from the shared browser context")
	}
}

func TestBuildOwnedStack(t *testing.T) {
	m := NewManager(Options{})
	s := m.build(context.Background(), nil)
	defer m.Release(s)

	if !s.owned {
		t.Fatal("session built without a shared process should be owned")
	}
	if s.allocCancel == nil || s.browserStop == nil || s.pageStop == nil {
		t.Error("owned session missing a teardown level")
	}
}

func TestBuildIgnoresReleasedShared(t *testing.T) {
	m := NewManager(Options{})
	shared := m.build(context.Background(), nil)
	m.Release(shared)

	s := m.build(context.Background(), shared)
	defer m.Release(s)
	if !s.owned {
		t.Fatal("a released shared session must not be borrowed from")
	}
}

func TestManagerDefaults(t *testing.T) {
	m := NewManager(Options{})
	if m.opts.UserAgent == "" {
		t.Error("default user agent not applied")
	}
	if m.opts.Locale != "en-US" {
		t.Errorf("Locale = %q", m.opts.Locale)
	}
	if m.opts.Viewport.Width == 0 || m.opts.Viewport.Height == 0 {
		t.Errorf("Viewport = %+v", m.opts.Viewport)
	}
}
