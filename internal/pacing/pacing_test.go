package pacing

import (
	"context"
	"testing"
	"time"
)

func TestDelayBounded(t *testing.T) {
	p := New(1, 1, 42)
	start := time.Now()
	p.Delay(context.Background(), 5*time.Millisecond, 20*time.Millisecond)
	elapsed := time.Since(start)
	if elapsed < 5*time.Millisecond {
		t.Fatalf("delay too short: %v", elapsed)
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("delay far beyond max: %v", elapsed)
	}
}

func TestDelaySwappedBounds(t *testing.T) {
	p := New(1, 1, 42)
	done := make(chan struct{})
	go func() {
		p.Delay(context.Background(), 10*time.Millisecond, 1*time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Delay hung on inverted bounds")
	}
}

func TestDelayHonorsCancel(t *testing.T) {
	p := New(1, 1, 42)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	p.Delay(ctx, time.Minute, time.Minute)
	if time.Since(start) > time.Second {
		t.Fatal("cancelled Delay still slept")
	}
}

func TestWaitDomainThrottlesPerHost(t *testing.T) {
	p := New(10, 1, 42)
	ctx := context.Background()

	// First request per host spends the single burst token.
	start := time.Now()
	if err := p.WaitDomain(ctx, "https://a.example.com/page"); err != nil {
		t.Fatal(err)
	}
	if err := p.WaitDomain(ctx, "https://b.example.com/page"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("distinct hosts were throttled together: %v", elapsed)
	}

	// Second request to the same host waits for a token (~100ms at 10 rps).
	start = time.Now()
	if err := p.WaitDomain(ctx, "https://a.example.com/other"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("same-host request not throttled: %v", elapsed)
	}
}

func TestWaitDomainUnparsableURL(t *testing.T) {
	p := New(1, 1, 42)
	if err := p.WaitDomain(context.Background(), "not a url"); err != nil {
		t.Fatalf("unparsable URL should pass through: %v", err)
	}
}
