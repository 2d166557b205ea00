package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/timecloak-go/internal/core/codec"
	"github.com/yndnr/timecloak-go/internal/core/domain"
)

func testCodec(t *testing.T) *codec.Codec {
	t.Helper()
	m := make(domain.Matrix, 10)
	for d := 0; d < 10; d++ {
		row := make([]string, 6)
		for c := 0; c < 6; c++ {
			row[c] = string(rune('a'+d)) + string(rune('A'+c))
		}
		m[domain.DigitKeys[d:d+1]] = row
	}
	c, err := codec.New(m, codec.WithRand(rand.New(rand.NewSource(42))))
	if err != nil {
		t.Fatalf("codec.New() error = %v", err)
	}
	return c
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(at time.Time) *fakeClock {
	return &fakeClock{now: at}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Set(at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = at
}

// fakeCache is an in-test replay cache whose expiry follows the fake
// clock, so entry-expiry behavior can be tested without sleeping.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]time.Time
	clock   *fakeClock
	failing bool
}

func newFakeCache(clock *fakeClock) *fakeCache {
	return &fakeCache{entries: make(map[string]time.Time), clock: clock}
}

func (c *fakeCache) Has(_ context.Context, key string) (bool, error) {
	if c.failing {
		return false, errors.New("cache down")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	expiry, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if c.clock.Now().After(expiry) {
		delete(c.entries, key)
		return false, nil
	}
	return true, nil
}

func (c *fakeCache) Add(_ context.Context, key string, ttl time.Duration) error {
	if c.failing {
		return errors.New("cache down")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = c.clock.Now().Add(ttl)
	return nil
}

func TestVerify_RoundTrip(t *testing.T) {
	cc := testCodec(t)
	clock := newFakeClock(time.UnixMilli(1700000000000))

	issuer := NewIssuer(cc, WithIssuerClock(clock.Now))
	verifier := NewVerifier(cc, WithClock(clock.Now))

	issued, err := issuer.Issue(context.Background())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if issued.Timestamp != 1700000000000 {
		t.Errorf("Issue() timestamp = %d", issued.Timestamp)
	}

	result, err := verifier.Verify(context.Background(), issued.Token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if result.Timestamp != issued.Timestamp {
		t.Errorf("Verify() timestamp = %d, want %d", result.Timestamp, issued.Timestamp)
	}
}

func TestVerify_InvalidToken(t *testing.T) {
	verifier := NewVerifier(testCodec(t))
	if _, err := verifier.Verify(context.Background(), "not a token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("Verify() error = %v, want ErrTokenInvalid", err)
	}
}

func TestVerify_SkewBoundary(t *testing.T) {
	cc := testCodec(t)
	start := time.UnixMilli(1700000000000)
	clock := newFakeClock(start)
	skew := 30 * time.Second

	issuer := NewIssuer(cc, WithIssuerClock(clock.Now))
	verifier := NewVerifier(cc, WithClock(clock.Now), WithSkew(skew))

	issued, err := issuer.Issue(context.Background())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{"no drift", start, nil},
		{"exactly at the window", start.Add(skew), nil},
		{"one millisecond past", start.Add(skew + time.Millisecond), domain.ErrTokenExpired},
		{"future token inside window", start.Add(-skew), nil},
		{"future token past window", start.Add(-skew - time.Millisecond), domain.ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.Set(tt.at)
			_, err := verifier.Verify(context.Background(), issued.Token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_Replay(t *testing.T) {
	cc := testCodec(t)
	start := time.UnixMilli(1700000000000)
	clock := newFakeClock(start)
	cache := newFakeCache(clock)
	skew := 30 * time.Second

	issuer := NewIssuer(cc, WithIssuerClock(clock.Now))
	verifier := NewVerifier(cc, WithClock(clock.Now), WithSkew(skew), WithReplayCache(cache))

	issued, err := issuer.Issue(context.Background())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// First presentation succeeds.
	if _, err := verifier.Verify(context.Background(), issued.Token); err != nil {
		t.Fatalf("first Verify() error = %v", err)
	}

	// Immediate replay is rejected.
	if _, err := verifier.Verify(context.Background(), issued.Token); !errors.Is(err, domain.ErrTokenReplay) {
		t.Fatalf("second Verify() error = %v, want ErrTokenReplay", err)
	}

	// Once the cache entry expires the token is accepted again, provided
	// it is still inside the skew window. The entry TTL equals the skew
	// window, so only a token minted ahead of the wall clock can hit
	// this; the contract still has to hold.
	clock.Set(start.Add(skew + time.Millisecond))
	future := issuedAt(t, issuer, start.Add(2*skew))
	if _, err := verifier.Verify(context.Background(), future.Token); err != nil {
		t.Fatalf("future token Verify() error = %v", err)
	}
	clock.Set(start.Add(2 * skew)) // entry still live, token still fresh
	if _, err := verifier.Verify(context.Background(), future.Token); !errors.Is(err, domain.ErrTokenReplay) {
		t.Fatalf("Verify() before cache expiry error = %v, want ErrTokenReplay", err)
	}
	clock.Set(start.Add(2*skew + 2*time.Millisecond)) // entry expired, drift only 2ms
	if _, err := verifier.Verify(context.Background(), future.Token); err != nil {
		t.Fatalf("Verify() after cache expiry error = %v", err)
	}
}

func issuedAt(t *testing.T, issuer *IssuerService, at time.Time) *IssueResult {
	t.Helper()
	issued, err := issuer.IssueAt(context.Background(), at)
	if err != nil {
		t.Fatalf("IssueAt() error = %v", err)
	}
	return issued
}

func TestVerify_NoCache(t *testing.T) {
	cc := testCodec(t)
	clock := newFakeClock(time.UnixMilli(1700000000000))

	issuer := NewIssuer(cc, WithIssuerClock(clock.Now))
	verifier := NewVerifier(cc, WithClock(clock.Now))

	issued, err := issuer.Issue(context.Background())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Without a replay cache, repeated presentations all pass.
	for i := 0; i < 3; i++ {
		if _, err := verifier.Verify(context.Background(), issued.Token); err != nil {
			t.Fatalf("Verify() #%d error = %v", i, err)
		}
	}
}

func TestVerify_CacheFailure(t *testing.T) {
	cc := testCodec(t)
	clock := newFakeClock(time.UnixMilli(1700000000000))
	cache := newFakeCache(clock)
	cache.failing = true

	issuer := NewIssuer(cc, WithIssuerClock(clock.Now))
	verifier := NewVerifier(cc, WithClock(clock.Now), WithReplayCache(cache))

	issued, err := issuer.Issue(context.Background())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := verifier.Verify(context.Background(), issued.Token); !errors.Is(err, domain.ErrStorage) {
		t.Errorf("Verify() error = %v, want ErrStorage", err)
	}
}
