package service

import (
	"context"
	"strconv"
	"time"

	"github.com/yndnr/timecloak-go/internal/core/codec"
	"github.com/yndnr/timecloak-go/internal/core/domain"
)

// DefaultSkew is the default allowed clock-skew window.
const DefaultSkew = 30 * time.Second

// Clock supplies the current instant. Production uses time.Now; tests
// inject a fixed clock.
type Clock func() time.Time

// ReplayCache is the replay-prevention contract the verifier depends
// on. Implementations may be in-memory, persistent, or backed by an
// external store.
//
// The verifier calls Has then Add; two concurrent verifications of the
// same token can both observe "not present" unless the implementation
// makes the pair behave as an atomic check-and-set for callers sharing
// a key. The bundled caches serialize per shard (memory) and per
// transaction (badger).
type ReplayCache interface {
	// Has reports whether key was recorded and has not yet expired.
	Has(ctx context.Context, key string) (bool, error)

	// Add records key for at least ttl. Implementations with their own
	// TTL policy may round it up.
	Add(ctx context.Context, key string, ttl time.Duration) error
}

// VerifierService validates tokens: decode, freshness window, replay.
type VerifierService struct {
	codec *codec.Codec
	skew  time.Duration
	clock Clock
	cache ReplayCache
}

// VerifierOption configures a VerifierService.
type VerifierOption func(*VerifierService)

// WithSkew sets the allowed clock-skew window.
func WithSkew(skew time.Duration) VerifierOption {
	return func(s *VerifierService) {
		s.skew = skew
	}
}

// WithClock sets the clock source.
func WithClock(clock Clock) VerifierOption {
	return func(s *VerifierService) {
		s.clock = clock
	}
}

// WithReplayCache sets the replay cache. Without one, verification
// performs only the decode and freshness checks.
func WithReplayCache(cache ReplayCache) VerifierOption {
	return func(s *VerifierService) {
		s.cache = cache
	}
}

// NewVerifier creates a VerifierService around a codec.
func NewVerifier(c *codec.Codec, opts ...VerifierOption) *VerifierService {
	s := &VerifierService{
		codec: c,
		skew:  DefaultSkew,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VerifyResult is the outcome of a successful verification.
type VerifyResult struct {
	// Timestamp is the recovered generation instant, Unix milliseconds.
	Timestamp int64
}

// Verify validates a token.
//
// Failure modes, in check order:
//   - domain.ErrTokenInvalid: the token does not decode under the
//     configured matrix (malformed, tampered, or wrong table, never
//     distinguished);
//   - domain.ErrTokenExpired: |now - timestamp| exceeds the skew
//     window (drift equal to the window is still accepted);
//   - domain.ErrTokenReplay: the token was already seen within its
//     window;
//   - domain.ErrStorage: the replay cache failed.
//
// A token whose replay-cache entry has expired is accepted again if it
// is still inside the skew window.
func (s *VerifierService) Verify(ctx context.Context, token string) (*VerifyResult, error) {
	timestamp, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}

	drift := s.clock().UnixMilli() - timestamp
	if drift < 0 {
		drift = -drift
	}
	if drift > s.skew.Milliseconds() {
		return nil, domain.ErrTokenExpired
	}

	if s.cache != nil {
		key := replayKey(timestamp, token)
		seen, err := s.cache.Has(ctx, key)
		if err != nil {
			return nil, domain.ErrStorage.WithCause(err)
		}
		if seen {
			return nil, domain.ErrTokenReplay
		}
		if err := s.cache.Add(ctx, key, s.skew); err != nil {
			return nil, domain.ErrStorage.WithCause(err)
		}
	}

	return &VerifyResult{Timestamp: timestamp}, nil
}

// Skew returns the configured clock-skew window.
func (s *VerifierService) Skew() time.Duration {
	return s.skew
}

// replayKey builds the cache key binding a token to its timestamp.
func replayKey(timestamp int64, token string) string {
	return strconv.FormatInt(timestamp, 10) + ":" + token
}
