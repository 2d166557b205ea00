package service

import (
	"context"
	"time"

	"github.com/yndnr/timecloak-go/internal/core/codec"
)

// IssuerService mints tokens for the current instant.
type IssuerService struct {
	codec *codec.Codec
	clock Clock
}

// IssuerOption configures an IssuerService.
type IssuerOption func(*IssuerService)

// WithIssuerClock sets the clock source.
func WithIssuerClock(clock Clock) IssuerOption {
	return func(s *IssuerService) {
		s.clock = clock
	}
}

// NewIssuer creates an IssuerService around a codec.
func NewIssuer(c *codec.Codec, opts ...IssuerOption) *IssuerService {
	s := &IssuerService{
		codec: c,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueResult is a freshly minted token.
type IssueResult struct {
	// Token is the opaque token string.
	Token string

	// Timestamp is the encoded generation instant, Unix milliseconds.
	Timestamp int64
}

// Issue mints a token for the current instant. It never fails under a
// validated matrix.
func (s *IssuerService) Issue(ctx context.Context) (*IssueResult, error) {
	return s.IssueAt(ctx, s.clock())
}

// IssueAt mints a token for an explicit instant. The CLI uses it to
// reproduce tokens for a given timestamp.
func (s *IssuerService) IssueAt(_ context.Context, at time.Time) (*IssueResult, error) {
	timestamp := at.UnixMilli()
	token, err := s.codec.Encode(timestamp)
	if err != nil {
		return nil, err
	}
	return &IssueResult{Token: token, Timestamp: timestamp}, nil
}
