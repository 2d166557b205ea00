package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/timecloak-go/internal/core/domain"
	"github.com/yndnr/timecloak-go/internal/server/httpserver/handler"
	"github.com/yndnr/timecloak-go/internal/telemetry/metric"
)

// Context keys for request-scoped values.
type contextKey string

const (
	// ContextKeyRequestID is the context key for the request ID.
	ContextKeyRequestID contextKey = "request_id"

	// ContextKeyToken is the context key for the verified token string.
	ContextKeyToken contextKey = "token"

	// ContextKeyTimestamp is the context key for the verified token's
	// embedded timestamp (Unix milliseconds).
	ContextKeyTimestamp contextKey = "timestamp"
)

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together; the first listed runs
// outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Recover converts handler panics into 500 responses.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic",
						"panic", rec,
						"path", r.URL.Path)
					writeError(w, http.StatusInternalServerError, domain.ErrInternalServer)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID attaches a ULID request ID to each request, honoring one
// supplied by the client.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = "req-" + ulid.Make().String()
			}

			w.Header().Set("X-Request-ID", requestID)

			ctx := context.WithValue(r.Context(), ContextKeyRequestID, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit applies a per-client-IP token bucket. Limiters are created
// on first sight of an IP and pruned when idle for ten minutes.
func RateLimit(requestsPerSecond int) Middleware {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var mu sync.Mutex
	clients := make(map[string]*client)

	prune := func(now time.Time) {
		for ip, c := range clients {
			if now.Sub(c.lastSeen) > 10*time.Minute {
				delete(clients, ip)
			}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			now := time.Now()

			mu.Lock()
			c, ok := clients[ip]
			if !ok {
				c = &client{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)}
				clients[ip] = c
				if len(clients)%256 == 0 {
					prune(now)
				}
			}
			c.lastSeen = now
			allowed := c.limiter.Allow()
			mu.Unlock()

			if !allowed {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, domain.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// TokenAuthConfig holds configuration for the TokenAuth middleware.
type TokenAuthConfig struct {
	// Verifier validates presented tokens.
	Verifier handler.Verifier

	// Header is the request header carrying the token. Header lookup is
	// case-insensitive, as HTTP requires.
	Header string

	// Logger for rejected requests.
	Logger *slog.Logger

	// Metrics records verification outcomes (optional).
	Metrics *metric.Metrics
}

// TokenAuth enforces token verification. On success the token and its
// timestamp are attached to the request context; on any failure the
// request is short-circuited with 401 and a generic body. The body
// distinguishes only missing, expired and invalid: a replayed token
// reads as invalid, and an invalid token never says why.
func TokenAuth(cfg *TokenAuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			token := r.Header.Get(cfg.Header)
			if token == "" {
				cfg.observe(metric.ResultInvalid, start)
				writeError(w, http.StatusUnauthorized, domain.ErrMissingArgument.WithDetails("token header"))
				return
			}

			result, err := cfg.Verifier.Verify(r.Context(), token)
			if err != nil {
				cfg.Logger.Debug("token rejected",
					"token", token, // redacted by the logger
					"code", domain.GetErrorCode(err))
				cfg.observe(verifyResultLabel(err), start)
				writeError(w, http.StatusUnauthorized, publicVerifyError(err))
				return
			}
			cfg.observe(metric.ResultOK, start)

			ctx := context.WithValue(r.Context(), ContextKeyToken, token)
			ctx = context.WithValue(ctx, ContextKeyTimestamp, result.Timestamp)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (cfg *TokenAuthConfig) observe(result string, start time.Time) {
	if cfg.Metrics != nil {
		cfg.Metrics.ObserveVerification(result, time.Since(start))
	}
}

// verifyResultLabel maps a verification error to its metric label.
func verifyResultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return metric.ResultExpired
	case errors.Is(err, domain.ErrTokenReplay):
		return metric.ResultReplay
	case errors.Is(err, domain.ErrTokenInvalid):
		return metric.ResultInvalid
	default:
		return metric.ResultError
	}
}

// publicVerifyError maps a verification error to what the client may
// see. Replays and cache failures are reported as the uniform invalid
// token; only expiry is named, since the client can act on it by
// minting a fresh token.
func publicVerifyError(err error) error {
	if errors.Is(err, domain.ErrTokenExpired) {
		return domain.ErrTokenExpired
	}
	return domain.ErrTokenInvalid
}

// GetRequestID returns the request ID from the context, if any.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// GetToken returns the verified token from the context, if any.
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(ContextKeyToken).(string)
	return token
}

// GetTimestamp returns the verified token's timestamp from the
// context; ok is false when the request did not pass TokenAuth.
func GetTimestamp(ctx context.Context) (int64, bool) {
	timestamp, ok := ctx.Value(ContextKeyTimestamp).(int64)
	return timestamp, ok
}

// clientIP extracts the client address, preferring the first
// X-Forwarded-For hop.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if at := strings.IndexByte(forwarded, ','); at >= 0 {
			return strings.TrimSpace(forwarded[:at])
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a domain error as the JSON error envelope. Details
// and causes never leave the process.
func writeError(w http.ResponseWriter, status int, err error) {
	body := errorBody{
		Code:    domain.GetErrorCode(err),
		Message: "request rejected",
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		body.Message = de.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
