package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yndnr/timecloak-go/internal/core/domain"
	"github.com/yndnr/timecloak-go/internal/server/httpserver/handler"
	"github.com/yndnr/timecloak-go/internal/telemetry/logger"
	"github.com/yndnr/timecloak-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Issuer mints tokens.
	Issuer handler.Issuer

	// Verifier validates tokens.
	Verifier handler.Verifier

	// Logger for request logging.
	Logger *slog.Logger

	// Metrics backs the /metrics endpoint and verification counters
	// (optional).
	Metrics *metric.Metrics

	// TokenHeader is the request header carrying the token.
	TokenHeader string

	// RateLimit is the per-IP request budget (0 disables limiting).
	RateLimit int
}

// NewRouter creates the HTTP router with all routes and middleware.
//
// Issue and explicit verify are open endpoints: the first because a
// client without a token needs somewhere to get one, the second
// because it is itself the act of authenticating. Everything under
// /v1/protected/ passes TokenAuth.
func NewRouter(cfg *RouterConfig) http.Handler {
	h := handler.New(cfg.Issuer, cfg.Verifier, cfg.Logger, cfg.Metrics)

	auth := TokenAuth(&TokenAuthConfig{
		Verifier: cfg.Verifier,
		Header:   cfg.TokenHeader,
		Logger:   cfg.Logger,
		Metrics:  cfg.Metrics,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /v1/tokens", h.Issue)
	mux.HandleFunc("POST /v1/tokens/verify", h.Verify)
	mux.Handle("GET /v1/protected/echo", auth(http.HandlerFunc(echo)))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	middlewares := []Middleware{
		Recover(cfg.Logger),
		RequestID(),
	}
	if cfg.RateLimit > 0 {
		middlewares = append(middlewares, RateLimit(cfg.RateLimit))
	}

	return Chain(mux, middlewares...)
}

// echo is the protected demo endpoint: it reports what TokenAuth
// attached to the request context.
func echo(w http.ResponseWriter, r *http.Request) {
	timestamp, ok := GetTimestamp(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, domain.ErrTokenInvalid)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"timestamp":  timestamp,
		"token":      logger.Mask(GetToken(r.Context())),
		"request_id": GetRequestID(r.Context()),
	})
}
