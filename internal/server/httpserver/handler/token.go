package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/yndnr/timecloak-go/internal/core/domain"
	"github.com/yndnr/timecloak-go/internal/telemetry/metric"
)

// issueResponse is the body returned by POST /v1/tokens.
type issueResponse struct {
	Token     string `json:"token"`
	Timestamp int64  `json:"timestamp"`
}

// verifyRequest is the body accepted by POST /v1/tokens/verify.
type verifyRequest struct {
	Token string `json:"token"`
}

// verifyResponse is the body returned by POST /v1/tokens/verify on
// success.
type verifyResponse struct {
	Valid     bool  `json:"valid"`
	Timestamp int64 `json:"timestamp"`
}

// Issue handles POST /v1/tokens. It mints a token for the current
// instant.
func (h *Handler) Issue(w http.ResponseWriter, r *http.Request) {
	result, err := h.issuer.Issue(r.Context())
	if err != nil {
		h.logger.Error("token mint failed", "error", err)
		writeError(w, domain.ErrInternalServer)
		return
	}
	if h.metrics != nil {
		h.metrics.TokensIssued.Inc()
	}

	writeJSON(w, http.StatusOK, issueResponse{
		Token:     result.Token,
		Timestamp: result.Timestamp,
	})
}

// Verify handles POST /v1/tokens/verify. A rejected token yields the
// same 401 regardless of how it failed; only expiry is named, since
// the caller can act on it by minting a fresh token.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument.WithDetails("request body"))
		return
	}
	if req.Token == "" {
		writeError(w, domain.ErrMissingArgument.WithDetails("token"))
		return
	}

	result, err := h.verifier.Verify(r.Context(), req.Token)
	if err != nil {
		h.logger.Debug("token rejected",
			"token", req.Token, // redacted by the logger
			"code", domain.GetErrorCode(err))
		h.observe(resultLabel(err), start)
		writeError(w, publicError(err))
		return
	}
	h.observe(metric.ResultOK, start)

	writeJSON(w, http.StatusOK, verifyResponse{
		Valid:     true,
		Timestamp: result.Timestamp,
	})
}

func (h *Handler) observe(result string, start time.Time) {
	if h.metrics != nil {
		h.metrics.ObserveVerification(result, time.Since(start))
	}
}

// resultLabel maps a verification error to its metric label.
func resultLabel(err error) string {
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

// publicError narrows a verification error to what the client may see.
// Replays and cache failures read as the uniform invalid token.
func publicError(err error) error {
	if errors.Is(err, domain.ErrTokenExpired) {
		return domain.ErrTokenExpired
	}
	return domain.ErrTokenInvalid
}
