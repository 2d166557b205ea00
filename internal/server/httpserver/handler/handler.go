package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yndnr/timecloak-go/internal/core/domain"
	"github.com/yndnr/timecloak-go/internal/core/service"
	"github.com/yndnr/timecloak-go/internal/telemetry/metric"
)

// Issuer mints tokens. The indirection lets the server swap the
// underlying codec on a configuration reload without rebuilding the
// router.
type Issuer interface {
	Issue(ctx context.Context) (*service.IssueResult, error)
}

// Verifier validates tokens.
type Verifier interface {
	Verify(ctx context.Context, token string) (*service.VerifyResult, error)
}

// Handler holds the services the HTTP handlers depend on.
type Handler struct {
	issuer   Issuer
	verifier Verifier
	logger   *slog.Logger
	metrics  *metric.Metrics
}

// New creates a new Handler.
func New(issuer Issuer, verifier Verifier, logger *slog.Logger, metrics *metric.Metrics) *Handler {
	return &Handler{
		issuer:   issuer,
		verifier: verifier,
		logger:   logger,
		metrics:  metrics,
	}
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes a domain error as the JSON error envelope. Details
// and causes never leave the process.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{
		Code:    domain.GetErrorCode(err),
		Message: "request rejected",
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		body.Message = de.Message
	}
	writeJSON(w, statusFor(err), body)
}

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenReplay):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
