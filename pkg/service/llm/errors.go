package llm

import (
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

var (
	// ErrRateLimited marks an upstream rate-limit failure. The fallback
	// controller advances to the next candidate model on this error; every
	// other model error propagates as-is.
	ErrRateLimited = goerr.New("model rate limited")

	// ErrCandidatesExhausted means every candidate model was rate limited
	ErrCandidatesExhausted = goerr.New("all model candidates exhausted")

	// ErrEmptyResponse means the model returned no usable candidate
	ErrEmptyResponse = goerr.New("model returned empty response")
)

// IsRateLimit reports whether the error is a rate-limit condition, either
// tagged by this package or signaled by the upstream API.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 {
			return true
		}
	}

	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "rate limit")
}
