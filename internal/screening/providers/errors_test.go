package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"screener/internal/screening/domain"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status    int
		category  ErrorCategory
		retryable bool
	}{
		{http.StatusUnauthorized, ErrorAuthentication, false},
		{http.StatusForbidden, ErrorAuthentication, false},
		{http.StatusTooManyRequests, ErrorRateLimited, true},
		{http.StatusGatewayTimeout, ErrorTimeout, true},
		{http.StatusBadGateway, ErrorProviderOutage, true},
		{http.StatusBadRequest, ErrorBadData, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := FromStatus(SanctionsProviderID, tt.status)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.retryable, IsRetryable(err))
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestFromTransport(t *testing.T) {
	assert.Equal(t, ErrorTimeout, FromTransport("p", context.DeadlineExceeded).Category)
	assert.Equal(t, ErrorTimeout, FromTransport("p", fmt.Errorf("dial: %w", timeoutErr{})).Category)
	assert.Equal(t, ErrorProviderOutage, FromTransport("p", errors.New("connection refused")).Category)
}

func TestReasonFor(t *testing.T) {
	assert.Equal(t, domain.ReasonTimeout, ReasonFor(NewProviderError(ErrorTimeout, "p", "slow", nil)))
	assert.Equal(t, domain.ReasonTimeout, ReasonFor(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.Equal(t, domain.ReasonNotConfigured, ReasonFor(NotConfigured("p")))
	assert.Equal(t, domain.ReasonUpstreamError, ReasonFor(FromStatus("p", http.StatusTooManyRequests)))
	assert.Equal(t, domain.ReasonUpstreamError, ReasonFor(errors.New("boom")))
}

func TestProviderErrorUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := NewProviderError(ErrorProviderOutage, "p", "failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "provider p [provider_outage]: failed: root")
}
