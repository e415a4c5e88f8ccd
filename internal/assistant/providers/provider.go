// Package providers adapts external LLM APIs to a single text-generation call.
package providers

import (
	"context"
	"errors"
	"net"
	"strings"

	apperrors "finda-workers/internal/common/errors"
	commonhttp "finda-workers/internal/common/http"
)

// Request carries one guarded prompt. System is sent as a separate
// system-role message by providers that support one.
type Request struct {
	System string
	Prompt string
}

// Provider generates raw text for a prompt on one of its models.
type Provider interface {
	Name() string
	// Available is false when the provider has no credentials; it is then skipped.
	Available() bool
	// Models lists model identifiers in the order they should be tried.
	Models() []string
	Generate(ctx context.Context, model string, req Request) (string, error)
}

// classify maps a transport or HTTP failure to a provider error code.
func classify(provider, model string, err error) error {
	var statusErr *commonhttp.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == 429 {
		return apperrors.NewProviderRateLimitedError(provider, model)
	}
	if isTimeout(err) {
		return apperrors.NewProviderTimeoutError(provider).WithMetadata("model", model)
	}
	return apperrors.NewProviderRequestFailedError(provider, err).WithMetadata("model", model)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func emptyOutput(provider, model string) error {
	return apperrors.NewProviderBadOutputError(provider, "empty completion").WithMetadata("model", model)
}

func bearer(key string) string {
	return "Bearer " + strings.TrimSpace(key)
}
