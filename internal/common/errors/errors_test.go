package errors

import (
	stderrors "errors"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantRetries int
	}{
		{"history write is retried", NewHistoryWriteFailedError(stderrors.New("conn reset")), 3},
		{"provider timeout", NewProviderTimeoutError("groq"), 2},
		{"invalid input is terminal", NewInvalidInputError("bad json"), 0},
		{"unavailable provider is terminal", NewProviderUnavailableError("gemini"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, string(tt.err.Code), bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, bpmn.Code, vars["errorCode"])
			assert.Equal(t, tt.err.Retryable, vars["retryable"])
		})
	}
}

func TestProviderErrorsCarryProviderMetadata(t *testing.T) {
	err := NewProviderRateLimitedError("gemini", "gemini-2.5-flash")
	assert.Equal(t, "gemini", err.Metadata["provider"])

	bpmn := ConvertToBPMNError(err)
	assert.Equal(t, "gemini", bpmn.ErrorVariables["provider"])
	assert.Contains(t, err.Error(), "PROVIDER_RATE_LIMITED")
}

func TestNormalize(t *testing.T) {
	std := NewCacheUnavailableError(stderrors.New("redis down"))
	assert.Same(t, std, Normalize(std))

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), plain.Code)
	assert.False(t, plain.Retryable)
	assert.Equal(t, "boom", plain.Details)
}

func TestRetriesFor(t *testing.T) {
	bpmn := &BPMNError{Retries: 3}

	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: 2}}
	assert.Equal(t, int32(1), RetriesFor(job, bpmn))

	job = entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: 10}}
	assert.Equal(t, int32(3), RetriesFor(job, bpmn))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeProviderBadOutput))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeIntentAnalysisFailed))
	assert.Equal(t, "SHOPPING", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeHistoryReadFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "OTHER", GetErrorCategory("SOMETHING_ELSE"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeProductSourceFailed, CodeOf(NewProductSourceFailedError("serpapi", stderrors.New("x"))))
	assert.Equal(t, ErrorCode(""), CodeOf(stderrors.New("x")))
	assert.True(t, IsRetryableErrorCode(ErrCodeProviderRequestFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidInput))
}
