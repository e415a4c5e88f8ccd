package detectflightintent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"finda-workers/internal/assistant/flightintent"
	apperrors "finda-workers/internal/common/errors"
	"finda-workers/internal/common/logger"
	"finda-workers/internal/common/metrics"
)

const TaskType = "detect-flight-intent"

type Handler struct {
	config *Config
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.ErrCodeInvalidInput)).Inc()
		h.errors.HandleJobError(ctx, client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output := h.execute(&input)

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(input *Input) *Output {
	threshold := h.config.Threshold
	if input.Threshold != nil {
		threshold = *input.Threshold
	}

	verdict := flightintent.Detect(input.Message)
	output := &Output{
		IsFlight:      verdict.IsFlight,
		Confidence:    verdict.Confidence,
		Reason:        verdict.Reason,
		RouteToFlight: verdict.IsFlight && verdict.Confidence > threshold,
	}
	if output.RouteToFlight {
		output.FlightQuery = input.Message
	}

	h.logger.Info("flight intent evaluated", map[string]interface{}{
		"isFlight":      output.IsFlight,
		"confidence":    output.Confidence,
		"reason":        output.Reason,
		"routeToFlight": output.RouteToFlight,
	})
	return output
}

// Execute never fails; the context is accepted for symmetry with other workers.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	return h.execute(input), nil
}
