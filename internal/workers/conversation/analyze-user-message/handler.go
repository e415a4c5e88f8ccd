package analyzeusermessage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"finda-workers/internal/assistant/intent"
	apperrors "finda-workers/internal/common/errors"
	"finda-workers/internal/common/logger"
	"finda-workers/internal/common/metrics"
	"finda-workers/internal/models"
)

const TaskType = "analyze-user-message"

var ErrEmptyMessage = errors.New("EMPTY_MESSAGE")

// Analyzer resolves a message into an intent. *intent.Orchestrator satisfies it.
type Analyzer interface {
	Resolve(ctx context.Context, message string, history []models.ConversationTurn) intent.Analysis
}

type HistoryReader interface {
	Recent(ctx context.Context, sessionID string, n int) ([]models.ConversationTurn, error)
}

type Handler struct {
	config   *Config
	analyzer Analyzer
	history  HistoryReader
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

// NewHandler wires the analyzer. history may be nil, in which case only the
// history passed in the job variables is used.
func NewHandler(config *Config, analyzer Analyzer, history HistoryReader, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		analyzer: analyzer,
		history:  history,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.NewInvalidInputError(ErrEmptyMessage.Error())
	}

	history := input.History
	if len(history) == 0 && input.SessionID != "" && h.history != nil {
		recent, err := h.history.Recent(ctx, input.SessionID, h.config.HistoryTurns)
		if err != nil {
			return nil, err
		}
		history = recent
	}

	analysis := h.analyzer.Resolve(ctx, input.Message, history)
	result := analysis.Result

	output := &Output{
		Intent:       result.Intent,
		Query:        result.Query,
		Response:     result.Response,
		ShouldSearch: result.IsShopping() && strings.TrimSpace(result.Query) != "",
		Source:       analysis.Source,
		Model:        analysis.Model,
		Attempts:     analysis.Attempts,
		Error:        result.Error,
	}
	// A shopping result without a query is answered as an empty search.
	if result.IsShopping() && !output.ShouldSearch {
		output.Error = models.ErrEmptyQuery
		output.Response = models.NotFoundReply(strings.TrimSpace(input.Message))
	}

	h.logger.Info("message analyzed", map[string]interface{}{
		"intent":       output.Intent,
		"shouldSearch": output.ShouldSearch,
		"source":       output.Source,
		"historyTurns": len(history),
	})
	return output, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
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
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.Normalize(err).Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
