package searchproducts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "finda-workers/internal/common/errors"
	"finda-workers/internal/common/logger"
	"finda-workers/internal/common/metrics"
	"finda-workers/internal/models"
	"finda-workers/internal/shopping/aggregator"
)

const TaskType = "search-products"

// Searcher is satisfied by *aggregator.Aggregator.
type Searcher interface {
	Search(ctx context.Context, req aggregator.Request) aggregator.Result
}

type Handler struct {
	config   *Config
	searcher Searcher
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, searcher Searcher, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		searcher: searcher,
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
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.ErrCodeInvalidInput)).Inc()
		h.errors.HandleJobError(ctx, client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output := h.execute(ctx, &input)

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

// execute never fails: source problems surface as an empty result and the
// not-found message.
func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	query := strings.TrimSpace(input.Query)
	output := &Output{
		Products:    []models.Product{},
		CompareMode: input.CompareMode,
	}

	if query != "" {
		res := h.searcher.Search(ctx, aggregator.Request{
			Query:       query,
			CompareMode: input.CompareMode,
			SiteFilter:  input.SiteFilter,
		})
		if res.Products != nil {
			output.Products = res.Products
		}
		output.Cached = res.Cached
	}

	output.Count = len(output.Products)
	output.Found = output.Count > 0
	output.Message = replyMessage(query, input.Response, output.Count)

	h.logger.Info("product search finished", map[string]interface{}{
		"query":       query,
		"compareMode": input.CompareMode,
		"count":       output.Count,
		"cached":      output.Cached,
	})
	return output
}

func replyMessage(query, response string, count int) string {
	if count == 0 {
		return models.NotFoundReply(query)
	}
	if strings.TrimSpace(response) != "" {
		return response
	}
	return fmt.Sprintf(`"%s" için %d ürün buldum:`, query, count)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input), nil
}
