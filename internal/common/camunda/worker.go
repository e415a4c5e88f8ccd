// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	apperrors "finda-workers/internal/common/errors"
	"finda-workers/internal/common/logger"
	"finda-workers/internal/common/observability"
	"finda-workers/internal/common/validation"
	"finda-workers/pkg/registry"
)

// JobHandler matches the Handle method of every worker package.
type JobHandler func(client worker.JobClient, job entities.Job)

type WorkerOptions struct {
	MaxJobsActive int
	Concurrency   int
	Timeout       time.Duration
}

// Worker validates job variables against the activity registry schema before
// handing the job to its handler.
type Worker struct {
	taskType string
	handler  JobHandler
	opts     WorkerOptions
	schema   *validation.Schema
	obs      *observability.Observability
	errors   *apperrors.ErrorHandler
	log      logger.Logger
	jw       worker.JobWorker
}

func NewWorker(taskType string, handler JobHandler, opts WorkerOptions, log logger.Logger) *Worker {
	log = log.With(map[string]interface{}{"taskType": taskType})
	return &Worker{
		taskType: taskType,
		handler:  handler,
		opts:     opts,
		errors:   apperrors.NewErrorHandler(log),
		log:      log,
	}
}

// WithActivity applies the registry entry: its input schema and, when the
// options leave it unset, its timeout.
func (w *Worker) WithActivity(activity *registry.Activity) (*Worker, error) {
	if activity == nil {
		return w, nil
	}
	schema, err := activity.CompileInputSchema()
	if err != nil {
		return nil, err
	}
	w.schema = schema
	if w.opts.Timeout <= 0 {
		w.opts.Timeout = activity.TimeoutDuration()
	}
	return w, nil
}

func (w *Worker) WithObservability(obs *observability.Observability) *Worker {
	w.obs = obs
	return w
}

func (w *Worker) TaskType() string { return w.taskType }

// Handle rejects jobs whose variables fail schema validation with INVALID_INPUT.
func (w *Worker) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	ctx := context.Background()

	if err := w.validate(job); err != nil {
		w.errors.HandleJobError(ctx, client, job, err)
		w.record(ctx, "rejected", start)
		return
	}

	w.handler(client, job)
	w.record(ctx, "handled", start)
}

func (w *Worker) validate(job entities.Job) error {
	if w.schema == nil {
		return nil
	}
	variables := job.Variables
	if variables == "" {
		variables = "{}"
	}
	res, err := w.schema.ValidateJSON([]byte(variables))
	if err != nil {
		return apperrors.NewInvalidInputError(err.Error())
	}
	if !res.Valid {
		return apperrors.NewInvalidInputError(res.Error())
	}
	return nil
}

func (w *Worker) record(ctx context.Context, status string, start time.Time) {
	w.obs.RecordJobProcessed(ctx, w.taskType, status)
	w.obs.RecordJobDuration(ctx, w.taskType, time.Since(start), status)
}

// Open starts polling the broker for this task type.
func (w *Worker) Open(client zbc.Client) {
	step := client.NewJobWorker().JobType(w.taskType).Handler(w.Handle)
	builder := step.Name(w.taskType)
	if w.opts.MaxJobsActive > 0 {
		builder = builder.MaxJobsActive(w.opts.MaxJobsActive)
	}
	if w.opts.Concurrency > 0 {
		builder = builder.Concurrency(w.opts.Concurrency)
	}
	if w.opts.Timeout > 0 {
		builder = builder.Timeout(w.opts.Timeout)
	}
	w.jw = builder.Open()
	w.log.Info("worker started", map[string]interface{}{
		"maxJobsActive": w.opts.MaxJobsActive,
		"timeout":       w.opts.Timeout.String(),
	})
}

func (w *Worker) Close() {
	if w.jw == nil {
		return
	}
	w.log.Info("stopping worker", nil)
	w.jw.Close()
	w.jw.AwaitClose()
}
