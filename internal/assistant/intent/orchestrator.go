// Package intent resolves a user message into a chat or shopping intent by
// walking an ordered chain of LLM providers, ending in an offline fallback.
package intent

import (
	"context"
	"errors"

	"finda-workers/internal/assistant/extract"
	"finda-workers/internal/assistant/fallback"
	"finda-workers/internal/assistant/providers"
	"finda-workers/internal/assistant/sanitize"
	"finda-workers/internal/assistant/smalltalk"
	apperrors "finda-workers/internal/common/errors"
	"finda-workers/internal/common/logger"
	"finda-workers/internal/common/metrics"
	"finda-workers/internal/models"
)

const (
	SourceSmallTalk = "smalltalk"
	SourceFallback  = "fallback"

	OutcomeSuccess     = "success"
	OutcomeSkipped     = "skipped"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
	OutcomeBadOutput   = "bad_output"
	OutcomeFailed      = "failed"

	maxDetail = 180
)

// Stage is one link of the provider chain.
type Stage struct {
	Provider providers.Provider
	// AbandonOnRateLimit stops trying this provider's remaining models after a 429.
	AbandonOnRateLimit bool
}

// Options tunes prompt assembly and output parsing.
type Options struct {
	Extractor        extract.Extractor
	MaxMessageLength int
	HistoryTurns     int
}

// Attempt records one provider call, or one skipped provider.
type Attempt struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Outcome  string `json:"outcome"`
	Detail   string `json:"detail,omitempty"`
}

// Analysis is the resolved intent plus how it was obtained.
type Analysis struct {
	Result   models.IntentResult `json:"result"`
	Source   string              `json:"source"`
	Model    string              `json:"model,omitempty"`
	Attempts []Attempt           `json:"attempts,omitempty"`
}

type Orchestrator struct {
	stages    []Stage
	extractor extract.Extractor
	maxLen    int
	turns     int
	logger    logger.Logger
}

func NewOrchestrator(stages []Stage, opts Options, log logger.Logger) *Orchestrator {
	if opts.Extractor == nil {
		opts.Extractor = extract.Greedy{}
	}
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = sanitize.DefaultMaxLength
	}
	if opts.HistoryTurns <= 0 {
		opts.HistoryTurns = 3
	}
	return &Orchestrator{
		stages:    stages,
		extractor: opts.Extractor,
		maxLen:    opts.MaxMessageLength,
		turns:     opts.HistoryTurns,
		logger:    log.With(map[string]interface{}{"component": "intent"}),
	}
}

// Analyze returns the canonical result only. It never fails.
func (o *Orchestrator) Analyze(ctx context.Context, message string, history []models.ConversationTurn) models.IntentResult {
	return o.Resolve(ctx, message, history).Result
}

// Resolve runs the small-talk guard, then each provider stage in order,
// stopping at the first output that yields a usable JSON object. When every
// stage fails, or ctx is done, the keyword fallback answers.
func (o *Orchestrator) Resolve(ctx context.Context, message string, history []models.ConversationTurn) Analysis {
	if smalltalk.IsSmallTalk(message) {
		return o.resolved(Analysis{
			Result: models.IntentResult{Intent: models.IntentChat, Response: smalltalk.Reply},
			Source: SourceSmallTalk,
		})
	}

	req := providers.Request{
		System: SystemGuard,
		Prompt: BuildPrompt(message, BuildContext(history, o.turns, o.maxLen)),
	}

	var attempts []Attempt
	for _, stage := range o.stages {
		if ctx.Err() != nil {
			break
		}
		analysis, tried := o.runStage(ctx, stage, req)
		attempts = append(attempts, tried...)
		if analysis != nil {
			analysis.Attempts = attempts
			return o.resolved(*analysis)
		}
	}

	o.logger.Warn("all providers failed, using keyword fallback", map[string]interface{}{
		"provider": SourceFallback,
		"outcome":  "activated",
		"detail":   "limited mode",
	})
	return o.resolved(Analysis{
		Result:   fallback.Classify(sanitize.Sanitize(message, o.maxLen)),
		Source:   SourceFallback,
		Attempts: attempts,
	})
}

func (o *Orchestrator) runStage(ctx context.Context, stage Stage, req providers.Request) (*Analysis, []Attempt) {
	p := stage.Provider
	if !p.Available() {
		a := Attempt{Provider: p.Name(), Outcome: OutcomeSkipped, Detail: "missing api key"}
		o.record(a)
		return nil, []Attempt{a}
	}

	var attempts []Attempt
	for _, model := range p.Models() {
		if ctx.Err() != nil {
			break
		}

		raw, err := p.Generate(ctx, model, req)
		if err != nil {
			a := Attempt{Provider: p.Name(), Model: model, Outcome: outcomeOf(err), Detail: truncate(err.Error())}
			o.record(a)
			attempts = append(attempts, a)
			if a.Outcome == OutcomeRateLimited && stage.AbandonOnRateLimit {
				break
			}
			continue
		}

		obj := o.extractor.Extract(raw)
		if err := ValidateOutput(obj); err != nil {
			a := Attempt{Provider: p.Name(), Model: model, Outcome: OutcomeBadOutput, Detail: truncate(err.Error())}
			o.record(a)
			attempts = append(attempts, a)
			continue
		}

		a := Attempt{Provider: p.Name(), Model: model, Outcome: OutcomeSuccess}
		o.record(a)
		attempts = append(attempts, a)
		return &Analysis{Result: Normalize(obj), Source: p.Name(), Model: model}, attempts
	}

	o.logger.Warn("provider failed", map[string]interface{}{
		"provider": p.Name(),
		"outcome":  OutcomeFailed,
		"attempts": len(attempts),
	})
	return nil, attempts
}

func (o *Orchestrator) record(a Attempt) {
	metrics.ProviderAttempts.WithLabelValues(a.Provider, a.Outcome).Inc()

	fields := map[string]interface{}{
		"provider": a.Provider,
		"model":    a.Model,
		"outcome":  a.Outcome,
	}
	if a.Detail != "" {
		fields["detail"] = a.Detail
	}

	switch a.Outcome {
	case OutcomeSuccess, OutcomeSkipped:
		o.logger.Info("provider attempt", fields)
	default:
		o.logger.Warn("provider attempt", fields)
	}
}

func (o *Orchestrator) resolved(a Analysis) Analysis {
	metrics.IntentResolutions.WithLabelValues(a.Source, a.Result.Intent).Inc()
	o.logger.Info("intent resolved", map[string]interface{}{
		"source": a.Source,
		"model":  a.Model,
		"intent": a.Result.Intent,
		"query":  a.Result.Query,
	})
	return a
}

func outcomeOf(err error) string {
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		switch stdErr.Code {
		case apperrors.ErrCodeProviderRateLimited:
			return OutcomeRateLimited
		case apperrors.ErrCodeProviderBadOutput:
			return OutcomeBadOutput
		}
	}
	return OutcomeError
}

func truncate(s string) string {
	if r := []rune(s); len(r) > maxDetail {
		return string(r[:maxDetail])
	}
	return s
}
