package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/fixer/internal/core/domain"
	"github.com/vietddude/fixer/internal/metrics"
	"github.com/vietddude/fixer/internal/rule"
)

// Result is the answer to one correction request.
type Result struct {
	RequestID        string
	Corrections      []domain.Correction
	Reports          []domain.RuleReport
	Elapsed          time.Duration
	DeadlineExceeded bool
}

// Found reports whether any correction was produced.
func (r Result) Found() bool { return len(r.Corrections) > 0 }

// Diagnostic converts the result into a persisted trace.
func (r Result) Diagnostic(fc *domain.FailureContext, at time.Time) domain.Diagnostic {
	return domain.Diagnostic{
		RequestID:   r.RequestID,
		Command:     fc.RawCommand(),
		ExitCode:    fc.ExitCode(),
		CreatedAt:   at.Unix(),
		Elapsed:     r.Elapsed,
		Deadline:    r.DeadlineExceeded,
		Reports:     r.Reports,
		Corrections: r.Corrections,
	}
}

// Correct evaluates fc and returns the ranked corrections. An empty
// Corrections slice is a normal outcome, not an error.
func (e *Engine) Correct(ctx context.Context, fc *domain.FailureContext, opts Options) Result {
	ev := e.Evaluate(ctx, fc, opts)

	res := Result{
		RequestID:        uuid.NewString(),
		Corrections:      Rank(ev.Candidates, opts.MaxResults),
		Reports:          ev.Reports,
		Elapsed:          ev.Elapsed,
		DeadlineExceeded: ev.DeadlineExceeded,
	}

	result := "found"
	switch {
	case res.DeadlineExceeded:
		result = "deadline"
	case !res.Found():
		result = "empty"
	}
	metrics.RequestsTotal.WithLabelValues(result).Inc()
	metrics.RequestDuration.Observe(res.Elapsed.Seconds())
	for _, c := range res.Corrections {
		metrics.CorrectionsTotal.WithLabelValues(c.RuleID).Inc()
	}

	e.log.Debug("Correction request done",
		"request_id", res.RequestID,
		"command", fc.RawCommand(),
		"corrections", len(res.Corrections),
		"elapsed", res.Elapsed,
	)
	return res
}

// Correct is a one-shot helper over reg.
func Correct(ctx context.Context, fc *domain.FailureContext, reg *rule.Registry, opts Options) []domain.Correction {
	return New(reg).Correct(ctx, fc, opts).Corrections
}
