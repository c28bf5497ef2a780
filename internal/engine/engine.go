// Package engine evaluates the registered rules against a failed command
// concurrently and ranks what they propose.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/fixer/internal/core/domain"
	"github.com/vietddude/fixer/internal/fuzzy"
	"github.com/vietddude/fixer/internal/metrics"
	"github.com/vietddude/fixer/internal/rule"
)

// Engine runs correction requests against a shared registry. It is safe for
// concurrent use once the registry is frozen.
type Engine struct {
	reg     *rule.Registry
	log     *slog.Logger
	workers int
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithWorkers sets the pool size used when a request does not set one.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithClock replaces time.Now for elapsed-time accounting.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine over reg.
func New(reg *rule.Registry, opts ...Option) *Engine {
	e := &Engine{
		reg: reg,
		log: slog.Default().With("component", "engine"),
		now: time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Candidate is a correction as emitted, before deduplication.
type Candidate struct {
	domain.Correction
	Index int // registration index of the producing rule
	Seq   int // emission order within that rule
}

// Evaluation is the raw outcome of one pass over the active rules.
type Evaluation struct {
	Candidates       []Candidate
	Reports          []domain.RuleReport
	Elapsed          time.Duration
	DeadlineExceeded bool
}

// Evaluate runs every active rule against fc.
//
// Each rule gets its own task bounded by PerRuleTimeout. The pass as a whole
// is bounded by OverallTimeout: when it elapses the engine stops waiting,
// reports unfinished rules as canceled and returns what has arrived. Late
// results from abandoned rules are discarded.
func (e *Engine) Evaluate(ctx context.Context, fc *domain.FailureContext, opts Options) Evaluation {
	if opts.Workers <= 0 {
		opts.Workers = e.workers
	}
	opts = opts.WithDefaults()
	start := e.now()

	ctx, cancel := context.WithTimeout(ctx, opts.OverallTimeout)
	defer cancel()
	ctx = fuzzy.WithThreshold(ctx, opts.MinFuzzyThreshold)

	entries := e.reg.Active()
	reports := make([]domain.RuleReport, len(entries))
	results := make([][]domain.Correction, len(entries))
	for i, en := range entries {
		reports[i] = domain.RuleReport{RuleID: en.Rule.ID(), Index: en.Index, Status: domain.RuleStatusCanceled}
	}

	var (
		mu     sync.Mutex
		closed bool
	)
	done := make(chan struct{})

	go func() {
		defer close(done)
		var g errgroup.Group
		g.SetLimit(opts.Workers)
		for i, en := range entries {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				rep, cs := e.run(ctx, fc, en, opts.PerRuleTimeout)
				mu.Lock()
				defer mu.Unlock()
				if !closed {
					reports[i] = rep
					results[i] = cs
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	deadline := false
	select {
	case <-done:
	case <-ctx.Done():
		deadline = errors.Is(ctx.Err(), context.DeadlineExceeded)
	}

	mu.Lock()
	closed = true
	ev := Evaluation{
		Reports:          append([]domain.RuleReport(nil), reports...),
		DeadlineExceeded: deadline,
	}
	for i, cs := range results {
		for seq, c := range cs {
			ev.Candidates = append(ev.Candidates, Candidate{Correction: c, Index: entries[i].Index, Seq: seq})
		}
	}
	mu.Unlock()

	ev.Elapsed = e.now().Sub(start)
	e.record(ev)
	return ev
}

type outcome struct {
	matched bool
	cs      []domain.Correction
	err     error
}

// run evaluates one rule on its own goroutine so a rule that ignores its
// context cannot hold the worker past the per-rule deadline.
func (e *Engine) run(ctx context.Context, fc *domain.FailureContext, en rule.Entry, timeout time.Duration) (domain.RuleReport, []domain.Correction) {
	id := en.Rule.ID()
	rep := domain.RuleReport{RuleID: id, Index: en.Index}

	if err := ctx.Err(); err != nil {
		rep.Status = domain.RuleStatusCanceled
		rep.Err = err.Error()
		return rep, nil
	}
	if ro, ok := en.Rule.(rule.OutputRequirer); ok && ro.RequiresOutput() && !fc.HasOutput() {
		rep.Status = domain.RuleStatusSkipped
		return rep, nil
	}

	start := e.now()
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{matched: true, err: domain.ErrRuleEvaluation.Wrap(fmt.Sprintf("panic: %v", r))}
			}
		}()
		if !en.Rule.Matches(fc) {
			ch <- outcome{}
			return
		}
		cs, err := en.Rule.Generate(rctx, fc)
		ch <- outcome{matched: true, cs: cs, err: err}
	}()

	var o outcome
	select {
	case o = <-ch:
	case <-rctx.Done():
		o = outcome{matched: true, err: rctx.Err()}
	}
	rep.Duration = e.now().Sub(start)

	switch {
	case ctx.Err() != nil:
		rep.Status = domain.RuleStatusCanceled
		rep.Err = ctx.Err().Error()
		return rep, nil
	case o.err != nil && errors.Is(rctx.Err(), context.DeadlineExceeded):
		rep.Status = domain.RuleStatusTimeout
		rep.Err = domain.ErrRuleTimeout.Wrap(timeout.String()).Error()
		e.log.Debug("Rule timed out", "rule", id, "timeout", timeout)
		return rep, nil
	case o.err != nil:
		rep.Status = domain.RuleStatusFailed
		rep.Err = o.err.Error()
		e.log.Warn("Rule failed", "rule", id, "error", o.err)
		return rep, nil
	case !o.matched:
		rep.Status = domain.RuleStatusUnmatched
		return rep, nil
	}

	cs := sanitize(o.cs, id, en.Priority)
	rep.Status = domain.RuleStatusMatched
	rep.Corrections = len(cs)
	return rep, cs
}

// sanitize drops empty commands, clamps confidence and stamps the producing
// rule's identity on every correction.
func sanitize(in []domain.Correction, id string, priority int) []domain.Correction {
	out := make([]domain.Correction, 0, len(in))
	for _, c := range in {
		c.Command = strings.TrimSpace(c.Command)
		if c.Command == "" {
			continue
		}
		c.Confidence = domain.ClampConfidence(c.Confidence)
		c.RuleID = id
		c.Priority = priority
		out = append(out, c)
	}
	return out
}

func (e *Engine) record(ev Evaluation) {
	for _, r := range ev.Reports {
		metrics.RuleEvaluations.WithLabelValues(r.RuleID, string(r.Status)).Inc()
		if r.Duration > 0 {
			metrics.RuleDuration.WithLabelValues(r.RuleID).Observe(r.Duration.Seconds())
		}
	}
	if ev.DeadlineExceeded {
		e.log.Warn("Evaluation deadline exceeded", "elapsed", ev.Elapsed, "candidates", len(ev.Candidates))
	}
}
