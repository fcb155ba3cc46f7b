package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/aetherlight/readygate/internal/logging"
)

const (
	// DefaultCheckTimeout bounds a full readiness check.
	DefaultCheckTimeout = 10 * time.Second

	// DefaultConfidenceThreshold is the confidence below which an operation
	// becomes a critical junction.
	DefaultConfidenceThreshold = 0.80

	// DefaultProtectedBranch is the branch git operations must not target.
	DefaultProtectedBranch = "main"

	// timeoutGapDescription is appended to the gap list of a partial result.
	timeoutGapDescription = "Operation timeout"
)

// Options configures an Engine. Scorer, Validator, Git, Patterns, Agents and
// GapSink are collaborator ports; any of them may be nil, in which case the
// dependent checks degrade instead of failing the call.
type Options struct {
	Scorer    ConfidenceScorer
	Validator TestValidator
	Git       GitProbe
	Patterns  PatternCatalog
	Agents    AgentCatalog
	GapSink   GapSink
	Logger    *logging.Logger

	// CheckTimeout bounds the whole check. Zero means DefaultCheckTimeout.
	CheckTimeout time.Duration

	// ConfidenceThreshold is the critical-junction confidence bound.
	// Zero means DefaultConfidenceThreshold.
	ConfidenceThreshold float64

	// CacheTTL bounds result cache entries. Zero means process lifetime.
	CacheTTL time.Duration

	// ProtectedBranch is the branch the git workflow refuses to push to.
	// Empty means DefaultProtectedBranch.
	ProtectedBranch string
}

// Engine evaluates workflow readiness before a gated operation proceeds.
//
// Each check runs the prerequisite evaluation, confidence scoring and gap
// detection concurrently, joins them under a single deadline, and returns a
// rich result. The only error CheckWorkflow surfaces is an unknown workflow
// type; collaborator failures and timeouts are absorbed into the result.
type Engine struct {
	registry  *Registry
	evaluator *Evaluator
	gate      *ConfidenceGate
	detector  *GapDetector
	cache     *ResultCache
	sink      GapSink
	log       *logging.Logger

	timeout   time.Duration
	threshold float64
}

// New creates an engine from options.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	timeout := opts.CheckTimeout
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	threshold := opts.ConfidenceThreshold
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	protected := opts.ProtectedBranch
	if protected == "" {
		protected = DefaultProtectedBranch
	}

	return &Engine{
		registry: newRegistry(registryDeps{
			validator:       opts.Validator,
			git:             opts.Git,
			protectedBranch: protected,
		}),
		evaluator: NewEvaluator(log),
		gate:      NewConfidenceGate(opts.Scorer, threshold, log),
		detector:  NewGapDetector(opts.Patterns, opts.Agents),
		cache:     NewResultCache(opts.CacheTTL),
		sink:      opts.GapSink,
		log:       log.Named("engine"),
		timeout:   timeout,
		threshold: threshold,
	}
}

// CheckWorkflow evaluates whether the given operation may proceed.
//
// Identical (type, context) pairs resolve from the cache without invoking
// any collaborator. On a miss the three sub-evaluations run concurrently
// and are joined under the check timeout; a deadline expiry returns the
// partial result assembled so far with an explicit timeout indicator.
func (e *Engine) CheckWorkflow(ctx context.Context, t WorkflowType, wctx *Context) (*CheckResult, error) {
	defs, err := e.registry.PrerequisitesFor(t)
	if err != nil {
		return nil, err
	}
	if wctx == nil {
		return nil, ErrNilContext
	}

	start := time.Now()
	attrs := metric.WithAttributes(attribute.String("workflow_type", string(t)))
	checkCounter.Add(ctx, 1, attrs)

	key := e.cache.Key(t, wctx)
	if cached, ok := e.cache.Get(key); ok {
		cacheHitCounter.Add(ctx, 1, attrs)
		e.log.Debug("cache hit",
			zap.String("workflow_type", string(t)),
			zap.String("key", key[:12]))
		return cached, nil
	}

	// Sub-evaluations get the caller's context, not the deadline-bound one:
	// on timeout their results are abandoned, never force-terminated. Each
	// channel is buffered so an abandoned goroutine can still complete.
	prereqCh := make(chan []Prerequisite, 1)
	confCh := make(chan confidenceOutcome, 1)
	gapCh := make(chan []Gap, 1)

	go func() { prereqCh <- e.evaluator.Evaluate(ctx, defs, wctx) }()
	go func() { confCh <- e.gate.Evaluate(ctx, wctx) }()
	go func() { gapCh <- e.detector.Detect(ctx, t, wctx) }()

	deadline := time.NewTimer(e.timeout)
	defer deadline.Stop()

	var (
		prereqs  []Prerequisite
		conf     = confidenceOutcome{confidence: neutralConfidence}
		detected []Gap

		havePrereqs, haveConf, haveGaps, timedOut bool
	)
	for !timedOut && !(havePrereqs && haveConf && haveGaps) {
		select {
		case prereqs = <-prereqCh:
			havePrereqs = true
		case conf = <-confCh:
			haveConf = true
		case detected = <-gapCh:
			haveGaps = true
		case <-deadline.C:
			timedOut = true
		case <-ctx.Done():
			timedOut = true
		}
	}

	result := e.aggregate(t, wctx, prereqs, conf, detected, haveConf, timedOut)

	e.recordGaps(ctx, t, wctx, detected)

	if timedOut {
		timeoutCounter.Add(ctx, 1, attrs)
		e.log.Warn("check timed out, returning partial result",
			zap.String("workflow_type", string(t)),
			zap.Bool("prerequisites_done", havePrereqs),
			zap.Bool("confidence_done", haveConf),
			zap.Bool("gaps_done", haveGaps))
	} else {
		// Partial results are never cached; they would pin an answer the
		// collaborators did not actually give.
		e.cache.Set(key, result)
	}

	elapsed := time.Since(start)
	checkDuration.Record(ctx, elapsed.Seconds(), attrs)
	gapsDetected.Add(ctx, int64(len(result.Gaps)), attrs)
	if result.CriticalJunction {
		criticalCounter.Add(ctx, 1, attrs)
	}

	e.log.Info("workflow check complete",
		zap.String("workflow_type", string(t)),
		zap.Float64("confidence", result.Confidence),
		zap.Int("gaps", len(result.Gaps)),
		zap.Bool("critical_junction", result.CriticalJunction),
		zap.Bool("timed_out", result.TimedOut),
		zap.Duration("elapsed", elapsed))

	return result, nil
}

// DetectGaps runs gap detection alone. Exposed for diagnostics; CheckWorkflow
// composes the same detector.
func (e *Engine) DetectGaps(ctx context.Context, t WorkflowType, wctx *Context) ([]string, error) {
	if !e.registry.Known(t) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorkflowType, t)
	}
	if wctx == nil {
		return nil, ErrNilContext
	}
	detected := e.detector.Detect(ctx, t, wctx)
	return mergeGapDescriptions(detected, nil), nil
}

// aggregate assembles the final result from whatever the sub-evaluations
// produced before the deadline.
func (e *Engine) aggregate(t WorkflowType, wctx *Context, prereqs []Prerequisite, conf confidenceOutcome, detected []Gap, haveConf, timedOut bool) *CheckResult {
	all := make([]Prerequisite, 0, len(prereqs)+2)
	all = append(all, prereqs...)
	if haveConf {
		all = append(all, conf.prerequisite)
	}

	gaps := mergeGapDescriptions(detected, conf.gaps)

	if timedOut {
		gaps = append(gaps, timeoutGapDescription)
		all = append(all, Prerequisite{
			Name:    "evaluation-timeout",
			Status:  StatusWarn,
			Details: "evaluation deadline elapsed; result is partial",
			Impact:  ImpactDegraded,
		})
	}

	critical := t == WorkflowPublish ||
		conf.confidence < e.threshold ||
		len(gaps) >= 2

	return &CheckResult{
		WorkflowType:     t,
		Prerequisites:    all,
		Confidence:       conf.confidence,
		Gaps:             gaps,
		CriticalJunction: critical,
		Plan:             buildPlan(all, gaps),
		TimedOut:         timedOut,
	}
}

// buildPlan collects remediation steps for failed prerequisites, then
// follow-ups for unresolved gaps.
func buildPlan(prereqs []Prerequisite, gaps []string) []string {
	var plan []string
	seen := make(map[string]struct{})
	add := func(step string) {
		if step == "" {
			return
		}
		if _, ok := seen[step]; ok {
			return
		}
		seen[step] = struct{}{}
		plan = append(plan, step)
	}

	for _, p := range prereqs {
		if p.Status == StatusFail {
			add(p.Remediation)
		}
	}
	for _, g := range gaps {
		if g == timeoutGapDescription {
			continue
		}
		add(fmt.Sprintf("address gap: %s", g))
	}
	return plan
}

// recordGaps appends detected gaps to the sink. Best effort: sink failures
// are logged and swallowed, never surfaced to the caller.
func (e *Engine) recordGaps(ctx context.Context, t WorkflowType, wctx *Context, detected []Gap) {
	if e.sink == nil {
		return
	}
	for _, g := range detected {
		rec := GapRecord{
			Timestamp:    time.Now().UTC(),
			WorkflowType: t,
			GapType:      g.Type,
			Description:  g.Description,
			Impact:       g.Impact,
			TaskID:       wctx.TaskID,
		}
		if err := e.sink.Append(ctx, rec); err != nil {
			e.log.Warn("gap log append failed", zap.Error(err))
		}
	}
}
