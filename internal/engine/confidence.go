package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aetherlight/readygate/internal/logging"
)

// neutralConfidence is substituted when the scoring service is unavailable.
const neutralConfidence = 0.5

// confidenceOutcome is the gate's contribution to the aggregate result.
type confidenceOutcome struct {
	confidence   float64
	gaps         []string
	prerequisite Prerequisite
}

// ConfidenceGate calls the confidence scorer once per check and derives the
// threshold prerequisite from its answer. The scorer is never invoked twice
// for the same call.
type ConfidenceGate struct {
	scorer    ConfidenceScorer
	threshold float64
	log       *logging.Logger
}

// NewConfidenceGate creates a gate with the given pass threshold.
func NewConfidenceGate(scorer ConfidenceScorer, threshold float64, log *logging.Logger) *ConfidenceGate {
	if log == nil {
		log = logging.NewNop()
	}
	return &ConfidenceGate{scorer: scorer, threshold: threshold, log: log.Named("confidence")}
}

// Evaluate scores the task in context. Scorer failures degrade to the
// neutral confidence and a warning prerequisite; they never propagate.
func (g *ConfidenceGate) Evaluate(ctx context.Context, wctx *Context) confidenceOutcome {
	if g.scorer == nil {
		return g.unavailable(fmt.Errorf("no scorer configured"))
	}

	score, err := g.scorer.ScoreTask(ctx, wctx.TaskID)
	if err != nil {
		return g.unavailable(err)
	}

	confidence := clamp01(score.Confidence)
	out := confidenceOutcome{
		confidence: confidence,
		gaps:       score.Gaps,
	}
	if confidence < g.threshold {
		out.prerequisite = Prerequisite{
			Name:        "confidence-threshold",
			Status:      StatusFail,
			Details:     fmt.Sprintf("task confidence %.2f is below the %.2f threshold", confidence, g.threshold),
			Remediation: "refine the task specification before proceeding",
			Impact:      ImpactDegraded,
		}
	} else {
		out.prerequisite = Prerequisite{
			Name:    "confidence-threshold",
			Status:  StatusPass,
			Details: fmt.Sprintf("task confidence %.2f meets the %.2f threshold", confidence, g.threshold),
			Impact:  ImpactDegraded,
		}
	}
	return out
}

func (g *ConfidenceGate) unavailable(err error) confidenceOutcome {
	g.log.Warn("confidence scoring unavailable", zap.Error(err))
	return confidenceOutcome{
		confidence: neutralConfidence,
		prerequisite: Prerequisite{
			Name:        "confidence-threshold",
			Status:      StatusWarn,
			Details:     fmt.Sprintf("confidence scoring service unavailable: %v", err),
			Remediation: "assess task readiness manually",
			Impact:      ImpactDegraded,
		},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
