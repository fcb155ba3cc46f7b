package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aetherlight/readygate/internal/logging"
)

// Evaluator runs prerequisite definitions against a workflow context.
//
// Collaborator failures never propagate: a failing check is converted into a
// failed prerequisite whose remediation points at manual verification. No
// single collaborator outage fails the whole check.
type Evaluator struct {
	log *logging.Logger
}

// NewEvaluator creates an evaluator.
func NewEvaluator(log *logging.Logger) *Evaluator {
	if log == nil {
		log = logging.NewNop()
	}
	return &Evaluator{log: log.Named("evaluator")}
}

// Evaluate runs each definition in order and returns one prerequisite per
// definition.
func (e *Evaluator) Evaluate(ctx context.Context, defs []PrerequisiteDefinition, wctx *Context) []Prerequisite {
	prereqs := make([]Prerequisite, 0, len(defs))
	for _, def := range defs {
		prereqs = append(prereqs, e.evaluateOne(ctx, def, wctx))
	}
	return prereqs
}

func (e *Evaluator) evaluateOne(ctx context.Context, def PrerequisiteDefinition, wctx *Context) Prerequisite {
	p, err := def.Eval(ctx, wctx)
	if err != nil {
		e.log.Warn("prerequisite check degraded",
			zap.String("check", def.Name),
			zap.Error(err))
		return Prerequisite{
			Name:        def.Name,
			Status:      StatusFail,
			Details:     fmt.Sprintf("automated check unavailable: %v", err),
			Remediation: fmt.Sprintf("verify %s manually before proceeding", def.Name),
			Impact:      def.Impact,
		}
	}
	return *p
}
