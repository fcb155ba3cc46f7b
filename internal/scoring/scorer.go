// Package scoring estimates how completely specified a task is.
//
// The score is a weighted sum over readiness dimensions, normalized to
// [0,1]. Dimension scores are kept in the breakdown so callers can explain
// why a task scored the way it did.
package scoring

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aetherlight/readygate/internal/engine"
)

// Dimension weights. Must sum to 1.0.
const (
	weightDescription = 0.30
	weightCriteria    = 0.20
	weightPatterns    = 0.20
	weightAgent       = 0.15
	weightTests       = 0.15
)

// Actions derived from the total score.
const (
	ActionProceed = "proceed"
	ActionReview  = "review"
	ActionPause   = "pause"
)

// Task is a task descriptor loaded from the task directory.
type Task struct {
	ID                 string   `yaml:"id"`
	Description        string   `yaml:"description"`
	AcceptanceCriteria []string `yaml:"acceptance_criteria"`
	PatternRefs        []string `yaml:"pattern_refs"`
	AgentID            string   `yaml:"agent_id"`
	TestsPlanned       bool     `yaml:"tests_planned"`
}

// Breakdown holds the individual dimension scores.
type Breakdown struct {
	Description float64 `json:"description"`
	Criteria    float64 `json:"criteria"`
	Patterns    float64 `json:"patterns"`
	Agent       float64 `json:"agent"`
	Tests       float64 `json:"tests"`
}

// Total returns the weighted sum of the breakdown, in [0,1].
func (b Breakdown) Total() float64 {
	total := b.Description*weightDescription +
		b.Criteria*weightCriteria +
		b.Patterns*weightPatterns +
		b.Agent*weightAgent +
		b.Tests*weightTests
	if total < 0 {
		return 0
	}
	if total > 1 {
		return 1
	}
	return total
}

// Resolver answers identifier existence lookups. Both catalog ports satisfy
// it.
type Resolver interface {
	Exists(id string) bool
}

// Scorer implements engine.ConfidenceScorer over a directory of YAML task
// descriptors, one file per task (<taskID>.yaml).
type Scorer struct {
	dir      string
	patterns Resolver
	agents   Resolver
	// threshold separates proceed from review in the reported action.
	threshold float64
}

// New creates a scorer. patterns and agents may be nil; the corresponding
// dimensions then score on presence alone.
func New(dir string, patterns, agents Resolver, threshold float64) *Scorer {
	if threshold <= 0 {
		threshold = engine.DefaultConfidenceThreshold
	}
	return &Scorer{dir: dir, patterns: patterns, agents: agents, threshold: threshold}
}

// ScoreTask loads the task descriptor and scores it. A missing descriptor is
// an error; the engine's confidence gate degrades on it.
func (s *Scorer) ScoreTask(_ context.Context, taskID string) (*engine.TaskScore, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task id is empty")
	}

	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}

	var gaps []string
	breakdown := Breakdown{
		Description: scoreDescription(task.Description),
		Criteria:    scoreCriteria(task.AcceptanceCriteria),
	}

	breakdown.Patterns, gaps = s.scorePatterns(task.PatternRefs, gaps)
	breakdown.Agent, gaps = s.scoreAgent(task.AgentID, gaps)

	if task.TestsPlanned {
		breakdown.Tests = 1
	} else {
		gaps = append(gaps, "no test plan for this task")
	}

	total := breakdown.Total()
	return &engine.TaskScore{
		TaskID:     taskID,
		Confidence: total,
		Action:     actionFor(total, s.threshold),
		Gaps:       gaps,
	}, nil
}

func (s *Scorer) load(taskID string) (*Task, error) {
	// Task IDs come from callers; never let them escape the task directory.
	if strings.ContainsAny(taskID, "/\\") || strings.Contains(taskID, "..") {
		return nil, fmt.Errorf("invalid task id %q", taskID)
	}
	path := filepath.Join(s.dir, taskID+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task descriptor: %w", err)
	}
	var task Task
	if err := yaml.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to parse task descriptor %s: %w", path, err)
	}
	if task.ID == "" {
		task.ID = taskID
	}
	return &task, nil
}

func scoreDescription(desc string) float64 {
	words := len(strings.Fields(desc))
	switch {
	case words >= 20:
		return 1
	case words >= 8:
		return 0.7
	case words > 0:
		return 0.4
	default:
		return 0
	}
}

func scoreCriteria(criteria []string) float64 {
	switch {
	case len(criteria) >= 3:
		return 1
	case len(criteria) >= 1:
		return 0.6
	default:
		return 0
	}
}

func (s *Scorer) scorePatterns(refs []string, gaps []string) (float64, []string) {
	if len(refs) == 0 {
		// No patterns referenced: neither evidence for nor against.
		return 0.5, gaps
	}
	if s.patterns == nil {
		return 0.7, gaps
	}
	resolved := 0
	for _, ref := range refs {
		if s.patterns.Exists(ref) {
			resolved++
		} else {
			gaps = append(gaps, fmt.Sprintf("pattern %q is not in the pattern library", ref))
		}
	}
	return float64(resolved) / float64(len(refs)), gaps
}

func (s *Scorer) scoreAgent(agentID string, gaps []string) (float64, []string) {
	if agentID == "" {
		gaps = append(gaps, "no agent assigned to this task")
		return 0.4, gaps
	}
	if s.agents == nil {
		return 0.8, gaps
	}
	if !s.agents.Exists(agentID) {
		gaps = append(gaps, fmt.Sprintf("agent %q has no definition", agentID))
		return 0.2, gaps
	}
	return 1, gaps
}

func actionFor(total, threshold float64) string {
	switch {
	case total >= threshold:
		return ActionProceed
	case total >= 0.5:
		return ActionReview
	default:
		return ActionPause
	}
}
