// Package engine implements the workflow readiness and gap detection engine.
package engine

import (
	"context"
	"time"
)

// WorkflowType identifies the category of development operation being gated.
type WorkflowType string

const (
	// WorkflowCode gates writing implementation code.
	WorkflowCode WorkflowType = "code"

	// WorkflowSprint gates sprint planning.
	WorkflowSprint WorkflowType = "sprint"

	// WorkflowPublish gates publishing a release. Always a critical junction.
	WorkflowPublish WorkflowType = "publish"

	// WorkflowDocs gates documentation work.
	WorkflowDocs WorkflowType = "docs"

	// WorkflowGit gates git operations such as push.
	WorkflowGit WorkflowType = "git"

	// WorkflowTest gates test execution.
	WorkflowTest WorkflowType = "test"
)

// AllWorkflowTypes returns the closed set of known workflow types.
func AllWorkflowTypes() []WorkflowType {
	return []WorkflowType{
		WorkflowCode, WorkflowSprint, WorkflowPublish,
		WorkflowDocs, WorkflowGit, WorkflowTest,
	}
}

// CheckStatus is the outcome of a single prerequisite check.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusFail CheckStatus = "fail"
	StatusWarn CheckStatus = "warn"
)

// Impact classifies how severely a failed prerequisite or detected gap
// affects the gated operation.
type Impact string

const (
	// ImpactBlocking means the operation must not proceed.
	ImpactBlocking Impact = "blocking"

	// ImpactDegraded means the operation may proceed with reduced guarantees.
	ImpactDegraded Impact = "degraded"

	// ImpactSuboptimal means the operation may proceed but the issue is tracked.
	ImpactSuboptimal Impact = "suboptimal"
)

// Context carries caller-supplied evidence about the operation being gated.
// The engine only reads it; all fields are optional and absence is treated
// the same as the zero value, except GitClean where nil means "not reported,
// consult the git probe".
type Context struct {
	TaskID          string `json:"task_id,omitempty"`
	TaskDescription string `json:"task_description,omitempty"`
	WorkingDir      string `json:"working_dir,omitempty"`

	TestFilesExist        bool `json:"test_files_exist,omitempty"`
	TestsPassing          bool `json:"tests_passing,omitempty"`
	TestRunnerConfigured  bool `json:"test_runner_configured,omitempty"`
	CoverageToolAvailable bool `json:"coverage_tool_available,omitempty"`

	ArtifactsCompiled bool `json:"artifacts_compiled,omitempty"`
	GitTagReady       bool `json:"git_tag_ready,omitempty"`

	GitClean *bool  `json:"git_clean,omitempty"`
	Branch   string `json:"branch,omitempty"`

	WorkspaceAnalyzed bool `json:"workspace_analyzed,omitempty"`
	SkillsLoaded      bool `json:"skills_loaded,omitempty"`

	PatternRefs           []string `json:"pattern_refs,omitempty"`
	AgentID               string   `json:"agent_id,omitempty"`
	Reusability           string   `json:"reusability,omitempty"`
	PatternTemplateExists bool     `json:"pattern_template_exists,omitempty"`
}

// Prerequisite is a single named precondition check with a rich status.
type Prerequisite struct {
	Name        string      `json:"name"`
	Status      CheckStatus `json:"status"`
	Details     string      `json:"details"`
	Remediation string      `json:"remediation,omitempty"`
	Impact      Impact      `json:"impact"`
}

// GapType categorizes a detected gap for retrospective mining.
type GapType string

const (
	GapPattern       GapType = "pattern"
	GapAgent         GapType = "agent"
	GapTest          GapType = "test"
	GapDocumentation GapType = "documentation"
	GapSkill         GapType = "skill"
)

// Gap is a detected absence of an expected artifact.
type Gap struct {
	Type        GapType `json:"type"`
	Description string  `json:"description"`
	Impact      Impact  `json:"impact"`
}

// CheckResult is the aggregate outcome of a workflow readiness check.
// Results are never mutated after construction; cached results are shared
// between callers.
type CheckResult struct {
	WorkflowType     WorkflowType   `json:"workflow_type"`
	Prerequisites    []Prerequisite `json:"prerequisites"`
	Confidence       float64        `json:"confidence"`
	Gaps             []string       `json:"gaps"`
	CriticalJunction bool           `json:"critical_junction"`
	Plan             []string       `json:"plan"`
	TimedOut         bool           `json:"timed_out,omitempty"`
}

// GapRecord is the persisted form of a detected gap.
type GapRecord struct {
	ID           string       `json:"id,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	WorkflowType WorkflowType `json:"workflow_type"`
	GapType      GapType      `json:"gap_type"`
	Description  string       `json:"description"`
	Impact       Impact       `json:"impact"`
	TaskID       string       `json:"task_id,omitempty"`
	UserDecision string       `json:"user_decision,omitempty"`
}

// TaskScore is the confidence scorer's assessment of a task.
type TaskScore struct {
	TaskID     string   `json:"task_id"`
	Confidence float64  `json:"confidence"`
	Action     string   `json:"action"`
	Gaps       []string `json:"gaps,omitempty"`
}

// ValidationReport is the test validator's assessment of a task context.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	TaskID   string   `json:"task_id"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// GitStatus reports the current branch and working tree cleanliness.
type GitStatus struct {
	Branch string `json:"branch"`
	Clean  bool   `json:"clean"`
}

// ConfidenceScorer scores how completely specified a task is.
type ConfidenceScorer interface {
	ScoreTask(ctx context.Context, taskID string) (*TaskScore, error)
}

// TestValidator checks test-driven-development evidence for a task context.
type TestValidator interface {
	Validate(ctx context.Context, wctx *Context) (*ValidationReport, error)
}

// GitProbe reports repository state. It may fail when git is absent or the
// working directory is not a repository.
type GitProbe interface {
	Status(ctx context.Context) (*GitStatus, error)
}

// PatternCatalog resolves pattern identifiers.
type PatternCatalog interface {
	Exists(id string) bool
}

// AgentCatalog resolves agent identifiers.
type AgentCatalog interface {
	Exists(id string) bool
}

// GapSink persists gap records. Append failures are absorbed by the engine;
// a sink must never be a source of failure for a check.
type GapSink interface {
	Append(ctx context.Context, rec GapRecord) error
}
