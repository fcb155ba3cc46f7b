package engine

import (
	"context"
	"fmt"
	"strings"
)

// EvalFunc runs a single prerequisite check against the workflow context.
// Returning an error marks the check as a collaborator failure; the
// evaluator synthesizes a failed prerequisite instead of propagating it.
type EvalFunc func(ctx context.Context, wctx *Context) (*Prerequisite, error)

// PrerequisiteDefinition names a check, the impact of its failure, and the
// evaluator responsible for it.
type PrerequisiteDefinition struct {
	Name   string
	Impact Impact
	Eval   EvalFunc
}

// Registry maps each workflow type to its ordered prerequisite definitions.
// The set of types is closed; querying an unknown type is a programmer error.
type Registry struct {
	defs map[WorkflowType][]PrerequisiteDefinition
}

// registryDeps are the collaborators prerequisite checks evaluate against.
type registryDeps struct {
	validator       TestValidator
	git             GitProbe
	protectedBranch string
}

// newRegistry builds the per-type rule sets.
func newRegistry(deps registryDeps) *Registry {
	r := &Registry{defs: make(map[WorkflowType][]PrerequisiteDefinition)}

	r.defs[WorkflowCode] = []PrerequisiteDefinition{
		{Name: "sprint-task-context", Impact: ImpactBlocking, Eval: checkTaskContext},
		{Name: "tdd-evidence", Impact: ImpactBlocking, Eval: checkTDDEvidence(deps.validator)},
		{Name: "git-clean", Impact: ImpactDegraded, Eval: checkGitClean(deps.git)},
	}

	r.defs[WorkflowSprint] = []PrerequisiteDefinition{
		{Name: "workspace-analyzed", Impact: ImpactBlocking, Eval: checkWorkspaceAnalyzed},
		{Name: "git-clean", Impact: ImpactDegraded, Eval: checkGitClean(deps.git)},
		{Name: "skill-catalog-loaded", Impact: ImpactDegraded, Eval: checkSkillCatalog},
	}

	r.defs[WorkflowPublish] = []PrerequisiteDefinition{
		{Name: "tests-passing", Impact: ImpactBlocking, Eval: checkTestsPassing},
		{Name: "artifacts-compiled", Impact: ImpactBlocking, Eval: checkArtifactsCompiled},
		{Name: "release-tag-ready", Impact: ImpactBlocking, Eval: checkReleaseTag},
	}

	r.defs[WorkflowDocs] = []PrerequisiteDefinition{
		{Name: "reusability-assessed", Impact: ImpactSuboptimal, Eval: checkReusabilityAssessed},
		{Name: "pattern-template", Impact: ImpactSuboptimal, Eval: checkPatternTemplate},
	}

	r.defs[WorkflowGit] = []PrerequisiteDefinition{
		{Name: "protected-branch", Impact: ImpactBlocking, Eval: checkProtectedBranch(deps.git, deps.protectedBranch)},
		{Name: "worktree-status", Impact: ImpactSuboptimal, Eval: checkWorktreeStatus(deps.git)},
	}

	r.defs[WorkflowTest] = []PrerequisiteDefinition{
		{Name: "test-runner-configured", Impact: ImpactBlocking, Eval: checkTestRunner},
		{Name: "test-files-exist", Impact: ImpactBlocking, Eval: checkTestFiles},
		{Name: "coverage-tool-available", Impact: ImpactSuboptimal, Eval: checkCoverageTool},
	}

	return r
}

// PrerequisitesFor returns the ordered prerequisite definitions for a
// workflow type, or ErrUnknownWorkflowType for a type outside the closed set.
func (r *Registry) PrerequisitesFor(t WorkflowType) ([]PrerequisiteDefinition, error) {
	defs, ok := r.defs[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorkflowType, t)
	}
	return defs, nil
}

// Known reports whether t is in the closed set of workflow types.
func (r *Registry) Known(t WorkflowType) bool {
	_, ok := r.defs[t]
	return ok
}

// Prerequisite checks. Each returns a fully populated Prerequisite; an error
// return means the collaborator behind the check was unavailable.

func checkTaskContext(_ context.Context, wctx *Context) (*Prerequisite, error) {
	if wctx.TaskID == "" {
		return &Prerequisite{
			Name:        "sprint-task-context",
			Status:      StatusFail,
			Details:     "no sprint task is associated with this operation",
			Remediation: "reference a sprint task before writing code",
			Impact:      ImpactBlocking,
		}, nil
	}
	return &Prerequisite{
		Name:    "sprint-task-context",
		Status:  StatusPass,
		Details: fmt.Sprintf("task %s is in context", wctx.TaskID),
		Impact:  ImpactBlocking,
	}, nil
}

func checkTDDEvidence(validator TestValidator) EvalFunc {
	return func(ctx context.Context, wctx *Context) (*Prerequisite, error) {
		if validator == nil {
			return nil, NewCollaboratorError("test validation", fmt.Errorf("no validator configured"))
		}
		report, err := validator.Validate(ctx, wctx)
		if err != nil {
			return nil, NewCollaboratorError("test validation", err)
		}
		if !report.Valid {
			details := "tests were not authored before implementation"
			if len(report.Errors) > 0 {
				details = strings.Join(report.Errors, "; ")
			}
			return &Prerequisite{
				Name:        "tdd-evidence",
				Status:      StatusFail,
				Details:     details,
				Remediation: "write failing tests for the task before implementing",
				Impact:      ImpactBlocking,
			}, nil
		}
		p := &Prerequisite{
			Name:    "tdd-evidence",
			Status:  StatusPass,
			Details: "test-first evidence found",
			Impact:  ImpactBlocking,
		}
		if len(report.Warnings) > 0 {
			p.Status = StatusWarn
			p.Details = strings.Join(report.Warnings, "; ")
		}
		return p, nil
	}
}

// resolveGitStatus prefers caller-supplied evidence over probing the
// repository. A probe is only consulted when the context carries nothing.
func resolveGitStatus(ctx context.Context, git GitProbe, wctx *Context) (*GitStatus, error) {
	if wctx.GitClean != nil {
		return &GitStatus{Branch: wctx.Branch, Clean: *wctx.GitClean}, nil
	}
	if git == nil {
		return nil, fmt.Errorf("no git probe configured")
	}
	status, err := git.Status(ctx)
	if err != nil {
		return nil, err
	}
	if wctx.Branch != "" {
		status = &GitStatus{Branch: wctx.Branch, Clean: status.Clean}
	}
	return status, nil
}

func checkGitClean(git GitProbe) EvalFunc {
	return func(ctx context.Context, wctx *Context) (*Prerequisite, error) {
		status, err := resolveGitStatus(ctx, git, wctx)
		if err != nil {
			return nil, NewCollaboratorError("git status", err)
		}
		if !status.Clean {
			return &Prerequisite{
				Name:        "git-clean",
				Status:      StatusFail,
				Details:     "working tree has uncommitted changes",
				Remediation: "commit or stash changes before proceeding",
				Impact:      ImpactDegraded,
			}, nil
		}
		return &Prerequisite{
			Name:    "git-clean",
			Status:  StatusPass,
			Details: "working tree is clean",
			Impact:  ImpactDegraded,
		}, nil
	}
}

func checkWorkspaceAnalyzed(_ context.Context, wctx *Context) (*Prerequisite, error) {
	if !wctx.WorkspaceAnalyzed {
		return &Prerequisite{
			Name:        "workspace-analyzed",
			Status:      StatusFail,
			Details:     "workspace has not been analyzed",
			Remediation: "run workspace analysis before planning the sprint",
			Impact:      ImpactBlocking,
		}, nil
	}
	return &Prerequisite{
		Name:    "workspace-analyzed",
		Status:  StatusPass,
		Details: "workspace analysis is current",
		Impact:  ImpactBlocking,
	}, nil
}

func checkSkillCatalog(_ context.Context, wctx *Context) (*Prerequisite, error) {
	if !wctx.SkillsLoaded {
		return &Prerequisite{
			Name:        "skill-catalog-loaded",
			Status:      StatusFail,
			Details:     "skill and agent catalog is not loaded",
			Remediation: "reload the skill catalog so tasks can be assigned",
			Impact:      ImpactDegraded,
		}, nil
	}
	return &Prerequisite{
		Name:    "skill-catalog-loaded",
		Status:  StatusPass,
		Details: "skill and agent catalog is loaded",
		Impact:  ImpactDegraded,
	}, nil
}

func checkTestsPassing(_ context.Context, wctx *Context) (*Prerequisite, error) {
	if !wctx.TestsPassing {
		return &Prerequisite{
			Name:        "tests-passing",
			Status:      StatusFail,
			Details:     "test suite is not green",
			Remediation: "fix failing tests before publishing",
			Impact:      ImpactBlocking,
		}, nil
	}
	return &Prerequisite{
		Name:    "tests-passing",
		Status:  StatusPass,
		Details: "test suite is green",
		Impact:  ImpactBlocking,
	}, nil
}

func checkArtifactsCompiled(_ context.Context, wctx *Context) (*Prerequisite, error) {
	if !wctx.ArtifactsCompiled {
		return &Prerequisite{
			Name:        "artifacts-compiled",
			Status:      StatusFail,
			Details:     "release artifacts have not been compiled",
			Remediation: "build release artifacts before publishing",
			Impact:      ImpactBlocking,
		}, nil
	}
	return &Prerequisite{
		Name:    "artifacts-compiled",
		Status:  StatusPass,
		Details: "release artifacts are compiled",
		Impact:  ImpactBlocking,
	}, nil
}

func checkReleaseTag(_ context.Context, wctx *Context) (*Prerequisite, error) {
	if !wctx.GitTagReady {
		return &Prerequisite{
			Name:        "release-tag-ready",
			Status:      StatusFail,
			Details:     "release tag has not been prepared",
			Remediation: "prepare the release tag before publishing",
			Impact:      ImpactBlocking,
		}, nil
	}
	return &Prerequisite{
		Name:    "release-tag-ready",
		Status:  StatusPass,
		Details: "release tag is prepared",
		Impact:  ImpactBlocking,
	}, nil
}

func checkReusabilityAssessed(_ context.Context, wctx *Context) (*Prerequisite, error) {
	if wctx.Reusability == "" {
		return &Prerequisite{
			Name:        "reusability-assessed",
			Status:      StatusFail,
			Details:     "reusability of this documentation has not been assessed",
			Remediation: "assess reusability before documenting",
			Impact:      ImpactSuboptimal,
		}, nil
	}
	return &Prerequisite{
		Name:    "reusability-assessed",
		Status:  StatusPass,
		Details: fmt.Sprintf("reusability assessed as %q", wctx.Reusability),
		Impact:  ImpactSuboptimal,
	}, nil
}

func checkPatternTemplate(_ context.Context, wctx *Context) (*Prerequisite, error) {
	if !strings.EqualFold(wctx.Reusability, "high") {
		return &Prerequisite{
			Name:    "pattern-template",
			Status:  StatusPass,
			Details: "pattern template not required for this reusability level",
			Impact:  ImpactSuboptimal,
		}, nil
	}
	if !wctx.PatternTemplateExists {
		return &Prerequisite{
			Name:        "pattern-template",
			Status:      StatusFail,
			Details:     "reusability is high but no pattern template exists",
			Remediation: "create a pattern template for this documentation",
			Impact:      ImpactSuboptimal,
		}, nil
	}
	return &Prerequisite{
		Name:    "pattern-template",
		Status:  StatusPass,
		Details: "pattern template exists",
		Impact:  ImpactSuboptimal,
	}, nil
}

func checkProtectedBranch(git GitProbe, protected string) EvalFunc {
	return func(ctx context.Context, wctx *Context) (*Prerequisite, error) {
		branch := wctx.Branch
		if branch == "" {
			status, err := resolveGitStatus(ctx, git, wctx)
			if err != nil {
				return nil, NewCollaboratorError("git status", err)
			}
			branch = status.Branch
		}
		if branch == protected {
			return &Prerequisite{
				Name:        "protected-branch",
				Status:      StatusFail,
				Details:     fmt.Sprintf("current branch %q is the protected branch", branch),
				Remediation: "switch to a feature branch before pushing",
				Impact:      ImpactBlocking,
			}, nil
		}
		return &Prerequisite{
			Name:    "protected-branch",
			Status:  StatusPass,
			Details: fmt.Sprintf("current branch is %q", branch),
			Impact:  ImpactBlocking,
		}, nil
	}
}

func checkWorktreeStatus(git GitProbe) EvalFunc {
	return func(ctx context.Context, wctx *Context) (*Prerequisite, error) {
		status, err := resolveGitStatus(ctx, git, wctx)
		if err != nil {
			return nil, NewCollaboratorError("git status", err)
		}
		if !status.Clean {
			return &Prerequisite{
				Name:    "worktree-status",
				Status:  StatusWarn,
				Details: "working tree has uncommitted changes",
				Impact:  ImpactSuboptimal,
			}, nil
		}
		return &Prerequisite{
			Name:    "worktree-status",
			Status:  StatusPass,
			Details: "working tree is clean",
			Impact:  ImpactSuboptimal,
		}, nil
	}
}

func checkTestRunner(_ context.Context, wctx *Context) (*Prerequisite, error) {
	if !wctx.TestRunnerConfigured {
		return &Prerequisite{
			Name:        "test-runner-configured",
			Status:      StatusFail,
			Details:     "no test runner is configured",
			Remediation: "configure a test runner for the project",
			Impact:      ImpactBlocking,
		}, nil
	}
	return &Prerequisite{
		Name:    "test-runner-configured",
		Status:  StatusPass,
		Details: "test runner is configured",
		Impact:  ImpactBlocking,
	}, nil
}

func checkTestFiles(_ context.Context, wctx *Context) (*Prerequisite, error) {
	if !wctx.TestFilesExist {
		return &Prerequisite{
			Name:        "test-files-exist",
			Status:      StatusFail,
			Details:     "no test files exist",
			Remediation: "author test files before running the suite",
			Impact:      ImpactBlocking,
		}, nil
	}
	return &Prerequisite{
		Name:    "test-files-exist",
		Status:  StatusPass,
		Details: "test files exist",
		Impact:  ImpactBlocking,
	}, nil
}

func checkCoverageTool(_ context.Context, wctx *Context) (*Prerequisite, error) {
	if !wctx.CoverageToolAvailable {
		return &Prerequisite{
			Name:        "coverage-tool-available",
			Status:      StatusWarn,
			Details:     "no coverage tool is available",
			Remediation: "install a coverage tool to track test coverage",
			Impact:      ImpactSuboptimal,
		}, nil
	}
	return &Prerequisite{
		Name:    "coverage-tool-available",
		Status:  StatusPass,
		Details: "coverage tool is available",
		Impact:  ImpactSuboptimal,
	}, nil
}
